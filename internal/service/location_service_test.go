package service

import (
	"context"
	"testing"
	"time"

	"studymesh/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func locationServiceForTest(users *userRepoStub, locations *locationRepoStub, now time.Time) *LocationService {
	svc := NewLocationService(users, locations)
	svc.now = func() time.Time { return now }
	return svc
}

func TestUpdateLocationValidatesCoordinates(t *testing.T) {
	svc := NewLocationService(noopUserRepo(), noopLocationRepo())

	for _, bad := range [][2]float64{{91, 0}, {-91, 0}, {0, 181}, {0, -181}} {
		_, err := svc.UpdateLocation(context.Background(), 1, bad[0], bad[1], nil)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))
	}
}

func TestUpdateLocationFirstPointRecordsHistory(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFreshFn = func(context.Context, uint) (*models.User, error) {
		return &models.User{ID: 1, Status: models.UserStatusActive}, nil
	}
	locations := noopLocationRepo()
	var recorded *models.LocationHistory
	locations.createFn = func(_ context.Context, entry *models.LocationHistory) error {
		recorded = entry
		return nil
	}

	now := time.Now()
	svc := locationServiceForTest(users, locations, now)

	acc := 12.0
	user, err := svc.UpdateLocation(context.Background(), 1, 10.8, 106.7, &acc)
	require.NoError(t, err)
	require.True(t, user.HasLocation())

	require.NotNil(t, recorded, "first point always writes history")
	assert.InDelta(t, 10.8, recorded.Latitude, 1e-9)
	assert.Equal(t, &acc, recorded.Accuracy)
	assert.Equal(t, now, recorded.RecordedAt)
}

func TestUpdateLocationHistoryThreshold(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		lastAgo      time.Duration
		newLat       float64 // previous point is (10.8000, 106.7000)
		expectRecord bool
	}{
		{"small move, recent point, skipped", 5 * time.Minute, 10.8003, false}, // ~33m
		{"move past 100m records", 5 * time.Minute, 10.8010, true},             // ~111m
		{"stale point records without movement", 16 * time.Minute, 10.8000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := locatedUser(1, 10.8000, 106.7000)
			last := now.Add(-tt.lastAgo)
			prev.LastLocatedAt = &last

			users := noopUserRepo()
			users.getByIDFreshFn = func(context.Context, uint) (*models.User, error) { return prev, nil }

			locations := noopLocationRepo()
			recorded := false
			locations.createFn = func(context.Context, *models.LocationHistory) error {
				recorded = true
				return nil
			}

			svc := locationServiceForTest(users, locations, now)

			_, err := svc.UpdateLocation(context.Background(), 1, tt.newLat, 106.7000, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expectRecord, recorded)
		})
	}
}

func TestUpdateLocationAlwaysMovesCurrentPoint(t *testing.T) {
	prev := locatedUser(1, 10.8000, 106.7000)
	last := time.Now().Add(-time.Minute)
	prev.LastLocatedAt = &last

	users := noopUserRepo()
	users.getByIDFreshFn = func(context.Context, uint) (*models.User, error) { return prev, nil }
	moved := false
	users.updateLocationFn = func(context.Context, uint, float64, float64, time.Time) error {
		moved = true
		return nil
	}
	svc := NewLocationService(users, noopLocationRepo())

	// Tiny move: below the history threshold, but the current point still updates.
	user, err := svc.UpdateLocation(context.Background(), 1, 10.80001, 106.70001, nil)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.InDelta(t, 10.80001, *user.LastLatitude, 1e-9)
}

func TestUpdateLocationDecisionIgnoresCachedRow(t *testing.T) {
	now := time.Now()

	// Authoritative row: the user already sits at the reported point, so
	// the threshold must not fire. The cached read returns an old, distant
	// point that would wrongly trigger a history write.
	fresh := locatedUser(1, 10.8000, 106.7000)
	last := now.Add(-time.Minute)
	fresh.LastLocatedAt = &last

	users := noopUserRepo()
	users.getByIDFreshFn = func(context.Context, uint) (*models.User, error) { return fresh, nil }
	users.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return locatedUser(1, 10.0000, 106.0000), nil
	}

	locations := noopLocationRepo()
	recorded := false
	locations.createFn = func(context.Context, *models.LocationHistory) error {
		recorded = true
		return nil
	}

	svc := locationServiceForTest(users, locations, now)

	_, err := svc.UpdateLocation(context.Background(), 1, 10.8000, 106.7000, nil)
	require.NoError(t, err)
	assert.False(t, recorded, "threshold decision must come from the store, not the cache")
}

func TestGetHistoryClampsLimit(t *testing.T) {
	locations := noopLocationRepo()
	var gotLimit int
	locations.listByUserFn = func(_ context.Context, _ uint, limit, _ int) ([]models.LocationHistory, error) {
		gotLimit = limit
		return nil, nil
	}
	svc := NewLocationService(noopUserRepo(), locations)
	ctx := context.Background()

	_, err := svc.GetHistory(ctx, 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, gotLimit)

	_, err = svc.GetHistory(ctx, 1, 1000, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, gotLimit)

	_, err = svc.GetHistory(ctx, 1, 25, 0)
	require.NoError(t, err)
	assert.Equal(t, 25, gotLimit)
}
