package service

import (
	"context"
	"testing"

	"studymesh/internal/models"
	"studymesh/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearbyLearnersRequiresLocation(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return &models.User{ID: 1, Status: models.UserStatusActive}, nil
	}
	svc := NewDiscoveryService(users, noopConnRepo())

	_, err := svc.NearbyLearners(context.Background(), 1, 0, 20, 0)
	require.Error(t, err, "no location must be a typed error, not an empty result")
	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))
}

func TestNearbyLearnersRadiusFallback(t *testing.T) {
	searcher := locatedUser(1, 10.8, 106.7)
	searcher.LearningRadiusKm = 3.0

	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) { return searcher, nil }
	var captured repository.NearbyQuery
	users.findNearbyCandidatesFn = func(_ context.Context, q repository.NearbyQuery) ([]models.User, error) {
		captured = q
		return nil, nil
	}
	svc := NewDiscoveryService(users, noopConnRepo())
	ctx := context.Background()

	_, err := svc.NearbyLearners(ctx, 1, 0, 20, 0)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, captured.RadiusKm, 1e-9, "stored preference when no explicit radius")

	_, err = svc.NearbyLearners(ctx, 1, 12.5, 20, 0)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, captured.RadiusKm, 1e-9, "explicit radius wins")
}

func TestNearbyLearnersExclusionSet(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return locatedUser(1, 10.8, 106.7), nil
	}
	var captured repository.NearbyQuery
	users.findNearbyCandidatesFn = func(_ context.Context, q repository.NearbyQuery) ([]models.User, error) {
		captured = q
		return nil, nil
	}

	conns := noopConnRepo()
	conns.partnerIDsFn = func(context.Context, uint) ([]uint, error) { return []uint{2, 3}, nil }
	conns.requestCounterpartIDsFn = func(context.Context, uint) ([]uint, error) {
		// Any state counts, including rejected and blocked; overlap with
		// partners is deduplicated.
		return []uint{3, 4, 5}, nil
	}
	svc := NewDiscoveryService(users, conns)

	_, err := svc.NearbyLearners(context.Background(), 1, 5, 20, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{1, 2, 3, 4, 5}, captured.ExcludeIDs, "self plus partners plus counterparts")
}

func TestNearbyLearnersDistanceFilterAndOrder(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return locatedUser(1, 10.8000, 106.7000), nil
	}
	users.findNearbyCandidatesFn = func(context.Context, repository.NearbyQuery) ([]models.User, error) {
		// The bounding box over-approximates: the corner candidate is
		// inside the box but outside the circle.
		return []models.User{
			*locatedUser(20, 10.8300, 106.7000), // ~3.3km north
			*locatedUser(30, 10.8050, 106.7050), // ~0.8km
			*locatedUser(40, 10.8420, 106.7430), // box corner, ~6.6km
		}, nil
	}
	svc := NewDiscoveryService(users, noopConnRepo())

	results, err := svc.NearbyLearners(context.Background(), 1, 5, 20, 0)
	require.NoError(t, err)
	require.Len(t, results, 2, "corner candidate is cut by the haversine filter")

	assert.Equal(t, uint(30), results[0].User.ID, "ascending distance")
	assert.Equal(t, uint(20), results[1].User.ID)
	assert.Less(t, results[0].DistanceKm, results[1].DistanceKm)

	// Reported distance is rounded to 2 decimals.
	assert.InDelta(t, results[0].DistanceKm, roundKm(results[0].DistanceKm), 1e-9)
}

func TestNearbyLearnersPaginationAfterFilter(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return locatedUser(1, 10.8000, 106.7000), nil
	}
	users.findNearbyCandidatesFn = func(context.Context, repository.NearbyQuery) ([]models.User, error) {
		return []models.User{
			*locatedUser(20, 10.8010, 106.7000),
			*locatedUser(30, 10.8020, 106.7000),
			*locatedUser(40, 10.8030, 106.7000),
		}, nil
	}
	svc := NewDiscoveryService(users, noopConnRepo())
	ctx := context.Background()

	first, err := svc.NearbyLearners(ctx, 1, 5, 2, 0)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, uint(20), first[0].User.ID)

	second, err := svc.NearbyLearners(ctx, 1, 5, 2, 2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, uint(40), second[0].User.ID)

	past, err := svc.NearbyLearners(ctx, 1, 5, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, past)
}
