package service

import (
	"context"
	"time"

	"studymesh/internal/models"
	"studymesh/internal/repository"
)

const (
	// historyDistanceKm is the minimum movement before a new history entry
	// is written: 100 meters.
	historyDistanceKm = 0.1
	// historyInterval is the minimum quiet period that forces a new history
	// entry even without movement.
	historyInterval = 15 * time.Minute
	// historyKeepEntries bounds the per-user trail length.
	historyKeepEntries = 500
)

// LocationService updates user locations and maintains the history trail.
type LocationService struct {
	userRepo     repository.UserRepository
	locationRepo repository.LocationRepository
	now          func() time.Time
}

// NewLocationService returns a new LocationService.
func NewLocationService(userRepo repository.UserRepository, locationRepo repository.LocationRepository) *LocationService {
	return &LocationService{
		userRepo:     userRepo,
		locationRepo: locationRepo,
		now:          time.Now,
	}
}

// shouldRecordHistory applies the movement/staleness threshold: record when
// the user moved at least 100 m since the last stored point, or the last
// point is older than 15 minutes, or there is no prior point at all.
func (s *LocationService) shouldRecordHistory(user *models.User, lat, lng float64, at time.Time) bool {
	if !user.HasLocation() || user.LastLocatedAt == nil {
		return true
	}
	if at.Sub(*user.LastLocatedAt) >= historyInterval {
		return true
	}
	moved := models.HaversineKm(*user.LastLatitude, *user.LastLongitude, lat, lng)
	return moved >= historyDistanceKm
}

// UpdateLocation stores the user's current point and appends to the history
// trail when the threshold rule fires. The current point always updates;
// only the trail write is conditional.
func (s *LocationService) UpdateLocation(ctx context.Context, userID uint, lat, lng float64, accuracy *float64) (*models.User, error) {
	if !models.ValidCoordinates(lat, lng) {
		return nil, models.NewValidationError("Coordinates out of range")
	}

	// The threshold decision reads the authoritative row, not the cache:
	// a lost invalidation must not steer the next history write.
	user, err := s.userRepo.GetByIDFresh(ctx, userID)
	if err != nil {
		return nil, err
	}

	at := s.now()
	record := s.shouldRecordHistory(user, lat, lng, at)

	if err := s.userRepo.UpdateLocation(ctx, userID, lat, lng, at); err != nil {
		return nil, err
	}

	if record {
		entry := &models.LocationHistory{
			UserID:     userID,
			Latitude:   lat,
			Longitude:  lng,
			Accuracy:   accuracy,
			RecordedAt: at,
		}
		if err := s.locationRepo.Create(ctx, entry); err != nil {
			return nil, err
		}
		// Best-effort trim; an over-long trail is not an error.
		_ = s.locationRepo.DeleteOlderThan(ctx, userID, historyKeepEntries)
	}

	user.LastLatitude = &lat
	user.LastLongitude = &lng
	user.LastLocatedAt = &at
	return user, nil
}

// GetHistory lists the user's location trail, newest first.
func (s *LocationService) GetHistory(ctx context.Context, userID uint, limit, offset int) ([]models.LocationHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.locationRepo.ListByUser(ctx, userID, limit, offset)
}
