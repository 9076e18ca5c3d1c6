package repository

import (
	"context"

	"studymesh/internal/models"

	"gorm.io/gorm"
)

// LocationRepository defines persistence operations for location history.
type LocationRepository interface {
	Create(ctx context.Context, entry *models.LocationHistory) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.LocationHistory, error)
	LatestForUser(ctx context.Context, userID uint) (*models.LocationHistory, error)
	DeleteOlderThan(ctx context.Context, userID uint, keep int) error
}

type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository returns a new LocationRepository implementation.
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, entry *models.LocationHistory) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *locationRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.LocationHistory, error) {
	var entries []models.LocationHistory
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *locationRepository) LatestForUser(ctx context.Context, userID uint) (*models.LocationHistory, error) {
	var entry models.LocationHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &entry, nil
}

// DeleteOlderThan trims the trail to the `keep` most recent entries.
func (r *locationRepository) DeleteOlderThan(ctx context.Context, userID uint, keep int) error {
	sub := r.db.
		Model(&models.LocationHistory{}).
		Select("id").
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		Limit(keep)

	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id NOT IN (?)", userID, sub).
		Delete(&models.LocationHistory{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
