package repository

import (
	"context"
	"errors"
	"time"

	"studymesh/internal/cache"
	"studymesh/internal/models"

	"gorm.io/gorm"
)

// NearbyQuery bounds the candidate scan for proximity discovery.
// The repository applies a coarse bounding-box prefilter; the service layer
// applies the precise geodesic cut on the survivors.
type NearbyQuery struct {
	Latitude   float64
	Longitude  float64
	RadiusKm   float64
	ExcludeIDs []uint
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDFresh(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdateLocation(ctx context.Context, id uint, lat, lng float64, at time.Time) error
	TouchLastActive(ctx context.Context, id uint, at time.Time) error
	FindNearbyCandidates(ctx context.Context, q NearbyQuery) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.CacheAside(ctx, key, cache.UserTTL, &user, func() (interface{}, error) {
		u, err := r.GetByIDFresh(ctx, id)
		if err != nil {
			return nil, err
		}
		return *u, nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDFresh reads the user from the database, bypassing the cache.
// Write-path decisions (e.g. the location history threshold) must see the
// authoritative row, never a stale cache entry.
func (r *userRepository) GetByIDFresh(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", email)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Username or email already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) UpdateLocation(ctx context.Context, id uint, lat, lng float64, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_latitude":   lat,
			"last_longitude":  lng,
			"last_located_at": at,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) TouchLastActive(ctx context.Context, id uint, at time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_active_at", at).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// FindNearbyCandidates returns active located users inside a bounding box
// around the query point, minus the excluded IDs. The box over-approximates
// the circle; callers must still apply the exact distance filter.
func (r *userRepository) FindNearbyCandidates(ctx context.Context, q NearbyQuery) ([]models.User, error) {
	latDelta, lngDelta := models.BoundingBoxDeltas(q.Latitude, q.RadiusKm)

	query := r.db.WithContext(ctx).
		Where("status = ?", models.UserStatusActive).
		Where("last_latitude IS NOT NULL AND last_longitude IS NOT NULL").
		Where("last_latitude BETWEEN ? AND ?", q.Latitude-latDelta, q.Latitude+latDelta).
		Where("last_longitude BETWEEN ? AND ?", q.Longitude-lngDelta, q.Longitude+lngDelta)

	if len(q.ExcludeIDs) > 0 {
		query = query.Where("id NOT IN ?", q.ExcludeIDs)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
