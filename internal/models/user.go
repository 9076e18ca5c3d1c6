// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// UserStatus represents the account status of a user.
type UserStatus string

const (
	// UserStatusActive indicates a regular, discoverable account.
	UserStatusActive UserStatus = "active"
	// UserStatusSuspended indicates an account hidden from discovery.
	UserStatusSuspended UserStatus = "suspended"
	// UserStatusDeactivated indicates a self-deactivated account.
	UserStatusDeactivated UserStatus = "deactivated"
)

// DefaultLearningRadiusKm is the discovery radius used when a user has no
// stored preference.
const DefaultLearningRadiusKm = 5.0

// User represents a learner account with profile and location facts.
// The current point is stored as nullable lat/lng columns; a rolling trail
// of prior points lives in LocationHistory.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`

	FullName string `gorm:"size:120" json:"full_name"`
	Bio      string `gorm:"type:text" json:"bio"`
	School   string `gorm:"size:120" json:"school"`
	Major    string `gorm:"size:120" json:"major"`
	Year     int    `json:"year"`

	Status           UserStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`
	LearningRadiusKm float64    `gorm:"default:5" json:"learning_radius_km"`
	LastLatitude     *float64   `json:"latitude,omitempty"`
	LastLongitude    *float64   `json:"longitude,omitempty"`
	LastLocatedAt    *time.Time `json:"last_located_at,omitempty"`
	LastActiveAt     *time.Time `gorm:"index" json:"last_active_at,omitempty"`
	IsAdmin          bool       `gorm:"default:false" json:"is_admin"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// HasLocation reports whether the user has a stored current point.
// Discovery cannot run without one.
func (u *User) HasLocation() bool {
	return u.LastLatitude != nil && u.LastLongitude != nil
}

// EffectiveRadiusKm returns the user's stored radius preference, falling
// back to the platform default when unset.
func (u *User) EffectiveRadiusKm() float64 {
	if u.LearningRadiusKm > 0 {
		return u.LearningRadiusKm
	}
	return DefaultLearningRadiusKm
}

// IsDiscoverable reports whether the user may appear in proximity results.
func (u *User) IsDiscoverable() bool {
	return u.Status == UserStatusActive && u.HasLocation()
}
