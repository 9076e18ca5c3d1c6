package models

import "time"

// LocationHistory is one entry in a user's rolling trail of prior points.
// Entries are appended by the location service when the user moved far
// enough or enough time passed since the last entry; intermediate updates
// only touch the user's current point.
type LocationHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index:idx_location_user_time" json:"user_id"`
	Latitude   float64   `gorm:"not null" json:"latitude"`
	Longitude  float64   `gorm:"not null" json:"longitude"`
	Accuracy   *float64  `json:"accuracy,omitempty"`
	RecordedAt time.Time `gorm:"index:idx_location_user_time;index" json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for GORM
func (LocationHistory) TableName() string {
	return "location_history"
}
