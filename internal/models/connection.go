package models

import (
	"time"

	"gorm.io/gorm"
)

// Connection is the symmetric, denormalized record of an accepted
// relationship, kept for efficient bidirectional lookup. It is strictly
// derived from accepted ConnectionRequests and can be rebuilt from them.
//
// Canonical ordering: user_a_id < user_b_id always holds, so an (A,B)
// pair has exactly one possible row regardless of request direction.
type Connection struct {
	ID                  uint  `gorm:"primaryKey" json:"id"`
	UserAID             uint  `gorm:"not null;uniqueIndex:idx_connection_pair;index" json:"user_a_id"`
	UserBID             uint  `gorm:"not null;uniqueIndex:idx_connection_pair;index" json:"user_b_id"`
	ConnectionRequestID *uint `json:"connection_request_id,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Relationships
	UserA             User               `gorm:"foreignKey:UserAID" json:"user_a,omitempty"`
	UserB             User               `gorm:"foreignKey:UserBID" json:"user_b,omitempty"`
	ConnectionRequest *ConnectionRequest `gorm:"foreignKey:ConnectionRequestID" json:"connection_request,omitempty"`
}

// TableName specifies the table name for GORM
func (Connection) TableName() string {
	return "connections"
}

// BeforeSave normalizes the pair into canonical order so mirrored rows
// cannot exist even if a caller bypasses NewConnectionFromRequest.
func (c *Connection) BeforeSave(_ *gorm.DB) error {
	if c.UserAID == c.UserBID {
		return NewValidationError("Connection requires two distinct users")
	}
	if c.UserAID > c.UserBID {
		c.UserAID, c.UserBID = c.UserBID, c.UserAID
	}
	return nil
}

// NewConnectionFromRequest builds the canonical Connection row for an
// accepted request, applying the user_a < user_b ordering rule.
func NewConnectionFromRequest(r *ConnectionRequest) *Connection {
	a, b := r.SenderID, r.ReceiverID
	if a > b {
		a, b = b, a
	}
	id := r.ID
	return &Connection{
		UserAID:             a,
		UserBID:             b,
		ConnectionRequestID: &id,
	}
}

// PartnerOf returns the other participant's ID.
func (c *Connection) PartnerOf(userID uint) uint {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

// Involves reports whether the given user is a participant.
func (c *Connection) Involves(userID uint) bool {
	return c.UserAID == userID || c.UserBID == userID
}
