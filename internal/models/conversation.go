package models

import "time"

// ConversationType distinguishes the direct channels spawned by accepted
// connections from group study channels.
type ConversationType string

const (
	// ConversationTypeDirect is a 1:1 channel between connected users.
	ConversationTypeDirect ConversationType = "direct"
	// ConversationTypeGroup is a study-group channel.
	ConversationTypeGroup ConversationType = "group"
)

// Conversation is the chat channel entity. For direct channels the
// connection_id back-reference is unique, which makes EnsureChannel
// idempotent: repeated provisioning for the same connection resolves to
// the same row.
type Conversation struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	Type         ConversationType `gorm:"type:varchar(20);default:'direct'" json:"type"`
	Name         string           `gorm:"size:120" json:"name"`
	ConnectionID *uint            `gorm:"uniqueIndex" json:"connection_id,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
}

// TableName specifies the table name for GORM
func (Conversation) TableName() string {
	return "conversations"
}

// ConversationParticipant links a user to a conversation.
type ConversationParticipant struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;uniqueIndex:idx_conversation_user" json:"conversation_id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_conversation_user" json:"user_id"`
	JoinedAt       time.Time `json:"joined_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for GORM
func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}
