package models

import (
	"time"

	"gorm.io/gorm"
)

// RequestState represents the lifecycle state of a connection request.
type RequestState string

const (
	// RequestStatePending indicates a request awaiting the receiver's decision.
	RequestStatePending RequestState = "pending"
	// RequestStateAccepted indicates a realized connection.
	RequestStateAccepted RequestState = "accepted"
	// RequestStateRejected indicates the receiver declined. Terminal, but the
	// sender may open a fresh pending request afterwards (re-request policy).
	RequestStateRejected RequestState = "rejected"
	// RequestStateBlocked indicates either participant blocked the other. Terminal.
	RequestStateBlocked RequestState = "blocked"
)

// stateTransitions is the authoritative transition table. Absent entries
// mean no outgoing transitions.
var stateTransitions = map[RequestState][]RequestState{
	RequestStatePending:  {RequestStateAccepted, RequestStateRejected, RequestStateBlocked},
	RequestStateAccepted: {RequestStateBlocked},
	RequestStateRejected: {},
	RequestStateBlocked:  {},
}

// ConnectionRequest is a directed proposal from one user to another.
// Uniqueness is enforced on the ordered (sender, receiver) pair, so crossed
// requests (A→B and B→A) may coexist as independently stateful rows.
type ConnectionRequest struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	SenderID   uint         `gorm:"not null;uniqueIndex:idx_conn_req_pair;index:idx_conn_req_sender_state" json:"sender_id"`
	ReceiverID uint         `gorm:"not null;uniqueIndex:idx_conn_req_pair;index:idx_conn_req_receiver_state" json:"receiver_id"`
	State      RequestState `gorm:"type:varchar(20);default:'pending';index:idx_conn_req_sender_state;index:idx_conn_req_receiver_state" json:"state"`
	Message    string       `gorm:"type:text" json:"message"`

	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	RejectedAt *time.Time `json:"rejected_at,omitempty"`

	// Relationships
	Sender   User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

// TableName specifies the table name for GORM
func (ConnectionRequest) TableName() string {
	return "connection_requests"
}

// BeforeSave rejects self-requests before they ever reach the store.
func (r *ConnectionRequest) BeforeSave(_ *gorm.DB) error {
	if r.SenderID == r.ReceiverID {
		return NewValidationError("Cannot send connection request to yourself")
	}
	return nil
}

// CanTransition reports whether the transition table permits moving to target.
func (r *ConnectionRequest) CanTransition(target RequestState) bool {
	for _, allowed := range stateTransitions[r.State] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (r *ConnectionRequest) transition(target RequestState) error {
	if !r.CanTransition(target) {
		return NewIllegalTransitionError(r.State, target)
	}
	r.State = target
	return nil
}

// Accept flips the request to accepted and stamps accepted_at. It mutates
// the in-memory row only; the orchestrator persists it and realizes the
// Connection record inside the same transaction.
func (r *ConnectionRequest) Accept(now time.Time) error {
	if err := r.transition(RequestStateAccepted); err != nil {
		return err
	}
	r.AcceptedAt = &now
	return nil
}

// Reject flips the request to rejected and stamps rejected_at.
func (r *ConnectionRequest) Reject(now time.Time) error {
	if err := r.transition(RequestStateRejected); err != nil {
		return err
	}
	r.RejectedAt = &now
	return nil
}

// Block flips the request to blocked. Allowed from pending and accepted.
func (r *ConnectionRequest) Block() error {
	return r.transition(RequestStateBlocked)
}

// Reopen resurrects a rejected request to pending with a new message.
// Re-request after rejection is a deliberate policy; any other source
// state is an illegal transition.
func (r *ConnectionRequest) Reopen(message string) error {
	if r.State != RequestStateRejected {
		return NewIllegalTransitionError(r.State, RequestStatePending)
	}
	r.State = RequestStatePending
	r.Message = message
	r.RejectedAt = nil
	return nil
}

// IsConnected reports whether this request realizes a connection.
func (r *ConnectionRequest) IsConnected() bool {
	return r.State == RequestStateAccepted
}

// CanMessage reports whether the participants may chat through the channel
// spawned by this request.
func (r *ConnectionRequest) CanMessage() bool {
	return r.State == RequestStateAccepted
}

// Involves reports whether the given user is a participant.
func (r *ConnectionRequest) Involves(userID uint) bool {
	return r.SenderID == userID || r.ReceiverID == userID
}

// CounterpartOf returns the other participant's ID.
func (r *ConnectionRequest) CounterpartOf(userID uint) uint {
	if r.SenderID == userID {
		return r.ReceiverID
	}
	return r.SenderID
}
