package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"studymesh/internal/cache"
	"studymesh/internal/middleware"
	"studymesh/internal/models"
	"studymesh/internal/repository"
)

// inventoryCap bounds the unpaginated list held in each cache entry.
// Pagination and state filters are applied on top of the cached list.
const inventoryCap = 200

// ChannelProvisioner creates the chat channel for a realized connection.
// Narrow on purpose so orchestrator tests can stub it.
type ChannelProvisioner interface {
	EnsureChannel(ctx context.Context, conn *models.Connection) (*models.Conversation, error)
}

// RequestDirection describes one direction's request row between two users.
type RequestDirection struct {
	Present   bool                `json:"present"`
	State     models.RequestState `json:"state,omitempty"`
	RequestID uint                `json:"request_id,omitempty"`
}

// ConnectionStatus summarizes the relationship between two users. Crossed
// requests coexist as independent rows, so Sent and Received report both
// directions with their states; Status is the one-word summary with
// blocked > connected > pending_received > pending_sent > none priority.
type ConnectionStatus struct {
	Status     string           `json:"status"` // none | pending_sent | pending_received | connected | blocked
	RequestID  uint             `json:"request_id,omitempty"`
	Connected  bool             `json:"connected"`
	CanMessage bool             `json:"can_message"`
	Sent       RequestDirection `json:"sent"`
	Received   RequestDirection `json:"received"`
}

// ConnectionStatistics aggregates a user's relationship counts.
type ConnectionStatistics struct {
	ConnectionCount int64 `json:"connection_count"`
	PendingSent     int64 `json:"pending_sent"`
	PendingReceived int64 `json:"pending_received"`
	TotalRequests   int64 `json:"total_requests"`
}

// ConnectionService orchestrates the connection-request lifecycle: state
// transitions, connection realization, channel provisioning, and cache
// invalidation.
type ConnectionService struct {
	connRepo    repository.ConnectionRepository
	userRepo    repository.UserRepository
	provisioner ChannelProvisioner
}

// NewConnectionService returns a new ConnectionService.
func NewConnectionService(connRepo repository.ConnectionRepository, userRepo repository.UserRepository, provisioner ChannelProvisioner) *ConnectionService {
	return &ConnectionService{
		connRepo:    connRepo,
		userRepo:    userRepo,
		provisioner: provisioner,
	}
}

func (s *ConnectionService) invalidateBoth(ctx context.Context, userID1, userID2 uint) {
	cache.InvalidateUserConnections(ctx, userID1)
	cache.InvalidateUserConnections(ctx, userID2)
}

// SendRequest creates a pending request from sender to receiver.
// Idempotency rules for an existing row on the same ordered pair:
// pending/accepted/blocked return the row unchanged; rejected resurrects
// it to pending with the new message. The unique ordered-pair constraint
// is the correctness boundary; a conflict on create means a concurrent
// send won, so the rules are re-applied to the winner's row.
func (s *ConnectionService) SendRequest(ctx context.Context, senderID, receiverID uint, message string) (*models.ConnectionRequest, error) {
	if senderID == receiverID {
		return nil, models.NewValidationError("Cannot send connection request to yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	existing, err := s.connRepo.GetRequestBetween(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.resolveExistingRequest(ctx, existing, message)
	}

	req := &models.ConnectionRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		State:      models.RequestStatePending,
		Message:    message,
	}
	if err := s.connRepo.CreateRequest(ctx, req); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "CONFLICT" {
			// Concurrent send on the same pair won the insert.
			winner, ferr := s.connRepo.GetRequestBetween(ctx, senderID, receiverID)
			if ferr != nil {
				return nil, ferr
			}
			if winner == nil {
				return nil, err
			}
			return s.resolveExistingRequest(ctx, winner, message)
		}
		return nil, err
	}

	s.invalidateBoth(ctx, senderID, receiverID)
	return req, nil
}

func (s *ConnectionService) resolveExistingRequest(ctx context.Context, existing *models.ConnectionRequest, message string) (*models.ConnectionRequest, error) {
	if existing.State != models.RequestStateRejected {
		return existing, nil
	}

	if err := existing.Reopen(message); err != nil {
		return nil, err
	}
	if err := s.connRepo.SaveRequest(ctx, existing); err != nil {
		return nil, err
	}
	s.invalidateBoth(ctx, existing.SenderID, existing.ReceiverID)
	return existing, nil
}

// AcceptRequest flips a pending request to accepted and realizes the
// connection. The state flip and the connection get-or-create share one
// transaction; channel provisioning happens after commit, best-effort.
func (s *ConnectionService) AcceptRequest(ctx context.Context, userID, requestID uint) (*models.ConnectionRequest, error) {
	req, err := s.connRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ReceiverID != userID {
		return nil, models.NewForbiddenError("Only the receiver can accept a connection request")
	}

	var conn *models.Connection
	err = s.connRepo.Transaction(ctx, func(txRepo repository.ConnectionRepository) error {
		if err := req.Accept(time.Now()); err != nil {
			return err
		}
		if err := txRepo.SaveRequest(ctx, req); err != nil {
			return err
		}

		var txErr error
		conn, txErr = txRepo.GetOrCreateConnection(ctx, models.NewConnectionFromRequest(req))
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.provisionChannel(ctx, conn)
	s.invalidateBoth(ctx, req.SenderID, req.ReceiverID)
	return req, nil
}

// provisionChannel asks the chat collaborator for the connection's channel.
// Failures are logged and counted, never surfaced: the accept already
// committed and a later accept or reconcile can retry.
func (s *ConnectionService) provisionChannel(ctx context.Context, conn *models.Connection) {
	if s.provisioner == nil || conn == nil {
		return
	}
	if _, err := s.provisioner.EnsureChannel(ctx, conn); err != nil {
		depErr := models.NewDependencyUnavailableError("chat channel provisioning", err)
		middleware.Logger.WarnContext(ctx, "channel provisioning failed",
			slog.String("code", depErr.Code),
			slog.Any("connection_id", conn.ID),
			slog.String("error", err.Error()),
		)
		middleware.ChannelProvisioningFailures.Inc()
	}
}

// RejectRequest flips a pending request to rejected. Receiver-only.
func (s *ConnectionService) RejectRequest(ctx context.Context, userID, requestID uint) (*models.ConnectionRequest, error) {
	req, err := s.connRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ReceiverID != userID {
		return nil, models.NewForbiddenError("Only the receiver can reject a connection request")
	}

	if err := req.Reject(time.Now()); err != nil {
		return nil, err
	}
	if err := s.connRepo.SaveRequest(ctx, req); err != nil {
		return nil, err
	}

	s.invalidateBoth(ctx, req.SenderID, req.ReceiverID)
	return req, nil
}

// BlockRequest flips a request to blocked. Either participant may block.
// Blocking an accepted request also tears down the realized connection.
func (s *ConnectionService) BlockRequest(ctx context.Context, userID, requestID uint) (*models.ConnectionRequest, error) {
	req, err := s.connRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Involves(userID) {
		return nil, models.NewForbiddenError("Only a participant can block a connection request")
	}

	wasAccepted := req.State == models.RequestStateAccepted
	if err := req.Block(); err != nil {
		return nil, err
	}

	err = s.connRepo.Transaction(ctx, func(txRepo repository.ConnectionRepository) error {
		if err := txRepo.SaveRequest(ctx, req); err != nil {
			return err
		}
		if wasAccepted {
			return txRepo.DeleteConnectionBetween(ctx, req.SenderID, req.ReceiverID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBoth(ctx, req.SenderID, req.ReceiverID)
	return req, nil
}

// CancelRequest deletes a pending request. Sender-only; cancel is a
// deletion, not a lifecycle transition, so the pair may be re-requested.
func (s *ConnectionService) CancelRequest(ctx context.Context, userID, requestID uint) error {
	req, err := s.connRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.SenderID != userID {
		return models.NewForbiddenError("Only the sender can cancel a connection request")
	}
	if req.State != models.RequestStatePending {
		return models.NewValidationError("Only pending requests can be cancelled")
	}

	if err := s.connRepo.DeleteRequest(ctx, requestID); err != nil {
		return err
	}

	s.invalidateBoth(ctx, req.SenderID, req.ReceiverID)
	return nil
}

func filterRequestsPage(all []models.ConnectionRequest, state models.RequestState, limit, offset int) []models.ConnectionRequest {
	filtered := all
	if state != "" {
		filtered = make([]models.ConnectionRequest, 0, len(all))
		for _, r := range all {
			if r.State == state {
				filtered = append(filtered, r)
			}
		}
	}
	return pageOf(filtered, limit, offset)
}

func pageOf[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// GetSentRequests lists requests sent by the user, newest first. The full
// (capped) list is cached; the state filter and page are applied on top.
func (s *ConnectionService) GetSentRequests(ctx context.Context, userID uint, state models.RequestState, limit, offset int) ([]models.ConnectionRequest, error) {
	var all []models.ConnectionRequest
	err := cache.CacheAside(ctx, cache.SentRequestsKey(userID), cache.RequestsTTL, &all, func() (interface{}, error) {
		return s.connRepo.ListSentRequests(ctx, userID, "", inventoryCap, 0)
	})
	if err != nil {
		return nil, err
	}
	return filterRequestsPage(all, state, limit, offset), nil
}

// GetReceivedRequests lists requests received by the user, newest first.
func (s *ConnectionService) GetReceivedRequests(ctx context.Context, userID uint, state models.RequestState, limit, offset int) ([]models.ConnectionRequest, error) {
	var all []models.ConnectionRequest
	err := cache.CacheAside(ctx, cache.ReceivedRequestsKey(userID), cache.RequestsTTL, &all, func() (interface{}, error) {
		return s.connRepo.ListReceivedRequests(ctx, userID, "", inventoryCap, 0)
	})
	if err != nil {
		return nil, err
	}
	return filterRequestsPage(all, state, limit, offset), nil
}

// GetConnections lists the user's realized connections, newest first.
func (s *ConnectionService) GetConnections(ctx context.Context, userID uint, limit, offset int) ([]models.Connection, error) {
	var all []models.Connection
	err := cache.CacheAside(ctx, cache.AcceptedConnectionsKey(userID), cache.ConnectionsTTL, &all, func() (interface{}, error) {
		return s.connRepo.ListConnections(ctx, userID, inventoryCap, 0)
	})
	if err != nil {
		return nil, err
	}
	return pageOf(all, limit, offset), nil
}

// GetConnectionStatus reports the relationship between userID and target,
// considering request rows in both directions. Blocked dominates, then
// connected, then pending; rows in only the rejected state read as none.
func (s *ConnectionService) GetConnectionStatus(ctx context.Context, userID, targetID uint) (*ConnectionStatus, error) {
	if userID == targetID {
		return nil, models.NewValidationError("Cannot query connection status with yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	reqs, err := s.connRepo.GetRequestsBetweenUsers(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}

	status := &ConnectionStatus{Status: "none"}
	var blocked, accepted, pendingSent, pendingReceived *models.ConnectionRequest

	for i := range reqs {
		r := &reqs[i]
		dir := RequestDirection{Present: true, State: r.State, RequestID: r.ID}
		if r.SenderID == userID {
			status.Sent = dir
		} else {
			status.Received = dir
		}

		switch r.State {
		case models.RequestStateBlocked:
			blocked = r
		case models.RequestStateAccepted:
			accepted = r
		case models.RequestStatePending:
			if r.SenderID == userID {
				pendingSent = r
			} else {
				pendingReceived = r
			}
		}
	}

	// A received pending request is the actionable one when crossed
	// requests coexist; both directions stay visible above either way.
	switch {
	case blocked != nil:
		status.Status = "blocked"
		status.RequestID = blocked.ID
	case accepted != nil:
		status.Status = "connected"
		status.RequestID = accepted.ID
		status.Connected = accepted.IsConnected()
		status.CanMessage = accepted.CanMessage()
	case pendingReceived != nil:
		status.Status = "pending_received"
		status.RequestID = pendingReceived.ID
	case pendingSent != nil:
		status.Status = "pending_sent"
		status.RequestID = pendingSent.ID
	}
	return status, nil
}

// GetStatistics returns the user's relationship counts. The connection
// count is cache-aside; pending counts are always read fresh.
func (s *ConnectionService) GetStatistics(ctx context.Context, userID uint) (*ConnectionStatistics, error) {
	var count int64
	err := cache.CacheAside(ctx, cache.ConnectionCountKey(userID), cache.ConnectionsTTL, &count, func() (interface{}, error) {
		return s.connRepo.CountConnections(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	pendingSent, err := s.connRepo.CountPendingSent(ctx, userID)
	if err != nil {
		return nil, err
	}
	pendingReceived, err := s.connRepo.CountPendingReceived(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ConnectionStatistics{
		ConnectionCount: count,
		PendingSent:     pendingSent,
		PendingReceived: pendingReceived,
		TotalRequests:   pendingSent + pendingReceived,
	}, nil
}

// Reconcile realizes the connection row for every accepted request that is
// missing one. Returns the number of rows created.
func (s *ConnectionService) Reconcile(ctx context.Context) (int, error) {
	orphans, err := s.connRepo.ListAcceptedRequestsMissingConnections(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range orphans {
		req := &orphans[i]
		conn, err := s.connRepo.GetOrCreateConnection(ctx, models.NewConnectionFromRequest(req))
		if err != nil {
			return created, err
		}
		created++
		s.provisionChannel(ctx, conn)
		s.invalidateBoth(ctx, req.SenderID, req.ReceiverID)
	}
	return created, nil
}
