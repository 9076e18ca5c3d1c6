// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"studymesh/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConnectionRepository defines persistence operations for connection requests
// and realized connections.
type ConnectionRepository interface {
	CreateRequest(ctx context.Context, req *models.ConnectionRequest) error
	GetRequestByID(ctx context.Context, id uint) (*models.ConnectionRequest, error)
	GetRequestBetween(ctx context.Context, senderID, receiverID uint) (*models.ConnectionRequest, error)
	GetRequestsBetweenUsers(ctx context.Context, userID1, userID2 uint) ([]models.ConnectionRequest, error)
	SaveRequest(ctx context.Context, req *models.ConnectionRequest) error
	DeleteRequest(ctx context.Context, id uint) error
	ListSentRequests(ctx context.Context, userID uint, state models.RequestState, limit, offset int) ([]models.ConnectionRequest, error)
	ListReceivedRequests(ctx context.Context, userID uint, state models.RequestState, limit, offset int) ([]models.ConnectionRequest, error)
	CountPendingReceived(ctx context.Context, userID uint) (int64, error)
	CountPendingSent(ctx context.Context, userID uint) (int64, error)

	GetOrCreateConnection(ctx context.Context, conn *models.Connection) (*models.Connection, error)
	GetConnectionBetween(ctx context.Context, userID1, userID2 uint) (*models.Connection, error)
	ListConnections(ctx context.Context, userID uint, limit, offset int) ([]models.Connection, error)
	CountConnections(ctx context.Context, userID uint) (int64, error)
	DeleteConnectionBetween(ctx context.Context, userID1, userID2 uint) error

	PartnerIDs(ctx context.Context, userID uint) ([]uint, error)
	RequestCounterpartIDs(ctx context.Context, userID uint) ([]uint, error)

	ListAcceptedRequestsMissingConnections(ctx context.Context) ([]models.ConnectionRequest, error)

	Transaction(ctx context.Context, fn func(ConnectionRepository) error) error
}

type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository returns a new ConnectionRepository implementation.
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

// isUniqueViolation recognizes unique constraint failures across postgres and
// the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

func (r *connectionRepository) CreateRequest(ctx context.Context, req *models.ConnectionRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		if isUniqueViolation(err) {
			return models.NewConflictError("A connection request between these users already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *connectionRepository) GetRequestByID(ctx context.Context, id uint) (*models.ConnectionRequest, error) {
	var req models.ConnectionRequest
	if err := r.db.WithContext(ctx).Preload("Sender").Preload("Receiver").First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Connection request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

// GetRequestBetween finds the request for the ordered (sender, receiver)
// pair. Returns nil without error when no such row exists.
func (r *connectionRepository) GetRequestBetween(ctx context.Context, senderID, receiverID uint) (*models.ConnectionRequest, error) {
	var req models.ConnectionRequest
	if err := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

// GetRequestsBetweenUsers returns requests in both directions between the
// users. Crossed requests are independent rows, so up to two may exist.
func (r *connectionRepository) GetRequestsBetweenUsers(ctx context.Context, userID1, userID2 uint) ([]models.ConnectionRequest, error) {
	var reqs []models.ConnectionRequest
	if err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID1, userID2, userID2, userID1).
		Order("created_at ASC").
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *connectionRepository) SaveRequest(ctx context.Context, req *models.ConnectionRequest) error {
	if err := r.db.WithContext(ctx).Save(req).Error; err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *connectionRepository) DeleteRequest(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.ConnectionRequest{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *connectionRepository) ListSentRequests(ctx context.Context, userID uint, state models.RequestState, limit, offset int) ([]models.ConnectionRequest, error) {
	var reqs []models.ConnectionRequest
	q := r.db.WithContext(ctx).
		Where("sender_id = ?", userID).
		Preload("Receiver")
	if state != "" {
		q = q.Where("state = ?", state)
	}
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *connectionRepository) ListReceivedRequests(ctx context.Context, userID uint, state models.RequestState, limit, offset int) ([]models.ConnectionRequest, error) {
	var reqs []models.ConnectionRequest
	q := r.db.WithContext(ctx).
		Where("receiver_id = ?", userID).
		Preload("Sender")
	if state != "" {
		q = q.Where("state = ?", state)
	}
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *connectionRepository) CountPendingReceived(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ConnectionRequest{}).
		Where("receiver_id = ? AND state = ?", userID, models.RequestStatePending).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *connectionRepository) CountPendingSent(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ConnectionRequest{}).
		Where("sender_id = ? AND state = ?", userID, models.RequestStatePending).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// GetOrCreateConnection inserts the connection if the canonical pair is new,
// otherwise returns the existing row. Safe under concurrent accepts of
// crossed requests.
func (r *connectionRepository) GetOrCreateConnection(ctx context.Context, conn *models.Connection) (*models.Connection, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(conn)
	if res.Error != nil {
		var appErr *models.AppError
		if errors.As(res.Error, &appErr) {
			return nil, appErr
		}
		// Drivers without ON CONFLICT support surface the race as a
		// unique violation instead; fall through to the re-read.
		if !isUniqueViolation(res.Error) {
			return nil, models.NewInternalError(res.Error)
		}
	}

	if res.Error == nil && res.RowsAffected > 0 {
		return conn, nil
	}

	existing, err := r.GetConnectionBetween(ctx, conn.UserAID, conn.UserBID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, models.NewInternalError(errors.New("connection insert reported conflict but no row found"))
	}
	return existing, nil
}

// GetConnectionBetween finds the realized connection for the pair in either
// order. Returns nil without error when none exists.
func (r *connectionRepository) GetConnectionBetween(ctx context.Context, userID1, userID2 uint) (*models.Connection, error) {
	a, b := userID1, userID2
	if a > b {
		a, b = b, a
	}

	var conn models.Connection
	if err := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &conn, nil
}

func (r *connectionRepository) ListConnections(ctx context.Context, userID uint, limit, offset int) ([]models.Connection, error) {
	var conns []models.Connection
	if err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Preload("UserA").
		Preload("UserB").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&conns).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return conns, nil
}

func (r *connectionRepository) CountConnections(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *connectionRepository) DeleteConnectionBetween(ctx context.Context, userID1, userID2 uint) error {
	a, b := userID1, userID2
	if a > b {
		a, b = b, a
	}
	if err := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		Delete(&models.Connection{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// PartnerIDs returns the IDs of every user connected to userID.
func (r *connectionRepository) PartnerIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Select("CASE WHEN user_a_id = ? THEN user_b_id ELSE user_a_id END", userID).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Scan(&ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// RequestCounterpartIDs returns the IDs of every user with a request row
// touching userID in either direction, regardless of state. Discovery uses
// this set: any prior interaction removes a candidate.
func (r *connectionRepository) RequestCounterpartIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.ConnectionRequest{}).
		Select("CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END", userID).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Scan(&ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// ListAcceptedRequestsMissingConnections finds accepted requests whose
// canonical connection row is absent. Fed to the reconciliation job.
func (r *connectionRepository) ListAcceptedRequestsMissingConnections(ctx context.Context) ([]models.ConnectionRequest, error) {
	var reqs []models.ConnectionRequest
	if err := r.db.WithContext(ctx).
		Where("state = ?", models.RequestStateAccepted).
		Where(`NOT EXISTS (
			SELECT 1 FROM connections c
			WHERE c.user_a_id = CASE WHEN sender_id < receiver_id THEN sender_id ELSE receiver_id END
			  AND c.user_b_id = CASE WHEN sender_id < receiver_id THEN receiver_id ELSE sender_id END
		)`).
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

// Transaction runs fn against a repository bound to a single transaction.
func (r *connectionRepository) Transaction(ctx context.Context, fn func(ConnectionRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&connectionRepository{db: tx})
	})
}
