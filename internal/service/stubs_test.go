package service

import (
	"context"
	"time"

	"studymesh/internal/models"
	"studymesh/internal/repository"
)

type connRepoStub struct {
	createRequestFn            func(context.Context, *models.ConnectionRequest) error
	getRequestByIDFn           func(context.Context, uint) (*models.ConnectionRequest, error)
	getRequestBetweenFn        func(context.Context, uint, uint) (*models.ConnectionRequest, error)
	getRequestsBetweenUsersFn  func(context.Context, uint, uint) ([]models.ConnectionRequest, error)
	saveRequestFn              func(context.Context, *models.ConnectionRequest) error
	deleteRequestFn            func(context.Context, uint) error
	listSentRequestsFn         func(context.Context, uint, models.RequestState, int, int) ([]models.ConnectionRequest, error)
	listReceivedRequestsFn     func(context.Context, uint, models.RequestState, int, int) ([]models.ConnectionRequest, error)
	countPendingReceivedFn     func(context.Context, uint) (int64, error)
	countPendingSentFn         func(context.Context, uint) (int64, error)
	getOrCreateConnectionFn    func(context.Context, *models.Connection) (*models.Connection, error)
	getConnectionBetweenFn     func(context.Context, uint, uint) (*models.Connection, error)
	listConnectionsFn          func(context.Context, uint, int, int) ([]models.Connection, error)
	countConnectionsFn         func(context.Context, uint) (int64, error)
	deleteConnectionBetweenFn  func(context.Context, uint, uint) error
	partnerIDsFn               func(context.Context, uint) ([]uint, error)
	requestCounterpartIDsFn    func(context.Context, uint) ([]uint, error)
	listAcceptedMissingConnsFn func(context.Context) ([]models.ConnectionRequest, error)
}

func (s *connRepoStub) CreateRequest(ctx context.Context, req *models.ConnectionRequest) error {
	return s.createRequestFn(ctx, req)
}
func (s *connRepoStub) GetRequestByID(ctx context.Context, id uint) (*models.ConnectionRequest, error) {
	return s.getRequestByIDFn(ctx, id)
}
func (s *connRepoStub) GetRequestBetween(ctx context.Context, senderID, receiverID uint) (*models.ConnectionRequest, error) {
	return s.getRequestBetweenFn(ctx, senderID, receiverID)
}
func (s *connRepoStub) GetRequestsBetweenUsers(ctx context.Context, userID1, userID2 uint) ([]models.ConnectionRequest, error) {
	return s.getRequestsBetweenUsersFn(ctx, userID1, userID2)
}
func (s *connRepoStub) SaveRequest(ctx context.Context, req *models.ConnectionRequest) error {
	return s.saveRequestFn(ctx, req)
}
func (s *connRepoStub) DeleteRequest(ctx context.Context, id uint) error {
	return s.deleteRequestFn(ctx, id)
}
func (s *connRepoStub) ListSentRequests(ctx context.Context, userID uint, state models.RequestState, limit, offset int) ([]models.ConnectionRequest, error) {
	return s.listSentRequestsFn(ctx, userID, state, limit, offset)
}
func (s *connRepoStub) ListReceivedRequests(ctx context.Context, userID uint, state models.RequestState, limit, offset int) ([]models.ConnectionRequest, error) {
	return s.listReceivedRequestsFn(ctx, userID, state, limit, offset)
}
func (s *connRepoStub) CountPendingReceived(ctx context.Context, userID uint) (int64, error) {
	return s.countPendingReceivedFn(ctx, userID)
}
func (s *connRepoStub) CountPendingSent(ctx context.Context, userID uint) (int64, error) {
	return s.countPendingSentFn(ctx, userID)
}
func (s *connRepoStub) GetOrCreateConnection(ctx context.Context, conn *models.Connection) (*models.Connection, error) {
	return s.getOrCreateConnectionFn(ctx, conn)
}
func (s *connRepoStub) GetConnectionBetween(ctx context.Context, userID1, userID2 uint) (*models.Connection, error) {
	return s.getConnectionBetweenFn(ctx, userID1, userID2)
}
func (s *connRepoStub) ListConnections(ctx context.Context, userID uint, limit, offset int) ([]models.Connection, error) {
	return s.listConnectionsFn(ctx, userID, limit, offset)
}
func (s *connRepoStub) CountConnections(ctx context.Context, userID uint) (int64, error) {
	return s.countConnectionsFn(ctx, userID)
}
func (s *connRepoStub) DeleteConnectionBetween(ctx context.Context, userID1, userID2 uint) error {
	return s.deleteConnectionBetweenFn(ctx, userID1, userID2)
}
func (s *connRepoStub) PartnerIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.partnerIDsFn(ctx, userID)
}
func (s *connRepoStub) RequestCounterpartIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.requestCounterpartIDsFn(ctx, userID)
}
func (s *connRepoStub) ListAcceptedRequestsMissingConnections(ctx context.Context) ([]models.ConnectionRequest, error) {
	return s.listAcceptedMissingConnsFn(ctx)
}

// Transaction runs fn against the stub itself; stub tests assert behavior,
// not transactional isolation.
func (s *connRepoStub) Transaction(_ context.Context, fn func(repository.ConnectionRepository) error) error {
	return fn(s)
}

func noopConnRepo() *connRepoStub {
	return &connRepoStub{
		createRequestFn:  func(context.Context, *models.ConnectionRequest) error { return nil },
		getRequestByIDFn: func(context.Context, uint) (*models.ConnectionRequest, error) { return &models.ConnectionRequest{}, nil },
		getRequestBetweenFn: func(context.Context, uint, uint) (*models.ConnectionRequest, error) {
			return nil, nil
		},
		getRequestsBetweenUsersFn: func(context.Context, uint, uint) ([]models.ConnectionRequest, error) {
			return nil, nil
		},
		saveRequestFn:   func(context.Context, *models.ConnectionRequest) error { return nil },
		deleteRequestFn: func(context.Context, uint) error { return nil },
		listSentRequestsFn: func(context.Context, uint, models.RequestState, int, int) ([]models.ConnectionRequest, error) {
			return nil, nil
		},
		listReceivedRequestsFn: func(context.Context, uint, models.RequestState, int, int) ([]models.ConnectionRequest, error) {
			return nil, nil
		},
		countPendingReceivedFn: func(context.Context, uint) (int64, error) { return 0, nil },
		countPendingSentFn:     func(context.Context, uint) (int64, error) { return 0, nil },
		getOrCreateConnectionFn: func(_ context.Context, conn *models.Connection) (*models.Connection, error) {
			return conn, nil
		},
		getConnectionBetweenFn: func(context.Context, uint, uint) (*models.Connection, error) { return nil, nil },
		listConnectionsFn:      func(context.Context, uint, int, int) ([]models.Connection, error) { return nil, nil },
		countConnectionsFn:     func(context.Context, uint) (int64, error) { return 0, nil },
		deleteConnectionBetweenFn: func(context.Context, uint, uint) error {
			return nil
		},
		partnerIDsFn:            func(context.Context, uint) ([]uint, error) { return nil, nil },
		requestCounterpartIDsFn: func(context.Context, uint) ([]uint, error) { return nil, nil },
		listAcceptedMissingConnsFn: func(context.Context) ([]models.ConnectionRequest, error) {
			return nil, nil
		},
	}
}

type userRepoStub struct {
	getByIDFn              func(context.Context, uint) (*models.User, error)
	getByIDFreshFn         func(context.Context, uint) (*models.User, error)
	getByEmailFn           func(context.Context, string) (*models.User, error)
	getByUsernameFn        func(context.Context, string) (*models.User, error)
	createFn               func(context.Context, *models.User) error
	updateFn               func(context.Context, *models.User) error
	updateLocationFn       func(context.Context, uint, float64, float64, time.Time) error
	touchLastActiveFn      func(context.Context, uint, time.Time) error
	findNearbyCandidatesFn func(context.Context, repository.NearbyQuery) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDFresh(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFreshFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UpdateLocation(ctx context.Context, id uint, lat, lng float64, at time.Time) error {
	return s.updateLocationFn(ctx, id, lat, lng, at)
}
func (s *userRepoStub) TouchLastActive(ctx context.Context, id uint, at time.Time) error {
	return s.touchLastActiveFn(ctx, id, at)
}
func (s *userRepoStub) FindNearbyCandidates(ctx context.Context, q repository.NearbyQuery) ([]models.User, error) {
	return s.findNearbyCandidatesFn(ctx, q)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:         func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByIDFreshFn:    func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:      func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		getByUsernameFn:   func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		createFn:          func(context.Context, *models.User) error { return nil },
		updateFn:          func(context.Context, *models.User) error { return nil },
		updateLocationFn:  func(context.Context, uint, float64, float64, time.Time) error { return nil },
		touchLastActiveFn: func(context.Context, uint, time.Time) error { return nil },
		findNearbyCandidatesFn: func(context.Context, repository.NearbyQuery) ([]models.User, error) {
			return nil, nil
		},
	}
}

type locationRepoStub struct {
	createFn          func(context.Context, *models.LocationHistory) error
	listByUserFn      func(context.Context, uint, int, int) ([]models.LocationHistory, error)
	latestForUserFn   func(context.Context, uint) (*models.LocationHistory, error)
	deleteOlderThanFn func(context.Context, uint, int) error
}

func (s *locationRepoStub) Create(ctx context.Context, entry *models.LocationHistory) error {
	return s.createFn(ctx, entry)
}
func (s *locationRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.LocationHistory, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *locationRepoStub) LatestForUser(ctx context.Context, userID uint) (*models.LocationHistory, error) {
	return s.latestForUserFn(ctx, userID)
}
func (s *locationRepoStub) DeleteOlderThan(ctx context.Context, userID uint, keep int) error {
	return s.deleteOlderThanFn(ctx, userID, keep)
}

func noopLocationRepo() *locationRepoStub {
	return &locationRepoStub{
		createFn: func(context.Context, *models.LocationHistory) error { return nil },
		listByUserFn: func(context.Context, uint, int, int) ([]models.LocationHistory, error) {
			return nil, nil
		},
		latestForUserFn:   func(context.Context, uint) (*models.LocationHistory, error) { return nil, nil },
		deleteOlderThanFn: func(context.Context, uint, int) error { return nil },
	}
}

type provisionerStub struct {
	ensureChannelFn func(context.Context, *models.Connection) (*models.Conversation, error)
}

func (s *provisionerStub) EnsureChannel(ctx context.Context, conn *models.Connection) (*models.Conversation, error) {
	return s.ensureChannelFn(ctx, conn)
}

func noopProvisioner() *provisionerStub {
	return &provisionerStub{
		ensureChannelFn: func(context.Context, *models.Connection) (*models.Conversation, error) {
			return &models.Conversation{}, nil
		},
	}
}

func locatedUser(id uint, lat, lng float64) *models.User {
	now := time.Now()
	return &models.User{
		ID:            id,
		Status:        models.UserStatusActive,
		LastLatitude:  &lat,
		LastLongitude: &lng,
		LastLocatedAt: &now,
	}
}
