// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"studymesh/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumRequests int
	ShouldClean bool

	// Center of the synthetic campus; users are scattered within SpreadKm.
	CenterLat float64
	CenterLng float64
	SpreadKm  float64
}

// DefaultOptions seeds a mid-sized campus around central Saigon.
func DefaultOptions() Options {
	return Options{
		NumUsers:    50,
		NumRequests: 120,
		ShouldClean: true,
		CenterLat:   10.7769,
		CenterLng:   106.7009,
		SpreadKm:    8,
	}
}

var (
	schools = []string{
		"State University", "City College", "Tech Institute", "Community College",
		"Polytechnic", "Liberal Arts College", "National University",
	}

	majors = []string{
		"Computer Science", "Mathematics", "Physics", "Biology", "Chemistry",
		"Economics", "Psychology", "History", "Mechanical Engineering",
		"Electrical Engineering", "Linguistics", "Philosophy", "Nursing",
		"Business Administration", "Graphic Design", "Statistics",
	}

	requestMessages = []string{
		"Hey, want to study together for finals?",
		"Saw you're nearby — study session this week?",
		"Looking for a problem-set partner, interested?",
		"Same major! Want to compare notes?",
		"Library regular here, want to join our table?",
		"",
	}
)

// Seeder populates the database with realistic test data.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed runs the full pipeline: users, locations, requests, and the
// connections realized from accepted requests.
func (s *Seeder) Seed(opts Options) error {
	log.Printf("Seeding %d users and %d connection requests...", opts.NumUsers, opts.NumRequests)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Printf("warning: could not clear all existing data: %v", err)
		}
	}

	users, err := s.CreateUsers(opts)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	created, err := s.CreateRelationships(users, opts.NumRequests)
	if err != nil {
		return fmt.Errorf("failed to create relationships: %w", err)
	}
	log.Printf("created %d connection requests", created)

	return nil
}

// ClearAll deletes seeded data in FK-safe order.
func (s *Seeder) ClearAll() error {
	tables := []string{
		"conversation_participants",
		"conversations",
		"connections",
		"connection_requests",
		"location_history",
		"users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// CreateUsers generates users scattered around the configured center.
// A small fraction is left unlocated or suspended so discovery filters
// have something to filter.
func (s *Seeder) CreateUsers(opts Options) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		// Index suffix keeps generated usernames and emails unique.
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		user := &models.User{
			Username:         username,
			Email:            fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Password:         string(hashed),
			FullName:         gofakeit.Name(),
			Bio:              gofakeit.Sentence(8),
			School:           schools[s.rng.Intn(len(schools))],
			Major:            majors[s.rng.Intn(len(majors))],
			Year:             1 + s.rng.Intn(5),
			Status:           models.UserStatusActive,
			LearningRadiusKm: 2 + s.rng.Float64()*13,
		}

		switch {
		case i%17 == 16:
			user.Status = models.UserStatusSuspended
		case i%11 == 10:
			// no location on purpose
		default:
			lat, lng := s.scatter(opts.CenterLat, opts.CenterLng, opts.SpreadKm)
			locatedAt := time.Now().Add(-time.Duration(s.rng.Intn(72)) * time.Hour)
			user.LastLatitude = &lat
			user.LastLongitude = &lng
			user.LastLocatedAt = &locatedAt
		}

		if err := s.db.Create(user).Error; err != nil {
			return nil, err
		}

		if user.HasLocation() {
			if err := s.createTrail(user); err != nil {
				return nil, err
			}
		}

		users = append(users, user)
	}
	return users, nil
}

// scatter returns a point within spreadKm of the center.
func (s *Seeder) scatter(centerLat, centerLng, spreadKm float64) (float64, float64) {
	distKm := s.rng.Float64() * spreadKm
	bearing := s.rng.Float64() * 2 * math.Pi

	latDelta := (distKm * math.Cos(bearing)) / 111.0
	lngDelta := (distKm * math.Sin(bearing)) / (111.0 * math.Cos(centerLat*math.Pi/180))
	return centerLat + latDelta, centerLng + lngDelta
}

// createTrail writes a few history entries leading to the user's current point.
func (s *Seeder) createTrail(user *models.User) error {
	entries := 1 + s.rng.Intn(4)
	for i := entries; i > 0; i-- {
		lat := *user.LastLatitude + (s.rng.Float64()-0.5)*0.02
		lng := *user.LastLongitude + (s.rng.Float64()-0.5)*0.02
		entry := &models.LocationHistory{
			UserID:     user.ID,
			Latitude:   lat,
			Longitude:  lng,
			RecordedAt: time.Now().Add(-time.Duration(i) * time.Hour),
		}
		if err := s.db.Create(entry).Error; err != nil {
			return err
		}
	}
	return nil
}

// CreateRelationships generates connection requests across random user
// pairs with a realistic state mix. Accepted requests are realized into
// connections with their direct conversations, mirroring what the accept
// flow produces in production.
func (s *Seeder) CreateRelationships(users []*models.User, target int) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}

	created := 0
	seen := make(map[[2]uint]bool)
	attempts := 0
	for created < target && attempts < target*10 {
		attempts++
		sender := users[s.rng.Intn(len(users))]
		receiver := users[s.rng.Intn(len(users))]
		if sender.ID == receiver.ID {
			continue
		}
		// Dedupe on the unordered pair: crossed requests that both roll
		// accepted would collide on the unique connection row.
		pair := [2]uint{sender.ID, receiver.ID}
		if pair[0] > pair[1] {
			pair[0], pair[1] = pair[1], pair[0]
		}
		if seen[pair] {
			continue
		}
		seen[pair] = true

		request := &models.ConnectionRequest{
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			Message:    requestMessages[s.rng.Intn(len(requestMessages))],
			State:      models.RequestStatePending,
			CreatedAt:  time.Now().Add(-time.Duration(s.rng.Intn(30*24)) * time.Hour),
		}

		// Roughly: half pending, a third accepted, the rest rejected or blocked.
		roll := s.rng.Intn(100)
		switch {
		case roll < 50:
			// stays pending
		case roll < 83:
			acceptedAt := request.CreatedAt.Add(time.Duration(1+s.rng.Intn(48)) * time.Hour)
			request.State = models.RequestStateAccepted
			request.AcceptedAt = &acceptedAt
		case roll < 95:
			rejectedAt := request.CreatedAt.Add(time.Duration(1+s.rng.Intn(48)) * time.Hour)
			request.State = models.RequestStateRejected
			request.RejectedAt = &rejectedAt
		default:
			request.State = models.RequestStateBlocked
		}

		if err := s.db.Create(request).Error; err != nil {
			return created, err
		}
		created++

		if request.State == models.RequestStateAccepted {
			if err := s.realizeConnection(request); err != nil {
				return created, err
			}
		}
	}
	return created, nil
}

func (s *Seeder) realizeConnection(request *models.ConnectionRequest) error {
	conn := models.NewConnectionFromRequest(request)
	if err := s.db.Create(conn).Error; err != nil {
		return err
	}

	connID := conn.ID
	conv := &models.Conversation{
		Type:         models.ConversationTypeDirect,
		Name:         fmt.Sprintf("connection-%d", conn.ID),
		ConnectionID: &connID,
	}
	if err := s.db.Create(conv).Error; err != nil {
		return err
	}

	for _, userID := range []uint{conn.UserAID, conn.UserBID} {
		participant := &models.ConversationParticipant{
			ConversationID: conv.ID,
			UserID:         userID,
			JoinedAt:       time.Now(),
		}
		if err := s.db.Create(participant).Error; err != nil {
			return err
		}
	}
	return nil
}
