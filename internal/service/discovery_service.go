package service

import (
	"context"
	"math"
	"sort"

	"studymesh/internal/models"
	"studymesh/internal/repository"
)

// NearbyLearner is a discovery result: a candidate plus their distance
// from the searcher.
type NearbyLearner struct {
	User       models.User `json:"user"`
	DistanceKm float64     `json:"distance_km"`
}

// DiscoveryService finds learners near a user, excluding anyone the user
// already has a relationship row with.
type DiscoveryService struct {
	userRepo repository.UserRepository
	connRepo repository.ConnectionRepository
}

// NewDiscoveryService returns a new DiscoveryService.
func NewDiscoveryService(userRepo repository.UserRepository, connRepo repository.ConnectionRepository) *DiscoveryService {
	return &DiscoveryService{
		userRepo: userRepo,
		connRepo: connRepo,
	}
}

func roundKm(d float64) float64 {
	return math.Round(d*100) / 100
}

// exclusionSet is self plus every user with any relationship row touching
// the searcher: connection partners and request counterparts in any state.
// A rejected or blocked row excludes just like an accepted one.
func (s *DiscoveryService) exclusionSet(ctx context.Context, userID uint) ([]uint, error) {
	partners, err := s.connRepo.PartnerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	counterparts, err := s.connRepo.RequestCounterpartIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := map[uint]struct{}{userID: {}}
	ids := []uint{userID}
	for _, id := range append(partners, counterparts...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// NearbyLearners returns discoverable users within radiusKm of the
// searcher, ascending by distance. radiusKm <= 0 falls back to the
// searcher's stored preference. A searcher without a stored point gets a
// typed validation error, never an empty success.
//
// The radius cut happens before pagination: the page is a window into the
// full ordered result, so offsets never leak excluded or out-of-range
// users into view.
func (s *DiscoveryService) NearbyLearners(ctx context.Context, userID uint, radiusKm float64, limit, offset int) ([]NearbyLearner, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasLocation() {
		return nil, models.NewValidationError("Set your location before discovering nearby learners")
	}

	if radiusKm <= 0 {
		radiusKm = user.EffectiveRadiusKm()
	}

	excluded, err := s.exclusionSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	lat, lng := *user.LastLatitude, *user.LastLongitude
	candidates, err := s.userRepo.FindNearbyCandidates(ctx, repository.NearbyQuery{
		Latitude:   lat,
		Longitude:  lng,
		RadiusKm:   radiusKm,
		ExcludeIDs: excluded,
	})
	if err != nil {
		return nil, err
	}

	// The bounding box over-approximates the circle; apply the exact
	// geodesic cut on the survivors.
	results := make([]NearbyLearner, 0, len(candidates))
	for _, c := range candidates {
		if !c.HasLocation() {
			continue
		}
		d := models.HaversineKm(lat, lng, *c.LastLatitude, *c.LastLongitude)
		if d > radiusKm {
			continue
		}
		results = append(results, NearbyLearner{User: c, DistanceKm: roundKm(d)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})

	return pageOf(results, limit, offset), nil
}
