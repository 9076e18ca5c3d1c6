package server

import (
	"studymesh/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNearbyLearners returns active users within the search radius, closest
// first, excluding anyone the caller already has a relationship with.
// ?radius= overrides the caller's stored preference for this query only.
func (s *Server) GetNearbyLearners(c *fiber.Ctx) error {
	radiusKm := c.QueryFloat("radius", 0)
	if radiusKm < 0 || radiusKm > 100 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("radius must be between 0 and 100 kilometers"))
	}
	page := parsePagination(c, 20)

	learners, err := s.discoveryService.NearbyLearners(
		c.UserContext(), currentUserID(c), radiusKm, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"learners": learners,
		"count":    len(learners),
	})
}
