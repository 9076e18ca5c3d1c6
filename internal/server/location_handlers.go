package server

import (
	"studymesh/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UpdateLocationRequest carries a reported position fix.
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	AccuracyM *float64 `json:"accuracy_m"`
}

// UpdateMyLocation records the authenticated user's current position.
func (s *Server) UpdateMyLocation(c *fiber.Ctx) error {
	var req UpdateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Latitude == nil || req.Longitude == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("latitude and longitude are required"))
	}

	user, err := s.locationService.UpdateLocation(
		c.UserContext(), currentUserID(c), *req.Latitude, *req.Longitude, req.AccuracyM)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"latitude":        user.LastLatitude,
		"longitude":       user.LastLongitude,
		"last_located_at": user.LastLocatedAt,
	})
}

// GetMyLocationHistory returns the authenticated user's recorded trail,
// newest first.
func (s *Server) GetMyLocationHistory(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	history, err := s.locationService.GetHistory(
		c.UserContext(), currentUserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"history": history,
		"count":   len(history),
	})
}
