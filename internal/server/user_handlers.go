package server

import (
	"studymesh/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest carries the editable profile fields. Pointers
// distinguish "leave unchanged" from "set to zero value".
type UpdateProfileRequest struct {
	FullName         *string  `json:"full_name"`
	Bio              *string  `json:"bio"`
	School           *string  `json:"school"`
	Major            *string  `json:"major"`
	Year             *int     `json:"year"`
	LearningRadiusKm *float64 `json:"learning_radius_km"`
}

// GetMyProfile returns the authenticated user's own profile.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdateMyProfile applies a partial update to the authenticated user's profile.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.School != nil {
		user.School = *req.School
	}
	if req.Major != nil {
		user.Major = *req.Major
	}
	if req.Year != nil {
		user.Year = *req.Year
	}
	if req.LearningRadiusKm != nil {
		if *req.LearningRadiusKm <= 0 || *req.LearningRadiusKm > 100 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("learning_radius_km must be between 0 and 100"))
		}
		user.LearningRadiusKm = *req.LearningRadiusKm
	}

	if err := s.userRepo.Update(c.UserContext(), user); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// publicProfile is the reduced view of another user's account.
type publicProfile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Bio      string `json:"bio"`
	School   string `json:"school"`
	Major    string `json:"major"`
	Year     int    `json:"year"`
}

// GetUserProfile returns another user's public profile. Location fields
// are never exposed here; discovery reports distances, not coordinates.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userRepo.GetByID(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(publicProfile{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Bio:      user.Bio,
		School:   user.School,
		Major:    user.Major,
		Year:     user.Year,
	})
}
