package server

import (
	"strings"

	"studymesh/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendRequestBody carries the optional introduction message.
type SendRequestBody struct {
	Message string `json:"message"`
}

const maxRequestMessageLen = 500

// parseStateFilter validates the optional ?state= query parameter.
// Empty means no filter.
func parseStateFilter(c *fiber.Ctx) (models.RequestState, error) {
	raw := strings.ToLower(c.Query("state"))
	switch models.RequestState(raw) {
	case "", models.RequestStatePending, models.RequestStateAccepted,
		models.RequestStateRejected, models.RequestStateBlocked:
		return models.RequestState(raw), nil
	default:
		return "", models.NewValidationError("Invalid state filter: " + raw)
	}
}

// SendConnectionRequest creates (or resurrects) a request toward the target user.
func (s *Server) SendConnectionRequest(c *fiber.Ctx) error {
	receiverID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	var body SendRequestBody
	// An empty body is fine; the message is optional.
	_ = c.BodyParser(&body)

	body.Message = strings.TrimSpace(body.Message)
	if len(body.Message) > maxRequestMessageLen {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Message must not exceed 500 characters"))
	}

	request, err := s.connectionService.SendRequest(
		c.UserContext(), currentUserID(c), receiverID, body.Message)
	if err != nil {
		return respondServiceError(c, err)
	}

	status := fiber.StatusCreated
	if request.State != models.RequestStatePending {
		// An existing accepted or blocked row came back unchanged.
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(request)
}

// GetReceivedRequests lists requests addressed to the authenticated user.
func (s *Server) GetReceivedRequests(c *fiber.Ctx) error {
	state, err := parseStateFilter(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	page := parsePagination(c, 20)

	requests, err := s.connectionService.GetReceivedRequests(
		c.UserContext(), currentUserID(c), state, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"requests": requests,
		"count":    len(requests),
	})
}

// GetSentRequests lists requests the authenticated user has sent.
func (s *Server) GetSentRequests(c *fiber.Ctx) error {
	state, err := parseStateFilter(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	page := parsePagination(c, 20)

	requests, err := s.connectionService.GetSentRequests(
		c.UserContext(), currentUserID(c), state, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"requests": requests,
		"count":    len(requests),
	})
}

// AcceptConnectionRequest accepts a pending request addressed to the caller.
func (s *Server) AcceptConnectionRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	request, err := s.connectionService.AcceptRequest(c.UserContext(), currentUserID(c), requestID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(request)
}

// RejectConnectionRequest declines a pending request addressed to the caller.
func (s *Server) RejectConnectionRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	request, err := s.connectionService.RejectRequest(c.UserContext(), currentUserID(c), requestID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(request)
}

// BlockConnectionRequest blocks the counterpart on a pending or accepted request.
func (s *Server) BlockConnectionRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	request, err := s.connectionService.BlockRequest(c.UserContext(), currentUserID(c), requestID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(request)
}

// CancelConnectionRequest withdraws the caller's own pending request.
func (s *Server) CancelConnectionRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	if err := s.connectionService.CancelRequest(c.UserContext(), currentUserID(c), requestID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetConnections lists the caller's realized connections.
func (s *Server) GetConnections(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	connections, err := s.connectionService.GetConnections(
		c.UserContext(), currentUserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"connections": connections,
		"count":       len(connections),
	})
}

// GetConnectionStatus reports the relationship between the caller and a target user.
func (s *Server) GetConnectionStatus(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	status, err := s.connectionService.GetConnectionStatus(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(status)
}

// GetConnectionStatistics returns the caller's connection and pending counts.
func (s *Server) GetConnectionStatistics(c *fiber.Ctx) error {
	stats, err := s.connectionService.GetStatistics(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}
