package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

// NewIllegalTransitionError reports a connection-request lifecycle violation.
// Distinct from validation errors so callers can map it separately.
func NewIllegalTransitionError(from, to RequestState) *AppError {
	return &AppError{
		Code:    "ILLEGAL_TRANSITION",
		Message: fmt.Sprintf("cannot transition connection request from %s to %s", from, to),
	}
}

// NewForbiddenError reports that the authenticated actor lacks authority
// for the requested mutation (e.g. a non-receiver attempting accept).
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

// NewConflictError reports a storage-level uniqueness race. Orchestrator
// methods absorb it where the operation is semantically idempotent.
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
	}
}

// NewDependencyUnavailableError reports a best-effort collaborator failure
// (chat channel provisioning). Logged, never surfaced as the primary
// operation's failure.
func NewDependencyUnavailableError(dependency string, err error) *AppError {
	return &AppError{
		Code:    "DEPENDENCY_UNAVAILABLE",
		Message: fmt.Sprintf("%s is unavailable", dependency),
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
