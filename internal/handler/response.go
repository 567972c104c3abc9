package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation         = "https://envelope.app/errors/validation"
	ErrorTypeConflict           = "https://envelope.app/errors/conflict"
	ErrorTypeInvalidReference   = "https://envelope.app/errors/invalid-reference"
	ErrorTypeServiceUnavailable = "https://envelope.app/errors/service-unavailable"
	ErrorTypeInternal           = "https://envelope.app/errors/internal"
)

// problem writes a Problem Details body whose instance is the request path
func problem(c echo.Context, status int, errType, title, detail string, fields []ValidationError) error {
	return c.JSON(status, ProblemDetails{
		Type:     errType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   fields,
	})
}

// NewValidationError responds 400 with optional per-field errors
func NewValidationError(c echo.Context, detail string, fields []ValidationError) error {
	return problem(c, http.StatusBadRequest, ErrorTypeValidation, "Validation Error", detail, fields)
}

// NewConflictError responds 409, used for duplicate identifiers
func NewConflictError(c echo.Context, detail string) error {
	return problem(c, http.StatusConflict, ErrorTypeConflict, "Conflict", detail, nil)
}

// NewInvalidReferenceError responds 422 for references to unknown entities
func NewInvalidReferenceError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnprocessableEntity, ErrorTypeInvalidReference, "Invalid Reference", detail, nil)
}

func NewServiceUnavailableError(c echo.Context, detail string) error {
	return problem(c, http.StatusServiceUnavailable, ErrorTypeServiceUnavailable, "Service Unavailable", detail, nil)
}

func NewInternalError(c echo.Context, detail string) error {
	return problem(c, http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error", detail, nil)
}

func fieldError(c echo.Context, field, message string) error {
	return NewValidationError(c, "Validation failed", []ValidationError{{Field: field, Message: message}})
}

// requiredField builds the error for a missing request field
func requiredField(c echo.Context, field string) error {
	return fieldError(c, field, "Field is required")
}

// handleCreateError maps service errors from a create operation to responses
func handleCreateError(c echo.Context, err error, action string) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return fieldError(c, "name", "Name is required")
	case errors.Is(err, domain.ErrNameTooLong):
		return fieldError(c, "name", "Name must be 255 characters or less")
	case errors.Is(err, domain.ErrInvalidDate):
		return fieldError(c, "date", "Date must be formatted as YYYY-MM-DD")
	case errors.Is(err, domain.ErrNegativeAmount), errors.Is(err, domain.ErrAmountOutOfRange), errors.Is(err, domain.ErrMemoTooLong):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, domain.ErrDuplicateIdentifier):
		return NewConflictError(c, err.Error())
	case errors.Is(err, domain.ErrInvalidReference):
		return NewInvalidReferenceError(c, err.Error())
	}

	log.Error().Err(err).Msg("Failed to " + action)
	return NewInternalError(c, "Failed to "+action)
}
