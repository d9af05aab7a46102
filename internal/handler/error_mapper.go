package handler

import (
	"context"
	"errors"

	"github.com/forgo/hungry/internal/model"
	"github.com/forgo/hungry/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// Unknown errors become a 500 without leaking their text.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrRestaurantNotFound):
		return model.NewNotFoundError("Item")

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrEmptySearchTerm):
		return model.NewValidationError([]model.FieldError{{Field: "city", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidStars):
		return model.NewValidationError([]model.FieldError{{Field: "stars", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidPage):
		return model.NewValidationError([]model.FieldError{{Field: "page", Message: err.Error()}})

	// ===== Availability Errors → 503 =====
	case errors.Is(err, service.ErrCatalogNotLoaded):
		return model.NewUnavailableError("restaurant catalog is not loaded yet")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return model.NewUnavailableError("request canceled")

	default:
		return model.NewInternalError("")
	}
}
