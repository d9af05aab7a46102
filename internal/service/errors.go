package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers and the CLI predictable.

// ===== Validation Errors =====
var (
	ErrEmptySearchTerm    = errors.New("search term is required")
	ErrInvalidStars       = errors.New("stars must be 0 (any) or 1-5")
	ErrInvalidPage        = errors.New("page must be at least 1")
	ErrPageOutOfRange     = errors.New("page is past the last page of results")
	ErrInvalidAmount      = errors.New("donation amount must be a positive number")
	ErrRestaurantRequired = errors.New("restaurant is required")
)

// ===== Identity Errors =====
var (
	ErrNotAuthenticated   = errors.New("not signed in")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

// ===== Transport Errors =====
var (
	ErrSearchUnavailable = errors.New("search service unavailable")
	ErrSearchSuperseded  = errors.New("search superseded by a newer request")
)

// ===== Catalog Errors =====
var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrCatalogNotLoaded   = errors.New("catalog not loaded")
)

// User-facing messages
const (
	MsgEmptySearchTerm    = "Please enter a city name"
	MsgNoResultsFormat    = "No restaurants found in %s"
	MsgPageOutOfRange     = "Page %d is past the last page (%d)."
	MsgSearchFailed       = "Something went wrong. Please try again."
	MsgLoginToFavorite    = "Please log in to save favorites."
	MsgLoginToDonate      = "You must be signed in to donate."
	MsgInvalidAmount      = "Please enter a valid donation amount."
	MsgRestaurantRequired = "Please select a restaurant."
)

// UserMessage returns the message shown for err, or err's text when the error
// has no dedicated message.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptySearchTerm):
		return MsgEmptySearchTerm
	case errors.Is(err, ErrSearchUnavailable):
		return MsgSearchFailed
	case errors.Is(err, ErrInvalidAmount):
		return MsgInvalidAmount
	case errors.Is(err, ErrRestaurantRequired):
		return MsgRestaurantRequired
	default:
		return err.Error()
	}
}
