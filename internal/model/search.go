package model

import (
	"net/url"
	"strconv"
	"strings"
)

// Pagination constants
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SearchQuery is the set of parameters sent to GET /api/search
type SearchQuery struct {
	City     string `json:"city"`
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
	Stars    int    `json:"stars,omitempty"` // 0 means any rating
	Category string `json:"category,omitempty"`
}

// Values encodes the query string. An unset star filter is sent as an empty value.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	v.Set("city", q.City)
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Stars > 0 {
		v.Set("stars", strconv.Itoa(q.Stars))
	} else {
		v.Set("stars", "")
	}
	v.Set("category", q.Category)
	return v
}

// Normalized returns a canonical form used for cache keys
func (q SearchQuery) Normalized() string {
	return strings.ToLower(strings.TrimSpace(q.City)) + "|" +
		strconv.Itoa(q.Page) + "|" +
		strconv.Itoa(q.Limit) + "|" +
		strconv.Itoa(q.Stars) + "|" +
		strings.ToLower(strings.TrimSpace(q.Category))
}

// Validate checks query bounds
func (q SearchQuery) Validate() []FieldError {
	var errors []FieldError

	if strings.TrimSpace(q.City) == "" {
		errors = append(errors, FieldError{Field: "city", Message: "city is required"})
	}
	if q.Page < 1 {
		errors = append(errors, FieldError{Field: "page", Message: "page must be at least 1"})
	}
	if q.Limit < 1 || q.Limit > MaxPageSize {
		errors = append(errors, FieldError{Field: "limit", Message: "limit must be between 1 and 100"})
	}
	if q.Stars < MinStars || q.Stars > MaxStars {
		errors = append(errors, FieldError{Field: "stars", Message: "stars must be 0 (any) or 1-5"})
	}

	return errors
}

// SearchPage is one page of search results
type SearchPage struct {
	Results []Restaurant `json:"results"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
}

// PageCount returns how many pages of pageSize hold total results
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
