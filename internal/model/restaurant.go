package model

import (
	"strings"
)

// Restaurant is a single search result as served by the search API.
// Values are immutable once fetched.
type Restaurant struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	PostalCode  string  `json:"postal_code"`
	Stars       float64 `json:"stars"`
	ReviewCount int     `json:"review_count"`
	Categories  string  `json:"categories"`
	Hours       string  `json:"hours,omitempty"`
}

// Key returns the value restaurants are favorited by.
// Two restaurants sharing a name collapse to one favorite.
func (r Restaurant) Key() string {
	return r.Name
}

// CompositeKey disambiguates same-named restaurants by address.
func (r Restaurant) CompositeKey() string {
	return r.Name + "|" + strings.ToLower(strings.TrimSpace(r.Address))
}

// CategoryList splits the free-text categories label into trimmed entries
func (r Restaurant) CategoryList() []string {
	if r.Categories == "" {
		return nil
	}
	parts := strings.Split(r.Categories, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasCategory reports whether any category matches name, ignoring case
func (r Restaurant) HasCategory(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return true
	}
	for _, c := range r.CategoryList() {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// Location formats the address line shown on a restaurant card
func (r Restaurant) Location() string {
	return strings.TrimSpace(r.Address + ", " + r.City + ", " + r.State + " " + r.PostalCode)
}

// Rating bounds
const (
	MinStars = 0
	MaxStars = 5
)
