package model

import "time"

// Document store layout
const (
	UsersCollection     = "users"
	AccountsCollection  = "accounts"
	DonationsCollection = "donations"

	FieldFavorites = "favorites"
	FieldDarkMode  = "darkMode"
)

// UserDocument is the per-identity document at users/{id}
type UserDocument struct {
	Favorites []Restaurant `json:"favorites"`
	DarkMode  *bool        `json:"darkMode,omitempty"`
}

// UserPath returns the document path for an identity
func UserPath(userID string) string {
	return UsersCollection + "/" + userID
}

// DonationsPath returns the donation collection path for an identity
func DonationsPath(userID string) string {
	return UserPath(userID) + "/" + DonationsCollection
}

// AccountPath returns the credentials document path for an email
func AccountPath(email string) string {
	return AccountsCollection + "/" + email
}

// Donation is one entry of the append-only donation collection
type Donation struct {
	Amount     float64   `json:"amount"`
	Restaurant string    `json:"restaurant,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Fields returns the donation as document fields
func (d Donation) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"amount":    d.Amount,
		"timestamp": d.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if d.Restaurant != "" {
		fields["restaurant"] = d.Restaurant
	}
	return fields
}

// DonationPresets are the quick-pick amounts offered next to the free input
var DonationPresets = []float64{1, 5, 10, 20}

// Account holds sign-in credentials for an identity
type Account struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedOn    time.Time `json:"created_on"`
}

// Identity is the signed-in principal
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Account constraints
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72 // bcrypt input limit
)
