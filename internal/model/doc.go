// Package model defines the domain types shared by the search service and the client.
//
// # Restaurants
//
// Restaurant is the value type served by GET /api/search. It is favorited by
// Key (the name) unless the client opts into CompositeKey.
//
// # Documents
//
// Per-identity state lives in a document store:
//
//	users/{id}             {favorites: Restaurant[], darkMode?: bool}
//	users/{id}/donations   append-only {amount, restaurant?, timestamp}
//	accounts/{email}       sign-in credentials
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go.
package model
