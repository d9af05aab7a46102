// Package handler provides the HTTP handlers of the restaurant search API.
//
// Routes:
//
//	GET /api/search       one page of restaurants in a city
//	GET /api/categories   distinct categories, sorted
//	GET /api/data         the whole dataset
//	GET /api/data/{id}    one restaurant by dataset id
//	GET /health           liveness and catalog status
//
// Successful responses are bare JSON documents in the shape the client
// expects. Errors are RFC 9457 Problem Details built by MapServiceError.
package handler
