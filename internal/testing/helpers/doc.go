// Package helpers provides test utilities for the search API and CLI.
//
// # Search Server
//
// NewSearchServer runs the real search handler over an in-memory catalog:
//
//	srv := helpers.NewSearchServer(t, fixtures.Sample()...)
//	client, _ := searchapi.New(searchapi.Config{BaseURL: srv.URL})
//
// # Assertion Helpers
//
//	rec := helpers.Do(t, h, helpers.SearchPath(map[string]string{"city": "Tampa"}))
//	helpers.AssertStatus(t, rec, http.StatusOK)
//	helpers.AssertValidationError(t, rec, "stars")
package helpers
