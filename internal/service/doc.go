// Package service implements the business logic of hungry.
//
// Client side, the package holds the state the terminal front end renders:
//
//   - IdentityService: local account sessions and identity change fan-out
//   - FavoritesService: optimistic favorites with background merge writes
//   - SearchController: paginated search with last-request-wins ordering
//   - ThemeService: the dark mode preference
//   - DonationService: the append-only donation ledger and its total
//
// Server side, CatalogService answers search queries from the restaurant
// dataset.
//
// # Service Pattern
//
//   - Constructor function (NewXxxService) accepts a config struct with dependencies
//   - Persistence goes through docstore.Store; the search endpoint through SearchClient
//   - Errors are sentinel errors from errors.go, wrapped with context where useful
//
// # Error Handling
//
//	if errors.Is(err, service.ErrNotAuthenticated) {
//	    fmt.Println(service.MsgLoginToFavorite)
//	}
package service
