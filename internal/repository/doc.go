// Package repository implements data access for hungry.
//
// Two repositories live here:
//
//   - DocumentRepository stores client documents (favorites, preferences,
//     donations, accounts) in SurrealDB and implements docstore.Store
//   - RestaurantRepository decodes the restaurant CSV dataset from a
//     storage.Source for the search service
//
// # Query Patterns
//
//   - Parameterized queries with $variable syntax
//   - type::thing($tb, $key) and type::table($tb) for record addressing
//   - UPSERT ... MERGE for merge writes, UPSERT ... CONTENT for replacement
//   - time::now() for insertion timestamps
//
// # Example Usage
//
//	docs := repository.NewDocumentRepository(db)
//	raw, err := docs.Get(ctx, "users/u1")
//	if errors.Is(err, docstore.ErrNotFound) {
//	    // first sign-in
//	}
package repository
