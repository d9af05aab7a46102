// Package fixtures provides restaurant records and CSV datasets for tests.
//
// # Restaurants
//
// Restaurant builds one record with defaults; options override fields:
//
//	r := fixtures.Restaurant(fixtures.WithCity("Tampa", "FL"))
//
// Sample returns a fixed multi-city dataset with enough Philadelphia rows
// to paginate and a pair of same-named restaurants.
//
// # Datasets
//
// Dataset encodes restaurants as the CSV export the catalog reads, and
// WriteDataset stores it in a directory:
//
//	path := fixtures.WriteDataset(t, t.TempDir(), fixtures.Sample()...)
package fixtures
