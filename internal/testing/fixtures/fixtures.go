package fixtures

import (
	"bytes"
	"crypto/rand"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/forgo/hungry/internal/model"
)

// DatasetFile is the file name WriteDataset uses
const DatasetFile = "restaurants.csv"

// Columns is the dataset header, in the order of the original export
var Columns = []string{
	"business_id", "name", "address", "city", "state", "postal_code",
	"stars", "review_count", "categories", "hours",
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ============================================================================
// Restaurant Fixtures
// ============================================================================

// Option customizes a restaurant
type Option func(*model.Restaurant)

// WithID sets the business id
func WithID(id string) Option { return func(r *model.Restaurant) { r.ID = id } }

// WithName sets the name
func WithName(name string) Option { return func(r *model.Restaurant) { r.Name = name } }

// WithAddress sets the street address
func WithAddress(address string) Option { return func(r *model.Restaurant) { r.Address = address } }

// WithCity sets the city and state
func WithCity(city, state string) Option {
	return func(r *model.Restaurant) {
		r.City = city
		r.State = state
	}
}

// WithStars sets the rating
func WithStars(stars float64) Option { return func(r *model.Restaurant) { r.Stars = stars } }

// WithReviews sets the review count
func WithReviews(n int) Option { return func(r *model.Restaurant) { r.ReviewCount = n } }

// WithCategories sets the comma separated categories label
func WithCategories(categories string) Option {
	return func(r *model.Restaurant) { r.Categories = categories }
}

// Restaurant creates a restaurant in Philadelphia with a random id
func Restaurant(opts ...Option) model.Restaurant {
	id := randomID()
	r := model.Restaurant{
		ID:          id,
		Name:        "Restaurant " + id[:6],
		Address:     "100 Market St",
		City:        "Philadelphia",
		State:       "PA",
		PostalCode:  "19106",
		Stars:       4,
		ReviewCount: 100,
		Categories:  "Restaurants, American (New)",
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Sample returns a small dataset spread over three cities. Philadelphia has
// 25 restaurants so it spans two pages at the default page size; two of them
// share the name "Twin Diner" at different addresses.
func Sample() []model.Restaurant {
	out := make([]model.Restaurant, 0, 30)
	for i := 1; i <= 23; i++ {
		category := "Pizza"
		if i%2 == 0 {
			category = "Sushi Bars"
		}
		out = append(out, Restaurant(
			WithID(fmt.Sprintf("phl-%02d", i)),
			WithName(fmt.Sprintf("Philly Spot %02d", i)),
			WithStars(float64(1+i%5)),
			WithReviews(i*10),
			WithCategories("Restaurants, "+category),
		))
	}
	out = append(out,
		Restaurant(WithID("twin-1"), WithName("Twin Diner"), WithAddress("1 Broad St"),
			WithStars(3.5), WithCategories("Diners, Breakfast & Brunch")),
		Restaurant(WithID("twin-2"), WithName("Twin Diner"), WithAddress("2 Spruce St"),
			WithStars(3.5), WithCategories("Diners")),
		Restaurant(WithID("tpa-1"), WithName("Gulf Grill"), WithCity("Tampa", "FL"),
			WithStars(4.5), WithReviews(512), WithCategories("Seafood, Restaurants")),
		Restaurant(WithID("tpa-2"), WithName("Cuban Corner"), WithCity("Tampa", "FL"),
			WithStars(5), WithReviews(87), WithCategories("Cuban, Sandwiches")),
		Restaurant(WithID("reno-1"), WithName("Biggest Little Burger"), WithCity("Reno", "NV"),
			WithStars(2.5), WithReviews(12), WithCategories("Burgers")),
	)
	return out
}

// ============================================================================
// Datasets
// ============================================================================

// Dataset renders restaurants as CSV with a Columns header
func Dataset(t testing.TB, restaurants ...model.Restaurant) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		t.Fatalf("fixtures: write header: %v", err)
	}
	for _, r := range restaurants {
		record := []string{
			r.ID, r.Name, r.Address, r.City, r.State, r.PostalCode,
			strconv.FormatFloat(r.Stars, 'f', -1, 64),
			strconv.Itoa(r.ReviewCount),
			r.Categories, r.Hours,
		}
		if err := w.Write(record); err != nil {
			t.Fatalf("fixtures: write %s: %v", r.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("fixtures: flush dataset: %v", err)
	}
	return buf.Bytes()
}

// WriteDataset writes restaurants to dir/DatasetFile and returns the path
func WriteDataset(t testing.TB, dir string, restaurants ...model.Restaurant) string {
	t.Helper()

	path := filepath.Join(dir, DatasetFile)
	if err := os.WriteFile(path, Dataset(t, restaurants...), 0o644); err != nil {
		t.Fatalf("fixtures: write dataset: %v", err)
	}
	return path
}
