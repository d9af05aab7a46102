package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/forgo/hungry/internal/model"
	"github.com/forgo/hungry/internal/storage"
)

// ErrMissingNameColumn indicates a dataset header without a name column
var ErrMissingNameColumn = errors.New("dataset has no name column")

// RestaurantRepository reads the restaurant dataset from a storage source
type RestaurantRepository struct {
	source storage.Source
}

// NewRestaurantRepository creates a new restaurant repository
func NewRestaurantRepository(source storage.Source) *RestaurantRepository {
	return &RestaurantRepository{source: source}
}

// Source returns the underlying dataset source
func (r *RestaurantRepository) Source() storage.Source {
	return r.source
}

// LoadAll reads every restaurant in the dataset. Columns are matched by header
// name; rows without a name are skipped and unparsable numbers read as zero.
func (r *RestaurantRepository) LoadAll(ctx context.Context) ([]*model.Restaurant, error) {
	rc, err := r.source.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return ParseRestaurants(rc)
}

// ParseRestaurants decodes a CSV dataset with a header row
func ParseRestaurants(in io.Reader) ([]*model.Restaurant, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []*model.Restaurant{}, nil
		}
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	cols := columnIndex(header)
	if _, ok := cols["name"]; !ok {
		return nil, ErrMissingNameColumn
	}

	restaurants := make([]*model.Restaurant, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset line %d: %w", line, err)
		}

		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		name := get("name")
		if name == "" {
			continue
		}

		id := get("id")
		if id == "" {
			id = get("business_id")
		}

		restaurants = append(restaurants, &model.Restaurant{
			ID:          id,
			Name:        name,
			Address:     get("address"),
			City:        get("city"),
			State:       get("state"),
			PostalCode:  get("postal_code"),
			Stars:       parseFloat(get("stars")),
			ReviewCount: parseInt(get("review_count")),
			Categories:  get("categories"),
			Hours:       get("hours"),
		})
	}

	return restaurants, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != f {
		return 0
	}
	return f
}

func parseInt(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	// pandas writes integer columns with missing values as floats
	if f := parseFloat(s); f > 0 {
		return int(f)
	}
	return 0
}
