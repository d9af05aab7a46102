package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/forgo/hungry/internal/model"
)

// RestaurantLoader reads the full restaurant dataset
type RestaurantLoader interface {
	LoadAll(ctx context.Context) ([]*model.Restaurant, error)
}

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	Loader RestaurantLoader
	Logger *slog.Logger
}

// CatalogService answers search queries from an in-memory index of the dataset
type CatalogService struct {
	loader RestaurantLoader
	logger *slog.Logger

	mu      sync.RWMutex
	index   *catalogIndex
	version uint64
}

type catalogIndex struct {
	ordered    []model.Restaurant // dataset order
	ranked     []model.Restaurant // stars desc, review_count desc, name asc
	byID       map[string]int     // id -> position in ordered
	categories []string
	loadedAt   time.Time
}

// NewCatalogService creates a new catalog service
func NewCatalogService(cfg CatalogServiceConfig) *CatalogService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		loader: cfg.Loader,
		logger: logger,
	}
}

// Reload reads the dataset and swaps it in. On failure the previous index
// keeps serving.
func (s *CatalogService) Reload(ctx context.Context) error {
	start := time.Now()
	restaurants, err := s.loader.LoadAll(ctx)
	if err != nil {
		s.logger.Error("catalog reload failed", slog.String("error", err.Error()))
		return err
	}

	index := buildCatalogIndex(restaurants)

	s.mu.Lock()
	s.index = index
	s.version++
	version := s.version
	s.mu.Unlock()

	s.logger.Info("catalog loaded",
		slog.Int("restaurants", len(index.ordered)),
		slog.Int("categories", len(index.categories)),
		slog.Uint64("version", version),
		slog.Duration("took", time.Since(start)))
	return nil
}

func buildCatalogIndex(restaurants []*model.Restaurant) *catalogIndex {
	idx := &catalogIndex{
		ordered:  make([]model.Restaurant, 0, len(restaurants)),
		byID:     make(map[string]int),
		loadedAt: time.Now(),
	}

	seen := make(map[string]string)
	for _, r := range restaurants {
		if r == nil {
			continue
		}
		if r.ID != "" {
			if _, dup := idx.byID[r.ID]; !dup {
				idx.byID[r.ID] = len(idx.ordered)
			}
		}
		idx.ordered = append(idx.ordered, *r)
		for _, c := range r.CategoryList() {
			lower := strings.ToLower(c)
			if _, ok := seen[lower]; !ok {
				seen[lower] = c
			}
		}
	}

	idx.ranked = make([]model.Restaurant, len(idx.ordered))
	copy(idx.ranked, idx.ordered)
	sort.SliceStable(idx.ranked, func(i, j int) bool {
		a, b := idx.ranked[i], idx.ranked[j]
		if a.Stars != b.Stars {
			return a.Stars > b.Stars
		}
		if a.ReviewCount != b.ReviewCount {
			return a.ReviewCount > b.ReviewCount
		}
		return a.Name < b.Name
	})

	idx.categories = make([]string, 0, len(seen))
	for _, c := range seen {
		idx.categories = append(idx.categories, c)
	}
	sort.Slice(idx.categories, func(i, j int) bool {
		return strings.ToLower(idx.categories[i]) < strings.ToLower(idx.categories[j])
	})
	return idx
}

func (s *CatalogService) current() (*catalogIndex, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return nil, 0, ErrCatalogNotLoaded
	}
	return s.index, s.version, nil
}

// Search returns one page of the restaurants in query.City. Stars is a
// minimum rating; Category matches any of a restaurant's categories. A page
// past the end is empty but still reports the full total.
func (s *CatalogService) Search(ctx context.Context, query model.SearchQuery) (*model.SearchPage, error) {
	idx, _, err := s.current()
	if err != nil {
		return nil, err
	}

	city := strings.TrimSpace(query.City)
	if city == "" {
		return nil, ErrEmptySearchTerm
	}
	if query.Stars < model.MinStars || query.Stars > model.MaxStars {
		return nil, ErrInvalidStars
	}
	page := query.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return nil, ErrInvalidPage
	}
	limit := query.Limit
	if limit <= 0 {
		limit = model.DefaultPageSize
	}
	if limit > model.MaxPageSize {
		limit = model.MaxPageSize
	}

	matches := make([]model.Restaurant, 0)
	for _, r := range idx.ranked {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !strings.EqualFold(strings.TrimSpace(r.City), city) {
			continue
		}
		if query.Stars > 0 && r.Stars < float64(query.Stars) {
			continue
		}
		if !r.HasCategory(query.Category) {
			continue
		}
		matches = append(matches, r)
	}

	result := &model.SearchPage{
		Results: []model.Restaurant{},
		Total:   len(matches),
		Page:    page,
	}
	offset := (page - 1) * limit
	if offset < len(matches) {
		end := offset + limit
		if end > len(matches) {
			end = len(matches)
		}
		result.Results = matches[offset:end]
	}
	return result, nil
}

// Categories returns the distinct categories of the dataset, sorted
func (s *CatalogService) Categories() ([]string, error) {
	idx, _, err := s.current()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), idx.categories...), nil
}

// Get returns the restaurant with the dataset id
func (s *CatalogService) Get(id string) (*model.Restaurant, error) {
	idx, _, err := s.current()
	if err != nil {
		return nil, err
	}
	pos, ok := idx.byID[strings.TrimSpace(id)]
	if !ok {
		return nil, ErrRestaurantNotFound
	}
	r := idx.ordered[pos]
	return &r, nil
}

// All returns every restaurant in dataset order
func (s *CatalogService) All() ([]model.Restaurant, error) {
	idx, _, err := s.current()
	if err != nil {
		return nil, err
	}
	return append([]model.Restaurant(nil), idx.ordered...), nil
}

// Version increases with every successful reload; 0 means nothing is loaded
func (s *CatalogService) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Count returns the number of restaurants loaded
func (s *CatalogService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return 0
	}
	return len(s.index.ordered)
}
