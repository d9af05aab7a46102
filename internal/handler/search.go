package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/forgo/hungry/internal/cache"
	"github.com/forgo/hungry/internal/metrics"
	"github.com/forgo/hungry/internal/model"
)

// Catalog is the read side of the restaurant catalog
type Catalog interface {
	Search(ctx context.Context, query model.SearchQuery) (*model.SearchPage, error)
	Categories() ([]string, error)
	Get(id string) (*model.Restaurant, error)
	All() ([]model.Restaurant, error)
	Version() uint64
	Count() int
}

// SearchHandlerConfig holds the search handler's dependencies
type SearchHandlerConfig struct {
	Catalog Catalog
	Cache   cache.Cache // optional
	Logger  *slog.Logger
}

// SearchHandler serves the restaurant search API
type SearchHandler struct {
	catalog Catalog
	cache   cache.Cache
	logger  *slog.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(cfg SearchHandlerConfig) *SearchHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHandler{
		catalog: cfg.Catalog,
		cache:   cfg.Cache,
		logger:  logger,
	}
}

// RegisterRoutes registers the search API routes
func (h *SearchHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/search", h.Search)
	mux.HandleFunc("GET /api/categories", h.Categories)
	mux.HandleFunc("GET /api/data", h.List)
	mux.HandleFunc("GET /api/data/{id}", h.Get)
	mux.HandleFunc("GET /health", h.Health)
}

// Search handles GET /api/search?city=&page=&limit=&stars=&category=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query, problem := parseSearchQuery(r)
	if problem != nil {
		WriteError(w, problem)
		return
	}
	if fieldErrors := query.Validate(); len(fieldErrors) > 0 {
		WriteError(w, model.NewValidationError(fieldErrors))
		return
	}

	version := h.catalog.Version()
	key := cache.SearchKey(version, query.Normalized())
	if body, ok := h.cached(r.Context(), version, key); ok {
		w.Header().Set("X-Cache", "HIT")
		WriteRaw(w, http.StatusOK, body)
		return
	}

	page, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		h.logger.Warn("search failed",
			slog.String("city", query.City),
			slog.String("error", err.Error()))
		WriteError(w, MapServiceError(err))
		return
	}

	body, err := json.Marshal(page)
	if err != nil {
		WriteError(w, model.NewInternalError(""))
		return
	}
	body = append(body, '\n')
	if h.cache != nil && version > 0 {
		if err := h.cache.Set(r.Context(), key, body); err != nil {
			h.logger.Warn("search cache write failed", slog.String("error", err.Error()))
		}
		w.Header().Set("X-Cache", "MISS")
	}
	WriteRaw(w, http.StatusOK, body)
}

// cached looks key up when a cache is configured. Cache failures count as misses.
func (h *SearchHandler) cached(ctx context.Context, version uint64, key string) ([]byte, bool) {
	if h.cache == nil || version == 0 {
		return nil, false
	}
	body, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.Warn("search cache read failed", slog.String("error", err.Error()))
		ok = false
	}
	metrics.RecordCacheLookup(ok)
	if !ok {
		return nil, false
	}
	return body, true
}

// Categories handles GET /api/categories
func (h *SearchHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories()
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteJSON(w, http.StatusOK, categories)
}

// List handles GET /api/data
func (h *SearchHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.catalog.All()
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteJSON(w, http.StatusOK, restaurants)
}

// Get handles GET /api/data/{id}
func (h *SearchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		WriteError(w, model.NewBadRequestError("id required"))
		return
	}

	restaurant, err := h.catalog.Get(id)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteJSON(w, http.StatusOK, restaurant)
}

// HealthStatus is the body of GET /health
type HealthStatus struct {
	Status         string `json:"status"`
	Restaurants    int    `json:"restaurants"`
	CatalogVersion uint64 `json:"catalog_version"`
}

// Health handles GET /health. It reports 503 until the first catalog load.
func (h *SearchHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:         "ok",
		Restaurants:    h.catalog.Count(),
		CatalogVersion: h.catalog.Version(),
	}
	code := http.StatusOK
	if status.CatalogVersion == 0 {
		status.Status = "loading"
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, status)
}

// parseSearchQuery reads the query string. Missing numbers take their
// defaults; an empty stars value means any rating.
func parseSearchQuery(r *http.Request) (model.SearchQuery, *model.ProblemDetails) {
	values := r.URL.Query()
	query := model.SearchQuery{
		City:     strings.TrimSpace(values.Get("city")),
		Category: strings.TrimSpace(values.Get("category")),
		Page:     1,
		Limit:    model.DefaultPageSize,
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"page", &query.Page},
		{"limit", &query.Limit},
		{"stars", &query.Stars},
	} {
		raw := strings.TrimSpace(values.Get(p.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query, model.NewBadRequestError(p.name + " must be an integer")
		}
		*p.dst = n
	}
	return query, nil
}
