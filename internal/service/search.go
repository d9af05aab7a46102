package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/forgo/hungry/internal/model"
)

// SearchClient is the search endpoint the controller queries
type SearchClient interface {
	Search(ctx context.Context, query model.SearchQuery) (*model.SearchPage, error)
	Categories(ctx context.Context) ([]string, error)
}

// SearchState is a snapshot of the controller
type SearchState struct {
	Term     string
	Stars    int
	Category string
	Page     int
	PageSize int
	Total    int
	Results  []model.Restaurant
	Loading  bool
	Message  string
	Err      error
}

// PageCount returns the number of result pages
func (s SearchState) PageCount() int {
	return model.PageCount(s.Total, s.PageSize)
}

// HasNext reports whether a later page exists
func (s SearchState) HasNext() bool {
	return s.Term != "" && s.Page*s.PageSize < s.Total
}

// HasPrevious reports whether an earlier page exists
func (s SearchState) HasPrevious() bool {
	return s.Term != "" && s.Page > 1
}

// SearchControllerConfig holds configuration for the search controller
type SearchControllerConfig struct {
	Client   SearchClient
	PageSize int // defaults to model.DefaultPageSize
	Logger   *slog.Logger
}

// SearchController turns a term, filters and page into one query at a time
// and keeps page, total and results consistent. When requests overlap only
// the most recently issued one may update the state.
type SearchController struct {
	client   SearchClient
	pageSize int
	logger   *slog.Logger

	mu    sync.Mutex
	state SearchState
	seq   uint64

	categories []string
}

// NewSearchController creates a new search controller
func NewSearchController(cfg SearchControllerConfig) *SearchController {
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > model.MaxPageSize {
		pageSize = model.DefaultPageSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchController{
		client:   cfg.Client,
		pageSize: pageSize,
		logger:   logger,
		state:    SearchState{PageSize: pageSize},
	}
}

// Search queries page of the restaurants in term's city. An empty term fails
// without a request and keeps the previous results; a failed request keeps
// them too, as does a page past the end of a non-empty result set. stars is a
// minimum rating, 0 for any.
func (c *SearchController) Search(ctx context.Context, term string, stars int, category string, page int) error {
	term = strings.TrimSpace(term)
	category = strings.TrimSpace(category)

	switch {
	case term == "":
		return c.reject(ErrEmptySearchTerm, MsgEmptySearchTerm)
	case stars < model.MinStars || stars > model.MaxStars:
		return c.reject(ErrInvalidStars, "Stars must be 0 (any) or 1-5.")
	case page < 1:
		return c.reject(ErrInvalidPage, "Page must be at least 1.")
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state.Loading = true
	c.mu.Unlock()

	query := model.SearchQuery{
		City:     term,
		Page:     page,
		Limit:    c.pageSize,
		Stars:    stars,
		Category: category,
	}
	resp, err := c.client.Search(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		return ErrSearchSuperseded
	}
	c.state.Loading = false

	if err != nil {
		c.logger.Warn("search failed",
			slog.String("city", term),
			slog.Int("page", page),
			slog.String("error", err.Error()))
		c.state.Message = MsgSearchFailed
		c.state.Err = fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
		return c.state.Err
	}

	results := resp.Results
	if len(results) > c.pageSize {
		results = results[:c.pageSize]
	}
	respPage := resp.Page
	if respPage < 1 {
		respPage = page
	}
	if resp.Total > 0 && (respPage-1)*c.pageSize >= resp.Total {
		c.state.Message = fmt.Sprintf(MsgPageOutOfRange, respPage, model.PageCount(resp.Total, c.pageSize))
		c.state.Err = ErrPageOutOfRange
		return ErrPageOutOfRange
	}

	c.state.Term = term
	c.state.Stars = stars
	c.state.Category = category
	c.state.Page = respPage
	c.state.Total = resp.Total
	c.state.Results = append([]model.Restaurant(nil), results...)
	c.state.Err = nil
	c.state.Message = ""
	if len(results) == 0 {
		c.state.Message = fmt.Sprintf(MsgNoResultsFormat, term)
	}
	return nil
}

func (c *SearchController) reject(err error, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Message = message
	c.state.Err = err
	return err
}

// NextPage loads the following page of the current search. Past the last page
// it does nothing.
func (c *SearchController) NextPage(ctx context.Context) error {
	state := c.State()
	if !state.HasNext() {
		return nil
	}
	return c.Search(ctx, state.Term, state.Stars, state.Category, state.Page+1)
}

// PreviousPage loads the preceding page of the current search. On the first
// page it does nothing.
func (c *SearchController) PreviousPage(ctx context.Context) error {
	state := c.State()
	if !state.HasPrevious() {
		return nil
	}
	return c.Search(ctx, state.Term, state.Stars, state.Category, state.Page-1)
}

// PageCount returns ceil(total/pageSize)
func (c *SearchController) PageCount() int {
	return c.State().PageCount()
}

// State returns a copy of the current state
func (c *SearchController) State() SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Results = append([]model.Restaurant(nil), c.state.Results...)
	return s
}

// Categories returns category suggestions, fetched once per controller
func (c *SearchController) Categories(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	cached := c.categories
	c.mu.Unlock()
	if cached != nil {
		return append([]string(nil), cached...), nil
	}

	categories, err := c.client.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	if categories == nil {
		categories = []string{}
	}

	c.mu.Lock()
	c.categories = categories
	c.mu.Unlock()
	return append([]string(nil), categories...), nil
}
