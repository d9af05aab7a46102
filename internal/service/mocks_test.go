package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/forgo/hungry/internal/docstore"
	"github.com/forgo/hungry/internal/model"
)

// ============================================================================
// Mock Document Store
// ============================================================================

// mockStore delegates to a MemoryStore unless a func field overrides the call
type mockStore struct {
	*docstore.MemoryStore

	getFunc func(ctx context.Context, path string) (json.RawMessage, error)
	setFunc func(ctx context.Context, path string, fields map[string]interface{}, opts docstore.SetOptions) error

	mu       sync.Mutex
	getCalls int
	setCalls int
}

func newMockStore() *mockStore {
	return &mockStore{MemoryStore: docstore.NewMemoryStore()}
}

func (m *mockStore) Get(ctx context.Context, path string) (json.RawMessage, error) {
	m.mu.Lock()
	m.getCalls++
	fn := m.getFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, path)
	}
	return m.MemoryStore.Get(ctx, path)
}

func (m *mockStore) Set(ctx context.Context, path string, fields map[string]interface{}, opts docstore.SetOptions) error {
	m.mu.Lock()
	m.setCalls++
	fn := m.setFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, path, fields, opts)
	}
	return m.MemoryStore.Set(ctx, path, fields, opts)
}

func (m *mockStore) calls() (gets, sets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls, m.setCalls
}

// ============================================================================
// Mock Search Client
// ============================================================================

type mockSearchClient struct {
	searchFunc     func(ctx context.Context, query model.SearchQuery) (*model.SearchPage, error)
	categoriesFunc func(ctx context.Context) ([]string, error)

	mu      sync.Mutex
	queries []model.SearchQuery
	catCall int
}

func (m *mockSearchClient) Search(ctx context.Context, query model.SearchQuery) (*model.SearchPage, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	fn := m.searchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, query)
	}
	return &model.SearchPage{Results: []model.Restaurant{}, Page: query.Page}, nil
}

func (m *mockSearchClient) Categories(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	m.catCall++
	fn := m.categoriesFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return []string{}, nil
}

func (m *mockSearchClient) searchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

func (m *mockSearchClient) lastQuery() model.SearchQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries[len(m.queries)-1]
}

// ============================================================================
// Helpers
// ============================================================================

func restaurant(name string) model.Restaurant {
	return model.Restaurant{
		Name:        name,
		Address:     "1 " + name + " St",
		City:        "Tucson",
		State:       "AZ",
		PostalCode:  "85701",
		Stars:       4,
		ReviewCount: 10,
		Categories:  "Food",
	}
}

func restaurantsNamed(names ...string) []model.Restaurant {
	out := make([]model.Restaurant, len(names))
	for i, n := range names {
		out[i] = restaurant(n)
	}
	return out
}

func names(rs []model.Restaurant) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}
