package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. Values are copied through JSON on the way
// in and out so callers never share maps with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	docs        map[string]map[string]interface{}
	collections map[string][]string // collection path -> ordered document paths
	failWrites  error
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:        make(map[string]map[string]interface{}),
		collections: make(map[string][]string),
	}
}

// FailWrites makes every later Set and Add return err; nil restores writes.
// It simulates an unreachable backend.
func (m *MemoryStore) FailWrites(err error) {
	m.mu.Lock()
	m.failWrites = err
	m.mu.Unlock()
}

// Get implements Store
func (m *MemoryStore) Get(ctx context.Context, path string) (json.RawMessage, error) {
	if _, err := ParseDocument(path); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return json.Marshal(doc)
}

// Set implements Store
func (m *MemoryStore) Set(ctx context.Context, path string, fields map[string]interface{}, opts SetOptions) error {
	if _, err := ParseDocument(path); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	copied, err := copyFields(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites != nil {
		return m.failWrites
	}

	existing, ok := m.docs[path]
	if !ok || !opts.Merge {
		m.docs[path] = copied
		return nil
	}
	for k, v := range copied {
		existing[k] = v
	}
	return nil
}

// Add implements Store
func (m *MemoryStore) Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	if _, err := ParseCollection(collection); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	copied, err := copyFields(fields)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites != nil {
		return "", m.failWrites
	}

	id := uuid.NewString()
	path := collection + "/" + id
	copied["id"] = id
	m.docs[path] = copied
	m.collections[collection] = append(m.collections[collection], path)
	return id, nil
}

// List implements Store
func (m *MemoryStore) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	if _, err := ParseCollection(collection); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := m.collections[collection]
	out := make([]json.RawMessage, 0, len(paths))
	for _, p := range paths {
		raw, err := json.Marshal(m.docs[p])
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func copyFields(fields map[string]interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	out := make(map[string]interface{})
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return out, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
)
