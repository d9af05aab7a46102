package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a MemoryStore persisted to a single JSON file after every
// write. It lets the client keep favorites and donations across runs when no
// database is configured.
type FileStore struct {
	*MemoryStore
	path string
	mu   sync.Mutex // serializes saves
}

type fileSnapshot struct {
	Documents   map[string]map[string]interface{} `json:"documents"`
	Collections map[string][]string               `json:"collections"`
}

// OpenFileStore loads path, or starts empty when it does not exist
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{MemoryStore: NewMemoryStore(), path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}

	var snap fileSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", path, err)
	}
	if snap.Documents != nil {
		s.docs = snap.Documents
	}
	if snap.Collections != nil {
		s.collections = snap.Collections
	}
	return s, nil
}

// Set implements Store
func (s *FileStore) Set(ctx context.Context, path string, fields map[string]interface{}, opts SetOptions) error {
	if err := s.MemoryStore.Set(ctx, path, fields, opts); err != nil {
		return err
	}
	return s.save()
}

// Add implements Store
func (s *FileStore) Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	id, err := s.MemoryStore.Add(ctx, collection, fields)
	if err != nil {
		return "", err
	}
	return id, s.save()
}

// save writes the snapshot to a temp file and renames it into place
func (s *FileStore) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.MemoryStore.mu.RLock()
	data, err := json.MarshalIndent(fileSnapshot{
		Documents:   s.docs,
		Collections: s.collections,
	}, "", "  ")
	s.MemoryStore.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}
