// Package docstore defines the document store capability the client persists through.
//
// Documents are addressed by slash separated paths. A path with an even number of
// segments names a document (users/u1); an odd number names a collection
// (users/u1/donations). Writes with Merge set overwrite only the named fields.
//
//	raw, err := store.Get(ctx, "users/u1")
//	if errors.Is(err, docstore.ErrNotFound) {
//	    // first sign-in
//	}
//	err = store.Set(ctx, "users/u1", map[string]interface{}{"darkMode": false}, docstore.Merge)
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidPath indicates a malformed document or collection path.
	ErrInvalidPath = errors.New("invalid document path")
)

// SetOptions controls how Set writes a document
type SetOptions struct {
	Merge bool
}

// Merge is the SetOptions for partial-field writes
var Merge = SetOptions{Merge: true}

// Store is an opaque document store
type Store interface {
	// Get returns the JSON encoded document at path
	Get(ctx context.Context, path string) (json.RawMessage, error)

	// Set writes fields to the document at path, creating it when absent
	Set(ctx context.Context, path string, fields map[string]interface{}, opts SetOptions) error

	// Add appends a new document to the collection and returns its id
	Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error)

	// List returns every document of a collection in insertion order
	List(ctx context.Context, collection string) ([]json.RawMessage, error)
}

// DocumentPath is a parsed document path
type DocumentPath struct {
	Parent     string // enclosing document path, empty at the root
	Collection string
	ID         string
}

// CollectionPath is a parsed collection path
type CollectionPath struct {
	Parent     string
	Collection string
}

// ParseDocument splits a document path into its parts
func ParseDocument(path string) (DocumentPath, error) {
	segs, err := split(path)
	if err != nil {
		return DocumentPath{}, err
	}
	if len(segs)%2 != 0 {
		return DocumentPath{}, fmt.Errorf("%w: %q names a collection", ErrInvalidPath, path)
	}
	n := len(segs)
	return DocumentPath{
		Parent:     strings.Join(segs[:n-2], "/"),
		Collection: segs[n-2],
		ID:         segs[n-1],
	}, nil
}

// ParseCollection splits a collection path into its parts
func ParseCollection(path string) (CollectionPath, error) {
	segs, err := split(path)
	if err != nil {
		return CollectionPath{}, err
	}
	if len(segs)%2 != 1 {
		return CollectionPath{}, fmt.Errorf("%w: %q names a document", ErrInvalidPath, path)
	}
	n := len(segs)
	return CollectionPath{
		Parent:     strings.Join(segs[:n-1], "/"),
		Collection: segs[n-1],
	}, nil
}

func split(path string) ([]string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	segs := strings.Split(path, "/")
	for _, s := range segs {
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, path)
		}
	}
	return segs, nil
}
