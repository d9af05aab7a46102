// Package storage provides the sources a restaurant dataset can be read from.
//
// A Source is opened once per catalog load. FileSource reads a local CSV file;
// ObjectSource reads an object from a MinIO (or any S3 compatible) bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotFound indicates the dataset does not exist at the source
var ErrNotFound = errors.New("dataset not found")

// Source yields the raw dataset
type Source interface {
	// Open returns a reader over the dataset; the caller closes it
	Open(ctx context.Context) (io.ReadCloser, error)

	// Name describes the source for logs
	Name() string
}

// FileSource reads the dataset from the local filesystem
type FileSource struct {
	Path string
}

// NewFileSource creates a file source
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Open implements Source
func (f *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, f.Path)
		}
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	return file, nil
}

// Name implements Source
func (f *FileSource) Name() string {
	return "file:" + f.Path
}
