package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/forgo/hungry/internal/database"
	"github.com/forgo/hungry/internal/docstore"
)

var _ docstore.Store = (*DocumentRepository)(nil)

// Bookkeeping fields stored alongside document fields and stripped on read
const (
	fieldParent    = "parent"
	fieldCreatedOn = "created_on"
)

// DocumentRepository implements docstore.Store on SurrealDB.
//
// A document path maps to a record in the table named by its collection
// segment. Root documents (users/u1) use the final segment as record id;
// nested documents (users/u1/donations/x) use the full path, and carry the
// enclosing document path in a parent field so List can select them.
type DocumentRepository struct {
	db database.Database
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db database.Database) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Get returns the document at path
func (r *DocumentRepository) Get(ctx context.Context, path string) (json.RawMessage, error) {
	doc, err := docstore.ParseDocument(path)
	if err != nil {
		return nil, err
	}

	query := `SELECT * FROM type::thing($tb, $key)`
	vars := map[string]interface{}{
		"tb":  doc.Collection,
		"key": recordKey(doc),
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, docstore.ErrNotFound
		}
		return nil, err
	}

	return encodeDocument(result, doc.ID)
}

// Set writes fields to the document at path. A merge write updates only the
// named fields; otherwise the stored content is replaced.
func (r *DocumentRepository) Set(ctx context.Context, path string, fields map[string]interface{}, opts docstore.SetOptions) error {
	doc, err := docstore.ParseDocument(path)
	if err != nil {
		return err
	}

	content, err := normalizeFields(fields)
	if err != nil {
		return err
	}
	content[fieldParent] = doc.Parent

	query := `UPSERT type::thing($tb, $key) CONTENT $content`
	if opts.Merge {
		query = `UPSERT type::thing($tb, $key) MERGE $content`
	}
	vars := map[string]interface{}{
		"tb":      doc.Collection,
		"key":     recordKey(doc),
		"content": content,
	}

	return r.db.Execute(ctx, query, vars)
}

// Add creates a new document in the collection and returns its id
func (r *DocumentRepository) Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	coll, err := docstore.ParseCollection(collection)
	if err != nil {
		return "", err
	}

	content, err := normalizeFields(fields)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	content[fieldParent] = coll.Parent

	// created_on is assigned by the database so List follows commit order
	query := `
		CREATE type::thing($tb, $key) CONTENT $content;
		UPDATE type::thing($tb, $key) SET created_on = time::now();
	`
	vars := map[string]interface{}{
		"tb":      coll.Collection,
		"key":     recordKey(docstore.DocumentPath{Parent: coll.Parent, Collection: coll.Collection, ID: id}),
		"content": content,
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		if isUniqueConstraintError(err) {
			return "", fmt.Errorf("%w: %s/%s", database.ErrDuplicate, collection, id)
		}
		return "", err
	}

	return id, nil
}

// List returns every document in the collection, oldest first
func (r *DocumentRepository) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	coll, err := docstore.ParseCollection(collection)
	if err != nil {
		return nil, err
	}

	query := `SELECT * FROM type::table($tb) WHERE parent = $parent ORDER BY created_on ASC`
	vars := map[string]interface{}{
		"tb":     coll.Collection,
		"parent": coll.Parent,
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	rows := database.Records(results, 0)
	docs := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		id := recordIDPart(row)
		raw, err := encodeDocument(row, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, raw)
	}
	return docs, nil
}

// recordKey is the record id for a document path
func recordKey(doc docstore.DocumentPath) string {
	if doc.Parent == "" {
		return doc.ID
	}
	return doc.Parent + "/" + doc.Collection + "/" + doc.ID
}
