package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/forgo/hungry/internal/database"
	"github.com/forgo/hungry/internal/docstore"
)

// ============================================================================
// Mock Database
// ============================================================================

type mockDB struct {
	queryFunc    func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
	queryOneFunc func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)
	executeFunc  func(ctx context.Context, query string, vars map[string]interface{}) error
}

func (m *mockDB) Connect(ctx context.Context) error { return nil }
func (m *mockDB) Close() error                      { return nil }
func (m *mockDB) Ping(ctx context.Context) error    { return nil }

func (m *mockDB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, query, vars)
	}
	return nil, nil
}

func (m *mockDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	if m.queryOneFunc != nil {
		return m.queryOneFunc(ctx, query, vars)
	}
	return nil, database.ErrNotFound
}

func (m *mockDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, query, vars)
	}
	return nil
}

// ============================================================================
// Get
// ============================================================================

func TestDocumentRepository_Get(t *testing.T) {
	t.Parallel()

	var gotVars map[string]interface{}
	db := &mockDB{
		queryOneFunc: func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
			gotVars = vars
			return map[string]interface{}{
				"id":         models.RecordID{Table: "users", ID: "u1"},
				"parent":     "",
				"favorites":  []interface{}{map[string]interface{}{"name": "Cafe"}},
				"darkMode":   false,
				"created_on": models.CustomDateTime{},
			}, nil
		},
	}
	repo := NewDocumentRepository(db)

	raw, err := repo.Get(context.Background(), "users/u1")
	require.NoError(t, err)

	assert.Equal(t, "users", gotVars["tb"])
	assert.Equal(t, "u1", gotVars["key"])

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "u1", doc["id"])
	assert.Equal(t, false, doc["darkMode"])
	assert.NotContains(t, doc, "parent")
	assert.NotContains(t, doc, "created_on")
	assert.Len(t, doc["favorites"], 1)
}

func TestDocumentRepository_GetNotFound(t *testing.T) {
	t.Parallel()

	repo := NewDocumentRepository(&mockDB{})
	_, err := repo.Get(context.Background(), "users/missing")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestDocumentRepository_GetInvalidPath(t *testing.T) {
	t.Parallel()

	repo := NewDocumentRepository(&mockDB{})
	_, err := repo.Get(context.Background(), "users")
	assert.ErrorIs(t, err, docstore.ErrInvalidPath)
}

// ============================================================================
// Set
// ============================================================================

func TestDocumentRepository_Set(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		opts      docstore.SetOptions
		wantQuery string
	}{
		{"merge", docstore.Merge, "MERGE $content"},
		{"replace", docstore.SetOptions{}, "CONTENT $content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery string
			var gotVars map[string]interface{}
			db := &mockDB{
				executeFunc: func(ctx context.Context, query string, vars map[string]interface{}) error {
					gotQuery, gotVars = query, vars
					return nil
				},
			}
			repo := NewDocumentRepository(db)

			err := repo.Set(context.Background(), "users/u1", map[string]interface{}{"darkMode": true, "id": "spoof"}, tt.opts)
			require.NoError(t, err)

			assert.Contains(t, gotQuery, "UPSERT")
			assert.Contains(t, gotQuery, tt.wantQuery)
			content := gotVars["content"].(map[string]interface{})
			assert.Equal(t, true, content["darkMode"])
			assert.Equal(t, "", content["parent"])
			assert.NotContains(t, content, "id")
		})
	}
}

func TestDocumentRepository_SetError(t *testing.T) {
	t.Parallel()

	db := &mockDB{
		executeFunc: func(ctx context.Context, query string, vars map[string]interface{}) error {
			return database.ErrConnection
		},
	}
	repo := NewDocumentRepository(db)

	err := repo.Set(context.Background(), "users/u1", map[string]interface{}{"favorites": []string{}}, docstore.Merge)
	assert.ErrorIs(t, err, database.ErrConnection)
}

// ============================================================================
// Add / List
// ============================================================================

func TestDocumentRepository_Add(t *testing.T) {
	t.Parallel()

	var gotVars map[string]interface{}
	db := &mockDB{
		executeFunc: func(ctx context.Context, query string, vars map[string]interface{}) error {
			gotVars = vars
			return nil
		},
	}
	repo := NewDocumentRepository(db)

	id, err := repo.Add(context.Background(), "users/u1/donations", map[string]interface{}{"amount": 5.0})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	assert.Equal(t, "donations", gotVars["tb"])
	assert.Equal(t, "users/u1/donations/"+id, gotVars["key"])
	content := gotVars["content"].(map[string]interface{})
	assert.Equal(t, "users/u1", content["parent"])
	assert.Equal(t, 5.0, content["amount"])
}

func TestDocumentRepository_AddDuplicate(t *testing.T) {
	t.Parallel()

	db := &mockDB{
		executeFunc: func(ctx context.Context, query string, vars map[string]interface{}) error {
			return errors.New("record already exists")
		},
	}
	repo := NewDocumentRepository(db)

	_, err := repo.Add(context.Background(), "users/u1/donations", map[string]interface{}{"amount": 1})
	assert.ErrorIs(t, err, database.ErrDuplicate)
}

func TestDocumentRepository_List(t *testing.T) {
	t.Parallel()

	var gotQuery string
	var gotVars map[string]interface{}
	db := &mockDB{
		queryFunc: func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
			gotQuery, gotVars = query, vars
			return []interface{}{
				map[string]interface{}{
					"status": "OK",
					"result": []interface{}{
						map[string]interface{}{"id": models.RecordID{Table: "donations", ID: "users/u1/donations/a"}, "amount": 5.0, "parent": "users/u1"},
						map[string]interface{}{"id": "donations:b", "amount": 10.0, "parent": "users/u1"},
					},
				},
			}, nil
		},
	}
	repo := NewDocumentRepository(db)

	docs, err := repo.List(context.Background(), "users/u1/donations")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.True(t, strings.Contains(gotQuery, "ORDER BY created_on"))
	assert.Equal(t, "users/u1", gotVars["parent"])
	assert.JSONEq(t, `{"id":"a","amount":5}`, string(docs[0]))
	assert.JSONEq(t, `{"id":"b","amount":10}`, string(docs[1]))
}

func TestDocumentRepository_ListEmpty(t *testing.T) {
	t.Parallel()

	repo := NewDocumentRepository(&mockDB{})
	docs, err := repo.List(context.Background(), "users/u1/donations")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
