// Package testdb connects tests to a real SurrealDB instance.
//
// Each TestDB gets its own namespace, removed when the test finishes. Tests
// are skipped when the database cannot be reached, so the package is safe
// to use in environments without SurrealDB.
//
// Configuration comes from TEST_DB_HOST, TEST_DB_PORT, TEST_DB_USER and
// TEST_DB_PASSWORD, defaulting to a local root:root instance on port 8000.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    repo := repository.NewDocumentRepository(tdb.DB)
//	    ...
//	}
package testdb
