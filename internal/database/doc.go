// Package database provides SurrealDB connectivity for the hungry client.
//
// The document store (internal/repository.DocumentRepository) sits on top of
// this package; nothing else talks to SurrealDB directly.
//
//	db := database.NewSurrealDB(database.Config{
//	    Host:      "localhost",
//	    Port:      "8000",
//	    User:      "root",
//	    Password:  "root",
//	    Namespace: "hungry",
//	    Database:  "client",
//	})
//	if err := db.Connect(ctx); err != nil {
//	    return err
//	}
//	defer db.Close()
package database
