package sqliteutil

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// OpenDB opens a local sqlite database and applies the given schema,
// tolerating schemas that have already been applied.
func OpenDB(schema, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return db, nil
}

// OpenRemoteDB connects to a remote libsql database instead of a
// local file.
func OpenRemoteDB(schema, url string) (*sql.DB, error) {
	db, err := sql.Open("libsql", url)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return db, nil
}
