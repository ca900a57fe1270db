package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
)

const dbFile = "taskrunner.duckdb"

// NewDB opens a DuckDB database. path is a database file or ":memory:".
func NewDB(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// NewDBInFolder opens the database file of a data folder, creating the folder
// when needed. An empty folder opens an in-memory database.
func NewDBInFolder(folder string) (*sql.DB, error) {
	if folder == "" {
		return NewDB(":memory:")
	}
	if err := os.MkdirAll(folder, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data folder: %w", err)
	}
	return NewDB(filepath.Join(folder, dbFile))
}
