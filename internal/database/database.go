package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Connect opens the SQLite database at path. The pragmas ride on the DSN so
// every connection the pool opens enforces foreign keys and waits out writer
// locks instead of failing busy; _txlock=immediate makes transactions take
// the write lock up front, serializing the CLI and the HTTP server writing
// to the same file.
func Connect(path string) (*sqlx.DB, error) {
	dsn := "file:" + path + "?_txlock=immediate" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)"
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return db, nil
}
