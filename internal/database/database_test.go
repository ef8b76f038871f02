package database

import (
	"path/filepath"
	"testing"

	"pharmadesk/m/internal/migrations"
)

func TestConnectConfiguresEveryPooledConnection(t *testing.T) {
	db, err := Connect(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Retire idle connections so each query below runs on a connection the
	// pool opened fresh, not the one Connect pinged.
	db.SetMaxIdleConns(0)

	t.Run("foreign keys enforced", func(t *testing.T) {
		var fk int
		if err := db.Get(&fk, "PRAGMA foreign_keys"); err != nil {
			t.Fatalf("read foreign_keys pragma: %v", err)
		}
		if fk != 1 {
			t.Errorf("foreign_keys = %d on a fresh pooled connection, want 1", fk)
		}
	})

	t.Run("busy timeout set", func(t *testing.T) {
		var timeout int
		if err := db.Get(&timeout, "PRAGMA busy_timeout"); err != nil {
			t.Fatalf("read busy_timeout pragma: %v", err)
		}
		if timeout != 5000 {
			t.Errorf("busy_timeout = %d on a fresh pooled connection, want 5000", timeout)
		}
	})

	t.Run("dangling references rejected", func(t *testing.T) {
		if err := migrations.Run(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		_, err := db.Exec(
			`INSERT INTO medicines (name, price, quantity, supplier_id) VALUES ('X', 1, 1, 999)`)
		if err == nil {
			t.Error("insert with unknown supplier_id should violate the foreign key")
		}
	})
}
