package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema. Safe to call at every startup.
func Run(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS suppliers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			contact TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			phone TEXT,
			UNIQUE(name, phone)
		);`,
		`CREATE TABLE IF NOT EXISTS medicines (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			price REAL NOT NULL CHECK (price >= 0),
			quantity INTEGER NOT NULL CHECK (quantity >= 0),
			supplier_id INTEGER REFERENCES suppliers(id),
			expiry TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS sales (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sale_date TEXT NOT NULL,
			total_amount REAL NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		// medicine_id carries no foreign key so that sales history survives
		// deleting a medicine; the name snapshot keeps old rows readable.
		`CREATE TABLE IF NOT EXISTS sale_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sale_id INTEGER NOT NULL REFERENCES sales(id),
			medicine_id INTEGER NOT NULL,
			medicine_name TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price REAL NOT NULL,
			subtotal REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS prescriptions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			customer_name TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS prescription_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			prescription_id INTEGER NOT NULL REFERENCES prescriptions(id),
			medicine_id INTEGER NOT NULL REFERENCES medicines(id),
			quantity INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_medicines_name ON medicines(name);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales(sale_date);`,
		`CREATE INDEX IF NOT EXISTS idx_sale_items_sale_id ON sale_items(sale_id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
