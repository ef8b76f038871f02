// Package store implements the pharmacy's domain operations over a SQLite
// database. Operations are stateless between calls; all durable state lives
// in the database, so the same Store can back the CLI, the HTTP API, or
// tests.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"pharmadesk/m/domain"
)

const dateLayout = "2006-01-02"

// DefaultLowStockThreshold flags medicines running out when no explicit
// threshold is configured.
const DefaultLowStockThreshold = 10

// Store executes domain operations against the database.
type Store struct {
	db        *sqlx.DB
	threshold int64
	now       func() time.Time
}

// New wraps db with the given low-stock threshold. A threshold below one
// falls back to the default.
func New(db *sqlx.DB, lowStockThreshold int) *Store {
	if lowStockThreshold < 1 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &Store{db: db, threshold: int64(lowStockThreshold), now: time.Now}
}

// DB exposes the underlying handle for startup tasks like seeding.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) timestamp() string {
	return s.now().Format(time.RFC3339)
}

func (s *Store) today() string {
	// Day boundary follows the local system clock.
	return s.now().Format(dateLayout)
}

// Suppliers

// AddSupplier registers a supplier. Names are not unique; two suppliers may
// share one.
func (s *Store) AddSupplier(ctx context.Context, name, contact string) (domain.Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Supplier{}, fmt.Errorf("%w: supplier name is required", domain.ErrValidation)
	}
	createdAt := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO suppliers (name, contact, created_at) VALUES (?, ?, ?)`,
		name, strings.TrimSpace(contact), createdAt)
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("insert supplier: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("supplier id: %w", err)
	}
	return domain.Supplier{ID: id, Name: name, Contact: strings.TrimSpace(contact), CreatedAt: createdAt}, nil
}

// ListSuppliers returns all suppliers in insertion order.
func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	suppliers := []domain.Supplier{}
	err := s.db.SelectContext(ctx, &suppliers,
		`SELECT id, name, contact, created_at FROM suppliers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *Store) getOrCreateSupplier(ctx context.Context, tx *sqlx.Tx, name string) (int64, error) {
	var id int64
	err := tx.GetContext(ctx, &id, `SELECT id FROM suppliers WHERE name = ? ORDER BY id LIMIT 1`, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup supplier: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO suppliers (name, contact, created_at) VALUES (?, '', ?)`, name, s.timestamp())
	if err != nil {
		return 0, fmt.Errorf("create supplier: %w", err)
	}
	return res.LastInsertId()
}

// Medicines

// AddMedicineParams collects the add-medicine inputs. Exactly one of
// SupplierID and SupplierName may reference a supplier; a named supplier is
// created when it does not exist yet, an ID must already exist. Both empty
// means no supplier.
type AddMedicineParams struct {
	Name         string
	Price        float64
	Quantity     int64
	SupplierID   *int64
	SupplierName string
	Expiry       string
}

// AddMedicine validates and inserts a medicine, returning the stored row.
func (s *Store) AddMedicine(ctx context.Context, p AddMedicineParams) (domain.Medicine, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.SupplierName = strings.TrimSpace(p.SupplierName)
	p.Expiry = strings.TrimSpace(p.Expiry)
	switch {
	case p.Name == "":
		return domain.Medicine{}, fmt.Errorf("%w: medicine name is required", domain.ErrValidation)
	case p.Price < 0:
		return domain.Medicine{}, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	case p.Quantity < 0:
		return domain.Medicine{}, fmt.Errorf("%w: quantity must not be negative", domain.ErrValidation)
	}
	var expiry *string
	if p.Expiry != "" {
		if _, err := time.Parse(dateLayout, p.Expiry); err != nil {
			return domain.Medicine{}, fmt.Errorf("%w: expiry must be a YYYY-MM-DD date", domain.ErrValidation)
		}
		expiry = &p.Expiry
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("begin add medicine: %w", err)
	}
	defer tx.Rollback()

	var supplierID *int64
	var supplierName *string
	switch {
	case p.SupplierID != nil:
		var name string
		err := tx.GetContext(ctx, &name, `SELECT name FROM suppliers WHERE id = ?`, *p.SupplierID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Medicine{}, fmt.Errorf("%w: supplier %d", domain.ErrNotFound, *p.SupplierID)
		}
		if err != nil {
			return domain.Medicine{}, fmt.Errorf("lookup supplier: %w", err)
		}
		supplierID = p.SupplierID
		supplierName = &name
	case p.SupplierName != "":
		id, err := s.getOrCreateSupplier(ctx, tx, p.SupplierName)
		if err != nil {
			return domain.Medicine{}, err
		}
		supplierID = &id
		supplierName = &p.SupplierName
	}

	createdAt := s.timestamp()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO medicines (name, price, quantity, supplier_id, expiry, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Price, p.Quantity, supplierID, expiry, createdAt)
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("insert medicine: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("medicine id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Medicine{}, fmt.Errorf("commit add medicine: %w", err)
	}

	return domain.Medicine{
		ID:           id,
		Name:         p.Name,
		Price:        p.Price,
		Quantity:     p.Quantity,
		SupplierID:   supplierID,
		SupplierName: supplierName,
		Expiry:       expiry,
		CreatedAt:    createdAt,
	}, nil
}

const medicineColumns = `m.id, m.name, m.price, m.quantity, m.supplier_id, s.name AS supplier_name, m.expiry, m.created_at`

// ListMedicines returns the full inventory ordered by name.
func (s *Store) ListMedicines(ctx context.Context) ([]domain.Medicine, error) {
	medicines := []domain.Medicine{}
	err := s.db.SelectContext(ctx, &medicines,
		`SELECT `+medicineColumns+` FROM medicines m LEFT JOIN suppliers s ON s.id = m.supplier_id ORDER BY m.name, m.id`)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return medicines, nil
}

// SearchMedicines matches medicine names case-insensitively on a substring.
func (s *Store) SearchMedicines(ctx context.Context, query string) ([]domain.Medicine, error) {
	like := "%" + strings.TrimSpace(query) + "%"
	medicines := []domain.Medicine{}
	err := s.db.SelectContext(ctx, &medicines,
		`SELECT `+medicineColumns+` FROM medicines m LEFT JOIN suppliers s ON s.id = m.supplier_id
		 WHERE m.name LIKE ? COLLATE NOCASE ORDER BY m.name, m.id`, like)
	if err != nil {
		return nil, fmt.Errorf("search medicines: %w", err)
	}
	return medicines, nil
}

// GetMedicine fetches a medicine by id.
func (s *Store) GetMedicine(ctx context.Context, id int64) (domain.Medicine, error) {
	var m domain.Medicine
	err := s.db.GetContext(ctx, &m,
		`SELECT `+medicineColumns+` FROM medicines m LEFT JOIN suppliers s ON s.id = m.supplier_id WHERE m.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Medicine{}, fmt.Errorf("%w: medicine %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("get medicine: %w", err)
	}
	return m, nil
}

// ResolveMedicine accepts either a numeric id or an exact (case-insensitive)
// medicine name, the two ways the front-ends refer to a medicine.
func (s *Store) ResolveMedicine(ctx context.Context, ref string) (domain.Medicine, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Medicine{}, fmt.Errorf("%w: medicine reference is required", domain.ErrValidation)
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.GetMedicine(ctx, id)
	}
	var m domain.Medicine
	err := s.db.GetContext(ctx, &m,
		`SELECT `+medicineColumns+` FROM medicines m LEFT JOIN suppliers s ON s.id = m.supplier_id
		 WHERE m.name = ? COLLATE NOCASE ORDER BY m.id LIMIT 1`, ref)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Medicine{}, fmt.Errorf("%w: medicine %q", domain.ErrNotFound, ref)
	}
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("resolve medicine: %w", err)
	}
	return m, nil
}

// DeleteMedicine removes the row. Sales history referencing the medicine is
// kept.
func (s *Store) DeleteMedicine(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete medicine: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM prescription_items WHERE medicine_id = ?`, id); err != nil {
		return fmt.Errorf("delete prescription items: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM medicines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: medicine %d", domain.ErrNotFound, id)
	}
	return tx.Commit()
}

// ListStock returns the inventory with low-stock and expired flags derived
// against the current date.
func (s *Store) ListStock(ctx context.Context) ([]domain.StockItem, error) {
	medicines, err := s.ListMedicines(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]domain.StockItem, len(medicines))
	today := s.now()
	for i, m := range medicines {
		items[i] = domain.StockItem{
			Medicine: m,
			LowStock: m.Quantity < s.threshold,
			Expired:  isExpired(m.Expiry, today),
		}
	}
	return items, nil
}

// LowStockExpiredReport partitions the stock into the two attention lists.
func (s *Store) LowStockExpiredReport(ctx context.Context) (domain.StockReport, error) {
	items, err := s.ListStock(ctx)
	if err != nil {
		return domain.StockReport{}, err
	}
	report := domain.StockReport{LowStock: []domain.StockItem{}, Expired: []domain.StockItem{}}
	for _, item := range items {
		if item.LowStock {
			report.LowStock = append(report.LowStock, item)
		}
		if item.Expired {
			report.Expired = append(report.Expired, item)
		}
	}
	return report, nil
}

func isExpired(expiry *string, now time.Time) bool {
	if expiry == nil {
		return false
	}
	exp, err := time.Parse(dateLayout, *expiry)
	if err != nil {
		return false
	}
	today, _ := time.Parse(dateLayout, now.Format(dateLayout))
	return exp.Before(today)
}
