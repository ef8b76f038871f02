package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pharmadesk/m/domain"
)

// Bill pricing restored from the shop's billing rules.
const (
	taxRate           = 0.05
	discountRate      = 0.10
	discountThreshold = 1000.0
)

// SellMedicine decrements stock and records the sale in one transaction.
// The stock check and the decrement run against the same snapshot: the
// UPDATE is conditional on the quantity still covering the sale, so two
// concurrent sales cannot jointly oversell.
func (s *Store) SellMedicine(ctx context.Context, medicineID, quantity int64) (domain.Sale, error) {
	if quantity <= 0 {
		return domain.Sale{}, fmt.Errorf("%w: sale quantity must be positive", domain.ErrValidation)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("begin sale: %w", err)
	}
	defer tx.Rollback()

	var snap struct {
		Name     string  `db:"name"`
		Price    float64 `db:"price"`
		Quantity int64   `db:"quantity"`
		Expiry   *string `db:"expiry"`
	}
	err = tx.GetContext(ctx, &snap,
		`SELECT name, price, quantity, expiry FROM medicines WHERE id = ?`, medicineID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Sale{}, fmt.Errorf("%w: medicine %d", domain.ErrNotFound, medicineID)
	}
	if err != nil {
		return domain.Sale{}, fmt.Errorf("load medicine: %w", err)
	}
	if isExpired(snap.Expiry, s.now()) {
		return domain.Sale{}, fmt.Errorf("%w: %s is expired and cannot be sold", domain.ErrValidation, snap.Name)
	}
	if snap.Quantity < quantity {
		return domain.Sale{}, fmt.Errorf("%w: %s has %d units, requested %d",
			domain.ErrInsufficientStock, snap.Name, snap.Quantity, quantity)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE medicines SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`,
		quantity, medicineID, quantity)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("decrement stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Sale{}, fmt.Errorf("decrement stock: %w", err)
	}
	if affected == 0 {
		return domain.Sale{}, fmt.Errorf("%w: %s was sold out concurrently",
			domain.ErrInsufficientStock, snap.Name)
	}

	total := snap.Price * float64(quantity)
	saleDate := s.today()
	createdAt := s.timestamp()
	saleRes, err := tx.ExecContext(ctx,
		`INSERT INTO sales (sale_date, total_amount, created_at) VALUES (?, ?, ?)`,
		saleDate, total, createdAt)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("insert sale: %w", err)
	}
	saleID, err := saleRes.LastInsertId()
	if err != nil {
		return domain.Sale{}, fmt.Errorf("sale id: %w", err)
	}

	itemRes, err := tx.ExecContext(ctx,
		`INSERT INTO sale_items (sale_id, medicine_id, medicine_name, quantity, unit_price, subtotal)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		saleID, medicineID, snap.Name, quantity, snap.Price, total)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("insert sale item: %w", err)
	}
	itemID, err := itemRes.LastInsertId()
	if err != nil {
		return domain.Sale{}, fmt.Errorf("sale item id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Sale{}, fmt.Errorf("commit sale: %w", err)
	}

	return domain.Sale{
		ID:          saleID,
		SaleDate:    saleDate,
		TotalAmount: total,
		CreatedAt:   createdAt,
		Items: []domain.SaleItem{{
			ID:           itemID,
			SaleID:       saleID,
			MedicineID:   medicineID,
			MedicineName: snap.Name,
			Quantity:     quantity,
			UnitPrice:    snap.Price,
			Subtotal:     total,
		}},
	}, nil
}

// TodaysSalesTotal sums quantity * unit price over today's sale items and
// reports how many transactions contributed.
func (s *Store) TodaysSalesTotal(ctx context.Context) (float64, int64, error) {
	var row struct {
		Total float64 `db:"total"`
		Count int64   `db:"count"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT COALESCE(SUM(si.quantity * si.unit_price), 0) AS total, COUNT(DISTINCT sl.id) AS count
		 FROM sales sl LEFT JOIN sale_items si ON si.sale_id = sl.id
		 WHERE sl.sale_date = ?`, s.today())
	if err != nil {
		return 0, 0, fmt.Errorf("today's sales total: %w", err)
	}
	return row.Total, row.Count, nil
}

// SalesReport lists sales with their line items, newest first, optionally
// bounded by inclusive YYYY-MM-DD dates.
func (s *Store) SalesReport(ctx context.Context, fromDate, toDate string) ([]domain.Sale, error) {
	query := `SELECT id, sale_date, total_amount, created_at FROM sales`
	var clauses []string
	var args []any
	if fromDate != "" {
		if _, err := time.Parse(dateLayout, fromDate); err != nil {
			return nil, fmt.Errorf("%w: from date must be YYYY-MM-DD", domain.ErrValidation)
		}
		clauses = append(clauses, "sale_date >= ?")
		args = append(args, fromDate)
	}
	if toDate != "" {
		if _, err := time.Parse(dateLayout, toDate); err != nil {
			return nil, fmt.Errorf("%w: to date must be YYYY-MM-DD", domain.ErrValidation)
		}
		clauses = append(clauses, "sale_date <= ?")
		args = append(args, toDate)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY id DESC"

	sales := []domain.Sale{}
	if err := s.db.SelectContext(ctx, &sales, query, args...); err != nil {
		return nil, fmt.Errorf("sales report: %w", err)
	}
	if len(sales) == 0 {
		return sales, nil
	}

	ids := make([]int64, len(sales))
	for i, sale := range sales {
		ids[i] = sale.ID
	}
	itemsQuery, itemsArgs, err := sqlx.In(
		`SELECT id, sale_id, medicine_id, medicine_name, quantity, unit_price, subtotal
		 FROM sale_items WHERE sale_id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("prepare sale items query: %w", err)
	}
	itemsQuery = s.db.Rebind(itemsQuery)

	var items []domain.SaleItem
	if err := s.db.SelectContext(ctx, &items, itemsQuery, itemsArgs...); err != nil {
		return nil, fmt.Errorf("load sale items: %w", err)
	}
	itemsBySale := make(map[int64][]domain.SaleItem)
	for _, item := range items {
		itemsBySale[item.SaleID] = append(itemsBySale[item.SaleID], item)
	}
	for i := range sales {
		sales[i].Items = itemsBySale[sales[i].ID]
	}
	return sales, nil
}

// BillItem is one requested line of a bill.
type BillItem struct {
	MedicineID int64
	Quantity   int64
}

// GenerateBill prices the requested items against current stock without
// writing anything. Every item must exist and be coverable by stock.
func (s *Store) GenerateBill(ctx context.Context, items []BillItem) (domain.Bill, error) {
	if len(items) == 0 {
		return domain.Bill{}, fmt.Errorf("%w: a bill needs at least one item", domain.ErrValidation)
	}
	bill := domain.Bill{Lines: make([]domain.BillLine, 0, len(items))}
	for _, item := range items {
		if item.Quantity <= 0 {
			return domain.Bill{}, fmt.Errorf("%w: bill quantity must be positive", domain.ErrValidation)
		}
		med, err := s.GetMedicine(ctx, item.MedicineID)
		if err != nil {
			return domain.Bill{}, err
		}
		if med.Quantity < item.Quantity {
			return domain.Bill{}, fmt.Errorf("%w: %s has %d units, requested %d",
				domain.ErrInsufficientStock, med.Name, med.Quantity, item.Quantity)
		}
		line := domain.BillLine{
			MedicineID: med.ID,
			Name:       med.Name,
			UnitPrice:  med.Price,
			Quantity:   item.Quantity,
			LineTotal:  med.Price * float64(item.Quantity),
		}
		bill.Lines = append(bill.Lines, line)
		bill.Subtotal += line.LineTotal
	}
	bill.Tax = bill.Subtotal * taxRate
	if bill.Subtotal >= discountThreshold {
		bill.Discount = bill.Subtotal * discountRate
	}
	bill.Total = bill.Subtotal + bill.Tax - bill.Discount
	return bill, nil
}
