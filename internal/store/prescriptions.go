package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmadesk/m/domain"
)

// PrescriptionEntry is one requested medicine on a prescription.
type PrescriptionEntry struct {
	MedicineID int64
	Quantity   int64
}

// RecordPrescription stores a prescription for the customer. The customer
// row is reused when the name/phone pair already exists. Stock is untouched;
// a prescription is not a sale.
func (s *Store) RecordPrescription(ctx context.Context, customerName, phone string, entries []PrescriptionEntry) (domain.Prescription, error) {
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return domain.Prescription{}, fmt.Errorf("%w: customer name is required", domain.ErrValidation)
	}
	if len(entries) == 0 {
		return domain.Prescription{}, fmt.Errorf("%w: a prescription needs at least one medicine", domain.ErrValidation)
	}
	for _, entry := range entries {
		if entry.Quantity <= 0 {
			return domain.Prescription{}, fmt.Errorf("%w: prescription quantity must be positive", domain.ErrValidation)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Prescription{}, fmt.Errorf("begin prescription: %w", err)
	}
	defer tx.Rollback()

	customerID, err := s.getOrCreateCustomer(ctx, tx, customerName, phone)
	if err != nil {
		return domain.Prescription{}, err
	}

	createdAt := s.timestamp()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO prescriptions (customer_id, customer_name, created_at) VALUES (?, ?, ?)`,
		customerID, customerName, createdAt)
	if err != nil {
		return domain.Prescription{}, fmt.Errorf("insert prescription: %w", err)
	}
	prescriptionID, err := res.LastInsertId()
	if err != nil {
		return domain.Prescription{}, fmt.Errorf("prescription id: %w", err)
	}

	items := make([]domain.PrescriptionItem, 0, len(entries))
	for _, entry := range entries {
		var medicineName string
		err := tx.GetContext(ctx, &medicineName, `SELECT name FROM medicines WHERE id = ?`, entry.MedicineID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Prescription{}, fmt.Errorf("%w: medicine %d", domain.ErrNotFound, entry.MedicineID)
		}
		if err != nil {
			return domain.Prescription{}, fmt.Errorf("lookup medicine: %w", err)
		}
		itemRes, err := tx.ExecContext(ctx,
			`INSERT INTO prescription_items (prescription_id, medicine_id, quantity) VALUES (?, ?, ?)`,
			prescriptionID, entry.MedicineID, entry.Quantity)
		if err != nil {
			return domain.Prescription{}, fmt.Errorf("insert prescription item: %w", err)
		}
		itemID, err := itemRes.LastInsertId()
		if err != nil {
			return domain.Prescription{}, fmt.Errorf("prescription item id: %w", err)
		}
		items = append(items, domain.PrescriptionItem{
			ID:             itemID,
			PrescriptionID: prescriptionID,
			MedicineID:     entry.MedicineID,
			MedicineName:   medicineName,
			Quantity:       entry.Quantity,
		})
	}

	if err := tx.Commit(); err != nil {
		return domain.Prescription{}, fmt.Errorf("commit prescription: %w", err)
	}

	return domain.Prescription{
		ID:           prescriptionID,
		CustomerID:   customerID,
		CustomerName: customerName,
		CreatedAt:    createdAt,
		Items:        items,
	}, nil
}

func (s *Store) getOrCreateCustomer(ctx context.Context, tx *sqlx.Tx, name, phone string) (int64, error) {
	phone = strings.TrimSpace(phone)
	var phoneArg *string
	if phone != "" {
		phoneArg = &phone
	}

	var id int64
	err := tx.GetContext(ctx, &id,
		`SELECT id FROM customers WHERE name = ? AND (phone = ? OR (phone IS NULL AND ? IS NULL)) LIMIT 1`,
		name, phoneArg, phoneArg)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup customer: %w", err)
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO customers (name, phone) VALUES (?, ?)`, name, phoneArg)
	if err != nil {
		return 0, fmt.Errorf("create customer: %w", err)
	}
	return res.LastInsertId()
}
