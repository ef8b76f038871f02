package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pharmadesk/m/domain"
	"pharmadesk/m/internal/database"
	"pharmadesk/m/internal/migrations"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Connect(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return New(db, 10)
}

func addTestMedicine(t *testing.T, st *Store, p AddMedicineParams) domain.Medicine {
	t.Helper()
	med, err := st.AddMedicine(context.Background(), p)
	if err != nil {
		t.Fatalf("AddMedicine failed: %v", err)
	}
	return med
}

func TestSuppliers(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	t.Run("empty name is rejected", func(t *testing.T) {
		_, err := st.AddSupplier(ctx, "  ", "")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("suppliers list in insertion order", func(t *testing.T) {
		first, err := st.AddSupplier(ctx, "ABC Pharmacy", "abc@example.com")
		if err != nil {
			t.Fatalf("AddSupplier failed: %v", err)
		}
		second, err := st.AddSupplier(ctx, "Medico Wholesale", "")
		if err != nil {
			t.Fatalf("AddSupplier failed: %v", err)
		}

		suppliers, err := st.ListSuppliers(ctx)
		if err != nil {
			t.Fatalf("ListSuppliers failed: %v", err)
		}
		if len(suppliers) != 2 {
			t.Fatalf("expected 2 suppliers, got %d", len(suppliers))
		}
		if suppliers[0].ID != first.ID || suppliers[1].ID != second.ID {
			t.Errorf("suppliers out of insertion order: %+v", suppliers)
		}
	})

	t.Run("duplicate names are allowed", func(t *testing.T) {
		if _, err := st.AddSupplier(ctx, "ABC Pharmacy", "second branch"); err != nil {
			t.Errorf("duplicate supplier name should be accepted: %v", err)
		}
	})
}

func TestAddMedicineValidation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		params AddMedicineParams
		kind   error
	}{
		{"empty name", AddMedicineParams{Name: "", Price: 1, Quantity: 1}, domain.ErrValidation},
		{"negative price", AddMedicineParams{Name: "Aspirin", Price: -5, Quantity: 1}, domain.ErrValidation},
		{"negative quantity", AddMedicineParams{Name: "Aspirin", Price: 5, Quantity: -1}, domain.ErrValidation},
		{"bad expiry", AddMedicineParams{Name: "Aspirin", Price: 5, Quantity: 1, Expiry: "soon"}, domain.ErrValidation},
		{"unknown supplier id", AddMedicineParams{Name: "Aspirin", Price: 5, Quantity: 1, SupplierID: ptr(int64(99))}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := st.AddMedicine(ctx, tc.params); !errors.Is(err, tc.kind) {
				t.Errorf("expected %v, got %v", tc.kind, err)
			}
		})
	}

	medicines, err := st.ListMedicines(ctx)
	if err != nil {
		t.Fatalf("ListMedicines failed: %v", err)
	}
	if len(medicines) != 0 {
		t.Errorf("rejected inputs must not create rows, found %d", len(medicines))
	}
}

func TestAddAndSearchMedicine(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	med := addTestMedicine(t, st, AddMedicineParams{
		Name:         "Paracetamol 500",
		Price:        12.5,
		Quantity:     40,
		SupplierName: "ABC Pharmacy",
		Expiry:       "2027-06-30",
	})

	t.Run("named supplier is created on the fly", func(t *testing.T) {
		if med.SupplierID == nil || med.SupplierName == nil || *med.SupplierName != "ABC Pharmacy" {
			t.Fatalf("expected supplier to be attached, got %+v", med)
		}
		suppliers, err := st.ListSuppliers(ctx)
		if err != nil {
			t.Fatalf("ListSuppliers failed: %v", err)
		}
		if len(suppliers) != 1 || suppliers[0].Name != "ABC Pharmacy" {
			t.Errorf("expected auto-created supplier, got %+v", suppliers)
		}
	})

	t.Run("exact name search finds the row", func(t *testing.T) {
		results, err := st.SearchMedicines(ctx, "Paracetamol 500")
		if err != nil {
			t.Fatalf("SearchMedicines failed: %v", err)
		}
		if len(results) != 1 || results[0].ID != med.ID {
			t.Errorf("expected created medicine in results, got %+v", results)
		}
	})

	t.Run("search is case-insensitive substring", func(t *testing.T) {
		results, err := st.SearchMedicines(ctx, "paraCET")
		if err != nil {
			t.Fatalf("SearchMedicines failed: %v", err)
		}
		if len(results) != 1 {
			t.Errorf("expected 1 result, got %d", len(results))
		}
	})

	t.Run("no match returns empty slice", func(t *testing.T) {
		results, err := st.SearchMedicines(ctx, "ibuprofen")
		if err != nil {
			t.Fatalf("SearchMedicines failed: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected no results, got %+v", results)
		}
	})

	t.Run("resolve by id and by name", func(t *testing.T) {
		byName, err := st.ResolveMedicine(ctx, "paracetamol 500")
		if err != nil || byName.ID != med.ID {
			t.Errorf("resolve by name failed: %v %+v", err, byName)
		}
		byID, err := st.ResolveMedicine(ctx, "1")
		if err != nil || byID.ID != med.ID {
			t.Errorf("resolve by id failed: %v %+v", err, byID)
		}
		if _, err := st.ResolveMedicine(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestSellMedicine(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	med := addTestMedicine(t, st, AddMedicineParams{Name: "Cough Syrup", Price: 55, Quantity: 8})

	t.Run("happy path decrements and records", func(t *testing.T) {
		sale, err := st.SellMedicine(ctx, med.ID, 3)
		if err != nil {
			t.Fatalf("SellMedicine failed: %v", err)
		}
		if sale.TotalAmount != 165 {
			t.Errorf("expected total 165, got %v", sale.TotalAmount)
		}
		if len(sale.Items) != 1 || sale.Items[0].UnitPrice != 55 || sale.Items[0].Quantity != 3 {
			t.Errorf("unexpected sale items: %+v", sale.Items)
		}

		after, err := st.GetMedicine(ctx, med.ID)
		if err != nil {
			t.Fatalf("GetMedicine failed: %v", err)
		}
		if after.Quantity != 5 {
			t.Errorf("expected quantity 5, got %d", after.Quantity)
		}
	})

	t.Run("insufficient stock leaves state unchanged", func(t *testing.T) {
		_, err := st.SellMedicine(ctx, med.ID, 100)
		if !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected insufficient stock, got %v", err)
		}
		after, err := st.GetMedicine(ctx, med.ID)
		if err != nil {
			t.Fatalf("GetMedicine failed: %v", err)
		}
		if after.Quantity != 5 {
			t.Errorf("failed sale must not change stock, got %d", after.Quantity)
		}
		sales, err := st.SalesReport(ctx, "", "")
		if err != nil {
			t.Fatalf("SalesReport failed: %v", err)
		}
		if len(sales) != 1 {
			t.Errorf("failed sale must not add rows, found %d", len(sales))
		}
	})

	t.Run("unknown medicine", func(t *testing.T) {
		if _, err := st.SellMedicine(ctx, 999, 1); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		if _, err := st.SellMedicine(ctx, med.ID, 0); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("expired stock cannot be sold", func(t *testing.T) {
		old := addTestMedicine(t, st, AddMedicineParams{Name: "Old Batch", Price: 9, Quantity: 20, Expiry: "2020-01-01"})
		if _, err := st.SellMedicine(ctx, old.ID, 1); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error for expired medicine, got %v", err)
		}
	})
}

func TestDeleteMedicineKeepsSalesHistory(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	med := addTestMedicine(t, st, AddMedicineParams{Name: "Amoxicillin", Price: 30, Quantity: 10})
	if _, err := st.SellMedicine(ctx, med.ID, 2); err != nil {
		t.Fatalf("SellMedicine failed: %v", err)
	}

	if err := st.DeleteMedicine(ctx, med.ID); err != nil {
		t.Fatalf("DeleteMedicine failed: %v", err)
	}

	t.Run("gone from stock and search", func(t *testing.T) {
		stock, err := st.ListStock(ctx)
		if err != nil {
			t.Fatalf("ListStock failed: %v", err)
		}
		if len(stock) != 0 {
			t.Errorf("expected empty stock, got %+v", stock)
		}
		results, err := st.SearchMedicines(ctx, "Amoxicillin")
		if err != nil {
			t.Fatalf("SearchMedicines failed: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("deleted medicine still searchable: %+v", results)
		}
	})

	t.Run("sales history survives", func(t *testing.T) {
		sales, err := st.SalesReport(ctx, "", "")
		if err != nil {
			t.Fatalf("SalesReport failed: %v", err)
		}
		if len(sales) != 1 || len(sales[0].Items) != 1 {
			t.Fatalf("expected 1 sale with 1 item, got %+v", sales)
		}
		item := sales[0].Items[0]
		if item.MedicineID != med.ID || item.MedicineName != "Amoxicillin" {
			t.Errorf("sale item lost its medicine reference: %+v", item)
		}
	})

	t.Run("deleting again reports not found", func(t *testing.T) {
		if err := st.DeleteMedicine(ctx, med.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestTodaysSalesTotal(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	t.Run("zero with no sales", func(t *testing.T) {
		total, count, err := st.TodaysSalesTotal(ctx)
		if err != nil {
			t.Fatalf("TodaysSalesTotal failed: %v", err)
		}
		if total != 0 || count != 0 {
			t.Errorf("expected 0/0, got %v/%d", total, count)
		}
	})

	t.Run("full scenario", func(t *testing.T) {
		// add supplier, add Dolo 650, sell 2 units, expect total 40
		if _, err := st.AddSupplier(ctx, "ABC Pharmacy", ""); err != nil {
			t.Fatalf("AddSupplier failed: %v", err)
		}
		med := addTestMedicine(t, st, AddMedicineParams{
			Name:         "Dolo 650",
			Price:        20,
			Quantity:     117,
			SupplierName: "ABC Pharmacy",
			Expiry:       "2026-12-31",
		})

		sale, err := st.SellMedicine(ctx, med.ID, 2)
		if err != nil {
			t.Fatalf("SellMedicine failed: %v", err)
		}
		if sale.Items[0].UnitPrice != 20 || sale.Items[0].Quantity != 2 {
			t.Errorf("unexpected sale item: %+v", sale.Items[0])
		}

		after, err := st.GetMedicine(ctx, med.ID)
		if err != nil {
			t.Fatalf("GetMedicine failed: %v", err)
		}
		if after.Quantity != 115 {
			t.Errorf("expected quantity 115, got %d", after.Quantity)
		}

		total, count, err := st.TodaysSalesTotal(ctx)
		if err != nil {
			t.Fatalf("TodaysSalesTotal failed: %v", err)
		}
		if total != 40 || count != 1 {
			t.Errorf("expected 40 from 1 transaction, got %v from %d", total, count)
		}
	})

	t.Run("yesterday's sale is excluded", func(t *testing.T) {
		st.now = func() time.Time { return time.Now().AddDate(0, 0, -1) }
		med := addTestMedicine(t, st, AddMedicineParams{Name: "Vitamin C", Price: 10, Quantity: 10})
		if _, err := st.SellMedicine(ctx, med.ID, 1); err != nil {
			t.Fatalf("SellMedicine failed: %v", err)
		}
		st.now = time.Now

		total, _, err := st.TodaysSalesTotal(ctx)
		if err != nil {
			t.Fatalf("TodaysSalesTotal failed: %v", err)
		}
		if total != 40 {
			t.Errorf("yesterday's sale leaked into today's total: %v", total)
		}
	})
}

func TestGenerateBill(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	dolo := addTestMedicine(t, st, AddMedicineParams{Name: "Dolo 650", Price: 20, Quantity: 100})
	syrup := addTestMedicine(t, st, AddMedicineParams{Name: "Cough Syrup", Price: 120, Quantity: 15})

	t.Run("itemized totals", func(t *testing.T) {
		bill, err := st.GenerateBill(ctx, []BillItem{
			{MedicineID: dolo.ID, Quantity: 3},
			{MedicineID: syrup.ID, Quantity: 2},
		})
		if err != nil {
			t.Fatalf("GenerateBill failed: %v", err)
		}
		if len(bill.Lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(bill.Lines))
		}
		if bill.Lines[0].LineTotal != 60 || bill.Lines[1].LineTotal != 240 {
			t.Errorf("unexpected line totals: %+v", bill.Lines)
		}
		if bill.Subtotal != 300 {
			t.Errorf("expected subtotal 300, got %v", bill.Subtotal)
		}
		if bill.Tax != 15 {
			t.Errorf("expected tax 15, got %v", bill.Tax)
		}
		if bill.Discount != 0 {
			t.Errorf("expected no discount under 1000, got %v", bill.Discount)
		}
		if bill.Total != 315 {
			t.Errorf("expected total 315, got %v", bill.Total)
		}
	})

	t.Run("discount over threshold", func(t *testing.T) {
		bill, err := st.GenerateBill(ctx, []BillItem{{MedicineID: syrup.ID, Quantity: 10}})
		if err != nil {
			t.Fatalf("GenerateBill failed: %v", err)
		}
		if bill.Discount != 120 {
			t.Errorf("expected discount 120, got %v", bill.Discount)
		}
		if bill.Total != 1140 {
			t.Errorf("expected total 1140, got %v", bill.Total)
		}
	})

	t.Run("bills persist nothing", func(t *testing.T) {
		after, err := st.GetMedicine(ctx, dolo.ID)
		if err != nil {
			t.Fatalf("GetMedicine failed: %v", err)
		}
		if after.Quantity != 100 {
			t.Errorf("bill must not touch stock, got %d", after.Quantity)
		}
		sales, err := st.SalesReport(ctx, "", "")
		if err != nil {
			t.Fatalf("SalesReport failed: %v", err)
		}
		if len(sales) != 0 {
			t.Errorf("bill must not record sales, found %d", len(sales))
		}
	})

	t.Run("unknown medicine and oversized quantity", func(t *testing.T) {
		if _, err := st.GenerateBill(ctx, []BillItem{{MedicineID: 999, Quantity: 1}}); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
		if _, err := st.GenerateBill(ctx, []BillItem{{MedicineID: syrup.ID, Quantity: 50}}); !errors.Is(err, domain.ErrInsufficientStock) {
			t.Errorf("expected insufficient stock, got %v", err)
		}
		if _, err := st.GenerateBill(ctx, nil); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestStockFlagsAndReport(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	addTestMedicine(t, st, AddMedicineParams{Name: "Plenty", Price: 5, Quantity: 50, Expiry: "2030-01-01"})
	addTestMedicine(t, st, AddMedicineParams{Name: "Scarce", Price: 5, Quantity: 3})
	addTestMedicine(t, st, AddMedicineParams{Name: "Stale", Price: 5, Quantity: 80, Expiry: "2021-05-01"})
	addTestMedicine(t, st, AddMedicineParams{Name: "Stale and Scarce", Price: 5, Quantity: 1, Expiry: "2021-05-01"})

	t.Run("flags derived at read time", func(t *testing.T) {
		items, err := st.ListStock(ctx)
		if err != nil {
			t.Fatalf("ListStock failed: %v", err)
		}
		flags := make(map[string][2]bool)
		for _, item := range items {
			flags[item.Name] = [2]bool{item.LowStock, item.Expired}
		}
		expect := map[string][2]bool{
			"Plenty":           {false, false},
			"Scarce":           {true, false},
			"Stale":            {false, true},
			"Stale and Scarce": {true, true},
		}
		for name, want := range expect {
			if flags[name] != want {
				t.Errorf("%s: expected low=%v expired=%v, got low=%v expired=%v",
					name, want[0], want[1], flags[name][0], flags[name][1])
			}
		}
	})

	t.Run("report partitions with overlap", func(t *testing.T) {
		report, err := st.LowStockExpiredReport(ctx)
		if err != nil {
			t.Fatalf("LowStockExpiredReport failed: %v", err)
		}
		if len(report.LowStock) != 2 {
			t.Errorf("expected 2 low-stock medicines, got %d", len(report.LowStock))
		}
		if len(report.Expired) != 2 {
			t.Errorf("expected 2 expired medicines, got %d", len(report.Expired))
		}
	})
}

func TestRecordPrescription(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	med := addTestMedicine(t, st, AddMedicineParams{Name: "Insulin", Price: 300, Quantity: 12})

	t.Run("validation", func(t *testing.T) {
		if _, err := st.RecordPrescription(ctx, "", "", []PrescriptionEntry{{MedicineID: med.ID, Quantity: 1}}); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error for empty customer, got %v", err)
		}
		if _, err := st.RecordPrescription(ctx, "Asha", "", nil); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error for empty items, got %v", err)
		}
	})

	t.Run("unknown medicine rolls back", func(t *testing.T) {
		_, err := st.RecordPrescription(ctx, "Asha", "", []PrescriptionEntry{
			{MedicineID: med.ID, Quantity: 1},
			{MedicineID: 999, Quantity: 1},
		})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		var count int
		if err := st.DB().Get(&count, `SELECT COUNT(*) FROM prescriptions`); err != nil {
			t.Fatalf("count prescriptions: %v", err)
		}
		if count != 0 {
			t.Errorf("failed prescription must not persist, found %d rows", count)
		}
	})

	t.Run("recording does not touch stock", func(t *testing.T) {
		p, err := st.RecordPrescription(ctx, "Asha", "555-0101", []PrescriptionEntry{{MedicineID: med.ID, Quantity: 2}})
		if err != nil {
			t.Fatalf("RecordPrescription failed: %v", err)
		}
		if len(p.Items) != 1 || p.Items[0].MedicineName != "Insulin" {
			t.Errorf("unexpected prescription items: %+v", p.Items)
		}
		after, err := st.GetMedicine(ctx, med.ID)
		if err != nil {
			t.Fatalf("GetMedicine failed: %v", err)
		}
		if after.Quantity != 12 {
			t.Errorf("prescription must not change stock, got %d", after.Quantity)
		}
	})

	t.Run("customer row is reused", func(t *testing.T) {
		if _, err := st.RecordPrescription(ctx, "Asha", "555-0101", []PrescriptionEntry{{MedicineID: med.ID, Quantity: 1}}); err != nil {
			t.Fatalf("RecordPrescription failed: %v", err)
		}
		var count int
		if err := st.DB().Get(&count, `SELECT COUNT(*) FROM customers`); err != nil {
			t.Fatalf("count customers: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 customer row, got %d", count)
		}
	})
}

func TestSalesReportRange(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	med := addTestMedicine(t, st, AddMedicineParams{Name: "Zinc", Price: 8, Quantity: 30})
	if _, err := st.SellMedicine(ctx, med.ID, 4); err != nil {
		t.Fatalf("SellMedicine failed: %v", err)
	}

	today := time.Now().Format("2006-01-02")

	t.Run("inclusive range", func(t *testing.T) {
		sales, err := st.SalesReport(ctx, today, today)
		if err != nil {
			t.Fatalf("SalesReport failed: %v", err)
		}
		if len(sales) != 1 || len(sales[0].Items) != 1 {
			t.Fatalf("expected today's sale with items, got %+v", sales)
		}
	})

	t.Run("range excluding today", func(t *testing.T) {
		sales, err := st.SalesReport(ctx, "2000-01-01", "2000-01-02")
		if err != nil {
			t.Fatalf("SalesReport failed: %v", err)
		}
		if len(sales) != 0 {
			t.Errorf("expected no sales, got %d", len(sales))
		}
	})

	t.Run("bad date", func(t *testing.T) {
		if _, err := st.SalesReport(ctx, "last tuesday", ""); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestUsers(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	t.Run("register and authenticate", func(t *testing.T) {
		user, err := st.CreateUser(ctx, "asha", "Asha@Example.com", "s3cret", "owner")
		if err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if user.Email != "asha@example.com" {
			t.Errorf("email should be lowercased, got %s", user.Email)
		}

		got, err := st.Authenticate(ctx, "asha@example.com", "s3cret")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if got.ID != user.ID || got.Password != "" {
			t.Errorf("unexpected authenticated user: %+v", got)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := st.Authenticate(ctx, "asha@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected invalid credentials, got %v", err)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		if _, err := st.CreateUser(ctx, "other", "asha@example.com", "pw", "employee"); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("bad role", func(t *testing.T) {
		if _, err := st.CreateUser(ctx, "x", "x@example.com", "pw", "admin"); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

// Simultaneous sales must never jointly oversell: with M units on the
// shelf, N > M single-unit sales end with exactly M sale rows, quantity
// zero, and the rest refused for insufficient stock.
func TestConcurrentSalesCannotOversell(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	const stock = 5
	const attempts = 20
	med := addTestMedicine(t, st, AddMedicineParams{Name: "Limited", Price: 10, Quantity: stock})

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.SellMedicine(ctx, med.ID, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var sold, refused int
	for err := range results {
		switch {
		case err == nil:
			sold++
		case errors.Is(err, domain.ErrInsufficientStock):
			refused++
		default:
			t.Errorf("unexpected sale error: %v", err)
		}
	}
	if sold != stock {
		t.Errorf("expected %d successful sales, got %d", stock, sold)
	}
	if refused != attempts-stock {
		t.Errorf("expected %d refused sales, got %d", attempts-stock, refused)
	}

	after, err := st.GetMedicine(ctx, med.ID)
	if err != nil {
		t.Fatalf("GetMedicine failed: %v", err)
	}
	if after.Quantity != 0 {
		t.Errorf("expected quantity 0 after sellout, got %d", after.Quantity)
	}

	sales, err := st.SalesReport(ctx, "", "")
	if err != nil {
		t.Fatalf("SalesReport failed: %v", err)
	}
	if len(sales) != stock {
		t.Errorf("expected exactly %d sale rows, got %d", stock, len(sales))
	}
}

// Writing to the store must be lost on rollback, never partially applied.
func TestSaleRollbackOnCancelledContext(t *testing.T) {
	st := newTestStore(t)
	med := addTestMedicine(t, st, AddMedicineParams{Name: "Saline", Price: 2, Quantity: 6})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := st.SellMedicine(ctx, med.ID, 1); err == nil {
		t.Fatal("expected error with cancelled context")
	}

	after, err := st.GetMedicine(context.Background(), med.ID)
	if err != nil {
		t.Fatalf("GetMedicine failed: %v", err)
	}
	if after.Quantity != 6 {
		t.Errorf("cancelled sale must not change stock, got %d", after.Quantity)
	}
}

func ptr[T any](v T) *T { return &v }
