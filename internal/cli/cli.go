// Package cli implements the interactive menu front-end. It drives the same
// store as the HTTP API; input and output are injected so the loop can be
// scripted in tests.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pharmadesk/m/internal/store"
)

const menu = `
====== Pharmacy Management System ======
1. Add Supplier
2. Add Medicine
3. Show Stock
4. Sell Medicine
5. Generate Bill
6. Record Prescription
7. Show Suppliers
8. Show Today's Sales
9. Search Medicine
10. Delete Medicine
11. Show Low-Stock & Expired Report
12. Exit
`

// CLI runs the numbered menu loop against the store.
type CLI struct {
	store *store.Store
	in    *bufio.Scanner
	out   io.Writer
}

// New builds a CLI reading from in and writing to out.
func New(st *store.Store, in io.Reader, out io.Writer) *CLI {
	return &CLI{store: st, in: bufio.NewScanner(in), out: out}
}

// Run loops over the menu until the exit option or input runs out. Failed
// operations print their message and return to the menu; nothing is fatal.
func (c *CLI) Run(ctx context.Context) error {
	for {
		fmt.Fprint(c.out, menu)
		choice, ok := c.readLine("Enter your choice: ")
		if !ok {
			return nil
		}
		switch strings.TrimSpace(choice) {
		case "1":
			c.addSupplier(ctx)
		case "2":
			c.addMedicine(ctx)
		case "3":
			c.showStock(ctx)
		case "4":
			c.sellMedicine(ctx)
		case "5":
			c.generateBill(ctx)
		case "6":
			c.recordPrescription(ctx)
		case "7":
			c.showSuppliers(ctx)
		case "8":
			c.showTodaySales(ctx)
		case "9":
			c.searchMedicine(ctx)
		case "10":
			c.deleteMedicine(ctx)
		case "11":
			c.showStockReport(ctx)
		case "12":
			fmt.Fprintln(c.out, "Exiting system. Thank you!")
			return nil
		default:
			fmt.Fprintln(c.out, "Invalid choice. Try again.")
		}
	}
}

// Input helpers. Numeric reads re-prompt until the input parses; a closed
// input stream surfaces as ok=false and unwinds to the menu loop.

func (c *CLI) readLine(prompt string) (string, bool) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *CLI) readInt(prompt string) (int64, bool) {
	for {
		raw, ok := c.readLine(prompt)
		if !ok {
			return 0, false
		}
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fmt.Fprintln(c.out, "Please enter a valid integer.")
			continue
		}
		return value, true
	}
}

func (c *CLI) readFloat(prompt string) (float64, bool) {
	for {
		raw, ok := c.readLine(prompt)
		if !ok {
			return 0, false
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fmt.Fprintln(c.out, "Please enter a valid number.")
			continue
		}
		return value, true
	}
}

func (c *CLI) printError(err error) {
	fmt.Fprintf(c.out, "Error: %v\n", err)
}

// Menu actions

func (c *CLI) addSupplier(ctx context.Context) {
	name, ok := c.readLine("Supplier name: ")
	if !ok {
		return
	}
	contact, ok := c.readLine("Contact info: ")
	if !ok {
		return
	}
	supplier, err := c.store.AddSupplier(ctx, name, contact)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.out, "Supplier '%s' added with id %d.\n", supplier.Name, supplier.ID)
}

func (c *CLI) addMedicine(ctx context.Context) {
	name, ok := c.readLine("Medicine name: ")
	if !ok {
		return
	}
	price, ok := c.readFloat("Price: ")
	if !ok {
		return
	}
	quantity, ok := c.readInt("Quantity: ")
	if !ok {
		return
	}
	supplier, ok := c.readLine("Supplier (id or name, or leave blank): ")
	if !ok {
		return
	}
	expiry, ok := c.readLine("Expiry date (YYYY-MM-DD, or leave blank): ")
	if !ok {
		return
	}
	params := store.AddMedicineParams{
		Name:     name,
		Price:    price,
		Quantity: quantity,
		Expiry:   expiry,
	}
	// A numeric supplier entry is an id reference, not a name.
	if id, err := strconv.ParseInt(supplier, 10, 64); err == nil {
		params.SupplierID = &id
	} else {
		params.SupplierName = supplier
	}
	medicine, err := c.store.AddMedicine(ctx, params)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.out, "Inserted %d units of %s (id %d).\n", medicine.Quantity, medicine.Name, medicine.ID)
}

func (c *CLI) showStock(ctx context.Context) {
	items, err := c.store.ListStock(ctx)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintln(c.out, "\nAvailable Medicines:")
	if len(items) == 0 {
		fmt.Fprintln(c.out, "No medicines in stock.")
		return
	}
	for _, item := range items {
		supplier := "N/A"
		if item.SupplierName != nil {
			supplier = *item.SupplierName
		}
		expiry := "N/A"
		if item.Expiry != nil {
			expiry = *item.Expiry
		}
		var flags []string
		if item.Expired {
			flags = append(flags, "EXPIRED")
		}
		if item.LowStock {
			flags = append(flags, "LOW_STOCK")
		}
		status := ""
		if len(flags) > 0 {
			status = " (" + strings.Join(flags, ", ") + ")"
		}
		fmt.Fprintf(c.out, "- [%d] %s - %.2f | Qty: %d | Supplier: %s | Expiry: %s%s\n",
			item.ID, item.Name, item.Price, item.Quantity, supplier, expiry, status)
	}
}

func (c *CLI) sellMedicine(ctx context.Context) {
	ref, ok := c.readLine("Medicine to sell (id or name): ")
	if !ok {
		return
	}
	quantity, ok := c.readInt("Quantity: ")
	if !ok {
		return
	}
	medicine, err := c.store.ResolveMedicine(ctx, ref)
	if err != nil {
		c.printError(err)
		return
	}
	sale, err := c.store.SellMedicine(ctx, medicine.ID, quantity)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.out, "Sold %d units of %s. Total: %.2f\n", quantity, medicine.Name, sale.TotalAmount)
}

func (c *CLI) generateBill(ctx context.Context) {
	items, ok := c.collectItems(ctx, "Enter medicine (or 'done' to finish): ")
	if !ok || len(items) == 0 {
		return
	}
	billItems := make([]store.BillItem, len(items))
	for i, item := range items {
		billItems[i] = store.BillItem{MedicineID: item.MedicineID, Quantity: item.Quantity}
	}
	bill, err := c.store.GenerateBill(ctx, billItems)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintln(c.out, "\nGenerating Bill...")
	for _, line := range bill.Lines {
		fmt.Fprintf(c.out, "%s x%d = %.2f\n", line.Name, line.Quantity, line.LineTotal)
	}
	fmt.Fprintf(c.out, "Subtotal: %.2f\n", bill.Subtotal)
	fmt.Fprintf(c.out, "Tax (5%%): %.2f\n", bill.Tax)
	if bill.Discount > 0 {
		fmt.Fprintf(c.out, "Discount (10%% over 1000): -%.2f\n", bill.Discount)
	}
	fmt.Fprintf(c.out, "Total Bill Amount: %.2f\n", bill.Total)
}

func (c *CLI) recordPrescription(ctx context.Context) {
	customer, ok := c.readLine("Customer name: ")
	if !ok {
		return
	}
	phone, ok := c.readLine("Customer phone (or leave blank): ")
	if !ok {
		return
	}
	items, ok := c.collectItems(ctx, "Enter medicine for prescription (or 'done'): ")
	if !ok {
		return
	}
	entries := make([]store.PrescriptionEntry, len(items))
	for i, item := range items {
		entries[i] = store.PrescriptionEntry{MedicineID: item.MedicineID, Quantity: item.Quantity}
	}
	prescription, err := c.store.RecordPrescription(ctx, customer, phone, entries)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.out, "Prescription for %s recorded (id %d).\n", prescription.CustomerName, prescription.ID)
}

type collectedItem struct {
	MedicineID int64
	Quantity   int64
}

// collectItems gathers medicine/quantity pairs until the user types done.
// Unknown medicines are reported and skipped so one typo does not discard
// the whole entry.
func (c *CLI) collectItems(ctx context.Context, prompt string) ([]collectedItem, bool) {
	var items []collectedItem
	for {
		ref, ok := c.readLine(prompt)
		if !ok {
			return items, false
		}
		if strings.EqualFold(ref, "done") {
			return items, true
		}
		medicine, err := c.store.ResolveMedicine(ctx, ref)
		if err != nil {
			c.printError(err)
			continue
		}
		quantity, ok := c.readInt("Enter quantity: ")
		if !ok {
			return items, false
		}
		items = append(items, collectedItem{MedicineID: medicine.ID, Quantity: quantity})
	}
}

func (c *CLI) showSuppliers(ctx context.Context) {
	suppliers, err := c.store.ListSuppliers(ctx)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintln(c.out, "\nRegistered Suppliers:")
	if len(suppliers) == 0 {
		fmt.Fprintln(c.out, "No suppliers registered.")
		return
	}
	for _, s := range suppliers {
		contact := s.Contact
		if contact == "" {
			contact = "N/A"
		}
		fmt.Fprintf(c.out, "- [%d] %s - Contact: %s\n", s.ID, s.Name, contact)
	}
}

func (c *CLI) showTodaySales(ctx context.Context) {
	total, count, err := c.store.TodaysSalesTotal(ctx)
	if err != nil {
		c.printError(err)
		return
	}
	if count == 0 {
		fmt.Fprintln(c.out, "\nNo sales recorded for today.")
		return
	}
	fmt.Fprintf(c.out, "\nToday's total sales: %.2f (from %d transactions)\n", total, count)
}

func (c *CLI) searchMedicine(ctx context.Context) {
	query, ok := c.readLine("Search text: ")
	if !ok {
		return
	}
	medicines, err := c.store.SearchMedicines(ctx, query)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.out, "\nSearch results for '%s':\n", query)
	if len(medicines) == 0 {
		fmt.Fprintln(c.out, "No medicines found.")
		return
	}
	for _, m := range medicines {
		supplier := "N/A"
		if m.SupplierName != nil {
			supplier = *m.SupplierName
		}
		expiry := "N/A"
		if m.Expiry != nil {
			expiry = *m.Expiry
		}
		fmt.Fprintf(c.out, "- [%d] %s | %.2f | Qty: %d | Supplier: %s | Expiry: %s\n",
			m.ID, m.Name, m.Price, m.Quantity, supplier, expiry)
	}
}

func (c *CLI) deleteMedicine(ctx context.Context) {
	ref, ok := c.readLine("Medicine to delete (id or name): ")
	if !ok {
		return
	}
	medicine, err := c.store.ResolveMedicine(ctx, ref)
	if err != nil {
		c.printError(err)
		return
	}
	if err := c.store.DeleteMedicine(ctx, medicine.ID); err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.out, "Medicine '%s' deleted.\n", medicine.Name)
}

func (c *CLI) showStockReport(ctx context.Context) {
	report, err := c.store.LowStockExpiredReport(ctx)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintln(c.out, "\nLow-stock medicines:")
	if len(report.LowStock) == 0 {
		fmt.Fprintln(c.out, "None.")
	} else {
		for _, item := range report.LowStock {
			fmt.Fprintf(c.out, "- %s: Qty %d\n", item.Name, item.Quantity)
		}
	}
	fmt.Fprintln(c.out, "\nExpired medicines:")
	if len(report.Expired) == 0 {
		fmt.Fprintln(c.out, "None.")
	} else {
		for _, item := range report.Expired {
			fmt.Fprintf(c.out, "- %s: Expired on %s\n", item.Name, *item.Expiry)
		}
	}
}
