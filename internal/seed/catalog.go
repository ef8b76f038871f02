// Package seed imports an initial medicine catalog from CSV.
package seed

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"pharmadesk/m/internal/store"
)

// LoadMedicines ingests a CSV catalog (name, price, quantity, supplier,
// expiry) into the store, skipping names already present. Seeding is best
// effort: a bad file or row is logged, never fatal.
func LoadMedicines(ctx context.Context, st *store.Store, csvPath string) {
	file, err := os.Open(csvPath)
	if err != nil {
		slog.Warn("unable to load medicine catalog", "path", csvPath, "error", err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		slog.Warn("unable to read catalog header", "error", err)
		return
	}

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("unable to read catalog row", "error", err)
			continue
		}
		if len(record) < 3 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}

		var exists int
		if err := st.DB().GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM medicines WHERE name = ? COLLATE NOCASE)`, name); err != nil {
			slog.Warn("unable to check catalog row", "name", name, "error", err)
			continue
		}
		if exists == 1 {
			continue
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			slog.Warn("invalid catalog price", "name", name, "value", record[1])
			continue
		}
		quantity, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
		if err != nil {
			slog.Warn("invalid catalog quantity", "name", name, "value", record[2])
			continue
		}
		params := store.AddMedicineParams{Name: name, Price: price, Quantity: quantity}
		if len(record) > 3 {
			params.SupplierName = strings.TrimSpace(record[3])
		}
		if len(record) > 4 {
			params.Expiry = strings.TrimSpace(record[4])
		}

		if _, err := st.AddMedicine(ctx, params); err != nil {
			slog.Warn("unable to insert catalog medicine", "name", name, "error", err)
			continue
		}
		rows++
	}

	slog.Info("seeded medicine catalog", "rows", rows)
}
