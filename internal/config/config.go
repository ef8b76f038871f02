package config

import (
	"log/slog"
	"os"
	"strconv"
)

// Config holds application configuration values.
type Config struct {
	Secret            string
	DatabasePath      string
	HTTPPort          string
	LowStockThreshold int
	MedicineCSV       string
}

// Load reads configuration from environment variables with reasonable
// defaults. Callers load .env (if any) before calling.
func Load() Config {
	secret := os.Getenv("SECRET")
	if secret == "" {
		secret = "dev_secret"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	if _, err := strconv.Atoi(port); err != nil {
		slog.Warn("invalid HTTP_PORT value, defaulting to 8080", "value", port)
		port = "8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "pharmacy.db"
	}

	threshold := 10
	if raw := os.Getenv("LOW_STOCK_THRESHOLD"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			slog.Warn("invalid LOW_STOCK_THRESHOLD value, defaulting to 10", "value", raw)
		} else {
			threshold = parsed
		}
	}

	return Config{
		Secret:            secret,
		DatabasePath:      dbPath,
		HTTPPort:          port,
		LowStockThreshold: threshold,
		MedicineCSV:       os.Getenv("MEDICINE_CSV"),
	}
}
