package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"pharmadesk/m/internal/api"
	"pharmadesk/m/internal/config"
	"pharmadesk/m/internal/database"
	"pharmadesk/m/internal/migrations"
	"pharmadesk/m/internal/seed"
	"pharmadesk/m/internal/store"
	"pharmadesk/m/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	logging.Setup()

	cfg := config.Load()
	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	st := store.New(db, cfg.LowStockThreshold)
	if cfg.MedicineCSV != "" {
		seed.LoadMedicines(context.Background(), st, cfg.MedicineCSV)
	}

	handler := api.New(st, cfg.Secret)

	slog.Info("pharmacy server starting", "port", cfg.HTTPPort, "database", cfg.DatabasePath)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
