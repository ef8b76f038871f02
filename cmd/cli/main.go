package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"pharmadesk/m/internal/cli"
	"pharmadesk/m/internal/config"
	"pharmadesk/m/internal/database"
	"pharmadesk/m/internal/migrations"
	"pharmadesk/m/internal/store"
	"pharmadesk/m/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	logging.SetupWithLevel(slog.LevelWarn) // keep the menu readable

	cfg := config.Load()
	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	st := store.New(db, cfg.LowStockThreshold)
	if err := cli.New(st, os.Stdin, os.Stdout).Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "cli error: %v\n", err)
		os.Exit(1)
	}
}
