package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"agro-backoffice/internal/adapters/cli"
	"agro-backoffice/internal/app"
	"agro-backoffice/internal/config"
	"agro-backoffice/internal/core"
	"agro-backoffice/internal/db"
	"agro-backoffice/internal/logger"
	"agro-backoffice/migrations"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	// The console prints its own output; only warnings and above are logged by default.
	level := cfg.Log.Level
	if os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	baseLogger := logger.Must(logger.New(level))
	defer func() { _ = baseLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database.URL, cfg.Database.Timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database: %v\n", err)
		return 1
	}
	defer pool.Close()

	loc, _ := time.LoadLocation(cfg.Database.Timezone)
	stock := core.NewStockEngine(cfg.AllowNegativeStock(), logger.Named(baseLogger, "core.stock"))
	svc := app.NewAppService(pool, app.NewServices(pool, stock), app.WindowPolicy{
		Location:    loc,
		DefaultDays: cfg.Reporting.DefaultWindowDays,
	})

	root := cli.NewRootCommand(cli.Deps{
		Svc: svc,
		Migrate: func(ctx context.Context) ([]string, error) {
			return db.Migrate(ctx, pool, migrations.FS, logger.Named(baseLogger, "db.migrate"))
		},
		Log: logger.Named(baseLogger, "cli"),
	})
	if err := root.ExecuteContext(ctx); err != nil {
		baseLogger.Debug("command failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
