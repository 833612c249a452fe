package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "agro-backoffice/internal/adapters/web"
	"agro-backoffice/internal/app"
	"agro-backoffice/internal/config"
	"agro-backoffice/internal/core"
	"agro-backoffice/internal/db"
	"agro-backoffice/internal/logger"
	"agro-backoffice/migrations"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database.URL, cfg.Database.Timezone)
	if err != nil {
		baseLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Database.MigrateOnStart {
		applied, err := db.Migrate(ctx, pool, migrations.FS, logger.Named(baseLogger, "db.migrate"))
		if err != nil {
			baseLogger.Fatal("migration failed", zap.Error(err))
		}
		baseLogger.Info("schema ready", zap.Int("applied", len(applied)))
	}

	// Validate already checked the zone name.
	loc, _ := time.LoadLocation(cfg.Database.Timezone)

	stock := core.NewStockEngine(cfg.AllowNegativeStock(), logger.Named(baseLogger, "core.stock"))
	svc := app.NewAppService(pool, app.NewServices(pool, stock), app.WindowPolicy{
		Location:    loc,
		DefaultDays: cfg.Reporting.DefaultWindowDays,
	})
	handler := webAdapter.NewHandler(svc, cfg.Server.AllowedOrigins, logger.Named(baseLogger, "web"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.Bool("allow_negative_stock", stock.AllowsNegative()),
			zap.String("timezone", cfg.Database.Timezone),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
