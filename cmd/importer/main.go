package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meganoshop/megano-backend/internal/imports"
	"github.com/meganoshop/megano-backend/pkg/config"
	"github.com/meganoshop/megano-backend/pkg/db"
	"github.com/meganoshop/megano-backend/pkg/logger"
	"github.com/meganoshop/megano-backend/pkg/metrics"
	"github.com/meganoshop/megano-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "importer"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "importer",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	importMetrics := metrics.NewImportJobMetrics(prometheus.DefaultRegisterer)

	service, err := imports.NewService(imports.ServiceParams{
		Repo:    imports.NewRepository(dbClient.DB()),
		Config:  cfg.Import,
		Metrics: importMetrics,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create import service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = logg.WithFields(ctx, map[string]any{
		"env":   cfg.App.Env,
		"inbox": cfg.Import.InboxDir,
	})
	logg.Info(ctx, "importer started")

	ticker := time.NewTicker(cfg.Import.PollInterval)
	defer ticker.Stop()

	for {
		results, err := service.ScanInbox(ctx)
		if err != nil {
			logg.Error(ctx, "inbox scan failed", err)
		}
		for _, result := range results {
			scanCtx := logg.WithFields(ctx, map[string]any{
				"file":      result.FileName,
				"processed": result.Processed,
				"failed":    result.Failed,
				"moved_to":  result.MovedTo,
			})
			logg.Info(scanCtx, "import file handled")
		}

		select {
		case <-ctx.Done():
			logg.Info(ctx, "importer stopping")
			return
		case <-ticker.C:
		}
	}
}
