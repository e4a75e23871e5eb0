package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/naansa-naufalsaputra/duasaku-app/internal/amqp"
	"github.com/naansa-naufalsaputra/duasaku-app/internal/config"
	"github.com/naansa-naufalsaputra/duasaku-app/internal/export/sheets"
	"github.com/naansa-naufalsaputra/duasaku-app/internal/ledger"
	applog "github.com/naansa-naufalsaputra/duasaku-app/internal/log"
	"github.com/naansa-naufalsaputra/duasaku-app/internal/storage"
	"github.com/naansa-naufalsaputra/duasaku-app/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting duasaku-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker shares the database with the API server
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	svc := ledger.NewService(repo, nil)

	// Google Sheets export is optional
	var exporter worker.SummaryExporter
	if cfg.GoogleSpreadsheetID != "" {
		exp, err := sheets.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = exp
		logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	scanWorker := worker.NewScanWorker(svc, exporter, worker.ScanWorkerConfig{
		ScanSchedule:   cfg.ScanSchedule,
		ExportSchedule: cfg.ExportSchedule,
	})
	if err := scanWorker.Start(ctx); err != nil {
		logger.Error("Failed to start scan worker", "error", err)
		os.Exit(1)
	}

	// Catch up on anything missed while the worker was down
	scanWorker.ScanAll(ctx)

	// AMQP consumption is optional; cron alone still covers all ledgers
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			if err := amqpClient.ConsumeLedgerChanged(ctx, scanWorker.HandleLedgerChanged(ctx)); err != nil {
				if err != context.Canceled {
					logger.Error("Message consumption failed", "error", err)
				}
				cancel()
			}
		}()
	} else {
		logger.Info("AMQP consumption disabled - no AMQP_URL provided")
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := scanWorker.Stop(shutdownCtx); err != nil {
		logger.Warn("Scan worker shutdown error", "error", err)
	}
	logger.Info("Worker shutdown complete")
}
