package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"signaldesk/internal/adapters"
	"signaldesk/internal/amqp"
	"signaldesk/internal/backend"
	"signaldesk/internal/cli"
	"signaldesk/internal/collection"
	applog "signaldesk/internal/log"
	"signaldesk/internal/sheets"
	gsheet "signaldesk/internal/sheets/google"
	mem "signaldesk/internal/sheets/memory"
	"signaldesk/internal/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("info", applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, applog.ComponentWorker)

	logger.Info("Starting signaldesk-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		return 1
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	var exporter sheets.TransactionExporter
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			return 1
		}
		exporter = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		exporter = mem.New()
		logger.Info("Google Sheets disabled - exporting to memory")
	}

	// Reconciliation reads the shared database, so it needs the sqlite backend.
	var source worker.TransactionSource
	if cfg.DataBackend == string(backend.SQLiteBackend) {
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
		defer repo.Close()
		source = adapters.NewSQLiteAdapter(repo, collection.TransactionSchema())
	} else {
		logger.Info("Reconciliation disabled - memory backend has no shared store")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		return 1
	}
	defer client.Close()

	w := worker.NewEventWorker(exporter, source, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Consume(gctx, w.HandleChange)
	})
	if source != nil {
		g.Go(func() error {
			if err := w.Reconcile(gctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Startup reconciliation failed", applog.FieldError, err)
			}
			ticker := time.NewTicker(cfg.ReconcileInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-ticker.C:
					if err := w.Reconcile(gctx); err != nil && !errors.Is(err, context.Canceled) {
						logger.Error("Periodic reconciliation failed", applog.FieldError, err)
					}
				}
			}
		})
	}

	err = g.Wait()
	stats := w.Stats()
	logger.Info("Worker stopped",
		"received", stats.Received,
		"exported", stats.Exported,
		"failed", stats.Failed)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", applog.FieldError, err)
		return 1
	}
	return 0
}
