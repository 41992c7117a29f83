package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Selvaganesh007/expense-tracker/internal/amqp"
	"github.com/Selvaganesh007/expense-tracker/internal/cli"
	"github.com/Selvaganesh007/expense-tracker/internal/export"
	"github.com/Selvaganesh007/expense-tracker/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("Starting export-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}
	if !cfg.SheetsExportConfigured() {
		logger.Error("Google Sheets export target is not configured")
		os.Exit(1)
	}

	// Open the same store the server writes to; the worker only reads.
	// The consumer connection is owned below, so the factory opens none.
	result := cli.OpenBackend(context.Background(), logger, cfg, false)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	exporter, err := export.NewSheetsExporter(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets exporter initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := export.NewWorker(result.Store, exporter)

	go func() {
		if err := worker.Run(ctx, amqpClient); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Event consumption failed", log.FieldError, err)
			}
			cancel()
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Give the in-flight event a moment to finish before exiting.
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
