package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Selvaganesh007/expense-tracker/internal/auth"
	"github.com/Selvaganesh007/expense-tracker/internal/cli"
	"github.com/Selvaganesh007/expense-tracker/internal/core"
	apphttp "github.com/Selvaganesh007/expense-tracker/internal/http"
	"github.com/Selvaganesh007/expense-tracker/internal/log"
	"github.com/Selvaganesh007/expense-tracker/internal/services"
	"github.com/Selvaganesh007/expense-tracker/internal/ws"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("")
	cfg := cli.LoadAndValidateConfig(logger)

	result := cli.OpenBackend(context.Background(), logger, cfg, true)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	hub := ws.NewHub(logger)
	hub.Start()

	dashboards := services.NewDashboardService(result.Store, core.AggregateOptions{
		RecentLimit:   cfg.RecentLimit,
		IncludeIncome: cfg.IncludeIncomeBreakdown,
	}, logger)

	deps := apphttp.Deps{
		Auth:        auth.NewService(result.Store, result.Store, cfg.SessionTTL, logger),
		Tx:          services.NewTransactionService(result.Store, result.Events, hub, dashboards, logger),
		Collections: services.NewCollectionService(result.Store, result.Events, hub, dashboards, logger),
		Dashboard:   dashboards,
		Balances:    services.NewBalanceResolver(result.Store),
		History:     services.NewHistoryMerger(result.Store, logger),
		Settings:    services.NewSettingsService(result.Store, hub, logger),
		Hub:         hub,
		Logger:      logger,
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting trackerd server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
