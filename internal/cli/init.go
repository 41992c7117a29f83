// Package cli consolidates the startup steps shared by cmd/trackerd and
// cmd/export-worker: env loading, logging, config validation and backend
// construction.
package cli

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/Selvaganesh007/expense-tracker/internal/backend"
	"github.com/Selvaganesh007/expense-tracker/internal/config"
	"github.com/Selvaganesh007/expense-tracker/internal/log"
)

// SetupLogger initializes structured logging with default settings.
func SetupLogger(component string) *log.Logger {
	logger := log.New(log.DefaultConfig())
	if component != "" {
		logger = logger.WithComponent(component)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend builds the data store selected by cfg, or exits the process
// on failure. When withEvents is false the AMQP URL is cleared so the
// factory does not open a publisher connection.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config, withEvents bool) *backend.Result {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	if !withEvents {
		backendCfg.AMQPURL = ""
	}
	if err := backendCfg.Validate(); err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return result
}
