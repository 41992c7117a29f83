package backend

import (
	"context"
	"fmt"

	"github.com/Selvaganesh007/expense-tracker/internal/amqp"
	"github.com/Selvaganesh007/expense-tracker/internal/log"
	"github.com/Selvaganesh007/expense-tracker/internal/memory"
	"github.com/Selvaganesh007/expense-tracker/internal/postgres"
	"github.com/Selvaganesh007/expense-tracker/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, cfg Config) (*Result, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(cfg)
	case PostgresBackend:
		return f.createPostgresBackend(ctx, cfg)
	case MemoryBackend:
		return f.createMemoryBackend(cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(cfg Config) (*Result, error) {
	// NewSQLiteRepository runs the schema migrations itself.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	events := f.openEvents(cfg)

	f.logger.Info("Initialized SQLite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", events != nil)

	return &Result{
		Store:   repo,
		Events:  events,
		Cleanup: composeCleanup(repo.Close, events),
	}, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, cfg Config) (*Result, error) {
	repo, err := postgres.NewRepository(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
	}

	events := f.openEvents(cfg)

	f.logger.Info("Initialized Postgres backend", "amqp_enabled", events != nil)

	return &Result{
		Store:   repo,
		Events:  events,
		Cleanup: composeCleanup(repo.Close, events),
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(cfg Config) (*Result, error) {
	dataDir := cfg.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	st := memory.NewFromFiles(dataDir)
	events := f.openEvents(cfg)

	f.logger.Info("Initialized memory backend",
		"data_directory", dataDir,
		"amqp_enabled", events != nil)

	return &Result{
		Store:   st,
		Events:  events,
		Cleanup: composeCleanup(nil, events),
	}, nil
}

// openEvents connects the AMQP client when configured. A broker that is
// down at startup is not fatal: the client reconnects on its own, and the
// service keeps serving without the export pipeline until then.
func (f *DefaultFactory) openEvents(cfg Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without export events",
			log.FieldError, err)
		return nil
	}

	f.logger.Info("Initialized AMQP client",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client
}

func composeCleanup(closeStore func() error, events *amqp.Client) CleanupFunc {
	return func() error {
		var firstErr error
		if events != nil {
			if err := events.Close(); err != nil {
				firstErr = err
			}
		}
		if closeStore != nil {
			if err := closeStore(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
}
