// Package backend turns configuration into a concrete data store and the
// optional event pipeline that hangs off it.
package backend

import (
	"context"

	"github.com/Selvaganesh007/expense-tracker/internal/amqp"
	"github.com/Selvaganesh007/expense-tracker/internal/store"
)

// Type selects which store implementation backs the service.
type Type string

const (
	SQLiteBackend   Type = "sqlite"
	PostgresBackend Type = "postgres"
	MemoryBackend   Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, PostgresBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{SQLiteBackend, PostgresBackend, MemoryBackend}
}

// CleanupFunc releases backend resources; safe to call once on shutdown.
type CleanupFunc func() error

// Result contains the opened store, the AMQP client when the export
// pipeline is configured (nil otherwise), and a cleanup function.
type Result struct {
	Store   store.Store
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, cfg Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Postgres specific
	PostgresDSN string

	// Memory backend seed directory
	DataDirectory string

	// Event pipeline (optional for every backend type)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}
