// Package store defines the ports the rest of the service uses to reach the
// document store. Every query is scoped by the owning user's ID in addition
// to whatever narrower key it takes; the HTTP layer scopes again from the
// session, so the store-level filter is defense in depth rather than the
// security boundary.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
)

// ErrNotFound is returned when a record does not exist or belongs to a
// different user.
var ErrNotFound = errors.New("record not found")

// ErrEmailTaken is returned by CreateUser when the email is already
// registered.
var ErrEmailTaken = errors.New("email already registered")

type (
	TransactionReader interface {
		// ListTransactions returns every transaction of the collection,
		// ordered by timestamp descending.
		ListTransactions(ctx context.Context, userID, collectionID string) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
	}

	TransactionWriter interface {
		CreateTransaction(ctx context.Context, t core.Transaction) error
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, userID, id string) error
	}

	CollectionReader interface {
		ListCollections(ctx context.Context, userID string) ([]core.Collection, error)
		GetCollection(ctx context.Context, userID, id string) (core.Collection, error)
	}

	CollectionWriter interface {
		CreateCollection(ctx context.Context, c core.Collection) error
		RenameCollection(ctx context.Context, userID, id, name string) error
		// DeleteCollection removes the collection and all of its
		// transactions in a single store transaction.
		DeleteCollection(ctx context.Context, userID, id string) error
	}

	SettingsStore interface {
		GetSettings(ctx context.Context, userID string) (core.Settings, error)
		UpdateSettings(ctx context.Context, userID string, s core.Settings) error
	}

	UserStore interface {
		CreateUser(ctx context.Context, u core.User, passwordHash string) error
		GetUser(ctx context.Context, id string) (core.User, error)
		// GetUserByEmail returns the user and its password hash.
		GetUserByEmail(ctx context.Context, email string) (core.User, string, error)
	}

	SessionStore interface {
		CreateSession(ctx context.Context, token, userID string, expiresAt time.Time) error
		GetSession(ctx context.Context, token string) (userID string, expiresAt time.Time, err error)
		DeleteSession(ctx context.Context, token string) error
		DeleteExpiredSessions(ctx context.Context) (int64, error)
	}
)

// Store is the full set of ports a data backend must provide.
type Store interface {
	TransactionReader
	TransactionWriter
	CollectionReader
	CollectionWriter
	SettingsStore
	UserStore
	SessionStore
}
