package backend

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/log"
)

func newTestFactory() Factory {
	return NewFactory(log.New(log.Config{
		Handler: slog.NewTextHandler(io.Discard, nil),
	}))
}

// Creating a SQLite backend migrates the schema once, inside the
// repository constructor, and hands back a store that is ready to use.
func TestCreateBackend_SQLite(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory()

	res, err := f.CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "tracker.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, res.Cleanup())
	})

	assert.Nil(t, res.Events, "no AMQP URL configured")

	user := core.User{
		ID:        "u1",
		Email:     "rohan@example.com",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, res.Store.CreateUser(ctx, user, "hash"))

	got, err := res.Store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "rohan@example.com", got.Email)
}

func TestCreateBackend_Memory(t *testing.T) {
	f := newTestFactory()

	res, err := f.CreateBackend(context.Background(), Config{
		Type:          MemoryBackend,
		DataDirectory: t.TempDir(),
	})
	require.NoError(t, err)
	require.NoError(t, res.Cleanup())
}

func TestCreateBackend_InvalidType(t *testing.T) {
	f := newTestFactory()

	_, err := f.CreateBackend(context.Background(), Config{Type: Type("csv")})
	require.Error(t, err)
}
