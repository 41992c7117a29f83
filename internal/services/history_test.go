package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/memory"
)

// flakyStore fails ListTransactions for one collection.
type flakyStore struct {
	*memory.Store
	failCollection string
}

func (f *flakyStore) ListTransactions(ctx context.Context, userID, collectionID string) ([]core.Transaction, error) {
	if collectionID == f.failCollection {
		return nil, errors.New("backend unavailable")
	}
	return f.Store.ListTransactions(ctx, userID, collectionID)
}

func seedHistory(t *testing.T, st *memory.Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, col := range []string{"c1", "c2", "c3"} {
		require.NoError(t, st.CreateCollection(ctx, core.Collection{
			ID: col, Name: "Ledger " + col, UserID: "u1",
			CreatedAt: base, UpdatedAt: base,
		}))
		for j := 0; j < 2; j++ {
			require.NoError(t, st.CreateTransaction(ctx, core.Transaction{
				ID:       fmt.Sprintf("%s-t%d", col, j),
				Name:     "tx", Category: "Food", FlowType: core.Expense,
				Amount:    core.Money{Cents: 100},
				Timestamp: base.Add(time.Duration(i*10+j) * time.Hour),
				CollectionID: col, UserID: "u1",
			}))
		}
	}
}

func TestHistoryMergeOrdersAndTags(t *testing.T) {
	st := memory.New()
	seedHistory(t, st)
	m := NewHistoryMerger(st, testLogger())

	h, err := m.Merge(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, h.Failures)
	require.Len(t, h.Entries, 6)

	// Newest first across collections.
	for i := 1; i < len(h.Entries); i++ {
		assert.False(t, h.Entries[i].Timestamp.After(h.Entries[i-1].Timestamp),
			"entries out of order at %d", i)
	}
	// Every entry carries its collection's name.
	assert.Equal(t, "Ledger c3", h.Entries[0].CollectionName)
}

func TestHistoryMergeFailSoft(t *testing.T) {
	st := memory.New()
	seedHistory(t, st)
	m := NewHistoryMerger(&flakyStore{Store: st, failCollection: "c2"}, testLogger())

	h, err := m.Merge(context.Background(), "u1")
	require.NoError(t, err)

	// c2's entries are missing, everything else survives.
	assert.Len(t, h.Entries, 4)
	for _, e := range h.Entries {
		assert.NotEqual(t, "c2", e.CollectionID)
	}
	require.Len(t, h.Failures, 1)
	assert.Equal(t, "c2", h.Failures[0].CollectionID)
	assert.Equal(t, "Ledger c2", h.Failures[0].CollectionName)
	assert.Error(t, h.Failures[0].Err)
}

func TestHistoryMergeCountConservation(t *testing.T) {
	st := memory.New()
	seedHistory(t, st)
	m := NewHistoryMerger(st, testLogger())

	h, err := m.Merge(context.Background(), "u1")
	require.NoError(t, err)

	var perCollection int
	for _, col := range []string{"c1", "c2", "c3"} {
		txs, err := st.ListTransactions(context.Background(), "u1", col)
		require.NoError(t, err)
		perCollection += len(txs)
	}
	assert.Equal(t, perCollection, len(h.Entries))
}

func TestHistoryMergeEmptyUser(t *testing.T) {
	m := NewHistoryMerger(memory.New(), testLogger())
	h, err := m.Merge(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, h.Entries)
	assert.Empty(t, h.Failures)
}
