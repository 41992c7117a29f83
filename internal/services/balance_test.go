package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/memory"
	"github.com/Selvaganesh007/expense-tracker/internal/store"
)

func TestResolveBalance(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, st.CreateCollection(ctx, core.Collection{
		ID: "c1", Name: "Home", UserID: "u1", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, st.CreateTransaction(ctx, core.Transaction{
		ID: "t1", Name: "Salary", Category: "Salary", FlowType: core.Income,
		Amount: core.Money{Cents: 50000}, Timestamp: now,
		CollectionID: "c1", UserID: "u1",
	}))
	require.NoError(t, st.CreateTransaction(ctx, core.Transaction{
		ID: "t2", Name: "Groceries", Category: "Food", FlowType: core.Expense,
		Amount: core.Money{Cents: 10000}, Timestamp: now,
		CollectionID: "c1", UserID: "u1",
	}))

	r := NewBalanceResolver(st)
	b, err := r.Resolve(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), b.TotalIncome.Cents)
	assert.Equal(t, int64(10000), b.TotalExpense.Cents)
	assert.Equal(t, int64(40000), b.Balance.Cents)
	assert.Equal(t, 2, b.TransactionCount)
}

func TestResolveUnknownCollection(t *testing.T) {
	r := NewBalanceResolver(memory.New())
	_, err := r.Resolve(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResolveAllMatchesPerCollection(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	now := time.Now().UTC()
	for i, col := range []string{"c1", "c2", "c3", "c4", "c5"} {
		require.NoError(t, st.CreateCollection(ctx, core.Collection{
			ID: col, Name: col, UserID: "u1",
			CreatedAt: now.Add(time.Duration(i) * time.Minute), UpdatedAt: now,
		}))
		require.NoError(t, st.CreateTransaction(ctx, core.Transaction{
			ID: col + "-t", Name: "tx", Category: "Food", FlowType: core.Expense,
			Amount: core.Money{Cents: int64((i + 1) * 100)}, Timestamp: now,
			CollectionID: col, UserID: "u1",
		}))
	}

	r := NewBalanceResolver(st)
	balances, err := r.ResolveAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, balances, 5)

	// Fan-out results keep the collection list's order.
	for i, b := range balances {
		single, err := r.Resolve(ctx, "u1", b.Collection.ID)
		require.NoError(t, err)
		assert.Equal(t, single, balances[i])
	}
}

func TestResolveAllEmptyUser(t *testing.T) {
	r := NewBalanceResolver(memory.New())
	balances, err := r.ResolveAll(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, balances)
}
