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

func seedDashboard(t *testing.T) *memory.Store {
	t.Helper()
	st := memory.New()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.CreateCollection(ctx, core.Collection{
		ID: "c1", Name: "Home", UserID: "u1", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, st.CreateTransaction(ctx, core.Transaction{
		ID: "t1", Name: "Salary", Category: "Salary", FlowType: core.Income,
		Amount: core.Money{Cents: 50000}, Timestamp: now.Add(-time.Hour),
		CollectionID: "c1", UserID: "u1",
	}))
	require.NoError(t, st.CreateTransaction(ctx, core.Transaction{
		ID: "t2", Name: "Groceries", Category: "Food", FlowType: core.Expense,
		Amount: core.Money{Cents: 10000}, Timestamp: now,
		CollectionID: "c1", UserID: "u1",
	}))
	return st
}

func TestDashboardGet(t *testing.T) {
	svc := NewDashboardService(seedDashboard(t), core.AggregateOptions{RecentLimit: 10}, testLogger())

	res, err := svc.Get(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(40000), res.Balance.Cents)
	require.Len(t, res.ByCategory, 1)
	assert.Equal(t, "Food", res.ByCategory[0].Name)
	require.Len(t, res.Recent, 2)
	assert.Equal(t, "t2", res.Recent[0].ID)
}

func TestDashboardUnknownCollection(t *testing.T) {
	svc := NewDashboardService(seedDashboard(t), core.AggregateOptions{}, testLogger())
	_, err := svc.Get(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDashboardCachesUntilInvalidated(t *testing.T) {
	st := seedDashboard(t)
	svc := NewDashboardService(st, core.AggregateOptions{RecentLimit: 10}, testLogger())
	ctx := context.Background()

	first, err := svc.Get(ctx, "u1", "c1")
	require.NoError(t, err)

	// A write behind the cache's back is not visible yet.
	require.NoError(t, st.CreateTransaction(ctx, core.Transaction{
		ID: "t3", Name: "Fuel", Category: "Fuel", FlowType: core.Expense,
		Amount: core.Money{Cents: 2000}, Timestamp: time.Now().UTC(),
		CollectionID: "c1", UserID: "u1",
	}))
	cached, err := svc.Get(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, first.Balance, cached.Balance)

	// After invalidation the new transaction shows up.
	svc.Invalidate("u1", "c1")
	fresh, err := svc.Get(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, first.Balance.Cents-2000, fresh.Balance.Cents)
}

func TestDashboardIncomeBreakdownFlag(t *testing.T) {
	st := seedDashboard(t)

	plain := NewDashboardService(st, core.AggregateOptions{}, testLogger())
	res, err := plain.Get(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Nil(t, res.IncomeByCategory)

	withIncome := NewDashboardService(st, core.AggregateOptions{IncludeIncome: true}, testLogger())
	res, err = withIncome.Get(context.Background(), "u1", "c1")
	require.NoError(t, err)
	require.Len(t, res.IncomeByCategory, 1)
	assert.Equal(t, "Salary", res.IncomeByCategory[0].Name)
}
