package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/memory"
	"github.com/Selvaganesh007/expense-tracker/internal/store"
)

func TestSettingsRoundTrip(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	require.NoError(t, st.CreateUser(ctx, core.User{ID: "u1", Email: "a@b.c"}, "hash"))
	svc := NewSettingsService(st, nil, testLogger())

	settings, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "₹", settings.Currency)
	assert.NotEmpty(t, settings.ExpenseCategories)

	settings.Currency = "$"
	settings.DarkTheme = true
	updated, err := svc.Update(ctx, "u1", settings)
	require.NoError(t, err)
	assert.Equal(t, "$", updated.Currency)

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.DarkTheme)
}

func TestSettingsUpdateCleansLists(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	require.NoError(t, st.CreateUser(ctx, core.User{ID: "u1", Email: "a@b.c"}, "hash"))
	svc := NewSettingsService(st, nil, testLogger())

	updated, err := svc.Update(ctx, "u1", core.Settings{
		Currency:          " € ",
		ExpenseCategories: []string{" Food ", "Food", "", "Rent"},
		TransactionModes:  []string{"Cash", "Cash"},
	})
	require.NoError(t, err)
	assert.Equal(t, "€", updated.Currency)
	assert.Equal(t, []string{"Food", "Rent"}, updated.ExpenseCategories)
	assert.Equal(t, []string{"Cash"}, updated.TransactionModes)
}

func TestSettingsUpdateRejectsEmptyCurrency(t *testing.T) {
	st := memory.New()
	require.NoError(t, st.CreateUser(context.Background(), core.User{ID: "u1", Email: "a@b.c"}, "hash"))
	svc := NewSettingsService(st, nil, testLogger())

	_, err := svc.Update(context.Background(), "u1", core.Settings{Currency: "  "})
	assert.ErrorIs(t, err, ErrEmptyCurrency)
}

func TestSettingsUnknownUser(t *testing.T) {
	svc := NewSettingsService(memory.New(), nil, testLogger())
	_, err := svc.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
