package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/store"
)

func TestTransactionLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	tx := core.Transaction{
		ID:           "t1",
		Name:         "Groceries",
		Category:     "Food",
		FlowType:     core.Expense,
		Amount:       core.Money{Cents: 10000},
		Timestamp:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		CollectionID: "c1",
		UserID:       "u1",
	}
	if err := s.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetTransaction(ctx, "u1", "t1")
	if err != nil || got.Name != "Groceries" {
		t.Fatalf("unexpected get: %+v err=%v", got, err)
	}

	if _, err := s.GetTransaction(ctx, "other-user", "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}

	tx.Name = "Groceries (market)"
	if err := s.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := s.DeleteTransaction(ctx, "u1", "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "u1", "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestListTransactionsOrdersNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		_ = s.CreateTransaction(ctx, core.Transaction{
			ID: id, Name: id, Category: "Food", FlowType: core.Expense,
			Amount: core.Money{Cents: 100}, Timestamp: base.Add(time.Duration(i) * time.Hour),
			CollectionID: "c1", UserID: "u1",
		})
	}
	txs, err := s.ListTransactions(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 3 || txs[0].ID != "c" || txs[2].ID != "a" {
		t.Fatalf("unexpected order: %+v", txs)
	}
}

func TestDeleteCollectionCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.CreateCollection(ctx, core.Collection{ID: "c1", Name: "Home", UserID: "u1"})
	_ = s.CreateTransaction(ctx, core.Transaction{
		ID: "t1", Name: "Rent", Category: "Rent", FlowType: core.Expense,
		Amount: core.Money{Cents: 100}, Timestamp: time.Now().UTC(),
		CollectionID: "c1", UserID: "u1",
	})

	if err := s.DeleteCollection(ctx, "u1", "c1"); err != nil {
		t.Fatalf("delete collection: %v", err)
	}
	if _, err := s.GetTransaction(ctx, "u1", "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected cascade to remove transaction, got %v", err)
	}
}

func TestUsersSettingsAndSessions(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := core.User{ID: "u1", Email: "a@b.c", DisplayName: "A"}
	if err := s.CreateUser(ctx, u, "hash"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.CreateUser(ctx, core.User{ID: "u2", Email: "a@b.c"}, "hash"); !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	settings, err := s.GetSettings(ctx, "u1")
	if err != nil || settings.Currency != "₹" {
		t.Fatalf("expected default settings on sign-up, got %+v err=%v", settings, err)
	}
	settings.DarkTheme = true
	if err := s.UpdateSettings(ctx, "u1", settings); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	got, hash, err := s.GetUserByEmail(ctx, "a@b.c")
	if err != nil || got.ID != "u1" || hash != "hash" {
		t.Fatalf("unexpected lookup: %+v %q err=%v", got, hash, err)
	}

	if err := s.CreateSession(ctx, "tok", "u1", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("create session: %v", err)
	}
	n, err := s.DeleteExpiredSessions(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 expired session removed, got n=%d err=%v", n, err)
	}
}

func TestNewFromFilesSeedsAndDegrades(t *testing.T) {
	dir := t.TempDir()
	// No file -> empty store, no error.
	s := NewFromFiles(dir)
	txs, _ := s.ListTransactions(context.Background(), "u1", "c1")
	if len(txs) != 0 {
		t.Fatalf("expected empty store when file missing")
	}

	seed := `[
		{"id":"t1","name":"Salary","category":"Salary","flow_type":"income","amount":"500","timestamp":"2026-03-01 09:00","collection_id":"c1","user_id":"u1"},
		{"id":"t2","name":"Broken","category":"Food","flow_type":"expense","amount":"oops","timestamp":"not-a-date","collection_id":"c1","user_id":"u1"},
		{"id":"","name":"no id","category":"X","flow_type":"expense","amount":"1","timestamp":"2026-03-01","collection_id":"c1","user_id":"u1"}
	]`
	if err := os.WriteFile(filepath.Join(dir, "seed_transactions.json"), []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s = NewFromFiles(dir)
	txs, err := s.ListTransactions(context.Background(), "u1", "c1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 seeded transactions, got %d", len(txs))
	}
	// Degraded record keeps zero amount and sorts after the valid one.
	if txs[0].ID != "t1" || txs[1].ID != "t2" || txs[1].Amount.Cents != 0 {
		t.Fatalf("unexpected seeded data: %+v", txs)
	}
}
