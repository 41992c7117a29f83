package core

import (
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		ID:           "tx-1",
		Name:         "groceries",
		Category:     "Food",
		FlowType:     Expense,
		Amount:       Money{Cents: 1000},
		Timestamp:    time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		CollectionID: "col-1",
		UserID:       "user-1",
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTransaction().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []func(*Transaction){
		func(x *Transaction) { x.Name = "  " },
		func(x *Transaction) { x.FlowType = "transfer" },
		func(x *Transaction) { x.Amount = Money{Cents: 0} },
		func(x *Transaction) { x.Category = "" },
		func(x *Transaction) { x.Timestamp = time.Time{} },
		func(x *Transaction) { x.CollectionID = "" },
		func(x *Transaction) { x.UserID = "" },
	}
	for i, mutate := range bads {
		bad := validTransaction()
		mutate(&bad)
		if err := bad.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCollectionValidate(t *testing.T) {
	good := Collection{Name: "Groceries", UserID: "user-1"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Collection{Name: "", UserID: "user-1"}).Validate(); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := (Collection{Name: "x", UserID: ""}).Validate(); err == nil {
		t.Fatalf("expected error for empty user")
	}
}

func TestFlowTypeIsValid(t *testing.T) {
	if !Income.IsValid() || !Expense.IsValid() {
		t.Fatalf("known flow types must validate")
	}
	if FlowType("transfer").IsValid() {
		t.Fatalf("unknown flow type must not validate")
	}
}

func TestTransactionMatchesQuery(t *testing.T) {
	tx := validTransaction()
	tx.Name = "Groceries run"
	tx.Category = "Food"
	tx.Amount = Money{Cents: 12050}

	tests := []struct {
		q    string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"grocer", true},
		{"GROCERIES", true},
		{"food", true},
		{"120.50", true},
		{"120", true},
		{"rent", false},
		{"999", false},
	}
	for _, tt := range tests {
		if got := tx.MatchesQuery(tt.q); got != tt.want {
			t.Fatalf("MatchesQuery(%q) = %v, want %v", tt.q, got, tt.want)
		}
	}
}
