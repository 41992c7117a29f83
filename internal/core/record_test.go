package core

import (
	"testing"
	"time"
)

func TestDecodeTransactionRecord(t *testing.T) {
	rec := TransactionRecord{
		ID:           "tx-1",
		Name:         "groceries",
		Category:     "Food",
		FlowType:     "expense",
		Amount:       "123.45",
		Timestamp:    "2025-06-01T10:00:00Z",
		CollectionID: "col-1",
		UserID:       "user-1",
	}

	got, warns := DecodeTransactionRecord(rec)
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if got.Amount.Cents != 12345 {
		t.Fatalf("amount = %d, want 12345", got.Amount.Cents)
	}
	want := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if !got.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", got.Timestamp, want)
	}
}

func TestDecodeMalformedAmountContributesZero(t *testing.T) {
	rec := TransactionRecord{
		ID:       "tx-2",
		Name:     "mystery",
		Category: "Food",
		FlowType: "expense",
		Amount:   "abc",
	}

	got, warns := DecodeTransactionRecord(rec)
	if got.Amount.Cents != 0 {
		t.Fatalf("malformed amount must decode to zero, got %d", got.Amount.Cents)
	}
	found := false
	for _, w := range warns {
		if w.Field == "amount" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected amount warning, got %v", warns)
	}

	// Aggregation over the degraded record must not blow up or count it.
	res := Aggregate([]Transaction{got}, AggregateOptions{})
	if res.TotalExpense.Cents != 0 {
		t.Fatalf("malformed amount leaked into totals: %d", res.TotalExpense.Cents)
	}
}

func TestDecodeUnparseableTimestampSortsLast(t *testing.T) {
	bad, warns := DecodeTransactionRecord(TransactionRecord{
		ID: "tx-3", Name: "n", Category: "c", FlowType: "expense",
		Amount: "1.00", Timestamp: "yesterday-ish",
	})
	if !bad.Timestamp.IsZero() {
		t.Fatalf("unparseable timestamp should decode to zero time")
	}
	hasTSWarn := false
	for _, w := range warns {
		if w.Field == "timestamp" {
			hasTSWarn = true
		}
	}
	if !hasTSWarn {
		t.Fatalf("expected timestamp warning, got %v", warns)
	}

	good, _ := DecodeTransactionRecord(TransactionRecord{
		ID: "tx-4", Name: "n", Category: "c", FlowType: "expense",
		Amount: "1.00", Timestamp: "2025-06-01 10:00",
	})

	res := Aggregate([]Transaction{bad, good}, AggregateOptions{})
	if res.Recent[len(res.Recent)-1].ID != "tx-3" {
		t.Fatalf("degraded record should sort last: %v", res.Recent)
	}
}

func TestDecodeTimestampFormats(t *testing.T) {
	cases := []string{
		"2025-06-01T10:00:00Z",
		"2025-06-01 10:00:05",
		"2025-06-01 10:00",
		"2025-06-01",
		"1748772000", // unix seconds
	}
	for _, in := range cases {
		got, _ := DecodeTransactionRecord(TransactionRecord{
			ID: "t", Name: "n", Category: "c", FlowType: "income",
			Amount: "1.00", Timestamp: in,
		})
		if got.Timestamp.IsZero() {
			t.Fatalf("timestamp %q should parse", in)
		}
	}
}
