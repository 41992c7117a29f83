package core

import (
	"fmt"
	"strconv"
	"time"
)

// TransactionRecord is the loosely-typed shape a transaction arrives in from
// outside the service: file-seeded stores, import payloads, anything that was
// not written through the typed API. Amount and Timestamp are free-form
// strings; decoding them is the single place where malformed data is handled.
type TransactionRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	FlowType     string `json:"flow_type"`
	Amount       string `json:"amount"`
	Mode         string `json:"transaction_mode"`
	Timestamp    string `json:"timestamp"`
	CollectionID string `json:"collection_id"`
	UserID       string `json:"user_id"`
}

// RecordWarning reports a data-quality problem found while decoding a record.
// It is not an error: the decoded transaction is still usable, with the
// malformed field degraded (zero amount, zero timestamp).
type RecordWarning struct {
	RecordID string
	Field    string
	Value    string
}

func (w RecordWarning) String() string {
	return fmt.Sprintf("record %s: malformed %s %q", w.RecordID, w.Field, w.Value)
}

// DecodeTransactionRecord converts a loose record into a typed Transaction.
// Malformed amounts contribute zero and unparseable timestamps become the
// zero time (which sorts after all valid timestamps); both are reported as
// warnings rather than errors so one bad record never sinks a whole fetch.
func DecodeTransactionRecord(r TransactionRecord) (Transaction, []RecordWarning) {
	var warns []RecordWarning

	t := Transaction{
		ID:           r.ID,
		Name:         r.Name,
		Category:     r.Category,
		FlowType:     FlowType(r.FlowType),
		Mode:         r.Mode,
		CollectionID: r.CollectionID,
		UserID:       r.UserID,
	}

	if r.Amount != "" {
		if cents, err := parseLooseAmount(r.Amount); err == nil {
			t.Amount = Money{Cents: cents}
		} else {
			warns = append(warns, RecordWarning{RecordID: r.ID, Field: "amount", Value: r.Amount})
		}
	} else {
		warns = append(warns, RecordWarning{RecordID: r.ID, Field: "amount", Value: ""})
	}

	if r.Timestamp != "" {
		if ts, err := parseLooseTimestamp(r.Timestamp); err == nil {
			t.Timestamp = ts.UTC()
		} else {
			warns = append(warns, RecordWarning{RecordID: r.ID, Field: "timestamp", Value: r.Timestamp})
		}
	} else {
		warns = append(warns, RecordWarning{RecordID: r.ID, Field: "timestamp", Value: ""})
	}

	if !t.FlowType.IsValid() {
		warns = append(warns, RecordWarning{RecordID: r.ID, Field: "flow_type", Value: r.FlowType})
	}

	return t, warns
}

// parseLooseAmount is more permissive than ParseDecimalToCents: zero is
// acceptable in fetched data even though the write path rejects it.
func parseLooseAmount(s string) (int64, error) {
	if cents, err := ParseDecimalToCents(s); err == nil {
		return cents, nil
	}
	// ParseDecimalToCents rejects "0" and "0.00"; historical records may
	// legitimately carry them.
	if v, err := strconv.ParseFloat(s, 64); err == nil && v == 0 {
		return 0, nil
	}
	return 0, ErrInvalidAmount
}

var looseTimestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseLooseTimestamp(s string) (time.Time, error) {
	for _, layout := range looseTimestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	// Unix seconds, the shape nested store timestamps collapse to.
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0), nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
