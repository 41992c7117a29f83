package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  FlowType = "income"
	Expense FlowType = "expense"
)

type (
	// FlowType tells whether a transaction adds to or subtracts from a
	// collection's balance. The amount itself is always non-negative.
	FlowType string

	Money struct {
		Cents int64
	}

	// Transaction is a single dated income or expense entry inside a
	// collection. Timestamp is the moment the transaction occurred, kept
	// in UTC end-to-end; CreatedAt/UpdatedAt are record audit times.
	Transaction struct {
		ID           string
		Name         string
		Category     string
		FlowType     FlowType
		Amount       Money
		Mode         string // transaction mode, e.g. "Cash", "Card"; descriptive only
		Timestamp    time.Time
		CollectionID string
		UserID       string
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	// Collection is a user-defined ledger grouping related transactions.
	// Its balance is always derived from its transactions, never stored.
	Collection struct {
		ID        string
		Name      string
		UserID    string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// Settings holds per-user configuration. Categories outside the
	// allow-lists still aggregate; the lists only drive input forms.
	Settings struct {
		Currency          string
		DarkTheme         bool
		ExpenseCategories []string
		IncomeCategories  []string
		TransactionModes  []string
	}

	// User is the authenticated owner of collections and settings.
	User struct {
		ID          string
		Email       string
		DisplayName string
		AvatarURL   string
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNameTooLong       = errors.New("name too long")
	ErrInvalidFlowType   = errors.New("invalid flow type")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyCategory     = errors.New("empty category")
	ErrEmptyCollectionID = errors.New("empty collection id")
	ErrEmptyUserID       = errors.New("empty user id")
	ErrZeroTimestamp     = errors.New("zero timestamp")
)

// IsValid reports whether ft is one of the two known flow types.
func (ft FlowType) IsValid() bool {
	return ft == Income || ft == Expense
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Name)) == 0 {
		return ErrEmptyName
	}
	if len(t.Name) > 200 {
		return fmt.Errorf("%w (max 200 characters)", ErrNameTooLong)
	}
	if !t.FlowType.IsValid() {
		return ErrInvalidFlowType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	if strings.TrimSpace(t.CollectionID) == "" {
		return ErrEmptyCollectionID
	}
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUserID
	}
	return nil
}

// MatchesQuery reports whether the free-text search term matches the
// transaction's name, category or amount. Matching is a case-insensitive
// substring; an empty term matches everything.
func (t Transaction) MatchesQuery(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(strings.ToLower(t.Category), q) {
		return true
	}
	return strings.Contains(t.Amount.Decimal(), q)
}

func (c Collection) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return fmt.Errorf("%w (max 100 characters)", ErrNameTooLong)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return ErrEmptyUserID
	}
	return nil
}

// DefaultSettings returns the settings applied to a freshly signed-up user.
func DefaultSettings() Settings {
	return Settings{
		Currency:  "₹",
		DarkTheme: false,
		ExpenseCategories: []string{
			"Rent", "Bill", "Food", "Clothes", "Bike", "Fuel", "Shopping", "Savings",
		},
		IncomeCategories: []string{
			"Salary", "Freelance", "Bonus", "Investment", "Interest", "Other",
		},
		TransactionModes: []string{"Cash", "Card", "UPI"},
	}
}
