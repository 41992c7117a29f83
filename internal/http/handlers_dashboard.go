package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/log"
	"github.com/Selvaganesh007/expense-tracker/internal/store"
)

type categoryAmountResponse struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
}

type dashboardResponse struct {
	TotalIncomeCents  int64  `json:"total_income_cents"`
	TotalExpenseCents int64  `json:"total_expense_cents"`
	BalanceCents      int64  `json:"balance_cents"`
	TotalIncome       string `json:"total_income"`
	TotalExpense      string `json:"total_expense"`
	Balance           string `json:"balance"`

	ByCategory       []categoryAmountResponse `json:"by_category"`
	IncomeByCategory []categoryAmountResponse `json:"income_by_category,omitempty"`
	Recent           []transactionResponse    `json:"recent"`
}

// handleDashboard returns the aggregated view of one collection: totals,
// the expense-by-category breakdown for the chart, and the recent list.
// Amounts are formatted with the user's configured currency symbol.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	collectionID := r.PathValue("id")

	res, err := s.dashboard.Get(r.Context(), user.ID, collectionID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard aggregation failed",
			log.FieldOperation, log.OpRead,
			log.FieldCollectionID, collectionID,
			log.FieldError, err.Error())
		writeServiceError(w, err)
		return
	}

	symbol := s.currencySymbol(r)

	out := dashboardResponse{
		TotalIncomeCents:  res.TotalIncome.Cents,
		TotalExpenseCents: res.TotalExpense.Cents,
		BalanceCents:      res.Balance.Cents,
		TotalIncome:       core.FormatAmount(res.TotalIncome, symbol),
		TotalExpense:      core.FormatAmount(res.TotalExpense, symbol),
		Balance:           core.FormatAmount(res.Balance, symbol),
		ByCategory:        toCategoryResponses(res.ByCategory, symbol),
		IncomeByCategory:  toCategoryResponses(res.IncomeByCategory, symbol),
	}
	out.Recent = make([]transactionResponse, len(res.Recent))
	for i, t := range res.Recent {
		out.Recent[i] = toTransactionResponse(t)
	}

	writeJSON(w, http.StatusOK, out)
}

type historyEntryResponse struct {
	transactionResponse
	CollectionName string `json:"collection_name"`
}

type historyResponse struct {
	Entries []historyEntryResponse `json:"entries"`
	// Skipped lists collections whose data could not be fetched; their
	// transactions are missing from Entries.
	Skipped []skippedCollection `json:"skipped_collections,omitempty"`
}

type skippedCollection struct {
	CollectionID   string `json:"collection_id"`
	CollectionName string `json:"collection_name"`
}

// handleHistory returns the merged cross-collection transaction feed,
// newest first. Unreachable collections are reported, not fatal.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	h, err := s.history.Merge(r.Context(), user.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "History merge failed",
			log.FieldOperation, log.OpList,
			log.FieldUserID, user.ID,
			log.FieldError, err.Error())
		writeServiceError(w, err)
		return
	}

	q := r.URL.Query().Get("q")
	out := historyResponse{
		Entries: make([]historyEntryResponse, 0, len(h.Entries)),
	}
	for _, e := range h.Entries {
		if !e.Transaction.MatchesQuery(q) {
			continue
		}
		out.Entries = append(out.Entries, historyEntryResponse{
			transactionResponse: toTransactionResponse(e.Transaction),
			CollectionName:      e.CollectionName,
		})
	}
	for _, f := range h.Failures {
		out.Skipped = append(out.Skipped, skippedCollection{
			CollectionID:   f.CollectionID,
			CollectionName: f.CollectionName,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func toCategoryResponses(cats []core.CategoryAmount, symbol string) []categoryAmountResponse {
	if len(cats) == 0 {
		return nil
	}
	out := make([]categoryAmountResponse, len(cats))
	for i, c := range cats {
		out[i] = categoryAmountResponse{
			Name:        c.Name,
			AmountCents: c.Amount.Cents,
			Amount:      core.FormatAmount(c.Amount, symbol),
		}
	}
	return out
}

// currencySymbol loads the user's currency, falling back to the default
// when settings cannot be read; formatting should never fail a dashboard.
func (s *Server) currencySymbol(r *http.Request) string {
	ctx, cancel := contextWithTimeout(r, 2*time.Second)
	defer cancel()

	settings, err := s.settings.Get(ctx, currentUser(r).ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.WarnContext(r.Context(), "Falling back to default currency",
				log.FieldError, err.Error())
		}
		return core.DefaultSettings().Currency
	}
	return settings.Currency
}
