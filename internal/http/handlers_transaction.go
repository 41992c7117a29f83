package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/log"
)

// transactionRequest is the write payload. Amount is a decimal string
// ("120,50" or "120.50"); the service stores cents.
type transactionRequest struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	FlowType  string `json:"flow_type"`
	Amount    string `json:"amount"`
	Mode      string `json:"transaction_mode,omitempty"`
	Timestamp string `json:"timestamp"`
}

type transactionResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	FlowType     string    `json:"flow_type"`
	AmountCents  int64     `json:"amount_cents"`
	Mode         string    `json:"transaction_mode,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	CollectionID string    `json:"collection_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:           t.ID,
		Name:         t.Name,
		Category:     t.Category,
		FlowType:     string(t.FlowType),
		AmountCents:  t.Amount.Cents,
		Mode:         t.Mode,
		Timestamp:    t.Timestamp,
		CollectionID: t.CollectionID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// parseTransactionRequest turns the wire payload into a domain transaction.
// Validation proper happens in the service; this only converts formats.
func parseTransactionRequest(w http.ResponseWriter, req transactionRequest) (core.Transaction, bool) {
	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed",
			"Amount must be a positive decimal number.")
		return core.Transaction{}, false
	}

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(req.Timestamp))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed",
			"Timestamp must be RFC 3339, e.g. 2026-03-01T10:00:00Z.")
		return core.Transaction{}, false
	}

	return core.Transaction{
		Name:      sanitizeInput(req.Name),
		Category:  sanitizeInput(req.Category),
		FlowType:  core.FlowType(strings.ToLower(strings.TrimSpace(req.FlowType))),
		Amount:    core.Money{Cents: cents},
		Mode:      sanitizeInput(req.Mode),
		Timestamp: ts.UTC(),
	}, true
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	collectionID := r.PathValue("id")

	txs, err := s.tx.List(r.Context(), user.ID, collectionID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Transaction list failed",
			log.FieldOperation, log.OpList,
			log.FieldCollectionID, collectionID,
			log.FieldError, err.Error())
		writeServiceError(w, err)
		return
	}

	q := r.URL.Query().Get("q")
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		if !t.MatchesQuery(q) {
			continue
		}
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, ok := parseTransactionRequest(w, req)
	if !ok {
		return
	}

	user := currentUser(r)
	t.UserID = user.ID
	t.CollectionID = r.PathValue("id")

	created, err := s.tx.Create(r.Context(), t)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	t, err := s.tx.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, ok := parseTransactionRequest(w, req)
	if !ok {
		return
	}

	user := currentUser(r)
	t.ID = r.PathValue("id")
	t.UserID = user.ID

	updated, err := s.tx.Update(r.Context(), t)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id := r.PathValue("id")
	if err := s.tx.Delete(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
