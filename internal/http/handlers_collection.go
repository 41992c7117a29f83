package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/Selvaganesh007/expense-tracker/internal/log"
	"github.com/Selvaganesh007/expense-tracker/internal/services"
)

type collectionRequest struct {
	Name string `json:"name"`
}

type collectionResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	TotalIncome      int64     `json:"total_income_cents"`
	TotalExpense     int64     `json:"total_expense_cents"`
	Balance          int64     `json:"balance_cents"`
	TransactionCount int       `json:"transaction_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toCollectionResponse(b services.CollectionBalance) collectionResponse {
	return collectionResponse{
		ID:               b.Collection.ID,
		Name:             b.Collection.Name,
		TotalIncome:      b.TotalIncome.Cents,
		TotalExpense:     b.TotalExpense.Cents,
		Balance:          b.Balance.Cents,
		TransactionCount: b.TransactionCount,
		CreatedAt:        b.Collection.CreatedAt,
		UpdatedAt:        b.Collection.UpdatedAt,
	}
}

// handleListCollections returns the user's collections with derived
// balances, newest collection first.
func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	balances, err := s.balances.ResolveAll(r.Context(), user.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Collection list failed",
			log.FieldOperation, log.OpList,
			log.FieldUserID, user.ID,
			log.FieldError, err.Error())
		writeServiceError(w, err)
		return
	}

	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	out := make([]collectionResponse, 0, len(balances))
	for _, b := range balances {
		if q != "" && !strings.Contains(strings.ToLower(b.Collection.Name), q) {
			continue
		}
		out = append(out, toCollectionResponse(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": out})
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req collectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := currentUser(r)
	c, err := s.collections.Create(r.Context(), user.ID, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCollectionResponse(services.CollectionBalance{Collection: c}))
}

func (s *Server) handleRenameCollection(w http.ResponseWriter, r *http.Request) {
	var req collectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := currentUser(r)
	c, err := s.collections.Rename(r.Context(), user.ID, r.PathValue("id"), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	b, err := s.balances.Resolve(r.Context(), user.ID, c.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCollectionResponse(b))
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id := r.PathValue("id")
	if err := s.collections.Delete(r.Context(), user.ID, id); err != nil {
		s.logger.ErrorContext(r.Context(), "Collection delete failed",
			log.FieldOperation, log.OpDelete,
			log.FieldCollectionID, id,
			log.FieldError, err.Error())
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
