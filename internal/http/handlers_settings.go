package http

import (
	"net/http"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/log"
)

type settingsPayload struct {
	Currency          string   `json:"currency"`
	DarkTheme         bool     `json:"dark_theme"`
	ExpenseCategories []string `json:"expense_categories"`
	IncomeCategories  []string `json:"income_categories"`
	TransactionModes  []string `json:"transaction_modes"`
}

func toSettingsPayload(s core.Settings) settingsPayload {
	return settingsPayload{
		Currency:          s.Currency,
		DarkTheme:         s.DarkTheme,
		ExpenseCategories: s.ExpenseCategories,
		IncomeCategories:  s.IncomeCategories,
		TransactionModes:  s.TransactionModes,
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	settings, err := s.settings.Get(r.Context(), user.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Settings read failed",
			log.FieldOperation, log.OpRead,
			log.FieldUserID, user.ID,
			log.FieldError, err.Error())
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsPayload(settings))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsPayload
	if !decodeJSON(w, r, &req) {
		return
	}

	user := currentUser(r)
	updated, err := s.settings.Update(r.Context(), user.ID, core.Settings{
		Currency:          req.Currency,
		DarkTheme:         req.DarkTheme,
		ExpenseCategories: req.ExpenseCategories,
		IncomeCategories:  req.IncomeCategories,
		TransactionModes:  req.TransactionModes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsPayload(updated))
}
