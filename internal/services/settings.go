package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/log"
	"github.com/Selvaganesh007/expense-tracker/internal/store"
	"github.com/Selvaganesh007/expense-tracker/internal/ws"
)

// ErrEmptyCurrency rejects a settings update with no currency symbol.
var ErrEmptyCurrency = errors.New("currency symbol cannot be empty")

// SettingsService reads and writes per-user settings. Category and mode
// lists only drive input forms; removing a category never touches existing
// transactions that use it.
type SettingsService struct {
	store  store.SettingsStore
	hub    *ws.Hub
	logger *log.Logger
}

func NewSettingsService(st store.SettingsStore, hub *ws.Hub, logger *log.Logger) *SettingsService {
	return &SettingsService{
		store:  st,
		hub:    hub,
		logger: logger.WithComponent(log.ComponentServices),
	}
}

func (s *SettingsService) Get(ctx context.Context, userID string) (core.Settings, error) {
	settings, err := s.store.GetSettings(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return core.Settings{}, err
	}
	if err != nil {
		return core.Settings{}, &DataFetchError{Resource: "settings", Key: userID, Err: err}
	}
	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, userID string, settings core.Settings) (core.Settings, error) {
	settings.Currency = strings.TrimSpace(settings.Currency)
	if settings.Currency == "" {
		return core.Settings{}, ErrEmptyCurrency
	}
	settings.ExpenseCategories = cleanList(settings.ExpenseCategories)
	settings.IncomeCategories = cleanList(settings.IncomeCategories)
	settings.TransactionModes = cleanList(settings.TransactionModes)

	if err := s.store.UpdateSettings(ctx, userID, settings); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.Settings{}, err
		}
		return core.Settings{}, &DataWriteError{Resource: "settings", Key: userID, Err: err}
	}

	s.logger.InfoContext(ctx, "Settings updated",
		log.FieldOperation, log.OpUpdate, log.FieldUserID, userID)

	if s.hub != nil {
		s.hub.Broadcast(ctx, userID, ws.Event{Type: ws.EventSettingsUpdated})
	}
	return settings, nil
}

// cleanList trims entries and drops blanks and duplicates, keeping order.
func cleanList(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
