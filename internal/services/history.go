package services

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/log"
	"github.com/Selvaganesh007/expense-tracker/internal/store"
)

// HistoryEntry is a transaction tagged with the name of the collection it
// lives in, for display in the merged cross-collection view.
type HistoryEntry struct {
	core.Transaction
	CollectionName string
}

// CollectionFailure records a collection whose transactions could not be
// fetched during a history merge.
type CollectionFailure struct {
	CollectionID   string
	CollectionName string
	Err            error
}

// History is the merged cross-collection view. Failures lists collections
// that were skipped; their transactions are simply absent from Entries.
type History struct {
	Entries  []HistoryEntry
	Failures []CollectionFailure
}

// HistoryMerger builds a single timestamp-ordered feed from every collection
// of a user. Fetches fan out per collection and fail soft: one broken
// collection costs its own entries, never the whole feed.
type HistoryMerger struct {
	store  store.Store
	logger *log.Logger
}

func NewHistoryMerger(st store.Store, logger *log.Logger) *HistoryMerger {
	return &HistoryMerger{
		store:  st,
		logger: logger.WithComponent(log.ComponentServices),
	}
}

func (m *HistoryMerger) Merge(ctx context.Context, userID string) (History, error) {
	cols, err := m.store.ListCollections(ctx, userID)
	if err != nil {
		return History{}, &DataFetchError{Resource: "collections", Key: userID, Err: err}
	}

	perCollection := make([][]HistoryEntry, len(cols))
	var mu sync.Mutex
	var failures []CollectionFailure

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, c := range cols {
		g.Go(func() error {
			txs, err := m.store.ListTransactions(gctx, userID, c.ID)
			if err != nil {
				m.logger.WarnContext(gctx, "Skipping collection in history merge",
					log.FieldCollectionID, c.ID, log.FieldError, err.Error())
				mu.Lock()
				failures = append(failures, CollectionFailure{
					CollectionID:   c.ID,
					CollectionName: c.Name,
					Err:            err,
				})
				mu.Unlock()
				return nil
			}
			entries := make([]HistoryEntry, len(txs))
			for j, t := range txs {
				entries[j] = HistoryEntry{Transaction: t, CollectionName: c.Name}
			}
			perCollection[i] = entries
			return nil
		})
	}
	// Goroutines only return nil; Wait is for synchronization.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return History{}, err
	}

	var entries []HistoryEntry
	for _, part := range perCollection {
		entries = append(entries, part...)
	}
	sortHistoryDesc(entries)

	return History{Entries: entries, Failures: failures}, nil
}

// sortHistoryDesc orders entries like core.SortByTimestampDesc: newest
// first, zero timestamps last, ties stable.
func sortHistoryDesc(entries []HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Timestamp, entries[j].Timestamp
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})
}
