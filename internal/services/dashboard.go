package services

import (
	"context"
	"errors"
	"time"

	"github.com/Selvaganesh007/expense-tracker/internal/cache"
	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/log"
	"github.com/Selvaganesh007/expense-tracker/internal/store"
)

const (
	dashboardCacheSize = 256
	dashboardCacheTTL  = 30 * time.Second
)

// DashboardService serves the aggregated view of one collection. Results
// are cached briefly; every transaction write invalidates the affected key,
// so the TTL only covers reads racing a write on another instance.
type DashboardService struct {
	store  store.Store
	cache  *cache.LRUCache[core.AggregationResult]
	opts   core.AggregateOptions
	logger *log.Logger
}

func NewDashboardService(st store.Store, opts core.AggregateOptions, logger *log.Logger) *DashboardService {
	return &DashboardService{
		store:  st,
		cache:  cache.NewLRUCache[core.AggregationResult](dashboardCacheSize, dashboardCacheTTL),
		opts:   opts,
		logger: logger.WithComponent(log.ComponentServices),
	}
}

// Get returns the aggregation of the collection's transactions.
func (s *DashboardService) Get(ctx context.Context, userID, collectionID string) (core.AggregationResult, error) {
	key := dashboardKey(userID, collectionID)
	if res, ok := s.cache.Get(key); ok {
		return res, nil
	}

	if _, err := s.store.GetCollection(ctx, userID, collectionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.AggregationResult{}, err
		}
		return core.AggregationResult{}, &DataFetchError{Resource: "collection", Key: collectionID, Err: err}
	}

	txs, err := s.store.ListTransactions(ctx, userID, collectionID)
	if err != nil {
		return core.AggregationResult{}, &DataFetchError{Resource: "transactions", Key: collectionID, Err: err}
	}

	res := core.Aggregate(txs, s.opts)
	s.cache.Set(key, res)
	return res, nil
}

// Invalidate drops the cached aggregation for a collection. Implements
// Invalidator for the write services.
func (s *DashboardService) Invalidate(userID, collectionID string) {
	s.cache.Delete(dashboardKey(userID, collectionID))
}

// CleanExpired sweeps stale cache entries; wired to the cache cleaner.
func (s *DashboardService) CleanExpired() int {
	return s.cache.CleanExpired()
}

func dashboardKey(userID, collectionID string) string {
	return userID + ":" + collectionID
}
