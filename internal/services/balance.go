package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/store"
)

// resolveConcurrency bounds parallel store reads during a balance fan-out.
const resolveConcurrency = 4

// CollectionBalance pairs a collection with totals derived from its
// transactions at read time.
type CollectionBalance struct {
	Collection       core.Collection
	TotalIncome      core.Money
	TotalExpense     core.Money
	Balance          core.Money
	TransactionCount int
}

// BalanceResolver derives collection balances on demand. Balances are never
// stored, so they cannot drift from the transactions they summarize.
type BalanceResolver struct {
	store store.Store
}

func NewBalanceResolver(st store.Store) *BalanceResolver {
	return &BalanceResolver{store: st}
}

// Resolve computes the balance of one collection.
func (r *BalanceResolver) Resolve(ctx context.Context, userID, collectionID string) (CollectionBalance, error) {
	c, err := r.store.GetCollection(ctx, userID, collectionID)
	if err != nil {
		return CollectionBalance{}, err
	}
	return r.resolve(ctx, c)
}

// ResolveAll computes balances for every collection of the user, fanning out
// store reads. One failed read fails the whole call: a collection list with
// silently missing balances would be worse than an error.
func (r *BalanceResolver) ResolveAll(ctx context.Context, userID string) ([]CollectionBalance, error) {
	cols, err := r.store.ListCollections(ctx, userID)
	if err != nil {
		return nil, &DataFetchError{Resource: "collections", Key: userID, Err: err}
	}

	balances := make([]CollectionBalance, len(cols))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, c := range cols {
		g.Go(func() error {
			b, err := r.resolve(ctx, c)
			if err != nil {
				return err
			}
			balances[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return balances, nil
}

func (r *BalanceResolver) resolve(ctx context.Context, c core.Collection) (CollectionBalance, error) {
	txs, err := r.store.ListTransactions(ctx, c.UserID, c.ID)
	if err != nil {
		return CollectionBalance{}, &DataFetchError{Resource: "transactions", Key: c.ID, Err: err}
	}
	agg := core.Aggregate(txs, core.AggregateOptions{RecentLimit: 1})
	return CollectionBalance{
		Collection:       c,
		TotalIncome:      agg.TotalIncome,
		TotalExpense:     agg.TotalExpense,
		Balance:          agg.Balance,
		TransactionCount: len(txs),
	}, nil
}
