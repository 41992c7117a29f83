// Package services orchestrates the domain operations: transaction and
// collection CRUD with event fan-out, dashboard aggregation with caching,
// per-collection balance resolution and the cross-collection history merge.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Selvaganesh007/expense-tracker/internal/amqp"
	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/log"
	"github.com/Selvaganesh007/expense-tracker/internal/store"
	"github.com/Selvaganesh007/expense-tracker/internal/ws"
)

// ErrCollectionNotFound is returned when a write names a collection the
// user does not own.
var ErrCollectionNotFound = errors.New("collection not found")

// Invalidator drops cached aggregations for a collection after a write.
type Invalidator interface {
	Invalidate(userID, collectionID string)
}

// TransactionService persists transactions and fans out change events. The
// store write is the source of truth; the export event and the browser
// broadcast are best-effort and never fail the request.
type TransactionService struct {
	store  store.Store
	events *amqp.Client
	hub    *ws.Hub
	caches Invalidator
	logger *log.Logger
}

func NewTransactionService(st store.Store, events *amqp.Client, hub *ws.Hub, caches Invalidator, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:  st,
		events: events,
		hub:    hub,
		caches: caches,
		logger: logger.WithComponent(log.ComponentServices),
	}
}

func (s *TransactionService) List(ctx context.Context, userID, collectionID string) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, userID, collectionID)
	if err != nil {
		return nil, &DataFetchError{Resource: "transactions", Key: collectionID, Err: err}
	}
	return txs, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return core.Transaction{}, err
	}
	if err != nil {
		return core.Transaction{}, &DataFetchError{Resource: "transaction", Key: id, Err: err}
	}
	return t, nil
}

// Create validates and stores a new transaction in the named collection.
// The collection must exist and belong to the user.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Timestamp = t.Timestamp.UTC()

	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if _, err := s.store.GetCollection(ctx, t.UserID, t.CollectionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.Transaction{}, ErrCollectionNotFound
		}
		return core.Transaction{}, &DataFetchError{Resource: "collection", Key: t.CollectionID, Err: err}
	}

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, &DataWriteError{Resource: "transaction", Key: t.ID, Err: err}
	}

	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldOperation, log.OpCreate,
		log.FieldTxID, t.ID,
		log.FieldCollectionID, t.CollectionID,
		log.FieldFlowType, string(t.FlowType),
		log.FieldAmountCents, t.Amount.Cents)

	s.afterWrite(ctx, t, amqp.ActionCreated, ws.EventTransactionCreated)
	return t, nil
}

// Update rewrites a transaction's mutable fields. The collection binding
// and audit creation time are preserved.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, t.UserID, t.ID)
	if errors.Is(err, store.ErrNotFound) {
		return core.Transaction{}, err
	}
	if err != nil {
		return core.Transaction{}, &DataFetchError{Resource: "transaction", Key: t.ID, Err: err}
	}

	t.CollectionID = existing.CollectionID
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	t.Timestamp = t.Timestamp.UTC()

	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, &DataWriteError{Resource: "transaction", Key: t.ID, Err: err}
	}

	s.logger.InfoContext(ctx, "Transaction updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldTxID, t.ID,
		log.FieldCollectionID, t.CollectionID)

	s.afterWrite(ctx, t, amqp.ActionUpdated, ws.EventTransactionUpdated)
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	t, err := s.store.GetTransaction(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err != nil {
		return &DataFetchError{Resource: "transaction", Key: id, Err: err}
	}

	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return &DataWriteError{Resource: "transaction", Key: id, Err: err}
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldTxID, id,
		log.FieldCollectionID, t.CollectionID)

	s.afterWrite(ctx, t, amqp.ActionDeleted, ws.EventTransactionDeleted)
	return nil
}

func (s *TransactionService) afterWrite(ctx context.Context, t core.Transaction, action amqp.Action, event string) {
	if s.caches != nil {
		s.caches.Invalidate(t.UserID, t.CollectionID)
	}
	if s.events != nil {
		msg := amqp.NewTransactionEventMessage(t.ID, t.CollectionID, t.UserID, action)
		if err := s.events.PublishTransactionEvent(ctx, msg); err != nil {
			// The write already succeeded; export catches up on the next event.
			s.logger.WarnContext(ctx, "Failed to publish transaction event",
				log.FieldTxID, t.ID, log.FieldError, err.Error())
		}
	}
	if s.hub != nil {
		s.hub.Broadcast(ctx, t.UserID, ws.Event{
			Type:         event,
			CollectionID: t.CollectionID,
			EntityID:     t.ID,
		})
	}
}
