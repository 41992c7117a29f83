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

// CollectionService manages ledgers. Deleting a collection removes its
// transactions with it; the store does both in one transaction, and the
// service then emits a delete event per removed row so the export sheet
// does not keep orphans.
type CollectionService struct {
	store  store.Store
	events *amqp.Client
	hub    *ws.Hub
	caches Invalidator
	logger *log.Logger
}

func NewCollectionService(st store.Store, events *amqp.Client, hub *ws.Hub, caches Invalidator, logger *log.Logger) *CollectionService {
	return &CollectionService{
		store:  st,
		events: events,
		hub:    hub,
		caches: caches,
		logger: logger.WithComponent(log.ComponentServices),
	}
}

func (s *CollectionService) List(ctx context.Context, userID string) ([]core.Collection, error) {
	cols, err := s.store.ListCollections(ctx, userID)
	if err != nil {
		return nil, &DataFetchError{Resource: "collections", Key: userID, Err: err}
	}
	return cols, nil
}

func (s *CollectionService) Get(ctx context.Context, userID, id string) (core.Collection, error) {
	c, err := s.store.GetCollection(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return core.Collection{}, err
	}
	if err != nil {
		return core.Collection{}, &DataFetchError{Resource: "collection", Key: id, Err: err}
	}
	return c, nil
}

func (s *CollectionService) Create(ctx context.Context, userID, name string) (core.Collection, error) {
	now := time.Now().UTC()
	c := core.Collection{
		ID:        uuid.NewString(),
		Name:      name,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return core.Collection{}, err
	}
	if err := s.store.CreateCollection(ctx, c); err != nil {
		return core.Collection{}, &DataWriteError{Resource: "collection", Key: c.ID, Err: err}
	}

	s.logger.InfoContext(ctx, "Collection created",
		log.FieldOperation, log.OpCreate,
		log.FieldCollectionID, c.ID,
		log.FieldUserID, userID)

	s.broadcast(ctx, userID, ws.EventCollectionCreated, c.ID)
	return c, nil
}

func (s *CollectionService) Rename(ctx context.Context, userID, id, name string) (core.Collection, error) {
	probe := core.Collection{ID: id, Name: name, UserID: userID}
	if err := probe.Validate(); err != nil {
		return core.Collection{}, err
	}
	if err := s.store.RenameCollection(ctx, userID, id, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.Collection{}, err
		}
		return core.Collection{}, &DataWriteError{Resource: "collection", Key: id, Err: err}
	}

	s.logger.InfoContext(ctx, "Collection renamed",
		log.FieldOperation, log.OpUpdate,
		log.FieldCollectionID, id)

	s.broadcast(ctx, userID, ws.EventCollectionRenamed, id)
	return s.Get(ctx, userID, id)
}

// Delete removes the collection and all of its transactions.
func (s *CollectionService) Delete(ctx context.Context, userID, id string) error {
	// Snapshot the doomed transactions first so export events can still be
	// emitted after the cascade.
	txs, err := s.store.ListTransactions(ctx, userID, id)
	if err != nil {
		return &DataFetchError{Resource: "transactions", Key: id, Err: err}
	}

	if err := s.store.DeleteCollection(ctx, userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return &DataWriteError{Resource: "collection", Key: id, Err: err}
	}

	s.logger.InfoContext(ctx, "Collection deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldCollectionID, id,
		"transactions_removed", len(txs))

	if s.caches != nil {
		s.caches.Invalidate(userID, id)
	}
	if s.events != nil {
		for _, t := range txs {
			msg := amqp.NewTransactionEventMessage(t.ID, id, userID, amqp.ActionDeleted)
			if err := s.events.PublishTransactionEvent(ctx, msg); err != nil {
				s.logger.WarnContext(ctx, "Failed to publish cascade delete event",
					log.FieldTxID, t.ID, log.FieldError, err.Error())
			}
		}
	}
	s.broadcast(ctx, userID, ws.EventCollectionDeleted, id)
	return nil
}

func (s *CollectionService) broadcast(ctx context.Context, userID, event, collectionID string) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(ctx, userID, ws.Event{Type: event, CollectionID: collectionID})
}
