package amqp

import (
	"encoding/json"
	"time"
)

// Action tells the export worker what happened to the transaction.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// TransactionEventMessage is a lightweight event for syncing a transaction
// to the export sheet. It carries only identifiers; the worker fetches the
// full transaction from the store, so a stale message never exports stale
// field values.
type TransactionEventMessage struct {
	TransactionID string    `json:"transaction_id"`
	CollectionID  string    `json:"collection_id"`
	UserID        string    `json:"user_id"`
	Action        Action    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionEventMessage creates an event for the given transaction.
func NewTransactionEventMessage(txID, collectionID, userID string, action Action) *TransactionEventMessage {
	return &TransactionEventMessage{
		TransactionID: txID,
		CollectionID:  collectionID,
		UserID:        userID,
		Action:        action,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
