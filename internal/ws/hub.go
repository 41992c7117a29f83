// Package ws pushes change events to connected browsers so open dashboards
// refresh without polling. Connections are scoped to a user; an event is
// only fanned out to that user's own sockets.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Selvaganesh007/expense-tracker/internal/log"
)

// Event names pushed over the socket.
const (
	EventTransactionCreated = "transaction_created"
	EventTransactionUpdated = "transaction_updated"
	EventTransactionDeleted = "transaction_deleted"
	EventCollectionCreated  = "collection_created"
	EventCollectionRenamed  = "collection_renamed"
	EventCollectionDeleted  = "collection_deleted"
	EventSettingsUpdated    = "settings_updated"
)

// Event is the envelope written to clients.
type Event struct {
	Type         string    `json:"type"`
	CollectionID string    `json:"collection_id,omitempty"`
	EntityID     string    `json:"entity_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

type client struct {
	conn   *websocket.Conn
	userID string
}

type payload struct {
	userID string
	data   []byte
}

// Hub owns the registered connections and the fan-out loop.
type Hub struct {
	mu         sync.Mutex
	clients    map[*websocket.Conn]string
	broadcast  chan payload
	register   chan client
	unregister chan *websocket.Conn
	done       chan struct{}
	logger     *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]string),
		broadcast:  make(chan payload, 64),
		register:   make(chan client),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger.WithComponent(log.ComponentWS),
	}
}

// Start begins the fan-out loop; call once.
func (h *Hub) Start() {
	go func() {
		for {
			select {
			case <-h.done:
				h.mu.Lock()
				for conn := range h.clients {
					conn.Close()
					delete(h.clients, conn)
				}
				h.mu.Unlock()
				return
			case c := <-h.register:
				h.mu.Lock()
				h.clients[c.conn] = c.userID
				total := len(h.clients)
				h.mu.Unlock()
				h.logger.Debug("WebSocket client connected",
					log.FieldUserID, c.userID, "total_clients", total)
			case conn := <-h.unregister:
				h.mu.Lock()
				if _, ok := h.clients[conn]; ok {
					delete(h.clients, conn)
					conn.Close()
				}
				total := len(h.clients)
				h.mu.Unlock()
				h.logger.Debug("WebSocket client disconnected", "total_clients", total)
			case p := <-h.broadcast:
				h.mu.Lock()
				for conn, userID := range h.clients {
					if userID != p.userID {
						continue
					}
					if err := conn.WriteMessage(websocket.TextMessage, p.data); err != nil {
						h.logger.Warn("Dropping unwritable WebSocket client",
							log.FieldError, err.Error())
						conn.Close()
						delete(h.clients, conn)
					}
				}
				h.mu.Unlock()
			}
		}
	}()
}

// Stop closes all connections and ends the fan-out loop.
func (h *Hub) Stop() {
	close(h.done)
}

// Register attaches an upgraded connection to the given user. After Stop the
// hub no longer accepts connections and the socket is closed immediately.
func (h *Hub) Register(conn *websocket.Conn, userID string) {
	select {
	case h.register <- client{conn: conn, userID: userID}:
	case <-h.done:
		conn.Close()
	}
}

// Unregister detaches and closes a connection. Safe to call after Stop, so
// per-connection read goroutines can always run it on their way out.
func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
		conn.Close()
	}
}

// Broadcast sends the event to every socket belonging to userID. Sends are
// best-effort: when the buffer is full the event is dropped rather than
// blocking a request handler.
func (h *Hub) Broadcast(ctx context.Context, userID string, ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to marshal event", log.FieldError, err.Error())
		return
	}
	select {
	case h.broadcast <- payload{userID: userID, data: data}:
	default:
		h.logger.WarnContext(ctx, "Event buffer full, dropping broadcast",
			"event_type", ev.Type)
	}
}
