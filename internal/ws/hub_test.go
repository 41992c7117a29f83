package ws

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Selvaganesh007/expense-tracker/internal/log"
)

func newTestHub() *Hub {
	return NewHub(log.New(log.Config{
		Handler: slog.NewTextHandler(io.Discard, nil),
	}))
}

// newSocketPair upgrades a loopback connection and returns both ends. The
// server side is what the hub manages in production.
func newSocketPair(t *testing.T) (server, client *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	select {
	case conn := <-serverConns:
		return conn, clientConn
	case <-time.After(2 * time.Second):
		t.Fatal("upgrade did not complete")
		return nil, nil
	}
}

func TestHubBroadcastReachesOwnUserOnly(t *testing.T) {
	h := newTestHub()
	h.Start()
	defer h.Stop()

	serverA, clientA := newSocketPair(t)
	serverB, clientB := newSocketPair(t)
	h.Register(serverA, "alice")
	h.Register(serverB, "bob")

	h.Broadcast(context.Background(), "alice", Event{
		Type:     EventTransactionCreated,
		EntityID: "t1",
	})

	clientA.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := clientA.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), EventTransactionCreated)

	clientB.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = clientB.ReadMessage()
	assert.Error(t, err, "bob must not receive alice's event")
}

func TestHubUnregisterClosesConnection(t *testing.T) {
	h := newTestHub()
	h.Start()
	defer h.Stop()

	server, client := newSocketPair(t)
	h.Register(server, "alice")
	h.Unregister(server)

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := client.ReadMessage()
	require.Error(t, err, "closing the server side ends the client read")
}

// Read goroutines unregister their connection on the way out. That must not
// block when the hub has already been stopped and its loop has exited.
func TestHubRegisterUnregisterAfterStop(t *testing.T) {
	h := newTestHub()
	h.Start()

	server, _ := newSocketPair(t)
	late, _ := newSocketPair(t)
	h.Register(server, "alice")
	h.Stop()

	returned := make(chan struct{})
	go func() {
		h.Unregister(server)
		h.Register(late, "alice")
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Register/Unregister blocked after Stop")
	}
}
