package http

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Selvaganesh007/expense-tracker/internal/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleEvents upgrades the connection and attaches it to the hub. The
// session is verified before the upgrade; the socket then only receives
// events for that user. The read loop exists to notice client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.Verify(r.Context(), sessionToken(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			log.FieldUserID, user.ID, log.FieldError, err.Error())
		return
	}

	s.hub.Register(conn, user.ID)

	go func() {
		defer s.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
