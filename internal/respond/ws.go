package respond

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// ServeWS upgrades the request and streams session events to the client
// until it disconnects or the session's watchers are torn down. The socket
// is push-only; inbound frames are drained and ignored.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "session_id", sessionID, "error", err)
		return
	}
	defer conn.CloseNow()

	events, cancel := h.Subscribe(sessionID)
	defer cancel()

	// CloseRead keeps the read pump alive so pings are answered and a
	// client close cancels the context.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "session torn down")
				return
			}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				if !errors.Is(err, context.Canceled) {
					slog.Debug("websocket write failed", "session_id", sessionID, "error", err)
				}
				return
			}
			if ev.Type == EventClosed {
				conn.Close(websocket.StatusNormalClosure, "session closed")
				return
			}
		}
	}
}
