package web

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
)

// clientMessage is a frame sent by the browser. Col is the raw column identifier.
type clientMessage struct {
	Type string `json:"type"`
	Col  string `json:"col"`
}

type serverMessage struct {
	Type    string     `json:"type"`
	Board   *boardView `json:"board,omitempty"`
	Message string     `json:"message,omitempty"`
}

// socketConn serialises writes; gorilla connections allow one concurrent writer.
type socketConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *socketConn) send(msg serverMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

func (c *socketConn) ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// socket streams the game as JSON and accepts drop frames.
func (h *handlers) socket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}
	conn := &socketConn{conn: ws}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	updates, unsub := h.svc.Subscribe(ctx, id)
	defer unsub()

	if !h.sendState(conn, id) {
		return
	}
	go h.pushUpdates(ctx, cancel, conn, id, updates)

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error on game %s: %v", id, err)
			}
			return
		}
		switch msg.Type {
		case "drop":
			h.handleDrop(conn, id, msg.Col)
		case "reset":
			if _, err := h.svc.Reset(id); err != nil {
				sendError(conn, id, err.Error())
			}
		default:
			sendError(conn, id, "unknown message type")
		}
	}
}

func (h *handlers) handleDrop(conn *socketConn, id, rawCol string) {
	gs, ok := h.svc.Get(id)
	if !ok {
		sendError(conn, id, "game not found")
		return
	}
	col, err := ParseColumn(rawCol, gs.Game.Width())
	if err == nil {
		_, _, err = h.svc.Drop(id, col)
	}
	// accepted moves reach this socket through the subscription
	if err != nil {
		sendError(conn, id, errorMessage(err))
	}
}

// pushUpdates forwards every broadcast as a fresh JSON snapshot and keeps the
// connection alive with pings. It cancels ctx when the feed ends and closes
// the connection when ctx ends first, which unblocks the read loop.
func (h *handlers) pushUpdates(ctx context.Context, cancel context.CancelFunc, conn *socketConn, id string, updates <-chan []byte) {
	defer cancel()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			conn.conn.Close()
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		case _, ok := <-updates:
			if !ok {
				// game swept or subscriber dropped
				conn.conn.Close()
				return
			}
			if !h.sendState(conn, id) {
				return
			}
		}
	}
}

func sendError(conn *socketConn, id, message string) {
	if err := conn.send(serverMessage{Type: "error", Message: message}); err != nil {
		log.Printf("[WS] Write error on game %s: %v", id, err)
	}
}

func (h *handlers) sendState(conn *socketConn, id string) bool {
	gs, ok := h.svc.Get(id)
	if !ok {
		return false
	}
	v := newBoardView(*gs, "")
	if err := conn.send(serverMessage{Type: "state", Board: &v}); err != nil {
		log.Printf("[WS] Write error on game %s: %v", id, err)
		return false
	}
	return true
}
