package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/jaminalder/codex-connect-four/internal/app"
)

const defaultHeartbeat = 15 * time.Second

// NewServer wires routes and returns an http.Handler. It installs the board
// fragment as the service's broadcast renderer. A non-positive heartbeat uses
// the default of 15s.
func NewServer(s *app.Service, heartbeat time.Duration) http.Handler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	r := chi.NewRouter()
	h := &handlers{
		svc:       s,
		tpl:       loadTemplates(),
		heartbeat: heartbeat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.SetRenderer(func(gs app.GameState) []byte { return h.renderBoard(gs, "") })

	r.Get("/", h.index)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Get("/board", h.board)
		r.Post("/drop", h.drop)
		r.Post("/reset", h.reset)
		r.Get("/events", h.events)
		r.Get("/ws", h.socket)
	})
	return r
}

// NewHTTPServer wraps handler in an http.Server whose request contexts derive
// from ctx. Shutdown does not cancel in-flight requests, so event streams end
// only once ctx is done.
func NewHTTPServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}
