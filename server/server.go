package main

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// HTTPServer wires the chat routes to the registry and router.
type HTTPServer struct {
	reg      *Registry
	rt       *Router
	upgrader websocket.Upgrader
	wg       sync.WaitGroup
}

func NewHTTPServer(reg *Registry, rt *Router) *HTTPServer {
	return &HTTPServer{
		reg: reg,
		rt:  rt,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler exposes the HTTP mux used for both the Portal relay and the
// optional local serve.
func (s *HTTPServer) Handler(name string) http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) { serveIndex(w, name) })
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/ws", s.handleWebSocket)
	return r
}

func (s *HTTPServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("upgrade websocket")
		return
	}

	c := newConn(ws, s.reg, s.rt)
	s.reg.Add(c)
	log.Debug().Str("conn", c.id).Msg("[server] connected")

	s.wg.Add(1)
	defer s.wg.Done()
	go c.writeLoop()
	c.readLoop()
	log.Debug().Str("conn", c.id).Msg("[server] disconnected")
}

// closeAll force-closes every active connection (used during shutdown).
// The close frame goes out through each conn's writeLoop, which is the only
// goroutine allowed to write to the socket.
func (s *HTTPServer) closeAll() {
	for _, c := range s.reg.Conns() {
		c.close()
	}
}

// wait blocks until all websocket handler goroutines have finished.
func (s *HTTPServer) wait() {
	s.wg.Wait()
}
