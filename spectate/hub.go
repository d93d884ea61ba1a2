// Package spectate streams game frames to read-only watchers over websockets.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/wrapsnek/game"
	"github.com/brensch/wrapsnek/rules"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer frames may queue per watcher before it is dropped as too slow.
	sendBuffer = 64
)

// Message is the JSON sent to watchers. The first message on a connection is
// a "hello" carrying the full board; every later one is a "frame" delta.
type Message struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Turn    int    `json:"turn"`
	Length  int    `json:"length"`
	Outcome string `json:"outcome"`
	Ate     bool   `json:"ate,omitempty"`
	Reset   bool   `json:"reset,omitempty"`
	Ops     []Op   `json:"ops"`
}

type Op struct {
	Kind  string `json:"kind"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color,omitempty"`
}

func encodeOps(ops []rules.Op) []Op {
	out := make([]Op, 0, len(ops))
	for _, op := range ops {
		o := Op{Kind: op.Kind.String(), X: op.Cell.X, Y: op.Cell.Y}
		if op.Kind != rules.OpErase {
			o.Color = op.Color.Hex()
		}
		out = append(out, o)
	}
	return out
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames out to every connected watcher. It implements
// engine.Observer and http.Handler.
type Hub struct {
	session  string
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	canvas  *rules.Canvas
	turn    int
	length  int
	outcome rules.Outcome
	clients map[*client]struct{}
	closed  bool
}

func NewHub(session string, grid game.Grid, palette rules.Palette, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		session:  session,
		log:      logger.With("component", "spectate"),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		canvas:   rules.NewCanvas(grid, palette.Background),
		length:   1,
		clients:  make(map[*client]struct{}),
	}
}

// Observe records the frame and queues it for every watcher. It never blocks;
// watchers that fall behind are disconnected.
func (h *Hub) Observe(frame rules.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.canvas.Apply(frame.Ops)
	h.turn = frame.Turn
	h.length = frame.State.Length
	h.outcome = frame.Outcome
	if len(h.clients) == 0 {
		return
	}

	data, err := json.Marshal(Message{
		Type:    "frame",
		Turn:    frame.Turn,
		Length:  frame.State.Length,
		Outcome: frame.Outcome.String(),
		Ate:     frame.Ate,
		Reset:   frame.Reset,
		Ops:     encodeOps(frame.Ops),
	})
	if err != nil {
		h.log.Error("encode frame", "turn", frame.Turn, "err", err)
		return
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn("dropping slow watcher", "remote", c.conn.RemoteAddr().String())
			h.removeLocked(c)
		}
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	hello, err := json.Marshal(Message{
		Type:    "hello",
		Session: h.session,
		Width:   h.canvas.Grid().Width,
		Height:  h.canvas.Grid().Height,
		Turn:    h.turn,
		Length:  h.length,
		Outcome: h.outcome.String(),
		Ops:     encodeOps(h.canvas.Ops()),
	})
	if err != nil {
		h.mu.Unlock()
		h.log.Error("encode hello", "err", err)
		_ = conn.Close()
		return
	}
	c.send <- hello
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.log.Info("watcher connected", "remote", conn.RemoteAddr().String(), "watchers", h.Clients())
	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards anything watchers send; it only notices disconnects.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.mu.Lock()
		h.removeLocked(c)
		h.mu.Unlock()
	}()
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"))
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Clients is the number of connected watchers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every watcher and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// Server serves a Hub at /ws.
type Server struct {
	hub *Hub
	srv *http.Server
	ln  net.Listener
}

func Listen(addr string, hub *Hub) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return &Server{
		hub: hub,
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}, nil
}

func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Serve blocks until Shutdown.
func (s *Server) Serve() error {
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.srv.Shutdown(ctx)
}
