package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/protocol"
)

// HistoryReader serves recently settled rounds
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]game.RoundSummary, error)
}

// Option configures a Server
type Option func(*Server)

// WithHistory enables the /history endpoint
func WithHistory(h HistoryReader) Option {
	return func(s *Server) { s.history = h }
}

// WithIDGenerator replaces the uuid generator used for player ids
func WithIDGenerator(next func() string) Option {
	return func(s *Server) { s.newID = next }
}

// Server exposes a blackjack table over websockets. It observes the table
// and fans every projection out to all connections.
type Server struct {
	table    *game.Table
	history  HistoryReader
	logger   *log.Logger
	upgrader websocket.Upgrader
	newID    func() string

	mu          sync.RWMutex
	connections map[string]*Connection

	httpMu     sync.Mutex
	httpServer *http.Server
}

// NewServer creates a server for table and registers it as an observer
func NewServer(logger *log.Logger, table *game.Table, opts ...Option) *Server {
	s := &Server{
		table:  table,
		logger: logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		newID:       uuid.NewString,
		connections: make(map[string]*Connection),
	}
	for _, opt := range opts {
		opt(s)
	}
	table.AddObserver(s)
	return s
}

// Handler returns the HTTP routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/history", s.handleHistory)
	return mux
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called
func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.httpMu.Lock()
	s.httpServer = srv
	s.httpMu.Unlock()

	s.logger.Info("Starting WebSocket server", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and closes every connection. Closed
// connections leave the table as they drain.
func (s *Server) Shutdown(ctx context.Context) error {
	s.httpMu.Lock()
	srv := s.httpServer
	s.httpMu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}

	s.mu.RLock()
	for _, conn := range s.connections {
		conn.CloseSend()
	}
	s.mu.RUnlock()

	return err
}

// ConnectionCount returns the number of live websocket connections
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// OnTableUpdate implements game.Observer. The projection is encoded once
// and queued on every connection.
func (s *Server) OnTableUpdate(snap game.Snapshot) {
	raw, err := protocol.Encode(protocol.TypeTableUpdate, snap)
	if err != nil {
		s.logger.Error("Failed to encode table update", "error", err)
		return
	}
	s.broadcast(raw)
	s.logger.Debug("Broadcast table update", "phase", snap.Phase, "round", snap.Round)
}

// Broadcast sends a message to all connections
func (s *Server) Broadcast(messageType protocol.MessageType, data any) error {
	raw, err := protocol.Encode(messageType, data)
	if err != nil {
		return err
	}
	s.broadcast(raw)
	return nil
}

func (s *Server) broadcast(raw []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, conn := range s.connections {
		if err := conn.Send(raw); err != nil {
			s.logger.Debug("Dropped message for connection", "player", id, "error", err)
		}
	}
}

// handleWebSocket upgrades the request, seats the player and starts the
// connection pumps. A connection that cannot be seated receives an error
// and is closed.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	conn := NewConnection(s.newID(), ws, s, s.logger)
	cfg := s.table.Config()
	conn.SendMessage(protocol.TypeWelcome, protocol.WelcomeData{
		PlayerID:      conn.ID(),
		MinBet:        cfg.MinBet,
		StartingChips: cfg.StartingChips,
		MaxPlayers:    cfg.MaxPlayers,
	})

	s.register(conn)
	if err := s.table.Join(conn.ID()); err != nil {
		s.unregister(conn)
		s.logger.Warn("Refusing connection", "player", conn.ID(), "error", err)
		conn.SendError(errorCode(err), err.Error())
		conn.CloseSend()
		go conn.writePump()
		return
	}

	conn.Start()
}

func (s *Server) register(conn *Connection) {
	s.mu.Lock()
	s.connections[conn.ID()] = conn
	total := len(s.connections)
	s.mu.Unlock()

	s.logger.Info("Client connected", "player", conn.ID(), "total", total)
}

func (s *Server) unregister(conn *Connection) bool {
	s.mu.Lock()
	_, ok := s.connections[conn.ID()]
	delete(s.connections, conn.ID())
	total := len(s.connections)
	s.mu.Unlock()

	if ok {
		s.logger.Info("Client disconnected", "player", conn.ID(), "total", total)
	}
	return ok
}

// disconnect removes a seated connection and its player
func (s *Server) disconnect(conn *Connection) {
	if !s.unregister(conn) {
		return
	}
	if err := s.table.Leave(conn.ID()); err != nil && !errors.Is(err, game.ErrPlayerNotFound) {
		s.logger.Error("Failed to remove player", "player", conn.ID(), "error", err)
	}
}

// relayChat broadcasts a chat line under the sender's display name
func (s *Server) relayChat(from string, text string) {
	name := game.DefaultPlayerName
	if p, ok := s.table.Player(from); ok {
		name = p.Name
	}
	if err := s.Broadcast(protocol.TypeChat, protocol.ChatData{From: name, Text: text}); err != nil {
		s.logger.Error("Failed to relay chat", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.table.Snapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "history is disabled", http.StatusNotFound)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	rounds, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to load history", "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if rounds == nil {
		rounds = []game.RoundSummary{}
	}
	writeJSON(w, rounds)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
