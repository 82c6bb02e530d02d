package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Origins of the local web client dev server. They are echoed back in CORS
// responses; any other origin gets "*".
var devOrigins = map[string]bool{
	"http://localhost:5173": true,
	"http://127.0.0.1:5173": true,
}

// Server is the HTTP and WebSocket front end of the room service
type Server struct {
	addr     string
	upgrader websocket.Upgrader
	rooms    *RoomService
	logger   *log.Logger
	http     *http.Server
}

// NewServer creates a new server for rooms
func NewServer(addr string, rooms *RoomService, logger *log.Logger) *Server {
	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Rooms are protected by their id and host token, not origin
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		rooms:  rooms,
		logger: logger.WithPrefix("server"),
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler serving the API and WebSocket routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms/{id}", s.handleGetRoom)
	mux.HandleFunc("GET /api/rooms/{id}/ws", s.handleWebSocket)
	mux.HandleFunc("OPTIONS /api/", s.handlePreflight)
	mux.HandleFunc("GET /health", s.handleHealth)
	return withCORS(mux)
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting server", "addr", s.addr)
	s.rooms.Start()
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Serve serves on an existing listener, used by tests and callers that pick
// a free port themselves
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("Starting server", "addr", l.Addr().String())
	s.rooms.Start()
	err := s.http.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and closes every room session
func (s *Server) Shutdown(ctx context.Context) error {
	s.rooms.Close()
	return s.http.Shutdown(ctx)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if devOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	info, err := s.rooms.CreateRoom()
	if err != nil {
		s.logger.Error("Failed to create room", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.Room(r.PathValue("id"))
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, room.State())
}

// handleWebSocket checks the join before upgrading so that rejections are
// plain HTTP statuses
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	token := r.URL.Query().Get("token")

	room, err := s.rooms.Room(id)
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	if err := room.CheckJoin(token); err != nil {
		s.logger.Info("Join rejected", "room", id, "error", err)
		writeError(w, httpStatus(err), err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, room, s.logger)

	// Seat the session before reading from it. The room may have filled or
	// locked between the check and the upgrade.
	if _, err := room.Join(client, token); err != nil {
		s.logger.Info("Join failed after upgrade", "room", id, "error", err)
		msg, _ := NewMessage(MessageTypeError, ErrorData{Code: ErrCodeJoinFailed, Message: err.Error()})
		_ = client.SendMessage(msg) // Ignore send errors, the connection is closing
		_ = client.Close()
	}
	client.Start()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // Ignore write errors, the client is gone
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorData{Code: http.StatusText(status), Message: message})
}
