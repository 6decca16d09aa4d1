// Package web serves the browser-facing view of the scene: a websocket
// push channel for live changes plus JSON snapshot and journal endpoints.
// The package is read-only over the scene; viewers never mutate state.
package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/coder/websocket"

	"github.com/boardroomhq/boardroom/internal/scene/metrics"
	"github.com/boardroomhq/boardroom/internal/scene/participant"
	"github.com/boardroomhq/boardroom/internal/scene/reconcile"
	"github.com/boardroomhq/boardroom/internal/storage"
)

// Options configures a Server.
type Options struct {
	// Registry supplies participant snapshots and change records. Required.
	Registry *participant.Registry
	// Gauge supplies metric readings. Required.
	Gauge *metrics.Gauge
	// Reconciler supplies meeting state and update records. Required.
	Reconciler *reconcile.Reconciler
	// Journal, when set, backs the /journal endpoint.
	Journal storage.JournalStore
}

// Server exposes the scene over HTTP and websocket.
type Server struct {
	registry   *participant.Registry
	gauge      *metrics.Gauge
	reconciler *reconcile.Reconciler
	journal    storage.JournalStore
	hub        *Hub
}

// NewServer creates a server over the given scene components.
func NewServer(opts Options) *Server {
	return &Server{
		registry:   opts.Registry,
		gauge:      opts.Gauge,
		reconciler: opts.Reconciler,
		journal:    opts.Journal,
		hub:        NewHub(),
	}
}

// Run subscribes the hub to the scene and dispatches broadcasts until ctx
// is cancelled.
func (s *Server) Run(ctx context.Context) {
	unsubChanges := s.registry.Subscribe(func(change participant.Change) {
		s.push(Frame{Type: FrameScene, Scene: &change})
	})
	defer unsubChanges()

	unsubUpdates := s.reconciler.Subscribe(func(update reconcile.Update) {
		s.push(Frame{Type: FrameUpdate, Update: &update})
	})
	defer unsubUpdates()

	s.hub.Run(ctx)
}

// Handler returns the HTTP routes for the viewer surface.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /journal", s.handleJournal)
	return mux
}

// handleWS upgrades the request, sends one snapshot frame, and keeps the
// connection registered until the viewer goes away. Inbound frames are
// drained and ignored.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("web: accept viewer: %v", err)
		return
	}

	snapshot := s.snapshot()
	data, err := json.Marshal(Frame{Type: FrameSnapshot, Snapshot: &snapshot})
	if err != nil {
		conn.Close(websocket.StatusInternalError, "snapshot encoding failed")
		return
	}
	if err := conn.Write(r.Context(), websocket.MessageText, data); err != nil {
		conn.Close(websocket.StatusNormalClosure, "")
		return
	}

	s.hub.Register(conn)
	defer s.hub.Unregister(conn)

	for {
		if _, _, err := conn.Read(r.Context()); err != nil {
			return
		}
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.snapshot())
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, "journal not configured", http.StatusNotFound)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	entries, err := s.journal.ListRecent(r.Context(), limit)
	if err != nil {
		log.Printf("web: list journal: %v", err)
		http.Error(w, "journal unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

func (s *Server) snapshot() Snapshot {
	return Snapshot{
		Meeting:      s.reconciler.Meeting(),
		Participants: s.registry.All(),
		Metrics:      s.gauge.Reading(),
	}
}

func (s *Server) push(frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("web: encode frame: %v", err)
		return
	}
	s.hub.Broadcast(data)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: encode response: %v", err)
	}
}
