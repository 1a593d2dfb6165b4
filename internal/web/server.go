// Package web exposes the scheduling core over HTTP: the due set, the
// locked-mode state, answer application, backlog management and review
// sessions. It renders state; every scheduling decision is delegated to
// the pure packages.
package web

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/example/lexbox/internal/backlog"
	"github.com/example/lexbox/internal/database"
	"github.com/example/lexbox/internal/session"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	router   *http.ServeMux
	cards    *database.CardRepository
	settings *database.SettingsRepository
	items    *database.BacklogRepository
	backlog  *backlog.Service
	clock    func() time.Time

	mu       sync.Mutex
	sessions map[string]*activeSession
}

// activeSession pairs a running review session with its owner
type activeSession struct {
	session *session.Session
	userID  int64
}

// sessionTTL bounds how long an abandoned session is kept in memory
const sessionTTL = 24 * time.Hour

// NewServer creates and configures a new server. clock may be nil, in which
// case the system clock is used; it is injected so handler behavior is
// testable at fixed instants.
func NewServer(backlogSvc *backlog.Service, clock func() time.Time) *Server {
	if clock == nil {
		clock = time.Now
	}
	s := &Server{
		router:   http.NewServeMux(),
		cards:    database.NewCardRepository(),
		settings: database.NewSettingsRepository(),
		items:    database.NewBacklogRepository(),
		backlog:  backlogSvc,
		clock:    clock,
	}
	s.sessions = make(map[string]*activeSession)
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server
func (s *Server) routes() {
	s.router.HandleFunc("/due", s.handleGetDue)
	s.router.HandleFunc("/locked-state", s.handleGetLockedState)
	s.router.HandleFunc("/stats", s.handleGetStats)
	s.router.HandleFunc("/cards", s.handleCards)
	s.router.HandleFunc("/cards/", s.handleCard)
	s.router.HandleFunc("/import", s.handleImport)
	s.router.HandleFunc("/backlog", s.handleBacklog)
	s.router.HandleFunc("/backlog/check", s.handleBacklogCheck)
	s.router.HandleFunc("/backlog/", s.handleBacklogItem)
	s.router.HandleFunc("/session/start", s.handleSessionStart)
	s.router.HandleFunc("/session/", s.handleSession)
	s.router.HandleFunc("/settings", s.handleSettings)
}

// now captures the request's single point in time. Each handler calls it
// exactly once so the due set and any countdown in the same response can
// never disagree.
func (s *Server) now() time.Time {
	return s.clock().UTC()
}

// reapSessions drops sessions that were started longer than sessionTTL ago
// and never finished. Answered cards are persisted immediately, so dropping
// the leftover queue loses nothing durable.
func (s *Server) reapSessions(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, active := range s.sessions {
		if now.Sub(active.session.Summary().StartedAt) > sessionTTL {
			delete(s.sessions, id)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// userID extracts the owner from the user query parameter
func userID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("user"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
