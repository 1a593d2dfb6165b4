package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/example/lexbox/internal/backlog"
	"github.com/example/lexbox/internal/database"
	"github.com/example/lexbox/internal/excel"
	"github.com/example/lexbox/internal/leitner"
	"github.com/example/lexbox/internal/lockedmode"
	"github.com/example/lexbox/internal/session"
	"github.com/example/lexbox/pkg/models"
)

// Durations in responses are Go time.Duration values, i.e. nanoseconds.

// handleGetDue returns the cards due right now, ordered box ascending then
// due date ascending, plus the countdown to the next card when nothing or
// not everything is due yet.
func (s *Server) handleGetDue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid user parameter")
		return
	}

	cards, err := s.cards.GetByUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cards")
		return
	}

	now := s.now()
	resp := map[string]interface{}{
		"due": leitner.DueCards(cards, now),
	}
	if wait, ok := leitner.NextDueIn(cards, now); ok {
		resp["next_due_in"] = wait
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetLockedState returns the full gate snapshot for one owner
func (s *Server) handleGetLockedState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid user parameter")
		return
	}

	settings, err := s.settings.GetByUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	cards, err := s.cards.GetByUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cards")
		return
	}

	gate := lockedmode.New(settings.LockedMode)
	maxBox := leitner.IntervalConfig(settings.Intervals).MaxBox()
	writeJSON(w, http.StatusOK, gate.Snapshot(cards, maxBox, s.now()))
}

// handleGetStats returns per-box counts and totals
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid user parameter")
		return
	}

	cards, err := s.cards.GetByUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cards")
		return
	}

	now := s.now()
	stats := leitner.BoxStats(cards, now)
	dueTotal := 0
	for _, st := range stats {
		dueTotal += st.DueCount
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":     len(cards),
		"due_total": dueTotal,
		"boxes":     stats,
	})
}

// handleCards lists the library. While Locked Mode is on, browsing is
// blocked entirely unless the explicit unlock override is passed; the
// override changes only what is rendered, never what is due.
func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid user parameter")
		return
	}

	settings, err := s.settings.GetByUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	gate := lockedmode.New(settings.LockedMode)
	override := r.URL.Query().Get("unlock") == "1"
	if !gate.CanBrowseLibrary() && !override {
		writeError(w, http.StatusForbidden, "library browsing is disabled while locked mode is on")
		return
	}

	cards, err := s.cards.GetByUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cards")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cards": cards})
}

// handleCard dispatches /cards/{id} and /cards/{id}/answer
func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/cards/")
	if id := strings.TrimSuffix(rest, "/answer"); id != rest {
		s.handleAnswerCard(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetCard(w, r, rest)
	case http.MethodDelete:
		s.handleDeleteCard(w, r, rest)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleGetCard returns one card, honoring per-card locked-mode access:
// while locked, content is shown iff the card is due right now.
func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request, id string) {
	card, err := s.cards.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "card not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load card")
		return
	}

	settings, err := s.settings.GetByUser(r.Context(), card.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	now := s.now()
	gate := lockedmode.New(settings.LockedMode)
	if !gate.CardAccessible(*card, now) {
		writeJSON(w, http.StatusForbidden, map[string]interface{}{
			"error":       "card is locked until its review time",
			"next_due_in": card.NextReviewAt.Sub(now),
		})
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request, id string) {
	err := s.cards.Delete(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "card not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete card")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAnswerCard applies one review outcome outside a session. While
// locked, only a due card may be answered; peeking ahead is exactly what
// the gate exists to prevent.
func (s *Server) handleAnswerCard(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Outcome string `json:"outcome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	outcome, err := leitner.ParseOutcome(req.Outcome)
	if err != nil {
		writeError(w, http.StatusBadRequest, "outcome must be correct, wrong or hard")
		return
	}

	card, err := s.cards.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "card not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load card")
		return
	}

	settings, err := s.settings.GetByUser(r.Context(), card.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	now := s.now()
	gate := lockedmode.New(settings.LockedMode)
	if !gate.CardAccessible(*card, now) {
		writeJSON(w, http.StatusForbidden, map[string]interface{}{
			"error":       "card is locked until its review time",
			"next_due_in": card.NextReviewAt.Sub(now),
		})
		return
	}

	updated := leitner.ApplyAnswer(*card, outcome, leitner.IntervalConfig(settings.Intervals), now)
	if err := s.cards.SaveCard(r.Context(), &updated); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save card")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleImport accepts a multipart upload of an .xlsx or .csv file and
// feeds its rows into the owner's backlog. Form fields: user (owner id)
// and file (the upload).
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	id, err := strconv.ParseInt(r.FormValue("user"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "missing or invalid user field")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	// excelize and encoding/csv both read from a file path, so the upload
	// is spooled to disk first, keeping its extension for dispatch.
	tmp, err := os.CreateTemp("", "import-*"+filepath.Ext(header.Filename))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	tmp.Close()

	config := excel.DefaultImportConfig()
	config.FilePath = tmp.Name()
	config.UserID = id
	result, err := excel.ImportTerms(r.Context(), s.backlog, config, s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read import file")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleBacklog lists the backlog (GET) or adds a candidate term (POST)
func (s *Server) handleBacklog(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		id, ok := userID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "missing or invalid user parameter")
			return
		}
		items, err := s.items.GetByUser(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load backlog")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})

	case http.MethodPost:
		var req struct {
			UserID   int64           `json:"user_id"`
			Term     string          `json:"term"`
			Priority models.Priority `json:"priority"`
			Source   string          `json:"source"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Source == "" {
			req.Source = "manual"
		}

		item, suggestions, err := s.backlog.Add(r.Context(), req.UserID, req.Term, req.Priority, req.Source, s.now())
		switch {
		case errors.Is(err, backlog.ErrDuplicate):
			writeError(w, http.StatusConflict, "term already exists")
		case errors.Is(err, backlog.ErrEmptyTerm):
			writeError(w, http.StatusBadRequest, "term is empty")
		case err != nil:
			writeError(w, http.StatusInternalServerError, "failed to add term")
		default:
			writeJSON(w, http.StatusCreated, map[string]interface{}{
				"item":        item,
				"suggestions": suggestions,
			})
		}

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleBacklogCheck runs the cumulative batch duplicate check
func (s *Server) handleBacklogCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		UserID int64    `json:"user_id"`
		Terms  []string `json:"terms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.backlog.CheckBatch(r.Context(), req.UserID, req.Terms)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check terms")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleBacklogItem dispatches /backlog/{id} and /backlog/{id}/promote
func (s *Server) handleBacklogItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/backlog/")
	if id := strings.TrimSuffix(rest, "/promote"); id != rest {
		s.handlePromote(w, r, id)
		return
	}

	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	err := s.backlog.Discard(r.Context(), rest)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "backlog item not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to discard item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePromote turns a backlog item into a scheduled card
func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	card, err := s.backlog.Promote(r.Context(), id, s.now())
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "backlog item not found")
	case errors.Is(err, backlog.ErrDailyLimitReached):
		writeError(w, http.StatusTooManyRequests, "daily new card limit reached")
	case errors.Is(err, backlog.ErrNotEligible):
		writeError(w, http.StatusConflict, "item is not yet eligible for promotion")
	case errors.Is(err, backlog.ErrDuplicate):
		writeError(w, http.StatusConflict, "term already exists as a card")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to promote item")
	default:
		writeJSON(w, http.StatusCreated, card)
	}
}

// handleSessionStart begins a review session over the current due set.
// Nothing due is an expected state, not an error: the response then carries
// started=false and the countdown to the next due card.
func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := s.settings.GetByUser(r.Context(), req.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	cards, err := s.cards.GetByUser(r.Context(), req.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cards")
		return
	}

	now := s.now()
	s.reapSessions(now)
	gate := lockedmode.New(settings.LockedMode)
	sess, err := session.Start(cards, leitner.IntervalConfig(settings.Intervals), gate, s.cards, now)
	if errors.Is(err, session.ErrNothingDue) {
		resp := map[string]interface{}{"started": false}
		if wait, ok := leitner.NextDueIn(cards, now); ok {
			resp["next_due_in"] = wait
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	sessionID := uuid.NewString()
	s.mu.Lock()
	s.sessions[sessionID] = &activeSession{session: sess, userID: req.UserID}
	s.mu.Unlock()

	current, _ := sess.Current()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"started":    true,
		"session_id": sessionID,
		"summary":    sess.Summary(),
		"card":       current,
	})
}

// handleSession dispatches /session/{id} and /session/{id}/answer
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/session/")
	answering := false
	if id := strings.TrimSuffix(rest, "/answer"); id != rest {
		rest = id
		answering = true
	}

	s.mu.Lock()
	active, ok := s.sessions[rest]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	if answering {
		s.handleSessionAnswer(w, r, rest, active)
		return
	}

	switch r.Method {
	case http.MethodGet:
		resp := map[string]interface{}{"summary": active.session.Summary(), "done": active.session.Done()}
		if card, ok := active.session.Current(); ok {
			resp["card"] = card
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodDelete:
		// Early exit is always safe: answered cards are already committed,
		// the rest were never touched.
		s.mu.Lock()
		delete(s.sessions, rest)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"summary": active.session.Summary()})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSessionAnswer applies the outcome to the session's current card
func (s *Server) handleSessionAnswer(w http.ResponseWriter, r *http.Request, id string, active *activeSession) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Outcome string `json:"outcome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	outcome, err := leitner.ParseOutcome(req.Outcome)
	if err != nil {
		writeError(w, http.StatusBadRequest, "outcome must be correct, wrong or hard")
		return
	}

	updated, err := active.session.Answer(r.Context(), outcome, s.now())
	if errors.Is(err, session.ErrFinished) {
		writeError(w, http.StatusConflict, "session already finished")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to apply answer")
		return
	}

	resp := map[string]interface{}{
		"card":    updated,
		"summary": active.session.Summary(),
		"done":    active.session.Done(),
	}
	if next, ok := active.session.Current(); ok {
		resp["next"] = next
	}
	if active.session.Done() {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSettings reads or updates per-user settings, including the
// locked-mode preference and the interval table
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		id, ok := userID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "missing or invalid user parameter")
			return
		}
		settings, err := s.settings.GetByUser(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load settings")
			return
		}
		writeJSON(w, http.StatusOK, settings)

	case http.MethodPut:
		var req models.UserSettings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := leitner.IntervalConfig(req.Intervals).Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		// Shrinking the table below an occupied box would strand cards
		// outside [1, maxBox].
		cards, err := s.cards.GetByUser(r.Context(), req.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load cards")
			return
		}
		maxBox := leitner.IntervalConfig(req.Intervals).MaxBox()
		for _, c := range cards {
			if c.BoxIndex > maxBox {
				writeError(w, http.StatusConflict, fmt.Sprintf("interval table has %d boxes but a card sits in box %d", maxBox, c.BoxIndex))
				return
			}
		}
		if err := s.settings.Update(r.Context(), &req); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				writeError(w, http.StatusNotFound, "settings not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to update settings")
			return
		}
		writeJSON(w, http.StatusOK, req)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
