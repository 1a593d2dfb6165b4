// Package session orchestrates one review sitting: it builds the queue of
// due cards, applies answers one at a time and keeps the running tallies.
// Session state is ephemeral; abandoning a session mid-way is always safe
// because each answered card is persisted immediately and unanswered cards
// are never touched.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/lexbox/internal/leitner"
	"github.com/example/lexbox/internal/lockedmode"
	"github.com/example/lexbox/pkg/models"
)

var (
	// ErrNothingDue is returned when a session is started with no due cards
	ErrNothingDue = errors.New("session: no cards due for review")
	// ErrFinished is returned when answering past the end of the queue
	ErrFinished = errors.New("session: all cards already answered")
)

// CardStore persists a card's full replacement state after a review.
// The save must be atomic per card; no cross-card transaction is required
// because each transition depends only on the card's own prior state.
type CardStore interface {
	SaveCard(ctx context.Context, card *models.Card) error
}

// Summary reports the running tallies of a session
type Summary struct {
	Total     int       `json:"total"`
	Answered  int       `json:"answered"`
	Remaining int       `json:"remaining"`
	Correct   int       `json:"correct"`
	Wrong     int       `json:"wrong"`
	Hard      int       `json:"hard"`
	StartedAt time.Time `json:"started_at"`
}

// Session is one review pass over the due set. It is owned by a single
// caller and is not safe for concurrent use; reviews are sequential by
// nature, one card at a time.
type Session struct {
	store     CardStore
	intervals leitner.IntervalConfig
	queue     []models.Card
	cursor    int
	correct   int
	wrong     int
	hard      int
	startedAt time.Time
}

// Start builds a session from the owner's card collection. The due set is
// computed once at the captured now and ordered box ascending, due date
// ascending. Returns ErrNothingDue when the gate reports nothing reviewable;
// the caller then renders the empty state with the next-due countdown.
func Start(cards []models.Card, intervals leitner.IntervalConfig, gate lockedmode.Gate, store CardStore, now time.Time) (*Session, error) {
	if err := intervals.Validate(); err != nil {
		return nil, fmt.Errorf("invalid interval config: %w", err)
	}
	if ok, _, _ := gate.CanStartSession(cards, now); !ok {
		return nil, ErrNothingDue
	}
	return &Session{
		store:     store,
		intervals: intervals,
		queue:     leitner.DueCards(cards, now),
		startedAt: now,
	}, nil
}

// Current returns the card under the cursor. ok is false once the queue is
// exhausted.
func (s *Session) Current() (card models.Card, ok bool) {
	if s.cursor >= len(s.queue) {
		return models.Card{}, false
	}
	return s.queue[s.cursor], true
}

// Answer applies the outcome to the current card: box transition, new due
// date, counter bump — persisted as one atomic card save — then advances
// the cursor. On a failed save the cursor does not move, so the caller may
// retry or exit without losing the card.
func (s *Session) Answer(ctx context.Context, outcome leitner.Outcome, now time.Time) (models.Card, error) {
	if !outcome.IsValid() {
		return models.Card{}, fmt.Errorf("invalid outcome %d", int(outcome))
	}
	if s.cursor >= len(s.queue) {
		return models.Card{}, ErrFinished
	}

	updated := leitner.ApplyAnswer(s.queue[s.cursor], outcome, s.intervals, now)
	if err := s.store.SaveCard(ctx, &updated); err != nil {
		return models.Card{}, fmt.Errorf("failed to save card %s: %w", updated.ID, err)
	}

	s.queue[s.cursor] = updated
	s.cursor++
	switch outcome {
	case leitner.Correct:
		s.correct++
	case leitner.Wrong:
		s.wrong++
	case leitner.Hard:
		s.hard++
	}
	return updated, nil
}

// Done reports whether every queued card has been answered
func (s *Session) Done() bool {
	return s.cursor >= len(s.queue)
}

// Summary returns the tallies so far. Valid at any point, including after
// an early exit.
func (s *Session) Summary() Summary {
	return Summary{
		Total:     len(s.queue),
		Answered:  s.cursor,
		Remaining: len(s.queue) - s.cursor,
		Correct:   s.correct,
		Wrong:     s.wrong,
		Hard:      s.hard,
		StartedAt: s.startedAt,
	}
}
