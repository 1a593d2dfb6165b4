// Package lockedmode implements the anti-cheating gate: when a user enables
// Locked Mode, card content that is not yet due stays hidden, closing the
// loophole of peeking at answers ahead of schedule and then scoring a
// "correct" recall. Being locked out is an expected state, never an error —
// every check here returns plain values.
package lockedmode

import (
	"time"

	"github.com/example/lexbox/internal/leitner"
	"github.com/example/lexbox/pkg/models"
)

// Gate evaluates access against a card collection at a point in time.
// Enabled is a user preference, not driven by scheduler events. The gate
// holds no card state of its own: accessibility is re-derived on every call
// because "now" advances continuously.
type Gate struct {
	Enabled bool
}

// New returns a gate with the given locked-mode preference
func New(enabled bool) Gate {
	return Gate{Enabled: enabled}
}

// CanBrowseLibrary reports whether free browsing of the card library is
// allowed. While locked, browsing is blocked entirely rather than filtered:
// browsing by nature reveals content out of schedule order.
func (g Gate) CanBrowseLibrary() bool {
	return !g.Enabled
}

// CardAccessible reports whether the card's content may be shown.
// While locked a card is accessible iff it is due.
func (g Gate) CardAccessible(card models.Card, now time.Time) bool {
	if !g.Enabled {
		return true
	}
	return card.IsDue(now)
}

// BoxAccess describes whether one box may be opened, and if not, how long
// until its earliest card comes due
type BoxAccess struct {
	Box        int            `json:"box"`
	Accessible bool           `json:"accessible"`
	DueCount   int            `json:"due_count"`
	NextDueIn  *time.Duration `json:"next_due_in,omitempty"` // nil when accessible or box empty
}

// BoxAccess evaluates per-box access: a box is open iff it has at least one
// due card; otherwise it is locked with a countdown to its earliest
// NextReviewAt. An unlocked gate opens every box.
func (g Gate) BoxAccess(cards []models.Card, box int, now time.Time) BoxAccess {
	access := BoxAccess{Box: box}
	for _, c := range cards {
		if c.BoxIndex == box && c.IsDue(now) {
			access.DueCount++
		}
	}
	if !g.Enabled || access.DueCount > 0 {
		access.Accessible = true
		return access
	}
	if wait, ok := leitner.NextDueInBox(cards, box, now); ok {
		access.NextDueIn = &wait
	}
	return access
}

// CanStartSession reports whether a review session may begin. A session
// needs at least one due card; when there is none, the countdown to the
// next due card is returned so the caller can render "come back in X".
// An empty collection yields (false, 0, false): nothing to unlock, not an
// error.
func (g Gate) CanStartSession(cards []models.Card, now time.Time) (ok bool, nextDueIn time.Duration, hasNext bool) {
	for _, c := range cards {
		if c.IsDue(now) {
			return true, 0, false
		}
	}
	nextDueIn, hasNext = leitner.NextDueIn(cards, now)
	return false, nextDueIn, hasNext
}

// State is a full gate snapshot for one owner's collection, suitable for
// the locked-state endpoint
type State struct {
	Locked          bool           `json:"locked"`
	BrowsingAllowed bool           `json:"browsing_allowed"`
	DueCount        int            `json:"due_count"`
	NextDueIn       *time.Duration `json:"next_due_in,omitempty"`
	Boxes           []BoxAccess    `json:"boxes"`
}

// Snapshot evaluates the gate against the whole collection at a single
// captured "now". The same instant is used for the due set and the
// countdown so the two can never disagree.
func (g Gate) Snapshot(cards []models.Card, maxBox int, now time.Time) State {
	state := State{
		Locked:          g.Enabled,
		BrowsingAllowed: g.CanBrowseLibrary(),
		DueCount:        len(leitner.DueCards(cards, now)),
	}
	if wait, ok := leitner.NextDueIn(cards, now); ok {
		state.NextDueIn = &wait
	}
	for box := 1; box <= maxBox; box++ {
		state.Boxes = append(state.Boxes, g.BoxAccess(cards, box, now))
	}
	return state
}
