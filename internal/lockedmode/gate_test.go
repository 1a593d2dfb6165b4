package lockedmode

import (
	"testing"
	"time"

	"github.com/example/lexbox/pkg/models"
)

var testNow = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

func cardAt(id string, box int, due time.Time) models.Card {
	return models.Card{ID: id, BoxIndex: box, NextReviewAt: due}
}

func TestUnlockedGateAllowsEverything(t *testing.T) {
	g := New(false)
	notDue := cardAt("a", 3, testNow.Add(time.Hour))

	if !g.CanBrowseLibrary() {
		t.Error("unlocked gate must allow browsing")
	}
	if !g.CardAccessible(notDue, testNow) {
		t.Error("unlocked gate must show any card")
	}
	if access := g.BoxAccess([]models.Card{notDue}, 3, testNow); !access.Accessible {
		t.Error("unlocked gate must open every box")
	}
}

func TestLockedGateBlocksBrowsing(t *testing.T) {
	if New(true).CanBrowseLibrary() {
		t.Error("locked gate must block library browsing")
	}
}

func TestLockedGateCardAccess(t *testing.T) {
	g := New(true)
	due := cardAt("a", 1, testNow.Add(-time.Minute))
	notDue := cardAt("b", 1, testNow.Add(time.Minute))

	if !g.CardAccessible(due, testNow) {
		t.Error("due card must be accessible while locked")
	}
	if g.CardAccessible(notDue, testNow) {
		t.Error("not-yet-due card must be hidden while locked")
	}
}

func TestCardAccessMonotoneInTime(t *testing.T) {
	// Once accessible, a card never becomes locked again as time passes.
	g := New(true)
	card := cardAt("a", 2, testNow)
	for _, later := range []time.Duration{0, time.Minute, time.Hour, 240 * time.Hour} {
		if !g.CardAccessible(card, testNow.Add(later)) {
			t.Errorf("card accessible at t0 became locked at t0+%v", later)
		}
	}
}

func TestBoxAccessLockedWithCountdown(t *testing.T) {
	g := New(true)
	cards := []models.Card{
		cardAt("a", 2, testNow.Add(3*time.Hour)),
		cardAt("b", 2, testNow.Add(time.Hour)),
	}

	access := g.BoxAccess(cards, 2, testNow)
	if access.Accessible {
		t.Error("box with no due cards must be locked")
	}
	if access.NextDueIn == nil || *access.NextDueIn != time.Hour {
		t.Errorf("NextDueIn = %v, want 1h", access.NextDueIn)
	}
}

func TestBoxAccessOpensOnSingleDueCard(t *testing.T) {
	g := New(true)
	cards := []models.Card{
		cardAt("a", 2, testNow.Add(-time.Minute)),
		cardAt("b", 2, testNow.Add(time.Hour)),
	}

	access := g.BoxAccess(cards, 2, testNow)
	if !access.Accessible || access.DueCount != 1 {
		t.Errorf("access = %+v, want accessible with one due card", access)
	}
}

func TestCanStartSession(t *testing.T) {
	g := New(true)

	// One card due in an hour: no session, countdown of exactly 1h.
	cards := []models.Card{cardAt("a", 1, testNow.Add(time.Hour))}
	ok, wait, hasNext := g.CanStartSession(cards, testNow)
	if ok {
		t.Error("session must not start with nothing due")
	}
	if !hasNext || wait != time.Hour {
		t.Errorf("countdown = (%v, %v), want (1h, true)", wait, hasNext)
	}

	// The same card an hour later: session may start.
	if ok, _, _ := g.CanStartSession(cards, testNow.Add(time.Hour)); !ok {
		t.Error("session must start once the card is due")
	}
}

func TestCanStartSessionEmptyCollection(t *testing.T) {
	ok, _, hasNext := New(true).CanStartSession(nil, testNow)
	if ok || hasNext {
		t.Error("empty collection means nothing to unlock and no countdown")
	}
}

func TestSnapshot(t *testing.T) {
	g := New(true)
	cards := []models.Card{
		cardAt("a", 1, testNow.Add(-time.Minute)),
		cardAt("b", 2, testNow.Add(time.Hour)),
	}

	state := g.Snapshot(cards, 5, testNow)

	if !state.Locked || state.BrowsingAllowed {
		t.Error("snapshot must reflect the locked preference")
	}
	if state.DueCount != 1 {
		t.Errorf("DueCount = %d, want 1", state.DueCount)
	}
	if state.NextDueIn == nil || *state.NextDueIn != time.Hour {
		t.Errorf("NextDueIn = %v, want 1h", state.NextDueIn)
	}
	if len(state.Boxes) != 5 {
		t.Fatalf("got %d boxes, want 5", len(state.Boxes))
	}
	if !state.Boxes[0].Accessible {
		t.Error("box 1 has a due card and must be open")
	}
	if state.Boxes[1].Accessible {
		t.Error("box 2 has no due card and must be locked")
	}
	// Empty boxes report locked with no countdown.
	if state.Boxes[4].Accessible || state.Boxes[4].NextDueIn != nil {
		t.Errorf("empty box access = %+v, want locked without countdown", state.Boxes[4])
	}
}
