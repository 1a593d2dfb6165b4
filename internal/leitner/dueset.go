package leitner

import (
	"sort"
	"time"

	"github.com/example/lexbox/pkg/models"
)

// DueCards returns the cards eligible for review at the given time, ordered
// by box ascending and then due date ascending. Lower boxes come first so
// frequently-missed material is reinforced before less urgent material; this
// ordering shapes learning outcomes and is relied on by the session queue.
func DueCards(cards []models.Card, now time.Time) []models.Card {
	var due []models.Card
	for _, c := range cards {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].BoxIndex != due[j].BoxIndex {
			return due[i].BoxIndex < due[j].BoxIndex
		}
		return due[i].NextReviewAt.Before(due[j].NextReviewAt)
	})
	return due
}

// NextDueIn returns how long until the next not-yet-due card becomes due.
// The second return value is false when no such card exists (empty
// collection or everything already due).
func NextDueIn(cards []models.Card, now time.Time) (time.Duration, bool) {
	var best time.Duration
	found := false
	for _, c := range cards {
		if c.IsDue(now) {
			continue
		}
		d := c.NextReviewAt.Sub(now)
		if !found || d < best {
			best = d
			found = true
		}
	}
	return best, found
}

// NextDueInBox is the per-box analogue of NextDueIn, considering only cards
// currently in the given box.
func NextDueInBox(cards []models.Card, box int, now time.Time) (time.Duration, bool) {
	var best time.Duration
	found := false
	for _, c := range cards {
		if c.BoxIndex != box || c.IsDue(now) {
			continue
		}
		d := c.NextReviewAt.Sub(now)
		if !found || d < best {
			best = d
			found = true
		}
	}
	return best, found
}

// BoxStat summarizes one box of a user's collection
type BoxStat struct {
	Count    int `json:"count"`
	DueCount int `json:"due_count"`
}

// BoxStats partitions cards by box and counts how many in each box are due
// at the given time. Boxes with no cards are absent from the result.
func BoxStats(cards []models.Card, now time.Time) map[int]BoxStat {
	stats := make(map[int]BoxStat)
	for _, c := range cards {
		s := stats[c.BoxIndex]
		s.Count++
		if c.IsDue(now) {
			s.DueCount++
		}
		stats[c.BoxIndex] = s
	}
	return stats
}
