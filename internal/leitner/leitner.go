// Package leitner implements the five-box spaced repetition model: box
// transitions, due date computation and due-set queries. All functions are
// pure; the current time is always passed in explicitly so call sites stay
// deterministic and testable.
package leitner

import (
	"fmt"
	"time"

	"github.com/example/lexbox/pkg/models"
)

// DefaultMaxBox is the number of boxes in the standard configuration
const DefaultMaxBox = 5

// IntervalConfig maps box index (1-based) to review interval in days.
// Its length defines the number of boxes.
type IntervalConfig []int

// DefaultIntervals returns the standard 5-box interval table
func DefaultIntervals() IntervalConfig {
	return IntervalConfig{1, 2, 4, 8, 16}
}

// MaxBox returns the highest box index for this configuration
func (c IntervalConfig) MaxBox() int {
	return len(c)
}

// Validate checks the interval table at load time: it must be non-empty,
// strictly positive and monotonically non-decreasing. A bad table is a
// configuration error and must be fatal at startup, never defaulted past.
func (c IntervalConfig) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("interval config is empty")
	}
	for i, d := range c {
		if d < 1 {
			return fmt.Errorf("interval for box %d must be at least 1 day, got %d", i+1, d)
		}
		if i > 0 && d < c[i-1] {
			return fmt.Errorf("interval for box %d (%d days) is shorter than box %d (%d days)", i+1, d, i, c[i-1])
		}
	}
	return nil
}

// Days returns the review interval in days for the given box.
// Panics if box is outside [1, MaxBox]: that indicates a corrupted caller,
// not a recoverable condition.
func (c IntervalConfig) Days(box int) int {
	if box < 1 || box > len(c) {
		panic(fmt.Sprintf("leitner: box %d out of range [1, %d]", box, len(c)))
	}
	return c[box-1]
}

// NextBox returns the box a card moves to after a review.
//
//	correct -> min(current+1, maxBox)
//	wrong   -> 1 (strict Leitner: any miss resets fully)
//	hard    -> current (stays put)
//
// Panics if current is outside [1, maxBox] or the outcome is unknown.
func NextBox(current, maxBox int, outcome Outcome) int {
	if current < 1 || current > maxBox {
		panic(fmt.Sprintf("leitner: box %d out of range [1, %d]", current, maxBox))
	}
	switch outcome {
	case Correct:
		if current < maxBox {
			return current + 1
		}
		return maxBox
	case Wrong:
		return 1
	case Hard:
		return current
	default:
		panic(fmt.Sprintf("leitner: unknown outcome %d", int(outcome)))
	}
}

// NextDueDate returns the next review time for a card landing in the given
// box. It adds whole calendar days via AddDate rather than a day-length
// duration, so the wall-clock time of day is preserved across DST changes.
func NextDueDate(box int, cfg IntervalConfig, from time.Time) time.Time {
	return from.AddDate(0, 0, cfg.Days(box))
}

// ApplyAnswer produces the card's full replacement state after one review:
// new box, new due date and bumped counters. The input card is not mutated;
// the caller is expected to persist the returned value atomically.
//
// A card stranded above the top box (the interval table shrank after the
// card got there) is treated as sitting in the top box, so the review
// brings it back into range instead of panicking.
func ApplyAnswer(card models.Card, outcome Outcome, cfg IntervalConfig, now time.Time) models.Card {
	next := card
	box := card.BoxIndex
	if box > cfg.MaxBox() {
		box = cfg.MaxBox()
	}
	next.BoxIndex = NextBox(box, cfg.MaxBox(), outcome)
	next.NextReviewAt = NextDueDate(next.BoxIndex, cfg, now)
	switch outcome {
	case Correct:
		next.CorrectCount++
	case Wrong:
		next.IncorrectCount++
	}
	next.UpdatedAt = now
	return next
}
