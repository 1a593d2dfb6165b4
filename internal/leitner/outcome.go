package leitner

import (
	"encoding"
	"fmt"
)

// Outcome represents the result of reviewing a single card
type Outcome int

const (
	// Correct recall; the card advances one box
	Correct Outcome = iota + 1
	// Wrong recall; the card falls back to box 1 regardless of its box
	Wrong
	// Hard recall; the card stays in its box and is reviewed again
	// at the box's own interval
	Hard
)

var outcomeNames = map[Outcome]string{
	Correct: "correct",
	Wrong:   "wrong",
	Hard:    "hard",
}

var outcomeByName = map[string]Outcome{
	"correct": Correct,
	"wrong":   Wrong,
	"hard":    Hard,
}

var (
	_ fmt.Stringer             = Outcome(0)
	_ encoding.TextMarshaler   = Outcome(0)
	_ encoding.TextUnmarshaler = (*Outcome)(nil)
)

// IsValid reports whether o is a known outcome
func (o Outcome) IsValid() bool {
	_, ok := outcomeNames[o]
	return ok
}

// String returns the lowercase name of the outcome
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler
func (o Outcome) MarshalText() ([]byte, error) {
	name, ok := outcomeNames[o]
	if !ok {
		return nil, fmt.Errorf("invalid outcome: %d", int(o))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Outcome) UnmarshalText(text []byte) error {
	v, ok := outcomeByName[string(text)]
	if !ok {
		return fmt.Errorf("invalid outcome: %q", text)
	}
	*o = v
	return nil
}

// ParseOutcome converts a user-supplied string ("correct", "wrong", "hard")
// into an Outcome
func ParseOutcome(s string) (Outcome, error) {
	var o Outcome
	if err := o.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return o, nil
}
