package models

import "time"

// Priority of a backlog item
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsValid reports whether p is one of the known priorities
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// BacklogItem is a candidate term waiting to be promoted to a Card.
// It is destroyed when promoted or explicitly discarded.
type BacklogItem struct {
	ID            string    `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	Term          string    `json:"term" db:"term"`
	NormalizedKey string    `json:"normalized_key" db:"normalized_key"`
	ScheduledFor  time.Time `json:"scheduled_for" db:"scheduled_for"` // gates when the item becomes eligible
	Priority      Priority  `json:"priority" db:"priority"`
	Source        string    `json:"source" db:"source"` // "manual", "import", "ocr", "generated"
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// IsEligible reports whether the item may be promoted at the given time
func (b *BacklogItem) IsEligible(now time.Time) bool {
	return !b.ScheduledFor.After(now)
}
