package models

import "time"

// Card represents a scheduled learning item inside the Leitner box system
type Card struct {
	ID             string      `json:"id" db:"id"`
	UserID         int64       `json:"user_id" db:"user_id"`
	Term           string      `json:"term" db:"term"`
	NormalizedKey  string      `json:"normalized_key" db:"normalized_key"`
	Content        CardContent `json:"content" db:"content"`
	BoxIndex       int         `json:"box_index" db:"box_index"` // 1..MaxBox, wrong answers reset to 1
	NextReviewAt   time.Time   `json:"next_review_at" db:"next_review_at"`
	CorrectCount   int         `json:"correct_count" db:"correct_count"`
	IncorrectCount int         `json:"incorrect_count" db:"incorrect_count"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// IsDue reports whether the card is eligible for review at the given time
func (c *Card) IsDue(now time.Time) bool {
	return !c.NextReviewAt.After(now)
}
