package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/lexbox/pkg/models"
)

// CardRepository handles database operations for cards
type CardRepository struct{}

// NewCardRepository creates a new repository instance
func NewCardRepository() *CardRepository {
	return &CardRepository{}
}

// GetByUser returns the owner's full card collection as one snapshot
func (r *CardRepository) GetByUser(ctx context.Context, userID int64) ([]models.Card, error) {
	var cards []models.Card
	query := DB.Rebind("SELECT * FROM cards WHERE user_id = ? ORDER BY box_index, next_review_at")
	if err := DB.SelectContext(ctx, &cards, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}
	return cards, nil
}

// GetByID returns a single card. Returns ErrNotFound for unknown ids.
func (r *CardRepository) GetByID(ctx context.Context, id string) (*models.Card, error) {
	var card models.Card
	query := DB.Rebind("SELECT * FROM cards WHERE id = ?")
	err := DB.GetContext(ctx, &card, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", id, err)
	}
	return &card, nil
}

// Create inserts a new card
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	return r.CreateIn(ctx, DB, card)
}

// CreateIn inserts a new card through the given executor, so the insert can
// join a transaction with other statements
func (r *CardRepository) CreateIn(ctx context.Context, ext sqlx.ExtContext, card *models.Card) error {
	query := ext.Rebind(`
		INSERT INTO cards (
			id, user_id, term, normalized_key, content, box_index,
			next_review_at, correct_count, incorrect_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := ext.ExecContext(ctx, query,
		card.ID,
		card.UserID,
		card.Term,
		card.NormalizedKey,
		card.Content,
		card.BoxIndex,
		card.NextReviewAt,
		card.CorrectCount,
		card.IncorrectCount,
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create card %s: %w", card.ID, err)
	}
	return nil
}

// SaveCard stores the card's full replacement scheduling state after a
// review: box, due date and counters in a single statement, atomic per card.
func (r *CardRepository) SaveCard(ctx context.Context, card *models.Card) error {
	query := DB.Rebind(`
		UPDATE cards SET
			box_index = ?,
			next_review_at = ?,
			correct_count = ?,
			incorrect_count = ?,
			updated_at = ?
		WHERE id = ?
	`)
	res, err := DB.ExecContext(ctx, query,
		card.BoxIndex,
		card.NextReviewAt,
		card.CorrectCount,
		card.IncorrectCount,
		card.UpdatedAt,
		card.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save card %s: %w", card.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a card. Deletion is terminal; no tombstones.
func (r *CardRepository) Delete(ctx context.Context, id string) error {
	query := DB.Rebind("DELETE FROM cards WHERE id = ?")
	res, err := DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsKey reports whether the owner already has a card with this
// normalized key
func (r *CardRepository) ExistsKey(ctx context.Context, userID int64, key string) (bool, error) {
	var count int
	query := DB.Rebind("SELECT COUNT(*) FROM cards WHERE user_id = ? AND normalized_key = ?")
	if err := DB.GetContext(ctx, &count, query, userID, key); err != nil {
		return false, fmt.Errorf("failed to check card key: %w", err)
	}
	return count > 0, nil
}

// Keys returns all normalized keys of the owner's cards, for batch dedup
func (r *CardRepository) Keys(ctx context.Context, userID int64) (map[string]bool, error) {
	var keys []string
	query := DB.Rebind("SELECT normalized_key FROM cards WHERE user_id = ?")
	if err := DB.SelectContext(ctx, &keys, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get card keys: %w", err)
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set, nil
}

// Terms returns all raw terms of the owner's cards, used for fuzzy
// "did you mean" suggestions
func (r *CardRepository) Terms(ctx context.Context, userID int64) ([]string, error) {
	var terms []string
	query := DB.Rebind("SELECT term FROM cards WHERE user_id = ?")
	if err := DB.SelectContext(ctx, &terms, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get card terms: %w", err)
	}
	return terms, nil
}

// CountCreatedSince counts the owner's cards created at or after the given
// time. Used for daily new-card quota accounting against created_at.
func (r *CardRepository) CountCreatedSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	query := DB.Rebind("SELECT COUNT(*) FROM cards WHERE user_id = ? AND created_at >= ?")
	if err := DB.GetContext(ctx, &count, query, userID, since); err != nil {
		return 0, fmt.Errorf("failed to count new cards: %w", err)
	}
	return count, nil
}
