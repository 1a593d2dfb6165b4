package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/lexbox/pkg/models"
)

// BacklogRepository handles database operations for backlog items
type BacklogRepository struct{}

// NewBacklogRepository creates a new repository instance
func NewBacklogRepository() *BacklogRepository {
	return &BacklogRepository{}
}

// GetByUser returns the owner's backlog, high priority and oldest first
func (r *BacklogRepository) GetByUser(ctx context.Context, userID int64) ([]models.BacklogItem, error) {
	var items []models.BacklogItem
	query := DB.Rebind(`
		SELECT * FROM backlog_items
		WHERE user_id = ?
		ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, created_at
	`)
	if err := DB.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get backlog: %w", err)
	}
	return items, nil
}

// GetByID returns a single backlog item. Returns ErrNotFound for unknown ids.
func (r *BacklogRepository) GetByID(ctx context.Context, id string) (*models.BacklogItem, error) {
	var item models.BacklogItem
	query := DB.Rebind("SELECT * FROM backlog_items WHERE id = ?")
	err := DB.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get backlog item %s: %w", id, err)
	}
	return &item, nil
}

// Create inserts a new backlog item
func (r *BacklogRepository) Create(ctx context.Context, item *models.BacklogItem) error {
	query := DB.Rebind(`
		INSERT INTO backlog_items (
			id, user_id, term, normalized_key, scheduled_for, priority, source, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := DB.ExecContext(ctx, query,
		item.ID,
		item.UserID,
		item.Term,
		item.NormalizedKey,
		item.ScheduledFor,
		item.Priority,
		item.Source,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create backlog item %s: %w", item.ID, err)
	}
	return nil
}

// Delete removes a backlog item, either on promotion or explicit discard
func (r *BacklogRepository) Delete(ctx context.Context, id string) error {
	return r.DeleteIn(ctx, DB, id)
}

// DeleteIn removes a backlog item through the given executor, so promotion
// can pair the delete with the card insert in one transaction
func (r *BacklogRepository) DeleteIn(ctx context.Context, ext sqlx.ExtContext, id string) error {
	query := ext.Rebind("DELETE FROM backlog_items WHERE id = ?")
	res, err := ext.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete backlog item %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsKey reports whether the owner already has a backlog item with this
// normalized key
func (r *BacklogRepository) ExistsKey(ctx context.Context, userID int64, key string) (bool, error) {
	var count int
	query := DB.Rebind("SELECT COUNT(*) FROM backlog_items WHERE user_id = ? AND normalized_key = ?")
	if err := DB.GetContext(ctx, &count, query, userID, key); err != nil {
		return false, fmt.Errorf("failed to check backlog key: %w", err)
	}
	return count > 0, nil
}

// Keys returns all normalized keys in the owner's backlog
func (r *BacklogRepository) Keys(ctx context.Context, userID int64) (map[string]bool, error) {
	var keys []string
	query := DB.Rebind("SELECT normalized_key FROM backlog_items WHERE user_id = ?")
	if err := DB.SelectContext(ctx, &keys, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get backlog keys: %w", err)
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set, nil
}
