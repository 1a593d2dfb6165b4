package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/lexbox/internal/leitner"
	"github.com/example/lexbox/pkg/models"
)

// Server-level defaults applied when a user's settings row is first
// created. Overridden at startup from the loaded configuration.
var (
	defaultIntervals     = models.IntervalList(leitner.DefaultIntervals())
	defaultDailyNewLimit = 10
)

// SetDefaultSettings overrides the defaults used for new users. Called once
// at startup, before any request is served.
func SetDefaultSettings(intervals []int, dailyNewLimit int) {
	defaultIntervals = models.IntervalList(intervals)
	defaultDailyNewLimit = dailyNewLimit
}

// SettingsRepository handles database operations for per-user settings
type SettingsRepository struct{}

// NewSettingsRepository creates a new repository instance
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

// GetByUser returns the user's settings, creating defaults on first access.
// The stored interval table is validated before being handed out; a corrupt
// table is a configuration error surfaced immediately.
func (r *SettingsRepository) GetByUser(ctx context.Context, userID int64) (*models.UserSettings, error) {
	var settings models.UserSettings
	query := DB.Rebind("SELECT * FROM user_settings WHERE user_id = ?")
	err := DB.GetContext(ctx, &settings, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return r.createDefaults(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings for user %d: %w", userID, err)
	}
	if err := leitner.IntervalConfig(settings.Intervals).Validate(); err != nil {
		return nil, fmt.Errorf("stored interval config for user %d is invalid: %w", userID, err)
	}
	return &settings, nil
}

func (r *SettingsRepository) createDefaults(ctx context.Context, userID int64) (*models.UserSettings, error) {
	now := time.Now().UTC()
	settings := &models.UserSettings{
		UserID:              userID,
		Intervals:           defaultIntervals,
		DailyNewLimit:       defaultDailyNewLimit,
		LockedMode:          false,
		NotificationEnabled: true,
		NotificationHour:    9,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	query := DB.Rebind(`
		INSERT INTO user_settings (
			user_id, intervals, daily_new_limit, locked_mode,
			notification_enabled, notification_hour, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := DB.ExecContext(ctx, query,
		settings.UserID,
		settings.Intervals,
		settings.DailyNewLimit,
		settings.LockedMode,
		settings.NotificationEnabled,
		settings.NotificationHour,
		settings.CreatedAt,
		settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create default settings for user %d: %w", userID, err)
	}
	return settings, nil
}

// Update modifies an existing settings row. The interval table is validated
// before it is written; invalid configuration never reaches storage.
func (r *SettingsRepository) Update(ctx context.Context, settings *models.UserSettings) error {
	if err := leitner.IntervalConfig(settings.Intervals).Validate(); err != nil {
		return fmt.Errorf("invalid interval config: %w", err)
	}
	settings.UpdatedAt = time.Now().UTC()
	query := DB.Rebind(`
		UPDATE user_settings SET
			intervals = ?,
			daily_new_limit = ?,
			locked_mode = ?,
			notification_enabled = ?,
			notification_hour = ?,
			updated_at = ?
		WHERE user_id = ?
	`)
	res, err := DB.ExecContext(ctx, query,
		settings.Intervals,
		settings.DailyNewLimit,
		settings.LockedMode,
		settings.NotificationEnabled,
		settings.NotificationHour,
		settings.UpdatedAt,
		settings.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settings for user %d: %w", settings.UserID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// UsersWithNotificationsAt returns the ids of users who want a reminder at
// the given hour
func (r *SettingsRepository) UsersWithNotificationsAt(ctx context.Context, hour int) ([]int64, error) {
	var ids []int64
	query := DB.Rebind(`
		SELECT user_id FROM user_settings
		WHERE notification_enabled = ? AND notification_hour = ?
	`)
	if err := DB.SelectContext(ctx, &ids, query, true, hour); err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %w", err)
	}
	return ids, nil
}
