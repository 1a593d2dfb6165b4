package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IntervalList is an ordered list of per-box review intervals in days,
// stored as a comma-separated string ("1,2,4,8,16").
type IntervalList []int

// Value implements driver.Valuer
func (l IntervalList) Value() (driver.Value, error) {
	parts := make([]string, len(l))
	for i, d := range l {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ","), nil
}

// Scan implements sql.Scanner
func (l *IntervalList) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into IntervalList", src)
	}
	if s == "" {
		*l = nil
		return nil
	}
	parts := strings.Split(s, ",")
	out := make(IntervalList, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", p, err)
		}
		out = append(out, d)
	}
	*l = out
	return nil
}

// UserSettings holds per-user scheduler configuration
type UserSettings struct {
	UserID              int64        `json:"user_id" db:"user_id"`
	Intervals           IntervalList `json:"intervals" db:"intervals"`
	DailyNewLimit       int          `json:"daily_new_limit" db:"daily_new_limit"`
	LockedMode          bool         `json:"locked_mode" db:"locked_mode"`
	NotificationEnabled bool         `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int          `json:"notification_hour" db:"notification_hour"`
	CreatedAt           time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at" db:"updated_at"`
}
