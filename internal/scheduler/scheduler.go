package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/lexbox/internal/database"
	"github.com/example/lexbox/internal/leitner"
)

// Scheduler manages the recurring reminder job: once per hour it looks up
// users whose notification hour has arrived and pings them if they have
// cards due. Reminders are presentation only and never touch the schedule.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	cards     *database.CardRepository
	settings  *database.SettingsRepository
}

// Notifier interface for sending reminders
type Notifier interface {
	SendReminder(userID int64, dueCount int) error
}

// New creates a new scheduler instance
func New(notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		cards:     database.NewCardRepository(),
		settings:  database.NewSettingsRepository(),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders pings every user whose notification hour matches
// the current hour and who has at least one due card
func (s *Scheduler) checkAndSendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now().UTC()
	userIDs, err := s.settings.UsersWithNotificationsAt(ctx, now.Hour())
	if err != nil {
		log.Printf("Error getting users for notification: %v", err)
		return
	}

	for _, userID := range userIDs {
		if err := s.RunManualCheck(ctx, userID, now); err != nil {
			log.Printf("Error sending reminder to user %d: %v", userID, err)
		}
	}
}

// RunManualCheck forces a due-card check for a specific user and sends a
// reminder when anything is due
func (s *Scheduler) RunManualCheck(ctx context.Context, userID int64, now time.Time) error {
	cards, err := s.cards.GetByUser(ctx, userID)
	if err != nil {
		return err
	}

	due := leitner.DueCards(cards, now)
	if len(due) == 0 {
		return nil
	}
	return s.notifier.SendReminder(userID, len(due))
}
