package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/example/lexbox/internal/database"
	"github.com/example/lexbox/pkg/models"
)

var testNow = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

type fakeNotifier struct {
	userIDs   []int64
	dueCounts []int
}

func (f *fakeNotifier) SendReminder(userID int64, dueCount int) error {
	f.userIDs = append(f.userIDs, userID)
	f.dueCounts = append(f.dueCounts, dueCount)
	return nil
}

func setupScheduler(t *testing.T) (*Scheduler, *fakeNotifier) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATA_DIR", t.TempDir())
	if err := database.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	notifier := &fakeNotifier{}
	return New(notifier), notifier
}

func seedCard(t *testing.T, id string, userID int64, due time.Time) {
	t.Helper()
	card := &models.Card{
		ID:            id,
		UserID:        userID,
		Term:          id,
		NormalizedKey: id,
		BoxIndex:      1,
		NextReviewAt:  due,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
	if err := database.NewCardRepository().Create(context.Background(), card); err != nil {
		t.Fatalf("seed card: %v", err)
	}
}

func TestRunManualCheckSendsReminderForDueCards(t *testing.T) {
	sched, notifier := setupScheduler(t)
	seedCard(t, "a", 1, testNow.Add(-time.Hour))
	seedCard(t, "b", 1, testNow.Add(-time.Minute))
	seedCard(t, "c", 1, testNow.Add(time.Hour))

	if err := sched.RunManualCheck(context.Background(), 1, testNow); err != nil {
		t.Fatalf("RunManualCheck: %v", err)
	}
	if len(notifier.userIDs) != 1 || notifier.userIDs[0] != 1 {
		t.Fatalf("userIDs = %v, want [1]", notifier.userIDs)
	}
	if notifier.dueCounts[0] != 2 {
		t.Errorf("dueCount = %d, want 2", notifier.dueCounts[0])
	}
}

func TestRunManualCheckStaysSilentWhenNothingDue(t *testing.T) {
	sched, notifier := setupScheduler(t)
	seedCard(t, "a", 1, testNow.Add(time.Hour))

	if err := sched.RunManualCheck(context.Background(), 1, testNow); err != nil {
		t.Fatalf("RunManualCheck: %v", err)
	}
	if len(notifier.userIDs) != 0 {
		t.Errorf("reminder sent with nothing due: %v", notifier.userIDs)
	}
}
