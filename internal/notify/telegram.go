// Package notify contains reminder delivery backends. Notifications only
// tell the user that reviews are waiting; they never reveal card content
// and never alter the schedule.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram delivers reminders as Telegram messages. The user id doubles as
// the Telegram chat id.
type Telegram struct {
	api *tgbotapi.BotAPI
}

// NewTelegram creates a Telegram notifier from a bot token
func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Telegram{api: api}, nil
}

// SendReminder implements scheduler.Notifier
func (t *Telegram) SendReminder(userID int64, dueCount int) error {
	text := fmt.Sprintf("You have %d cards waiting for review.", dueCount)
	if dueCount == 1 {
		text = "You have 1 card waiting for review."
	}
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder to %d: %w", userID, err)
	}
	return nil
}
