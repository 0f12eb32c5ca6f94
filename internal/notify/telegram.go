// Package notify pushes moderation alerts to a Telegram chat watched by
// moderators. Alerts are best-effort; failures never block the message
// flow that triggered them.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"safecircle/backend/internal/models"
)

// Notifier sends flagged-message alerts. The zero value is a no-op, so
// callers never need a nil check when alerts are not configured.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier creates a Telegram notifier. An empty token disables alerts.
func NewNotifier(token string, chatID int64) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return &Notifier{}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Notifier{bot: bot, chatID: chatID}, nil
}

// FlaggedMessage alerts moderators about a message the safety scorer
// flagged for review.
func (n *Notifier) FlaggedMessage(msg *models.CircleMessage) {
	if n == nil || n.bot == nil {
		return
	}

	text := fmt.Sprintf("Flagged message in circle %s\nSender: %s\nRisk score: %d\n\n%s",
		msg.CircleID, msg.SenderID, msg.AIRiskScore, msg.Message)

	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		log.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to send moderation alert")
	}
}
