// Package notify delivers coach messages outside the terminal.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/javiermolinar/lvlup/internal/logger"
)

// ErrNoChat is returned when Telegram is configured without a chat id.
var ErrNoChat = errors.New("telegram chat id is not configured")

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends coach messages to one chat. It implements coach.Outbox.
type Telegram struct {
	api    sender
	chatID int64
	logger *log.Logger
}

// NewTelegram authorizes the bot token and targets chatID.
func NewTelegram(token string, chatID int64, l *log.Logger) (*Telegram, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram token is required")
	}
	if chatID == 0 {
		return nil, ErrNoChat
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	l = logger.OrDiscard(l)
	l.Info("telegram bot authorized", "account", api.Self.UserName)
	return newTelegram(api, chatID, l), nil
}

func newTelegram(api sender, chatID int64, l *log.Logger) *Telegram {
	return &Telegram{api: api, chatID: chatID, logger: logger.OrDiscard(l)}
}

// Deliver sends text as an HTML message.
func (t *Telegram) Deliver(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	msg := tgbotapi.NewMessage(t.chatID, "🧚 <b>Navi</b>\n"+html.EscapeString(text))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	t.logger.Debug("telegram message sent", "chat", t.chatID)
	return nil
}
