package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/javiermolinar/lvlup/internal/events"
	"github.com/javiermolinar/lvlup/internal/logger"
)

// ErrOutboxFull is returned by an outbox that cannot accept more messages.
var ErrOutboxFull = errors.New("outbox full")

// defaultChatTimeout bounds one model round trip.
const defaultChatTimeout = 20 * time.Second

// Coach reacts to planner events. It implements events.Sink.
type Coach struct {
	client   Client
	outboxes []Outbox
	language string
	timeout  time.Duration
	logger   *log.Logger
}

// Option configures a Coach.
type Option func(*Coach)

// WithLanguage sets the reply language.
func WithLanguage(language string) Option {
	return func(c *Coach) {
		if strings.TrimSpace(language) != "" {
			c.language = language
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Coach) { c.logger = logger.OrDiscard(l) }
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(c *Coach) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a coach. A nil client makes it answer with canned lines.
func New(client Client, outboxes []Outbox, opts ...Option) *Coach {
	c := &Coach{
		client:   client,
		outboxes: outboxes,
		language: DefaultLanguage,
		timeout:  defaultChatTimeout,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handle writes a message for e and delivers it to every outbox.
// Delivery errors are joined; one failing outbox does not stop the others.
func (c *Coach) Handle(ctx context.Context, e events.Event) error {
	text := c.Message(ctx, e)

	var errs []error
	for _, o := range c.outboxes {
		if err := o.Deliver(ctx, text); err != nil {
			errs = append(errs, fmt.Errorf("delivering %s: %w", e.Kind, err))
		}
	}
	return errors.Join(errs...)
}

// Message returns the coach's reply to e, trimmed to two sentences.
func (c *Coach) Message(ctx context.Context, e events.Event) string {
	if c.client == nil {
		return Fallback(e)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	reply, err := c.client.Chat(ctx, []Message{
		{Role: RoleSystem, Content: SystemPrompt(c.language)},
		{Role: RoleUser, Content: PromptFor(e)},
	})
	if err != nil {
		c.logger.Warn("coach model failed, using fallback", "kind", e.Kind, "err", err)
		return Fallback(e)
	}

	reply = TrimSentences(reply, maxSentences)
	if reply == "" {
		return Fallback(e)
	}
	c.logger.Debug("coach reply", "kind", e.Kind, "duration", time.Since(start))
	return reply
}
