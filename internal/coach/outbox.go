package coach

import (
	"context"

	"github.com/charmbracelet/log"
)

// Outbox delivers a finished coach message somewhere the user will see it.
type Outbox interface {
	Deliver(ctx context.Context, text string) error
}

// LogOutbox writes messages to a logger.
type LogOutbox struct {
	Logger *log.Logger
}

// Deliver logs text at info level.
func (o LogOutbox) Deliver(_ context.Context, text string) error {
	if o.Logger != nil {
		o.Logger.Info("coach", "message", text)
	}
	return nil
}

// ChanOutbox hands messages to an in-process reader such as the TUI.
// Messages are dropped when the buffer is full.
type ChanOutbox struct {
	ch chan string
}

// NewChanOutbox creates a ChanOutbox with the given buffer size.
func NewChanOutbox(size int) *ChanOutbox {
	return &ChanOutbox{ch: make(chan string, max(1, size))}
}

// Deliver queues text without blocking.
func (o *ChanOutbox) Deliver(ctx context.Context, text string) error {
	select {
	case o.ch <- text:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrOutboxFull
	}
}

// Messages returns the receive side.
func (o *ChanOutbox) Messages() <-chan string {
	return o.ch
}
