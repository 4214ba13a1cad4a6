package events

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/javiermolinar/lvlup/internal/logger"
)

// DefaultQueueSize is the event buffer used when NewBus gets a non-positive size.
const DefaultQueueSize = 64

// handleTimeout bounds a single sink call.
const handleTimeout = 30 * time.Second

// Bus fans events out to subscribed sinks on a single goroutine.
// Publish never blocks: when the buffer is full the event is dropped.
type Bus struct {
	logger *log.Logger
	queue  chan Event
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	sinks  map[int]Sink
	nextID int
	closed bool

	closeOnce sync.Once
}

var _ Publisher = (*Bus)(nil)

// NewBus creates a bus and starts its dispatch goroutine.
func NewBus(l *log.Logger, size int) *Bus {
	if size <= 0 {
		size = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bus{
		logger: logger.OrDiscard(l),
		queue:  make(chan Event, size),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		sinks:  make(map[int]Sink),
	}
	go b.run()
	return b
}

// Subscribe registers a sink and returns a function that removes it.
func (b *Bus) Subscribe(s Sink) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.sinks[id] = s
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.sinks, id)
		b.mu.Unlock()
	}
}

// Publish queues an event for delivery.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.logger.Debug("event dropped after close", "kind", e.Kind)
		return
	}
	select {
	case b.queue <- e:
	default:
		b.logger.Warn("event queue full, dropping event", "kind", e.Kind)
	}
}

// Close stops accepting events, delivers what is queued and waits for the
// dispatcher to exit.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.queue)
		b.mu.Unlock()
		<-b.done
		b.cancel()
	})
}

func (b *Bus) run() {
	defer close(b.done)
	for e := range b.queue {
		for _, s := range b.snapshot() {
			b.deliver(s, e)
		}
	}
}

// snapshot returns the sinks in subscription order.
func (b *Bus) snapshot() []Sink {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]int, 0, len(b.sinks))
	for id := range b.sinks {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]Sink, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.sinks[id])
	}
	return out
}

func (b *Bus) deliver(s Sink, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event sink panicked", "kind", e.Kind, "panic", fmt.Sprint(r))
		}
	}()

	ctx, cancel := context.WithTimeout(b.ctx, handleTimeout)
	defer cancel()

	if err := s.Handle(ctx, e); err != nil {
		b.logger.Error("event sink failed", "kind", e.Kind, "err", err)
	}
}
