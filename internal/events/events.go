// Package events carries semantic planner events from the scheduler to
// downstream sinks such as the coach.
package events

import (
	"context"
	"time"
)

// Kind tags what happened.
type Kind string

// Event kinds.
const (
	HabitAdded     Kind = "habit-added"
	HabitRemoved   Kind = "habit-removed"
	HabitExpanded  Kind = "habit-expanded"
	HabitReduced   Kind = "habit-reduced"
	HabitCompleted Kind = "habit-completed"
	ConfigChanged  Kind = "config-changed"
)

// Event describes a committed change. Fields not relevant to the kind are zero.
type Event struct {
	Kind           Kind
	HabitName      string
	HabitIcon      string
	DurationChange int // minutes, signed
	TotalDuration  int // minutes after the change
	StartHour      int // config-changed only
	EndHour        int // config-changed only
	At             time.Time
}

// Publisher accepts events without blocking the caller.
type Publisher interface {
	Publish(Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Event)

// Publish calls f(e).
func (f PublisherFunc) Publish(e Event) { f(e) }

// Sink consumes events delivered by a Bus.
type Sink interface {
	Handle(ctx context.Context, e Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, e Event) error

// Handle calls f(ctx, e).
func (f SinkFunc) Handle(ctx context.Context, e Event) error { return f(ctx, e) }
