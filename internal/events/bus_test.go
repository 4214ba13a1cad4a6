package events

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Handle(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func TestBus_DeliversInOrder(t *testing.T) {
	bus := NewBus(nil, 8)
	rec := &recorder{}
	bus.Subscribe(rec)

	bus.Publish(Event{Kind: HabitAdded, HabitName: "Lectura"})
	bus.Publish(Event{Kind: HabitExpanded, DurationChange: 15})
	bus.Publish(Event{Kind: HabitCompleted})
	bus.Close()

	got := rec.kinds()
	want := []Kind{HabitAdded, HabitExpanded, HabitCompleted}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
	if rec.events[0].At.IsZero() {
		t.Error("Publish should stamp At")
	}
}

func TestBus_SinkFailuresDoNotStopDelivery(t *testing.T) {
	bus := NewBus(nil, 8)
	bus.Subscribe(SinkFunc(func(context.Context, Event) error { panic("boom") }))
	bus.Subscribe(SinkFunc(func(context.Context, Event) error { return errors.New("offline") }))
	rec := &recorder{}
	bus.Subscribe(rec)

	bus.Publish(Event{Kind: HabitRemoved})
	bus.Close()

	if len(rec.kinds()) != 1 {
		t.Fatalf("recorder got %d events, want 1", len(rec.kinds()))
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil, 8)
	rec := &recorder{}
	unsubscribe := bus.Subscribe(rec)
	unsubscribe()

	bus.Publish(Event{Kind: HabitAdded})
	bus.Close()

	if len(rec.kinds()) != 0 {
		t.Errorf("unsubscribed sink received %v", rec.kinds())
	}
}

func TestBus_PublishAfterCloseIsDropped(t *testing.T) {
	bus := NewBus(nil, 1)
	rec := &recorder{}
	bus.Subscribe(rec)
	bus.Close()
	bus.Close()

	bus.Publish(Event{Kind: HabitAdded})

	if len(rec.kinds()) != 0 {
		t.Errorf("closed bus delivered %v", rec.kinds())
	}
}

func TestPublisherFunc(t *testing.T) {
	var got Event
	var p Publisher = PublisherFunc(func(e Event) { got = e })
	p.Publish(Event{Kind: ConfigChanged, StartHour: 6, EndHour: 22})
	if got.Kind != ConfigChanged || got.EndHour != 22 {
		t.Errorf("got %+v", got)
	}
}
