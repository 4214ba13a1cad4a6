package coach

import (
	"context"
	"errors"
	"testing"

	"github.com/javiermolinar/lvlup/internal/events"
)

type fakeClient struct {
	reply    string
	err      error
	messages []Message
}

func (f *fakeClient) Chat(_ context.Context, messages []Message) (string, error) {
	f.messages = messages
	return f.reply, f.err
}

type failingOutbox struct{}

func (failingOutbox) Deliver(context.Context, string) error { return errors.New("offline") }

var completed = events.Event{Kind: events.HabitCompleted, HabitName: "Workout", HabitIcon: "💪", TotalDuration: 30}

func TestCoach_UsesModelReply(t *testing.T) {
	client := &fakeClient{reply: "Amazing! You crushed it. Now rest. Then more."}
	out := NewChanOutbox(4)
	c := New(client, []Outbox{out}, WithLanguage("Spanish"))

	if err := c.Handle(context.Background(), completed); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if got := <-out.Messages(); got != "Amazing! You crushed it." {
		t.Errorf("message = %q", got)
	}
	if len(client.messages) != 2 || client.messages[0].Role != "system" || client.messages[1].Content != PromptFor(completed) {
		t.Errorf("messages sent = %+v", client.messages)
	}
	if client.messages[0].Content != SystemPrompt("Spanish") {
		t.Error("system prompt should use the configured language")
	}
}

func TestCoach_Fallback(t *testing.T) {
	tests := []struct {
		name   string
		client Client
	}{
		{name: "no client", client: nil},
		{name: "model error", client: &fakeClient{err: errors.New("boom")}},
		{name: "empty reply", client: &fakeClient{reply: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.client, nil)
			if got := c.Message(context.Background(), completed); got != Fallback(completed) {
				t.Errorf("Message = %q, want fallback", got)
			}
		})
	}
}

func TestCoach_OutboxErrorsDoNotStopDelivery(t *testing.T) {
	out := NewChanOutbox(1)
	c := New(nil, []Outbox{failingOutbox{}, out})

	err := c.Handle(context.Background(), completed)
	if err == nil {
		t.Fatal("expected the failing outbox error")
	}
	if len(out.Messages()) != 1 {
		t.Error("second outbox should still receive the message")
	}
}

func TestChanOutbox_Full(t *testing.T) {
	out := NewChanOutbox(1)
	ctx := context.Background()
	if err := out.Deliver(ctx, "one"); err != nil {
		t.Fatal(err)
	}
	if err := out.Deliver(ctx, "two"); !errors.Is(err, ErrOutboxFull) {
		t.Errorf("error = %v, want ErrOutboxFull", err)
	}
}

func TestCoach_ImplementsSink(t *testing.T) {
	var _ events.Sink = New(nil, nil)
}
