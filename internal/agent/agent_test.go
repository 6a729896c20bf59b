package agent

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/relaylabs/chatrelay/internal/models"
	"github.com/relaylabs/chatrelay/internal/relay"
)

func newTestAgent(t *testing.T) (*Agent, *relay.Relay) {
	t.Helper()
	r := relay.New()
	a := New("mock-ai", r, zerolog.Nop())
	return a, r
}

func messageEvent(user, room, text string) models.Event {
	return models.Event{
		Type: models.EventMessage,
		Data: models.ChatPayload{User: user, Room: room, Text: text},
	}
}

func TestIgnoresNonMessageEvents(t *testing.T) {
	a, _ := newTestAgent(t)

	for _, typ := range []string{"history", "typing", "", "presence"} {
		ev := models.Event{Type: typ, Data: models.ChatPayload{Text: "hello"}}
		if _, ok := a.Respond(ev); ok {
			t.Fatalf("expected no response for type %q", typ)
		}
	}
}

func TestGreetingRule(t *testing.T) {
	a, _ := newTestAgent(t)

	resp, ok := a.Respond(messageEvent("john", "default", "hello there"))
	if !ok {
		t.Fatal("expected a response")
	}
	want := "Hello john! I'm a mock AI agent. You said: hello there"
	if resp.Data.Text != want {
		t.Fatalf("expected %q, got %q", want, resp.Data.Text)
	}
	if resp.Data.Role != models.RoleAI {
		t.Fatalf("expected role %q, got %q", models.RoleAI, resp.Data.Role)
	}
	if resp.Data.User != "mock-ai" {
		t.Fatalf("expected responder identity, got %q", resp.Data.User)
	}
	if resp.Data.Room != "default" {
		t.Fatalf("expected original room, got %q", resp.Data.Room)
	}
}

func TestGreetingCaseInsensitive(t *testing.T) {
	a, _ := newTestAgent(t)

	resp, ok := a.Respond(messageEvent("ana", "lobby", "HEY everyone"))
	if !ok {
		t.Fatal("expected a response")
	}
	// Original casing is echoed back.
	want := "Hello ana! I'm a mock AI agent. You said: HEY everyone"
	if resp.Data.Text != want {
		t.Fatalf("expected %q, got %q", want, resp.Data.Text)
	}
}

func TestRulePrecedenceIsExclusive(t *testing.T) {
	a, _ := newTestAgent(t)

	// Matches greeting, time, and question; only greeting may fire.
	resp, ok := a.Respond(messageEvent("john", "default", "hi, what time is it?"))
	if !ok {
		t.Fatal("expected a response")
	}
	want := "Hello john! I'm a mock AI agent. You said: hi, what time is it?"
	if resp.Data.Text != want {
		t.Fatalf("greeting should win precedence, got %q", resp.Data.Text)
	}
}

func TestRepeatRule(t *testing.T) {
	a, _ := newTestAgent(t)

	tests := []struct {
		text string
		want string
	}{
		{"repeat: something important", "Repeating: something important"},
		{"repeat:no space", "Repeating: no space"},
		{"repeat:   padded   ", "Repeating: padded"},
		{"repeat:", "Repeating: "},
		{"Repeat: mixed case prefix", "Repeating: mixed case prefix"},
	}
	for _, tt := range tests {
		resp, ok := a.Respond(messageEvent("u", "r", tt.text))
		if !ok {
			t.Fatalf("expected a response for %q", tt.text)
		}
		if resp.Data.Text != tt.want {
			t.Fatalf("for %q expected %q, got %q", tt.text, tt.want, resp.Data.Text)
		}
	}
}

func TestTimeRule(t *testing.T) {
	a, _ := newTestAgent(t)
	a.clock = func() time.Time {
		return time.Date(2025, 3, 9, 14, 5, 7, 0, time.UTC)
	}

	resp, ok := a.Respond(messageEvent("u", "r", "what is the current time please"))
	if !ok {
		t.Fatal("expected a response")
	}
	if resp.Data.Text != "The time is 14:05:07" {
		t.Fatalf("expected formatted clock time, got %q", resp.Data.Text)
	}
}

func TestQuestionRule(t *testing.T) {
	a, _ := newTestAgent(t)

	resp, ok := a.Respond(messageEvent("u", "r", "can seagulls swim?"))
	if !ok {
		t.Fatal("expected a response")
	}
	if resp.Data.Text != "That's an interesting question! (I am a mock AI agent.)" {
		t.Fatalf("unexpected reply %q", resp.Data.Text)
	}
}

func TestFarewellRule(t *testing.T) {
	a, _ := newTestAgent(t)

	resp, ok := a.Respond(messageEvent("u", "r", "ok bye now"))
	if !ok {
		t.Fatal("expected a response")
	}
	if resp.Data.Text != "Goodbye! Happy to talk with you! (I am a mock AI agent.)" {
		t.Fatalf("unexpected reply %q", resp.Data.Text)
	}
}

func TestNoMatchNoResponse(t *testing.T) {
	a, _ := newTestAgent(t)

	if _, ok := a.Respond(messageEvent("u", "r", "just a plain statement")); ok {
		t.Fatal("expected no response for unmatched text")
	}
}

func TestDefaultsForMissingRoomAndUser(t *testing.T) {
	a, _ := newTestAgent(t)

	resp, ok := a.Respond(messageEvent("", "", "hello"))
	if !ok {
		t.Fatal("expected a response")
	}
	if resp.Data.Room != models.DefaultRoom {
		t.Fatalf("expected default room, got %q", resp.Data.Room)
	}
	want := "Hello anonymous! I'm a mock AI agent. You said: hello"
	if resp.Data.Text != want {
		t.Fatalf("expected %q, got %q", want, resp.Data.Text)
	}
}

func TestRunPublishesToOutbound(t *testing.T) {
	a, r := newTestAgent(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	r.Inbound.Enqueue(messageEvent("john", "default", "hello there"))

	dequeueCtx, dequeueCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer dequeueCancel()
	resp, err := r.Outbound.Dequeue(dequeueCtx)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Type != models.EventMessage {
		t.Fatalf("expected message event, got %q", resp.Type)
	}
	if resp.Data.Role != models.RoleAI {
		t.Fatalf("expected ai role, got %q", resp.Data.Role)
	}
}

func TestRunSurvivesUnmatchedAndKeepsOrder(t *testing.T) {
	a, r := newTestAgent(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	r.Inbound.Enqueue(messageEvent("u", "r", "a plain statement"))
	r.Inbound.Enqueue(messageEvent("u", "r", "hello first"))
	r.Inbound.Enqueue(messageEvent("u", "r", "bye second"))

	dequeueCtx, dequeueCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer dequeueCancel()

	first, err := r.Outbound.Dequeue(dequeueCtx)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Outbound.Dequeue(dequeueCtx)
	if err != nil {
		t.Fatal(err)
	}

	if first.Data.Text != "Hello u! I'm a mock AI agent. You said: hello first" {
		t.Fatalf("unexpected first response %q", first.Data.Text)
	}
	if second.Data.Text != "Goodbye! Happy to talk with you! (I am a mock AI agent.)" {
		t.Fatalf("unexpected second response %q", second.Data.Text)
	}
}
