// Package agent implements the automated responder: a single sequential
// consumer of the relay's inbound queue that applies fixed keyword rules and
// may publish a reply to the outbound queue. The rule set is a placeholder
// for a pluggable agent.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/relaylabs/chatrelay/internal/metrics"
	"github.com/relaylabs/chatrelay/internal/models"
	"github.com/relaylabs/chatrelay/internal/relay"
)

// rule is one entry in the ordered predicate chain. match receives the
// case-folded text; reply receives the original user and text.
type rule struct {
	name  string
	match func(text string) bool
	reply func(user, text string) string
}

// Agent is the rule-based responder.
type Agent struct {
	name   string
	relay  *relay.Relay
	logger zerolog.Logger
	clock  func() time.Time
	rules  []rule
}

// New creates a responder with the given identity.
func New(name string, r *relay.Relay, logger zerolog.Logger) *Agent {
	a := &Agent{
		name:   name,
		relay:  r,
		logger: logger.With().Str("component", "agent").Str("agent", name).Logger(),
		clock:  time.Now,
	}
	a.rules = []rule{
		{
			name: "greeting",
			match: func(text string) bool {
				return containsAny(text, "hello", "hi", "hey")
			},
			reply: func(user, text string) string {
				return fmt.Sprintf("Hello %s! I'm a mock AI agent. You said: %s", user, text)
			},
		},
		{
			name: "repeat",
			match: func(text string) bool {
				return strings.HasPrefix(text, "repeat:")
			},
			reply: func(user, text string) string {
				return "Repeating: " + strings.TrimSpace(text[len("repeat:"):])
			},
		},
		{
			name: "time",
			match: func(text string) bool {
				return strings.Contains(text, "time")
			},
			reply: func(user, text string) string {
				return "The time is " + a.clock().Format("15:04:05")
			},
		},
		{
			name: "question",
			match: func(text string) bool {
				return strings.Contains(text, "?")
			},
			reply: func(user, text string) string {
				return "That's an interesting question! (I am a mock AI agent.)"
			},
		},
		{
			name: "farewell",
			match: func(text string) bool {
				return strings.Contains(text, "bye")
			},
			reply: func(user, text string) string {
				return "Goodbye! Happy to talk with you! (I am a mock AI agent.)"
			},
		},
	}
	return a
}

// Run consumes the inbound queue until the context is canceled or the relay
// is closed. A failure on a single event is logged and does not stop the
// loop.
func (a *Agent) Run(ctx context.Context) {
	a.logger.Info().Msg("responder started")
	for {
		ev, err := a.relay.Inbound.Dequeue(ctx)
		if err != nil {
			if !errors.Is(err, relay.ErrClosed) && !errors.Is(err, context.Canceled) {
				a.logger.Error().Err(err).Msg("inbound dequeue failed")
			}
			a.logger.Info().Msg("responder stopped")
			return
		}
		a.process(ev)
		a.relay.Inbound.Done()
	}
}

// process evaluates one event, shielding the read loop from panics in rule
// code.
func (a *Agent) process(ev models.Event) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().
				Str("event_id", ev.ID).
				Interface("panic", r).
				Msg("event processing panicked")
		}
	}()

	resp, ok := a.Respond(ev)
	if !ok {
		return
	}
	a.relay.Outbound.Enqueue(resp)
	a.logger.Debug().
		Str("event_id", ev.ID).
		Str("response_id", resp.ID).
		Str("room", resp.Data.Room).
		Msg("response published")
}

// Respond applies the rules to a single event. Rules are evaluated in fixed
// precedence, first match wins, and at most one response is produced. Events
// of any type other than "message" are ignored.
func (a *Agent) Respond(ev models.Event) (models.Event, bool) {
	if ev.Type != models.EventMessage {
		return models.Event{}, false
	}

	text := strings.ToLower(ev.Data.Text)
	room := models.NormalizeRoom(ev.Data.Room)
	user := models.NormalizeUser(ev.Data.User)

	for _, r := range a.rules {
		if !r.match(text) {
			continue
		}
		metrics.ResponsesGenerated.WithLabelValues(r.name).Inc()
		return models.Event{
			ID:   ulid.Make().String(),
			Type: models.EventMessage,
			Data: models.ChatPayload{
				User: a.name,
				Room: room,
				Text: r.reply(user, ev.Data.Text),
				Role: models.RoleAI,
			},
		}, true
	}
	return models.Event{}, false
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
