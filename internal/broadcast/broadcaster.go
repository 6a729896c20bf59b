// Package broadcast implements the outbound consumer: it drains the relay's
// outbound queue, persists each event, and fans it out to the event's room.
package broadcast

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/relaylabs/chatrelay/internal/models"
	"github.com/relaylabs/chatrelay/internal/relay"
	"github.com/relaylabs/chatrelay/internal/store"
)

// Registry is the subscriber side of the broadcaster: deliver an envelope to
// every live connection in a room. Satisfied by *hub.Hub.
type Registry interface {
	Broadcast(room string, env models.Envelope)
}

// Broadcaster is the single sequential reader of the outbound queue.
type Broadcaster struct {
	store  store.MessageStore
	reg    Registry
	relay  *relay.Relay
	logger zerolog.Logger
}

// New creates a broadcaster.
func New(st store.MessageStore, reg Registry, r *relay.Relay, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		store:  st,
		reg:    reg,
		relay:  r,
		logger: logger.With().Str("component", "broadcaster").Logger(),
	}
}

// Run consumes the outbound queue until the context is canceled or the relay
// is closed. Failures on a single event are logged and the loop continues;
// there is no retry.
func (b *Broadcaster) Run(ctx context.Context) {
	b.logger.Info().Msg("broadcaster started")
	for {
		ev, err := b.relay.Outbound.Dequeue(ctx)
		if err != nil {
			if !errors.Is(err, relay.ErrClosed) && !errors.Is(err, context.Canceled) {
				b.logger.Error().Err(err).Msg("outbound dequeue failed")
			}
			b.logger.Info().Msg("broadcaster stopped")
			return
		}
		b.deliver(ctx, ev)
		b.relay.Outbound.Done()
	}
}

// deliver persists one event and pushes it to the room's connections.
// Persistence happens first: history queries reflect everything delivered.
func (b *Broadcaster) deliver(ctx context.Context, ev models.Event) {
	user := ev.Data.User
	if user == "" {
		user = models.RoleAI
	}
	role := ev.Data.Role
	if role == "" {
		role = models.RoleAI
	}
	room := models.NormalizeRoom(ev.Data.Room)

	msg, err := b.store.Append(ctx, user, room, ev.Data.Text, role)
	if err != nil {
		// Best effort: the event is dropped from delivery, the loop
		// goes on.
		b.logger.Error().Err(err).
			Str("event_id", ev.ID).
			Str("room", room).
			Msg("failed to persist outbound event")
		return
	}

	typ := ev.Type
	if typ == "" {
		typ = models.EventMessage
	}
	b.reg.Broadcast(room, models.Envelope{Type: typ, Data: msg})
}
