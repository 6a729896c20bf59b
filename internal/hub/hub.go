// Package hub maintains the in-memory room membership: which live WebSocket
// connections subscribe to which room. State is process-lifetime only;
// nothing here is persisted.
package hub

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/relaylabs/chatrelay/internal/metrics"
	"github.com/relaylabs/chatrelay/internal/models"
	"github.com/relaylabs/chatrelay/internal/store"
)

// Hub maps room identifiers to their registered clients. Register and
// Unregister are safe for concurrent use from connection goroutines.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}

	presence *store.RedisStore // optional, may be nil
	logger   zerolog.Logger
}

// New creates an empty hub. presence may be nil; when set, online users are
// mirrored to Redis per room.
func New(presence *store.RedisStore, logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:    make(map[string]map[*Client]struct{}),
		presence: presence,
		logger:   logger.With().Str("component", "hub").Logger(),
	}
}

// Register adds a client to its room's membership.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	clients, ok := h.rooms[c.Room]
	if !ok {
		clients = make(map[*Client]struct{})
		h.rooms[c.Room] = clients
	}
	clients[c] = struct{}{}
	h.mu.Unlock()

	metrics.ActiveConnections.Inc()

	if h.presence != nil {
		if err := h.presence.AddOnline(context.Background(), c.Room, c.User); err != nil {
			h.logger.Warn().Err(err).Str("room", c.Room).Msg("presence add failed")
		}
	}
}

// Unregister removes a client from its room and closes it. Removing a client
// that was never registered is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	clients, ok := h.rooms[c.Room]
	if ok {
		if _, member := clients[c]; !member {
			ok = false
		}
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, c.Room)
		}
	}
	// The same user may hold other connections to the room; only drop
	// presence on the last one.
	lastForUser := true
	for other := range h.rooms[c.Room] {
		if other.User == c.User {
			lastForUser = false
			break
		}
	}
	h.mu.Unlock()

	c.Close()
	if !ok {
		return
	}

	metrics.ActiveConnections.Dec()

	if h.presence != nil && lastForUser {
		if err := h.presence.RemoveOnline(context.Background(), c.Room, c.User); err != nil {
			h.logger.Warn().Err(err).Str("room", c.Room).Msg("presence remove failed")
		}
	}
}

// Snapshot returns the clients registered for a room at this instant.
func (h *Hub) Snapshot(room string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		clients = append(clients, c)
	}
	return clients
}

// Broadcast delivers an envelope to every client registered for the room at
// call time. A connection that cannot accept the envelope (closed, or its
// buffer is full) is skipped; it never blocks delivery to the rest.
// Broadcasting to an empty room is a no-op.
func (h *Hub) Broadcast(room string, env models.Envelope) {
	for _, c := range h.Snapshot(room) {
		if c.TrySend(env) {
			metrics.BroadcastDeliveries.Inc()
		} else {
			metrics.BroadcastFailures.Inc()
			h.logger.Debug().
				Str("room", room).
				Str("client", c.ID).
				Msg("dropped delivery to unavailable connection")
		}
	}
}

// Online returns the users currently online in a room, or nil when presence
// tracking is disabled.
func (h *Hub) Online(ctx context.Context, room string) ([]string, error) {
	if h.presence == nil {
		return nil, nil
	}
	return h.presence.Online(ctx, room)
}

// HasPresence reports whether presence tracking is configured.
func (h *Hub) HasPresence() bool {
	return h.presence != nil
}
