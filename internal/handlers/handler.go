package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/relaylabs/chatrelay/internal/hub"
	"github.com/relaylabs/chatrelay/internal/models"
	"github.com/relaylabs/chatrelay/internal/relay"
	"github.com/relaylabs/chatrelay/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store        store.MessageStore
	relay        *relay.Relay
	hub          *hub.Hub
	presence     *store.RedisStore
	historyLimit int
	logger       zerolog.Logger
}

// NewHandler creates a new Handler with the given dependencies. presence may
// be nil.
func NewHandler(st store.MessageStore, r *relay.Relay, h *hub.Hub, presence *store.RedisStore, historyLimit int, logger zerolog.Logger) *Handler {
	return &Handler{
		store:        st,
		relay:        r,
		hub:          h,
		presence:     presence,
		historyLimit: historyLimit,
		logger:       logger.With().Str("component", "gateway").Logger(),
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// publish persists a user message and then enqueues it for the responder.
// Persist happens before publish so history queries reflect everything that
// has been enqueued. Both ingress paths funnel through here.
func (h *Handler) publish(ctx context.Context, user, room, text string) (*models.Message, error) {
	msg, err := h.store.Append(ctx, user, room, text, models.RoleUser)
	if err != nil {
		return nil, err
	}

	ev := models.Event{
		ID:   ulid.Make().String(),
		Type: models.EventMessage,
		Data: models.ChatPayload{
			User: msg.User,
			Room: msg.Room,
			Text: msg.Text,
		},
	}
	// Live subscribers see the user message before the responder can react
	// to it; automated replies follow via the broadcaster.
	h.hub.Broadcast(msg.Room, models.Envelope{Type: models.EventMessage, Data: msg})

	h.relay.Inbound.Enqueue(ev)

	h.logger.Debug().
		Str("event_id", ev.ID).
		Int64("message_id", msg.ID).
		Str("room", msg.Room).
		Msg("message published")
	return msg, nil
}
