package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/relaylabs/chatrelay/internal/hub"
	"github.com/relaylabs/chatrelay/internal/metrics"
	"github.com/relaylabs/chatrelay/internal/models"
)

// defaultWSUser is the fallback identity for duplex connections that supply
// no user parameter.
const defaultWSUser = "john"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsInbound is a client-sent JSON payload. Anything that does not parse is
// treated as a message whose entire body is the text.
type wsInbound struct {
	Text string `json:"text"`
}

// ServeWS handles the duplex ingress: upgrade, register under a room, replay
// recent history, then accept messages until the connection closes.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		user = defaultWSUser
	}
	room := models.NormalizeRoom(r.URL.Query().Get("room"))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(conn, user, room)
	h.hub.Register(client)
	go client.WritePump()

	h.logger.Info().
		Str("client", client.ID).
		Str("user", user).
		Str("room", room).
		Msg("websocket connected")

	h.sendHistory(r, client)
	h.readLoop(r, client)
}

// sendHistory replays the most recent persisted messages for the client's
// room, oldest first.
func (h *Handler) sendHistory(r *http.Request, c *hub.Client) {
	history, err := h.store.Recent(r.Context(), c.Room, h.historyLimit)
	if err != nil {
		h.logger.Error().Err(err).Str("room", c.Room).Msg("history query failed")
		return
	}
	for _, msg := range history {
		if c.TrySend(models.Envelope{Type: models.EventHistory, Data: msg}) {
			metrics.HistoryMessagesSent.Inc()
		}
	}
}

// readLoop consumes client payloads until disconnect, feeding each one into
// the same persist-then-enqueue path as request ingress.
func (h *Handler) readLoop(r *http.Request, c *hub.Client) {
	defer func() {
		h.hub.Unregister(c)
		h.logger.Info().Str("client", c.ID).Str("room", c.Room).Msg("websocket disconnected")
	}()

	for {
		payload, err := c.ReadText()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Str("client", c.ID).Msg("websocket read failed")
			}
			return
		}

		text := payload
		var in wsInbound
		if err := json.Unmarshal([]byte(payload), &in); err == nil {
			// Well-formed JSON without text carries nothing to relay.
			if in.Text == "" {
				continue
			}
			text = in.Text
		}
		if text == "" {
			continue
		}

		if _, err := h.publish(r.Context(), c.User, c.Room, text); err != nil {
			// Storage failure surfaces as this connection failing;
			// other clients and rooms are unaffected.
			h.logger.Error().Err(err).Str("client", c.ID).Msg("failed to store message")
			return
		}
		metrics.MessagesPublished.WithLabelValues("ws").Inc()
	}
}
