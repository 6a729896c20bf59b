package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/relaylabs/chatrelay/internal/metrics"
	"github.com/relaylabs/chatrelay/internal/models"
)

// PostMessageRequest represents the request-ingress message body.
type PostMessageRequest struct {
	User      string `json:"user"`
	Room      string `json:"room"`
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}

// PostMessage handles request-ingress message posting. The acknowledgement
// is immediate; any generated reply arrives asynchronously over the duplex
// path.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.User == "" {
		h.Error(w, http.StatusBadRequest, "user is required")
		return
	}
	if req.Text == "" {
		h.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	room := models.NormalizeRoom(req.Room)

	if _, err := h.publish(r.Context(), req.User, room, req.Text); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	metrics.MessagesPublished.WithLabelValues("http").Inc()
	h.JSON(w, http.StatusOK, map[string]string{"status": "published"})
}
