package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/relaylabs/chatrelay/internal/models"
)

// OnlineUsersResponse lists the users currently connected to a room.
type OnlineUsersResponse struct {
	Room  string   `json:"room"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// OnlineUsers reports per-room presence. Only available when Redis is
// configured.
func (h *Handler) OnlineUsers(w http.ResponseWriter, r *http.Request) {
	if h.presence == nil {
		h.Error(w, http.StatusServiceUnavailable, "presence tracking not configured")
		return
	}

	room := models.NormalizeRoom(chi.URLParam(r, "room"))

	users, err := h.presence.Online(r.Context(), room)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to fetch online users")
		return
	}
	if users == nil {
		users = []string{}
	}

	h.JSON(w, http.StatusOK, OnlineUsersResponse{
		Room:  room,
		Count: len(users),
		Users: users,
	})
}
