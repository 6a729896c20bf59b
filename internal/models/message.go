package models

import "time"

// Message roles.
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// Defaults applied at the ingress boundary. Every persisted message has a
// non-empty user and room.
const (
	DefaultRoom   = "default"
	AnonymousUser = "anonymous"
)

// Message represents a persisted chat message. The store assigns ID and
// Timestamp; messages are immutable once written.
type Message struct {
	ID        int64     `json:"id"`
	User      string    `json:"user"`
	Room      string    `json:"room"`
	Text      string    `json:"text"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"ts"`
}

// NormalizeRoom returns the room identifier to use for an ingress value,
// falling back to DefaultRoom when empty.
func NormalizeRoom(room string) string {
	if room == "" {
		return DefaultRoom
	}
	return room
}

// NormalizeUser falls back to AnonymousUser when empty.
func NormalizeUser(user string) string {
	if user == "" {
		return AnonymousUser
	}
	return user
}

// NormalizeRole defaults to RoleUser unless the role is explicitly RoleAI.
func NormalizeRole(role string) string {
	if role == RoleAI {
		return RoleAI
	}
	return RoleUser
}
