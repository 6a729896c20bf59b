package models

// Event types carried by the relay and pushed over WebSocket.
const (
	EventMessage = "message"
	EventHistory = "history"
)

// ChatPayload is the data carried by a chat event: who said what, where.
// Role is empty for client-originated events and set to RoleAI by the
// responder.
type ChatPayload struct {
	User string `json:"user"`
	Room string `json:"room"`
	Text string `json:"text"`
	Role string `json:"role,omitempty"`
}

// Event is the transient envelope that flows through the relay queues. It is
// never persisted; the broadcaster derives a Message from it. ID is a ULID
// used only for log correlation.
type Event struct {
	ID   string      `json:"-"`
	Type string      `json:"type"`
	Data ChatPayload `json:"data"`
}

// Envelope is the wire format pushed to WebSocket clients. Data is a Message
// for history replay and broadcast delivery.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
