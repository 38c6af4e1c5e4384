package realtime

import "kanban_board/internal/domain"

const (
	// server -> client
	MsgReady = "ready"
	MsgAuth  = "auth"
	MsgPong  = "pong"

	// client -> server
	MsgPing = "ping"
)

// Message is the frame written to realtime subscribers.
type Message struct {
	Type   string           `json:"type"`
	Event  domain.AuthEvent `json:"event,omitempty"`
	UserID string           `json:"user_id,omitempty"`
}
