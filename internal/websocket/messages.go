package websocket

import (
	"encoding/json"
	"time"

	apperrors "chartlens/internal/errors"
	"chartlens/internal/validation"
)

// Message types
const (
	TypeFilter    = "filter"
	TypeHeartbeat = "heartbeat"
	TypeDashboard = "dashboard"
	TypeError     = "error"
)

// Inbound is a client message
type Inbound struct {
	Type   string                    `json:"type"`
	Filter *validation.FilterMessage `json:"filter,omitempty"`
}

// Outbound is a server message. Exactly one of Data and Error is set.
type Outbound struct {
	Type      string                    `json:"type"`
	SessionID string                    `json:"session_id"`
	Data      any                       `json:"data,omitempty"`
	Error     *apperrors.ProblemDetails `json:"error,omitempty"`
	Timestamp time.Time                 `json:"timestamp"`
}

func encode(msg Outbound) ([]byte, error) {
	msg.Timestamp = time.Now().UTC()
	return json.Marshal(msg)
}
