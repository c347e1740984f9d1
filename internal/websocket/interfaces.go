package websocket

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"chartlens/pkg/contracts/domain"
)

// Connection is the part of *websocket.Conn a session uses, so tests can
// substitute a fake.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// Renderer computes the dashboard for a filter
type Renderer interface {
	Dashboard(ctx context.Context, f domain.Filter) (domain.DashboardView, error)
}

// gorillaConn adapts *websocket.Conn to Connection
type gorillaConn struct {
	*websocket.Conn
}

func (c gorillaConn) RemoteAddr() string {
	return c.Conn.RemoteAddr().String()
}
