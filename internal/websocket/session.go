package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	apperrors "chartlens/internal/errors"
	"chartlens/internal/infrastructure"
	"chartlens/internal/validation"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Outbound frames buffered per session
	sendBuffer = 16

	// instance reported in error problems
	problemInstance = "/ws"
)

// Settings bound a session's connection
type Settings struct {
	MaxMessageSize int64
	PingPeriod     time.Duration
	PongWait       time.Duration
}

// Session is one live dashboard connection. Each session owns its filter;
// nothing is shared between sessions except the read-only dataset.
type Session struct {
	id       string
	conn     Connection
	renderer Renderer
	filters  *validation.FilterValidator
	settings Settings
	logger   *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	connectedAt time.Time
	received    int64
	sent        int64
}

// NewSession creates a session over conn
func NewSession(conn Connection, renderer Renderer, filters *validation.FilterValidator, settings Settings, logger *slog.Logger) *Session {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	id := uuid.New().String()
	return &Session{
		id:       id,
		conn:     conn,
		renderer: renderer,
		filters:  filters,
		settings: settings,
		logger: logger.With(
			slog.String("component", "websocket.session"),
			slog.String("session_id", id),
		),
		send:        make(chan []byte, sendBuffer),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// ReadPump reads client messages and answers each filter with a rendered
// dashboard. It returns when the connection fails or ctx is cancelled, and
// then closes the outbound queue so WritePump can finish.
func (s *Session) ReadPump(ctx context.Context) {
	ctx = infrastructure.WithTraceID(ctx, s.id)
	defer func() {
		close(s.send)
		s.logger.InfoContext(ctx, "WebSocket session closed",
			slog.Duration("connection_duration", time.Since(s.connectedAt)),
			slog.Int64("messages_received", s.received))
	}()

	if s.settings.MaxMessageSize > 0 {
		s.conn.SetReadLimit(s.settings.MaxMessageSize)
	}
	s.extendReadDeadline()
	s.conn.SetPongHandler(func(string) error {
		s.extendReadDeadline()
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				s.logger.WarnContext(ctx, "Unexpected WebSocket close", slog.String("error", err.Error()))
			}
			return
		}
		s.received++

		reply := s.handle(ctx, raw)
		if reply == nil {
			continue
		}
		select {
		case s.send <- reply:
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) extendReadDeadline() {
	if s.settings.PongWait > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.settings.PongWait))
	}
}

// handle answers one client message. Heartbeats get no reply.
func (s *Session) handle(ctx context.Context, raw []byte) []byte {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return s.errorFrame(ctx, apperrors.InvalidRequestWithError(err))
	}

	switch in.Type {
	case TypeHeartbeat:
		s.logger.DebugContext(ctx, "Heartbeat received")
		return nil
	case TypeFilter:
		var msg validation.FilterMessage
		if in.Filter != nil {
			msg = *in.Filter
		}
		f, err := s.filters.FromMessage(msg)
		if err != nil {
			return s.errorFrame(ctx, err)
		}
		view, err := s.renderer.Dashboard(ctx, f)
		if err != nil {
			return s.errorFrame(ctx, err)
		}
		return s.frame(ctx, Outbound{Type: TypeDashboard, Data: view})
	default:
		return s.errorFrame(ctx, apperrors.ErrValidation("type", fmt.Sprintf("unknown message type %q", in.Type)))
	}
}

func (s *Session) errorFrame(ctx context.Context, err error) []byte {
	problem := apperrors.ToProblem(err, problemInstance)
	s.logger.DebugContext(ctx, "Session request rejected",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status))
	return s.frame(ctx, Outbound{Type: TypeError, Error: problem})
}

func (s *Session) frame(ctx context.Context, msg Outbound) []byte {
	msg.SessionID = s.id
	data, err := encode(msg)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode message", slog.String("error", err.Error()))
		data, _ = encode(Outbound{
			Type:      TypeError,
			SessionID: s.id,
			Error:     apperrors.ToProblem(errors.New("encode failed"), problemInstance),
		})
	}
	return data
}

// WritePump writes queued frames and keep-alive pings until the queue is
// closed or a write fails.
func (s *Session) WritePump() {
	period := s.settings.PingPeriod
	if period <= 0 {
		period = time.Hour
	}
	ticker := time.NewTicker(period)
	defer func() {
		ticker.Stop()
		s.Close()
		s.logger.Debug("WebSocket write pump stopped", slog.Int64("messages_sent", s.sent))
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Debug("Error writing message to WebSocket", slog.String("error", err.Error()))
				return
			}
			s.sent++
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Debug("Failed to send ping message", slog.String("error", err.Error()))
				return
			}
		}
	}
}

// Close closes the connection once. A blocked ReadPump then returns.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
