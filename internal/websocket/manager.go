package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/render"
	"github.com/gorilla/websocket"

	"chartlens/internal/config"
	apperrors "chartlens/internal/errors"
	"chartlens/internal/infrastructure"
	"chartlens/internal/validation"
)

// Manager upgrades HTTP requests to live dashboard sessions and tracks
// them until shutdown.
type Manager struct {
	renderer Renderer
	filters  *validation.FilterValidator
	settings Settings
	origins  []string
	metrics  *infrastructure.DashboardMetrics
	logger   *slog.Logger
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// NewManager creates a session manager. allowedOrigins lists the browser
// origins permitted besides the server's own host.
func NewManager(renderer Renderer, filters *validation.FilterValidator, cfg config.WebSocketConfig,
	allowedOrigins []string, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if filters == nil {
		filters = validation.NewFilterValidator()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		renderer: renderer,
		filters:  filters,
		settings: Settings{
			MaxMessageSize: cfg.MaxMessageSize,
			PingPeriod:     cfg.PingPeriod,
			PongWait:       cfg.PongWait,
		},
		origins:  allowedOrigins,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "websocket.manager")),
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     m.checkOrigin,
		Error:           m.upgradeError,
	}
	return m
}

// ServeHTTP upgrades the request and starts the session pumps
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgradeError already answered the request
		m.logger.WarnContext(r.Context(), "WebSocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	s := NewSession(gorillaConn{conn}, m.renderer, m.filters, m.settings, m.logger)
	if !m.start(s) {
		s.Close()
		return
	}

	m.logger.InfoContext(r.Context(), "WebSocket session opened",
		slog.String("session_id", s.ID()),
		slog.String("remote_addr", s.conn.RemoteAddr()))
}

// ActiveSessions returns the number of open sessions
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown closes every session and waits for their pumps to stop
func (m *Manager) Shutdown(ctx context.Context) error {
	m.cancel()

	m.mu.Lock()
	for _, s := range m.sessions {
		s.Close()
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("WebSocket sessions closed")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// start registers s and runs its pumps. It refuses sessions once Shutdown
// has begun; wg.Add happens under mu so it can never follow wg.Wait.
func (m *Manager) start(s *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx.Err() != nil {
		return false
	}
	m.sessions[s.ID()] = s
	if m.metrics != nil {
		m.metrics.LiveSessions.Add(m.ctx, 1)
	}

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		s.WritePump()
	}()
	go func() {
		defer m.wg.Done()
		defer m.remove(s)
		s.ReadPump(m.ctx)
	}()
	return true
}

func (m *Manager) remove(s *Session) {
	s.Close()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID()]; !ok {
		return
	}
	delete(m.sessions, s.ID())
	if m.metrics != nil {
		m.metrics.LiveSessions.Add(context.Background(), -1)
	}
}

// checkOrigin accepts requests without an Origin header, same-host origins
// and the configured origins.
func (m *Manager) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range m.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	m.logger.WarnContext(r.Context(), "WebSocket origin rejected", slog.String("origin", origin))
	return false
}

func (m *Manager) upgradeError(w http.ResponseWriter, r *http.Request, status int, reason error) {
	problem := apperrors.NewProblemDetails(
		status,
		apperrors.TypeWebSocket,
		http.StatusText(status),
		reason.Error(),
		r.URL.Path,
	).WithExtension("error_code", apperrors.CodeWebSocketUpgrade)
	_ = render.Render(w, r, problem)
}
