package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"chartlens/internal/config"
	"chartlens/internal/dataprocessing"
	apperrors "chartlens/internal/errors"
	"chartlens/internal/infrastructure"
	customMiddleware "chartlens/internal/middleware"
	"chartlens/internal/services"
	handlers "chartlens/internal/transport/http"
	"chartlens/internal/validation"
	ws "chartlens/internal/websocket"
	"chartlens/pkg/contracts/domain"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Dataset       *domain.Dataset
	Dashboard     *services.DashboardService
	HealthService *services.HealthService
	LiveSessions  *ws.Manager
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.DashboardMetrics

	errorHandler *apperrors.ErrorHandler
	filters      *validation.FilterValidator
	openBrowser  func(url string) error
}

// Option customises an Application
type Option func(*Application)

// WithLogger replaces the process-wide logger
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) { a.Logger = logger }
}

// WithBrowserOpener replaces the platform browser launcher
func WithBrowserOpener(open func(url string) error) Option {
	return func(a *Application) { a.openBrowser = open }
}

// NewApplication loads the dataset and wires every component. A dataset
// that cannot be loaded is fatal; the returned error wraps the
// *dataprocessing.LoadError.
func NewApplication(ctx context.Context, cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	app := &Application{
		Config:      cfg,
		openBrowser: openBrowser,
	}
	for _, opt := range opts {
		opt(app)
	}

	if app.Logger == nil {
		logger, err := infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		app.Logger = logger
	}

	app.Logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("data_path", cfg.Data.Path))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	app.OTelProviders = otelProviders

	if err := app.initializeServices(ctx); err != nil {
		_ = otelProviders.Shutdown(context.Background())
		return nil, err
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// initializeServices loads the dataset and builds the services over it
func (a *Application) initializeServices(ctx context.Context) error {
	start := time.Now()
	ds, err := dataprocessing.Load(ctx, a.Config.Data.Path, dataprocessing.Options{
		Sheet:  a.Config.Data.Sheet,
		Logger: a.Logger,
	})
	if err != nil {
		return apperrors.NewLoadError("failed to load chart data", err).
			WithContext("path", a.Config.Data.Path)
	}
	a.Dataset = ds
	a.Logger.Info("Chart data loaded",
		slog.String("source", ds.Meta.Source),
		slog.Int("rows_kept", ds.Meta.RowsKept),
		slog.Int("duplicates_dropped", ds.Meta.DuplicatesDrop),
		slog.Int("incomplete_dropped", ds.Meta.IncompleteDrop),
		slog.Duration("elapsed", time.Since(start)))

	metrics, err := infrastructure.CreateDashboardMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create dashboard metrics: %w", err)
	}
	a.Metrics = metrics

	a.errorHandler = apperrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	a.filters = validation.NewFilterValidator()

	a.Dashboard = services.NewDashboardService(ds, a.Logger,
		services.WithTracer(a.OTelProviders.Tracer),
		services.WithMetrics(metrics))

	a.LiveSessions = ws.NewManager(a.Dashboard, a.filters, a.Config.WebSocket,
		a.allowedOrigins(), metrics, a.Logger)

	a.HealthService = services.NewHealthService(services.BuildInfo{
		Version:   config.AppVersion,
		BuildTime: config.BuildTime,
		GitCommit: config.GitCommit,
	}, ds, a.LiveSessions, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Safe for websocket upgrades: neither wraps the ResponseWriter
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	// Live sessions stay outside compression and request timeouts
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", a.LiveSessions)

	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apperrors.RecoveryMiddleware(a.errorHandler))
		r.Use(customMiddleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}
		r.Use(customMiddleware.Compress(5))

		a.setupAPIRoutes(r)
		a.setupHTMLRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		dashboardHandler := handlers.NewDashboardHandler(a.Dashboard, a.filters, a.Logger, a.errorHandler)
		dashboardHandler.RegisterRoutes(r)

		exportHandler := handlers.NewExportHandler(a.Dashboard, a.filters, a.Logger, a.errorHandler)
		r.Mount("/export", exportHandler.Routes())

		r.Post("/log", handlers.NewClientLogHandler(a.Logger, a.errorHandler).Handle)
	})
}

// setupHTMLRoutes configures the dashboard page
func (a *Application) setupHTMLRoutes(r chi.Router) {
	page := handlers.NewPageHandler(handlers.PageData{
		Title:         config.AppTitle,
		Version:       config.AppVersion,
		Source:        a.Dataset.Meta.Source,
		WebSocketPath: "/ws",
	}, a.Logger)
	r.Get("/", page.ServeDashboard)
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.allowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-Requested-With"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// allowedOrigins returns the configured origins plus the server's own
func (a *Application) allowedOrigins() []string {
	origins := append([]string(nil), a.Config.Security.AllowedOrigins...)
	return append(origins, "http://"+a.Config.Server.Addr())
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelWarn),
	}
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	url := browserURL(ln.Addr())

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", url),
		slog.String("version", config.AppVersion))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutdown requested")
		return a.Stop(context.Background())
	})
	if a.Config.Browser.Open {
		g.Go(func() error {
			a.launchBrowser(gctx, url)
			return nil
		})
	}
	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	// Hijacked websocket connections are not covered by Server.Shutdown
	if err := a.LiveSessions.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("live session shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.Info("Application shutdown complete")
	return errors.Join(errs...)
}

// launchBrowser waits for the liveness endpoint and opens the dashboard
func (a *Application) launchBrowser(ctx context.Context, url string) {
	client := &http.Client{Timeout: time.Second}
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	const maxRetries = 25
	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/api/health/live", nil)
		if err != nil {
			return
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				if err := a.openBrowser(url); err != nil {
					a.Logger.Warn("Failed to open browser", slog.String("error", err.Error()))
					fmt.Printf("\n%s is running. Open %s in your browser.\n\n", config.AppTitle, url)
				}
				return
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
	a.Logger.Error("Server did not become ready for browser opening", slog.String("url", url))
}

// browserURL maps the listener address to a URL a local browser can open
func browserURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String()
	}
	if ip := net.ParseIP(host); ip == nil || ip.IsUnspecified() {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
