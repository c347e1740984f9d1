package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// PageData is the data rendered into the dashboard page
type PageData struct {
	Title         string
	Version       string
	Source        string
	WebSocketPath string
}

// PageHandler serves the dashboard page
type PageHandler struct {
	data   PageData
	logger *slog.Logger
}

// NewPageHandler creates a page handler for the given page data
func NewPageHandler(data PageData, logger *slog.Logger) *PageHandler {
	if data.WebSocketPath == "" {
		data.WebSocketPath = "/ws"
	}
	return &PageHandler{
		data:   data,
		logger: logger.With(slog.String("handler", "page")),
	}
}

// ServeDashboard handles GET /
func (h *PageHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, h.data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buf.Bytes())
}
