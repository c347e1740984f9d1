package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apperrors "chartlens/internal/errors"
	appmiddleware "chartlens/internal/middleware"
	"chartlens/internal/services"
	"chartlens/internal/validation"
)

// DashboardHandler serves the dataset, filter options and computed views
type DashboardHandler struct {
	service      DashboardServiceInterface
	filters      *validation.FilterValidator
	params       *appmiddleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler with RFC 7807 error handling
func NewDashboardHandler(service DashboardServiceInterface, filters *validation.FilterValidator, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		filters:      filters,
		params:       appmiddleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes on their own router
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the dashboard routes to an existing router
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dataset", h.GetDataset)
	r.Get("/filters", h.GetFilters)

	r.Group(func(r chi.Router) {
		r.Use(FilterCtx(h.filters, h.errorHandler, h.logger))
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/views/{view}", h.GetView)
		r.Get("/tracks", h.GetTracks)
	})
}

// GetDataset handles GET /api/dataset
func (h *DashboardHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	meta, err := h.service.Dataset(r.Context())
	if err != nil {
		h.fail(w, r, "failed to read dataset metadata", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   meta,
	})
}

// GetFilters handles GET /api/filters
func (h *DashboardHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.Options(r.Context())
	if err != nil {
		h.fail(w, r, "failed to read filter options", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   options,
	})
}

// GetDashboard handles GET /api/dashboard. An empty selection is a 200
// with the empty flag set.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Dashboard(r.Context(), FilterFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, "failed to render dashboard", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// GetView handles GET /api/views/{view}
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "view")
	view, err := h.service.View(r.Context(), name, FilterFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, "failed to render view", err, slog.String("view", name))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"view":   name,
		"data":   view,
	})
}

// GetTracks handles GET /api/tracks
func (h *DashboardHandler) GetTracks(w http.ResponseWriter, r *http.Request) {
	offset, ok := h.params.ValidateInt(w, r, "offset", 0, 1<<30, 0)
	if !ok {
		return
	}
	limit, ok := h.params.ValidateInt(w, r, "limit", 1, services.MaxPageSize, services.DefaultPageSize)
	if !ok {
		return
	}

	page, err := h.service.Tracks(r.Context(), FilterFromContext(r.Context()), offset, limit)
	if err != nil {
		h.fail(w, r, "failed to list tracks", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   page,
		"count":  len(page.Tracks),
	})
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error, attrs ...any) {
	level := slog.LevelError
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		level = slog.LevelDebug
	}
	attrs = append(attrs,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())))
	h.logger.Log(r.Context(), level, msg, attrs...)
	h.errorHandler.HandleError(w, r, err)
}
