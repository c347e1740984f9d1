package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "chartlens/internal/errors"
	"chartlens/internal/exporter"
	"chartlens/internal/services"
	"chartlens/internal/validation"
	"chartlens/pkg/contracts/domain"
)

// ExportHandler serves filtered views as CSV or XLSX downloads
type ExportHandler struct {
	service      DashboardServiceInterface
	filters      *validation.FilterValidator
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(service DashboardServiceInterface, filters *validation.FilterValidator, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		filters:      filters,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(FilterCtx(h.filters, h.errorHandler, h.logger))
	r.Get("/{file}", h.Export)
	return r
}

// Export handles GET /api/export/{view}.{csv|xlsx}
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	view, format, err := parseExportFile(chi.URLParam(r, "file"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	f := FilterFromContext(r.Context())

	h.logger.InfoContext(r.Context(), "exporting view",
		slog.String("view", view),
		slog.String("format", format),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	if view == services.ViewTracks {
		h.exportTracks(w, r, f, format)
		return
	}

	data, err := h.service.View(r.Context(), view, f)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	tables, err := exporter.TablesFor(view, data)
	if err != nil {
		h.errorHandler.HandleError(w, r, apperrors.NewExportError("cannot tabulate view", err).
			WithContext("view", view))
		return
	}

	var buf bytes.Buffer
	if err := exporter.Write(&buf, format, tables); err != nil {
		if errors.Is(err, exporter.ErrMultipleTables) {
			h.errorHandler.HandleError(w, r, apperrors.ErrValidation("format",
				fmt.Sprintf("view %s has several tables; export it as xlsx", view)))
			return
		}
		h.errorHandler.HandleError(w, r, apperrors.NewExportError("cannot write "+format, err).
			WithContext("view", view))
		return
	}

	setDownloadHeaders(w, view, format)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted", slog.String("error", err.Error()))
	}
}

// exportTracks pages through every filtered track. CSV is streamed; XLSX
// is assembled in memory.
func (h *ExportHandler) exportTracks(w http.ResponseWriter, r *http.Request, f domain.Filter, format string) {
	ctx := r.Context()
	page, err := h.service.Tracks(ctx, f, 0, services.MaxPageSize)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if format == exporter.FormatXLSX {
		tracks := slices.Clone(page.Tracks)
		for offset := len(page.Tracks); offset < page.Total; offset += services.MaxPageSize {
			next, err := h.service.Tracks(ctx, f, offset, services.MaxPageSize)
			if err != nil {
				h.errorHandler.HandleError(w, r, err)
				return
			}
			tracks = append(tracks, next.Tracks...)
		}
		var buf bytes.Buffer
		if err := exporter.WriteXLSX(&buf, []exporter.Table{exporter.TrackTable(tracks)}); err != nil {
			h.errorHandler.HandleError(w, r, apperrors.NewExportError("cannot write xlsx", err).
				WithContext("view", services.ViewTracks))
			return
		}
		setDownloadHeaders(w, services.ViewTracks, format)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
		return
	}

	setDownloadHeaders(w, services.ViewTracks, format)
	w.WriteHeader(http.StatusOK)
	sw, err := exporter.NewStreamWriter(w, exporter.TrackHeaders, exporter.WriteOptions{BOMPrefix: true})
	if err != nil {
		h.logger.WarnContext(ctx, "track export aborted", slog.String("error", err.Error()))
		return
	}

	written := 0
	for {
		for _, tr := range page.Tracks {
			if err := sw.WriteRow(exporter.TrackRow(tr)); err != nil {
				h.logger.WarnContext(ctx, "track export aborted", slog.String("error", err.Error()))
				return
			}
		}
		written += len(page.Tracks)
		if written >= page.Total || len(page.Tracks) == 0 {
			break
		}
		if page, err = h.service.Tracks(ctx, f, written, services.MaxPageSize); err != nil {
			// Headers are gone; the truncated file is all we can do.
			h.logger.ErrorContext(ctx, "track export truncated",
				slog.Int("rows_written", written),
				slog.String("error", err.Error()))
			break
		}
	}
	if err := sw.Flush(); err != nil {
		h.logger.WarnContext(ctx, "track export flush failed", slog.String("error", err.Error()))
	}
}

// parseExportFile splits "concentration.csv" into view and format
func parseExportFile(file string) (view, format string, err error) {
	dot := strings.LastIndexByte(file, '.')
	if dot <= 0 {
		return "", "", apperrors.ErrValidation("file", "export path must be {view}.{csv|xlsx}")
	}
	view, format = file[:dot], strings.ToLower(file[dot+1:])
	if !slices.Contains(exporter.Formats, format) {
		return "", "", apperrors.ErrValidation("format",
			fmt.Sprintf("format must be one of: %s", strings.Join(exporter.Formats, ", ")))
	}
	if view != services.ViewDashboard && view != services.ViewTracks && !slices.Contains(services.Views, view) {
		return "", "", apperrors.NotFoundError("view " + view)
	}
	return view, format, nil
}

func setDownloadHeaders(w http.ResponseWriter, view, format string) {
	w.Header().Set("Content-Type", exporter.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="chartlens-%s.%s"`, view, format))
	w.Header().Set("Cache-Control", "no-store")
}
