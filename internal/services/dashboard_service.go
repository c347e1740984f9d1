package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"chartlens/internal/analytics"
	apperrors "chartlens/internal/errors"
	"chartlens/internal/infrastructure"
	"chartlens/pkg/contracts/domain"
)

// View names accepted by View and the export endpoint
const (
	ViewDashboard      = "dashboard"
	ViewKPIs           = "kpis"
	ViewConcentration  = "concentration"
	ViewCollaborations = "collaborations"
	ViewExplicit       = "explicit"
	ViewRelease        = "release"
	ViewDurations      = "durations"
	ViewRanks          = "ranks"
	ViewTracks         = "tracks"
)

// Views lists the summary views in display order.
var Views = []string{
	ViewKPIs, ViewConcentration, ViewCollaborations, ViewExplicit,
	ViewRelease, ViewDurations, ViewRanks,
}

// Track page bounds
const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// DashboardService computes dashboard views over the loaded dataset.
// Views are recomputed on every call.
type DashboardService struct {
	dataset *domain.Dataset
	tracer  trace.Tracer
	metrics *infrastructure.DashboardMetrics
	logger  *slog.Logger
}

// DashboardOption customises a DashboardService
type DashboardOption func(*DashboardService)

// WithTracer sets the tracer used for render spans
func WithTracer(t trace.Tracer) DashboardOption {
	return func(s *DashboardService) { s.tracer = t }
}

// WithMetrics sets the render instruments
func WithMetrics(m *infrastructure.DashboardMetrics) DashboardOption {
	return func(s *DashboardService) { s.metrics = m }
}

// NewDashboardService creates a dashboard service over ds. A nil dataset is
// allowed; every view then fails with a dataset unavailable error.
func NewDashboardService(ds *domain.Dataset, logger *slog.Logger, opts ...DashboardOption) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DashboardService{
		dataset: ds,
		tracer:  otel.Tracer(infrastructure.InstrumentationName + ".services"),
		logger:  logger.With(slog.String("service", "dashboard")),
	}
	for _, opt := range opts {
		opt(s)
	}

	if ds != nil {
		s.logger.Info("DashboardService initialized",
			slog.String("source", ds.Meta.Source),
			slog.Int("rows", len(ds.Tracks)),
			slog.String("fingerprint", ds.Meta.Fingerprint))
	}
	return s
}

// Dataset returns the metadata of the loaded dataset
func (s *DashboardService) Dataset(ctx context.Context) (domain.DatasetMeta, error) {
	if s.dataset == nil {
		return domain.DatasetMeta{}, s.unavailable()
	}
	return s.dataset.Meta, nil
}

// Options returns the values the filter widgets offer
func (s *DashboardService) Options(ctx context.Context) (domain.FilterOptions, error) {
	if s.dataset == nil {
		return domain.FilterOptions{}, s.unavailable()
	}
	return analytics.Options(s.dataset), nil
}

// Dashboard computes every view for one render cycle
func (s *DashboardService) Dashboard(ctx context.Context, f domain.Filter) (domain.DashboardView, error) {
	return render(ctx, s, ViewDashboard, f, func(f domain.Filter) (domain.DashboardView, int) {
		v := analytics.Dashboard(s.dataset, f)
		return v, v.KPIs.TotalSlots
	})
}

// KPIs computes the headline indicators
func (s *DashboardService) KPIs(ctx context.Context, f domain.Filter) (domain.KPIView, error) {
	return render(ctx, s, ViewKPIs, f, func(f domain.Filter) (domain.KPIView, int) {
		tracks := analytics.Apply(s.dataset, f)
		return analytics.KPIs(tracks), len(tracks)
	})
}

// Concentration computes the artist concentration view
func (s *DashboardService) Concentration(ctx context.Context, f domain.Filter) (domain.ConcentrationView, error) {
	return render(ctx, s, ViewConcentration, f, func(f domain.Filter) (domain.ConcentrationView, int) {
		tracks := analytics.Apply(s.dataset, f)
		return analytics.Concentration(tracks, f.TopN), len(tracks)
	})
}

// Collaborations computes the collaboration network
func (s *DashboardService) Collaborations(ctx context.Context, f domain.Filter) (domain.CollaborationView, error) {
	return render(ctx, s, ViewCollaborations, f, func(f domain.Filter) (domain.CollaborationView, int) {
		tracks := analytics.Apply(s.dataset, f)
		return analytics.Collaborations(tracks), len(tracks)
	})
}

// Explicit computes the explicit/clean breakdown
func (s *DashboardService) Explicit(ctx context.Context, f domain.Filter) (domain.ExplicitView, error) {
	return render(ctx, s, ViewExplicit, f, func(f domain.Filter) (domain.ExplicitView, int) {
		tracks := analytics.Apply(s.dataset, f)
		return analytics.ExplicitBreakdown(tracks, f.Window), len(tracks)
	})
}

// Release computes the album versus single comparison
func (s *DashboardService) Release(ctx context.Context, f domain.Filter) (domain.ReleaseView, error) {
	return render(ctx, s, ViewRelease, f, func(f domain.Filter) (domain.ReleaseView, int) {
		tracks := analytics.Apply(s.dataset, f)
		return analytics.ReleaseStrategy(tracks), len(tracks)
	})
}

// Durations computes the track length statistics
func (s *DashboardService) Durations(ctx context.Context, f domain.Filter) (domain.DurationView, error) {
	return render(ctx, s, ViewDurations, f, func(f domain.Filter) (domain.DurationView, int) {
		tracks := analytics.Apply(s.dataset, f)
		return analytics.DurationStats(tracks), len(tracks)
	})
}

// RankGroups counts slots per rank segment
func (s *DashboardService) RankGroups(ctx context.Context, f domain.Filter) ([]domain.RankGroupCount, error) {
	return render(ctx, s, ViewRanks, f, func(f domain.Filter) ([]domain.RankGroupCount, int) {
		tracks := analytics.Apply(s.dataset, f)
		return analytics.RankGroups(tracks), len(tracks)
	})
}

// Tracks returns one page of the filtered tracks in dataset order.
// A limit of zero selects DefaultPageSize.
func (s *DashboardService) Tracks(ctx context.Context, f domain.Filter, offset, limit int) (domain.TrackPage, error) {
	if offset < 0 {
		return domain.TrackPage{}, apperrors.ErrValidation("offset", "offset must not be negative")
	}
	if limit < 0 || limit > MaxPageSize {
		return domain.TrackPage{}, apperrors.ErrValidation("limit", fmt.Sprintf("limit must be between 1 and %d", MaxPageSize))
	}
	if limit == 0 {
		limit = DefaultPageSize
	}

	return render(ctx, s, ViewTracks, f, func(f domain.Filter) (domain.TrackPage, int) {
		tracks := analytics.Apply(s.dataset, f)
		page := domain.TrackPage{Total: len(tracks), Offset: offset, Limit: limit, Tracks: []domain.Track{}}
		if offset < len(tracks) {
			end := min(offset+limit, len(tracks))
			page.Tracks = tracks[offset:end]
		}
		return page, len(tracks)
	})
}

// View computes a view by name. It backs the generic view and export
// endpoints.
func (s *DashboardService) View(ctx context.Context, name string, f domain.Filter) (any, error) {
	switch name {
	case ViewDashboard:
		return s.Dashboard(ctx, f)
	case ViewKPIs:
		return s.KPIs(ctx, f)
	case ViewConcentration:
		return s.Concentration(ctx, f)
	case ViewCollaborations:
		return s.Collaborations(ctx, f)
	case ViewExplicit:
		return s.Explicit(ctx, f)
	case ViewRelease:
		return s.Release(ctx, f)
	case ViewDurations:
		return s.Durations(ctx, f)
	case ViewRanks:
		return s.RankGroups(ctx, f)
	default:
		return nil, fmt.Errorf("%w %q: %w", ErrUnknownView, name, apperrors.NotFoundError("view "+name))
	}
}

func (s *DashboardService) unavailable() error {
	return fmt.Errorf("%w: %w", ErrNoDataset, apperrors.ErrDatasetUnavailable)
}

// render wraps one view computation with a span, metrics and a debug log.
func render[T any](ctx context.Context, s *DashboardService, view string, f domain.Filter, compute func(domain.Filter) (T, int)) (T, error) {
	var zero T

	ctx, span := s.tracer.Start(ctx, "dashboard.render."+view,
		trace.WithAttributes(attribute.String("dashboard.view", view)))
	defer span.End()

	if s.dataset == nil {
		err := s.unavailable()
		infrastructure.RecordError(ctx, err)
		s.metrics.RecordRender(ctx, view, 0, 0, err)
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		infrastructure.RecordError(ctx, err)
		s.metrics.RecordRender(ctx, view, 0, 0, err)
		return zero, err
	}

	f = f.WithDefaults()
	start := time.Now()
	result, tracks := compute(f)
	elapsed := time.Since(start)

	span.SetAttributes(attribute.Int("dashboard.filtered_tracks", tracks))
	s.metrics.RecordRender(ctx, view, tracks, elapsed, nil)

	s.logger.DebugContext(ctx, "view rendered",
		slog.String("view", view),
		slog.Int("filtered_tracks", tracks),
		slog.Duration("duration", elapsed),
		slog.String("trace_id", infrastructure.GetTraceID(ctx)))

	return result, nil
}
