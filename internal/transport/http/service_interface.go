package http

import (
	"context"

	"chartlens/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations the handlers need
type DashboardServiceInterface interface {
	Dataset(ctx context.Context) (domain.DatasetMeta, error)
	Options(ctx context.Context) (domain.FilterOptions, error)
	Dashboard(ctx context.Context, f domain.Filter) (domain.DashboardView, error)
	View(ctx context.Context, name string, f domain.Filter) (any, error)
	Tracks(ctx context.Context, f domain.Filter, offset, limit int) (domain.TrackPage, error)
}
