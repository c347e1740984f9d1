package http

import (
	"context"
	"log/slog"
	"net/http"

	apperrors "chartlens/internal/errors"
	"chartlens/internal/validation"
	"chartlens/pkg/contracts/domain"
)

type filterCtxKey struct{}

// FilterCtx parses the filter query parameters into the request context.
// Invalid selections are answered with a validation problem.
func FilterCtx(filters *validation.FilterValidator, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f, err := filters.ParseQuery(r.URL.Query())
			if err != nil {
				logger.DebugContext(r.Context(), "filter rejected",
					slog.String("query", r.URL.RawQuery),
					slog.String("error", err.Error()))
				errorHandler.HandleError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), filterCtxKey{}, f)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FilterFromContext returns the filter stored by FilterCtx
func FilterFromContext(ctx context.Context) domain.Filter {
	f, _ := ctx.Value(filterCtxKey{}).(domain.Filter)
	return f
}
