package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"chartlens/internal/infrastructure"
)

func scrape(t *testing.T, providers *infrastructure.OTelProviders) string {
	t.Helper()
	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}
