package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"chartlens/internal/shared/testutil"
)

func TestPageHandler_ServeDashboard(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewPageHandler(PageData{
		Title:   "UK Top 50 <Market> Analysis",
		Version: "1.0.0",
		Source:  "charts.csv",
	}, logger)

	rec := httptest.NewRecorder()
	h.ServeDashboard(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "UK Top 50 &lt;Market&gt; Analysis")
	assert.NotContains(t, body, "<Market>")
	assert.Regexp(t, `const wsPath = "\\?/ws";`, body)
	assert.Contains(t, body, "charts.csv")
}
