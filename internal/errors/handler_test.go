package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation api error", ErrValidation("window", "must be one of day week month"), http.StatusBadRequest, TypeValidation},
		{"not found api error", NotFoundError("view"), http.StatusNotFound, TypeNotFound},
		{"dataset unavailable", ErrDatasetUnavailable, http.StatusServiceUnavailable, TypeServiceDown},
		{"app load error", NewLoadError("dataset missing", io.EOF), http.StatusServiceUnavailable, TypeDatasetLoad},
		{"app config error", NewConfigError("bad port", nil), http.StatusInternalServerError, TypeInternal},
		{"app export error", NewExportError("write failed", io.ErrShortWrite), http.StatusInternalServerError, TypeExport},
		{"wrapped api error", fmt.Errorf("render: %w", InvalidRequestWithError(io.EOF)), http.StatusBadRequest, TypeValidation},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, TypeInternal},
	}

	h := newTestHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/dashboard", body["instance"])
			assert.Contains(t, body, "trace_id")
		})
	}
}

func TestHandleErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestValidationDetailsRendered(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "from", Message: "invalid date"},
		{Field: "top", Message: "must be at most 50"},
	})
	problem := ToProblem(err, "/api/views/kpis")

	raw, jerr := json.Marshal(problem)
	require.NoError(t, jerr)

	var body struct {
		ErrorCode string `json:"error_code"`
		Details   struct {
			Errors []ValidationError `json:"errors"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, CodeValidationFailed, body.ErrorCode)
	assert.Len(t, body.Details.Errors, 2)
}

func TestAppErrorContextBecomesExtension(t *testing.T) {
	err := NewLoadError("dataset missing", nil).WithContext("path", "data/chart.csv")
	problem := ToProblem(err, "")
	assert.Equal(t, "data/chart.csv", problem.Extensions["path"])
	assert.Equal(t, "LOAD", problem.Extensions["error_type"])
}

func TestProblemExtensionsCannotOverrideCoreFields(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "").
		WithExtension("status", 200)
	raw, err := json.Marshal(problem)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"status":404`)
	assert.NotContains(t, string(raw), `"detail"`)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := newTestHandler()
	handler := RecoveryMiddleware(h)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("exploded")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kpis", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, TypeInternal, decodeProblem(t, rec)["type"])
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/dashboard", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, decodeProblem(t, rec)["detail"], "DELETE")
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewConfigError("bad port", io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "[CONFIG] bad port: unexpected EOF", err.Error())
}
