package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "chartlens/internal/errors"
	"chartlens/internal/shared/testutil"
)

func TestClientLogHandler_Handle(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedLevel  slog.Level
		expectedMsg    string
	}{
		{
			name:           "error entry",
			body:           `{"level":"error","message":"render failed","source":"dashboard","data":{"line":12}}`,
			expectedStatus: http.StatusAccepted,
			expectedLevel:  slog.LevelError,
			expectedMsg:    "render failed",
		},
		{
			name:           "warning alias",
			body:           `{"level":"warning","message":"socket closed"}`,
			expectedStatus: http.StatusAccepted,
			expectedLevel:  slog.LevelWarn,
			expectedMsg:    "socket closed",
		},
		{
			name:           "unknown level falls back to info",
			body:           `{"level":"trace","message":"hello"}`,
			expectedStatus: http.StatusAccepted,
			expectedLevel:  slog.LevelInfo,
			expectedMsg:    "hello",
		},
		{
			name:           "empty body",
			body:           ``,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			body:           `{"level":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing message",
			body:           `{"level":"error"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewClientLogHandler(logger, apperrors.NewErrorHandler(logger, false))

			req := httptest.NewRequest(http.MethodPost, "/api/log", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler.Handle(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedMsg == "" {
				return
			}
			var body map[string]interface{}
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "success", body["status"])

			records := logs.Find(tt.expectedMsg)
			if assert.Len(t, records, 1) {
				assert.Equal(t, tt.expectedLevel, records[0].Level)
			}
		})
	}
}

func TestClientLogHandler_TruncatesLongMessages(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewClientLogHandler(logger, apperrors.NewErrorHandler(logger, false))

	long := bytes.Repeat([]byte("x"), maxClientMessage+500)
	body, _ := json.Marshal(map[string]string{"message": string(long)})
	rec := httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/log", bytes.NewReader(body)))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	records := logs.Find(string(long[:maxClientMessage]))
	if assert.Len(t, records, 1) {
		assert.Len(t, records[0].Message, maxClientMessage)
	}
}
