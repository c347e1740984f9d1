package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"chartlens/internal/shared/testutil"
)

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) ActiveSessions() int {
	return m.Called().Int(0)
}

func TestHealthServiceReadiness(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	sessions := &mockSessions{}
	sessions.On("ActiveSessions").Return(3)

	hs := NewHealthService(BuildInfo{Version: "1.2.3"}, testutil.ChartDataset(), sessions, logger)
	status := hs.ReadinessCheck(context.Background())

	assert.Equal(t, "ready", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Equal(t, "3 live sessions", status.Services["websocket"].(ServiceHealth).Message)
	sessions.AssertExpectations(t)
}

func TestHealthServiceNotReadyWithoutDataset(t *testing.T) {
	hs := NewHealthService(BuildInfo{Version: "dev"}, nil, nil, nil)
	status := hs.ReadinessCheck(context.Background())

	assert.Equal(t, "not_ready", status.Status)
	assert.Equal(t, "not_ready", status.Services["dataset"].(ServiceHealth).Status)
}

func TestHealthServiceLivenessAndVersion(t *testing.T) {
	hs := NewHealthService(BuildInfo{Version: "1.0.0", GitCommit: "abc123"}, nil, nil, nil)

	assert.Equal(t, "ok", hs.HealthCheck(context.Background()).Status)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	v := hs.Version()
	assert.Equal(t, "1.0.0", v["version"])
	assert.Equal(t, "abc123", v["git_commit"])
	assert.NotContains(t, v, "build_time")
}
