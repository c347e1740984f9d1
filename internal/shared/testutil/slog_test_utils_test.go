package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandlerCapturesRecords(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Info("view rendered", slog.String("view", "kpis"))
	logger.Error("render failed", slog.Int("status", 500))

	require.Equal(t, 2, handler.Count())
	AssertLogContains(t, handler, slog.LevelInfo, "view rendered")
	AssertLogContains(t, handler, slog.LevelError, "render failed")
	AssertLogAttr(t, handler, "view", "kpis")
}

func TestBufferedSlogHandlerKeepsWithAttrs(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.With(slog.String("service", "dashboard")).
		WithGroup("req").
		Info("done", slog.String("path", "/api/kpis"))

	records := handler.Find("done")
	require.Len(t, records, 1)
	assert.Equal(t, "dashboard", records[0].Attrs["service"])
	assert.Equal(t, "/api/kpis", records[0].Attrs["req.path"])
}

func TestDerivedHandlersShareRecords(t *testing.T) {
	logger, handler := NewTestLogger(t)
	child := logger.With(slog.String("component", "ws"))

	logger.Info("parent")
	child.Warn("child")

	assert.Equal(t, 2, handler.Count())
	AssertNoErrors(t, handler)
}

func TestChartDataset(t *testing.T) {
	ds := ChartDataset()
	require.Len(t, ds.Tracks, 6)
	assert.Equal(t, "Casso & RAYE & D-Block Europe", ds.Tracks[1].ArtistCredit)
	assert.True(t, ds.Tracks[1].IsCollaboration())
	assert.FileExists(t, WriteChartCSV(t, ""))
}
