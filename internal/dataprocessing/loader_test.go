package dataprocessing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"chartlens/pkg/contracts/domain"
)

const sampleCSV = `date,position,song,artist,popularity,duration_ms,album_type,total_tracks,is_explicit,album
2024-01-01,1,Houdini,Dua Lipa,90,185000,single,1,False,Houdini
2024-01-01,2,Lovin On Me,Jack Harlow,88,138000,single,1,True,Lovin On Me
2024-01-01,3,Prada,Casso & RAYE & D-Block Europe,85,132000,album,14,True,Prada Album
2024-01-01,3,Prada,Casso & RAYE & D-Block Europe,85,132000,album,14,True,Prada Album
2024-01-02,1,Houdini,dua lipa,91,185000,single,1,False,Houdini
2024-01-02,2,,Jack Harlow,88,138000,single,1,True,Lovin On Me
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "chart.csv", sampleCSV)
	fixed := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	ds, err := Load(context.Background(), path, Options{Now: func() time.Time { return fixed }})
	require.NoError(t, err)

	assert.Equal(t, 6, ds.Meta.RowsRead)
	assert.Equal(t, 4, ds.Meta.RowsKept)
	assert.Equal(t, 1, ds.Meta.DuplicatesDrop)
	assert.Equal(t, 1, ds.Meta.IncompleteDrop)
	assert.Equal(t, FormatCSV, ds.Meta.Format)
	assert.Len(t, ds.Meta.Fingerprint, 64)
	assert.Equal(t, fixed, ds.Meta.LoadedAt)
	assert.Equal(t, 3, ds.Meta.DistinctTracks)
	assert.Equal(t, 5, ds.Meta.DistinctArtists)
	assert.True(t, ds.Meta.HasPopularity)
	assert.False(t, ds.Meta.HasGenre)
	assert.Equal(t, "2024-01-01", ds.Meta.FirstChartDate.Format(domain.DateLayout))
	assert.Equal(t, "2024-01-02", ds.Meta.LastChartDate.Format(domain.DateLayout))

	prada := ds.Tracks[2]
	assert.Equal(t, []string{"Casso", "RAYE", "D-Block Europe"}, prada.Artists)
	assert.True(t, prada.IsCollaboration())
	assert.True(t, prada.Explicit)
	assert.Equal(t, domain.ReleaseTypeAlbum, prada.ReleaseType)
	assert.InDelta(t, 132, prada.Duration, 1e-9)
	assert.Equal(t, domain.DurationMedium, prada.DurationBucket)
	assert.Equal(t, domain.RankGroupTop10, prada.RankGroup)

	// first spelling wins
	assert.Equal(t, []string{"Dua Lipa"}, ds.Tracks[3].Artists)
	assert.Equal(t, ds.Tracks[0].Key, ds.Tracks[3].Key)
}

func TestLoadIsDeterministic(t *testing.T) {
	path := writeFile(t, "chart.csv", sampleCSV)
	a, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)
	b, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)

	assert.Equal(t, a.Meta.Fingerprint, b.Meta.Fingerprint)
	assert.Equal(t, a.Tracks, b.Tracks)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		reason  string
		line    int
		column  string
	}{
		{"empty file", "empty.csv", "", "file is empty", 0, ""},
		{"header only", "header.csv", "date,position,song,artist\n", "no valid chart rows", 0, ""},
		{"missing column", "cols.csv", "date,song,artist\n2024-01-01,X,Y\n", "missing required column", 1, "position"},
		{"bad date", "date.csv", "date,position,song,artist\nnot-a-date,1,X,Y\n", "invalid date", 2, "date"},
		{"bad position", "pos.csv", "date,position,song,artist\n2024-01-01,first,X,Y\n", "invalid position", 2, "position"},
		{"position out of range", "range.csv", "date,position,song,artist\n2024-01-01,51,X,Y\n", "position out of range", 2, "position"},
		{"bad duration", "dur.csv", "date,position,song,artist,duration_ms\n2024-01-01,1,X,Y,long\n", "invalid duration", 2, "duration_ms"},
		{"unsupported", "chart.json", "{}", "unsupported format", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := Load(context.Background(), path, Options{})
			require.Error(t, err)

			var le *LoadError
			require.True(t, errors.As(err, &le), "expected *LoadError, got %T", err)
			assert.Equal(t, tt.reason, le.Reason)
			assert.Equal(t, tt.line, le.Line)
			assert.Equal(t, tt.column, le.Column)
			assert.Equal(t, path, le.Path)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "file not found", le.Reason)
}

func TestLoadDirectoryPicksNewestExport(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "week1.csv")
	newer := filepath.Join(dir, "week2.csv")
	require.NoError(t, os.WriteFile(older, []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte(sampleCSV), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	ds, err := Load(context.Background(), dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Meta.RowsKept)
	assert.Equal(t, newer, ds.Meta.Source)
}

func TestLoadEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt.bak"), []byte("x"), 0o644))

	_, err := Load(context.Background(), dir, Options{})
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "no chart export in directory", le.Reason)
	assert.Equal(t, dir, le.Path)
}

func TestLoadHeaderWithBOM(t *testing.T) {
	// Excel writes a UTF-8 byte order mark before the first header cell
	path := writeFile(t, "bom.csv", "\xEF\xBB\xBFdate,position,song,artist\n2024-01-01,1,Houdini,Dua Lipa\n")

	ds, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)
	require.Len(t, ds.Tracks, 1)
	assert.Equal(t, "Houdini", ds.Tracks[0].Title)
	assert.Equal(t, "2024-01-01", ds.Tracks[0].ChartDate.Format(domain.DateLayout))
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, writeFile(t, "chart.csv", sampleCSV), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	// first sheet has no chart columns and should be skipped
	f.SetCellValue("Sheet1", "A1", "notes")
	_, err := f.NewSheet("Chart")
	require.NoError(t, err)

	rows := [][]interface{}{
		{"Chart Date", "Rank", "Track Name", "Artists", "Duration", "Explicit", "Genre"},
		{"2024-05-01", 1, "Song A", "X feat. Y", "3:30", "yes", "Pop"},
		{"2024-05-01", 12, "Song B", "Z", 245, "no", "Rock"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Chart", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "chart.xlsx")
	require.NoError(t, f.SaveAs(path))

	ds, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)
	require.Len(t, ds.Tracks, 2)

	assert.Equal(t, FormatXLSX, ds.Meta.Format)
	assert.True(t, ds.Meta.HasGenre)
	assert.Equal(t, []string{"X", "Y"}, ds.Tracks[0].Artists)
	assert.InDelta(t, 210, ds.Tracks[0].Duration, 1e-9)
	assert.True(t, ds.Tracks[0].Explicit)
	assert.Equal(t, domain.RankGroupTop50, ds.Tracks[1].RankGroup)
	assert.InDelta(t, 245, ds.Tracks[1].Duration, 1e-9)
	assert.Equal(t, domain.DurationVeryLong, ds.Tracks[1].DurationBucket)
}
