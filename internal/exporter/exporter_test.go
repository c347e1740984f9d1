package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"chartlens/internal/analytics"
	"chartlens/internal/shared/testutil"
	"chartlens/pkg/contracts/domain"
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteCSVWithBOM(t *testing.T) {
	table := Table{
		Name:    "ranks",
		Headers: []string{"group", "count", "share"},
		Rows: [][]any{
			{"Top 10", 4, share(0.6666666)},
			{"Top 11-50, \"quoted\"", 2, share(1.0 / 3)},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table, WriteOptions{BOMPrefix: true}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 3)
	assert.Equal(t, []string{"group", "count", "share"}, records[0])
	assert.Equal(t, []string{"Top 10", "4", "0.6667"}, records[1])
	assert.Equal(t, "Top 11-50, \"quoted\"", records[2][0])
}

func TestWriteCSVWithoutBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Table{Headers: []string{"a"}}, WriteOptions{}))
	assert.Equal(t, "a\n", buf.String())
}

func TestTablesForEveryView(t *testing.T) {
	ds := testutil.ChartDataset()
	dash := analytics.Dashboard(ds, domain.Filter{})

	views := map[string]any{
		"kpis":           dash.KPIs,
		"concentration":  dash.Concentration,
		"collaborations": dash.Collaborations,
		"explicit":       dash.Explicit,
		"release":        dash.Release,
		"durations":      dash.Durations,
		"ranks":          dash.RankGroups,
		"tracks":         ds.Tracks,
	}
	for name, view := range views {
		tables, err := TablesFor(name, view)
		require.NoError(t, err, name)
		require.Len(t, tables, 1, name)
		assert.Equal(t, name, tables[0].Name)
		for _, row := range tables[0].Rows {
			assert.Len(t, row, len(tables[0].Headers), name)
		}
	}

	tables, err := TablesFor("dashboard", dash)
	require.NoError(t, err)
	assert.Len(t, tables, 7)

	_, err = TablesFor("bogus", 42)
	assert.Error(t, err)
}

func TestConcentrationTableMatchesView(t *testing.T) {
	view := analytics.Concentration(testutil.ChartDataset().Tracks, 3)
	table := ConcentrationTable(view)

	require.Len(t, table.Rows, len(view.Artists))
	assert.Equal(t, view.Artists[0].Artist, table.Rows[0][1])
}

func TestWriteXLSX(t *testing.T) {
	dash := analytics.Dashboard(testutil.ChartDataset(), domain.Filter{})
	tables, err := TablesFor("dashboard", dash)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, tables))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"kpis", "concentration", "collaborations", "explicit", "release", "durations", "ranks"}, f.GetSheetList())

	rows, err := f.GetRows("kpis")
	require.NoError(t, err)
	assert.Equal(t, []string{"metric", "value"}, rows[0])
	assert.Equal(t, []string{"total_slots", "6"}, rows[1])
}

func TestWriteRejectsMultiTableCSV(t *testing.T) {
	err := Write(&bytes.Buffer{}, FormatCSV, []Table{{Name: "a"}, {Name: "b"}})
	assert.True(t, errors.Is(err, ErrMultipleTables))

	err = Write(&bytes.Buffer{}, "pdf", []Table{{Name: "a"}})
	assert.Error(t, err)
}

func TestTrackRows(t *testing.T) {
	var buf bytes.Buffer
	sw, err := NewStreamWriter(&buf, TrackHeaders, WriteOptions{})
	require.NoError(t, err)
	for _, tr := range testutil.ChartDataset().Tracks[:2] {
		require.NoError(t, sw.WriteRow(TrackRow(tr)))
	}
	require.NoError(t, sw.Flush())

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 3)
	assert.Equal(t, "2024-01-01", records[2][0])
	assert.Equal(t, "Casso; RAYE; D-Block Europe", records[2][3])
	assert.Equal(t, "true", records[2][6])
	assert.Equal(t, "132.00", records[2][7])
}

func TestSheetNameTruncated(t *testing.T) {
	assert.Len(t, sheetName(strings.Repeat("x", 40), 0), maxSheetName)
	assert.Equal(t, "Sheet3", sheetName("", 2))
}

func TestContentType(t *testing.T) {
	assert.Contains(t, ContentType(FormatCSV), "text/csv")
	assert.Contains(t, ContentType(FormatXLSX), "spreadsheetml")
}
