package exporter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"chartlens/pkg/contracts/domain"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Formats lists the supported export formats
var Formats = []string{FormatCSV, FormatXLSX}

// ErrMultipleTables is returned when a multi-table view is written as CSV
var ErrMultipleTables = errors.New("csv export holds a single table")

// Table is a flattened view ready for export. Cells are strings, ints,
// floats, bools or dates.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// ContentType returns the MIME type of an export format
func ContentType(format string) string {
	switch format {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Write writes tables in format. CSV output carries a BOM.
func Write(w io.Writer, format string, tables []Table) error {
	switch format {
	case FormatCSV:
		if len(tables) != 1 {
			return ErrMultipleTables
		}
		return WriteCSV(w, tables[0], WriteOptions{BOMPrefix: true})
	case FormatXLSX:
		return WriteXLSX(w, tables)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// TablesFor flattens a computed view. The dashboard bundle yields one
// table per view; every other view yields exactly one.
func TablesFor(name string, view any) ([]Table, error) {
	switch v := view.(type) {
	case domain.DashboardView:
		return []Table{
			KPITable(v.KPIs),
			ConcentrationTable(v.Concentration),
			CollaborationTable(v.Collaborations),
			ExplicitTable(v.Explicit),
			ReleaseTable(v.Release),
			DurationTable(v.Durations),
			RankGroupTable(v.RankGroups),
		}, nil
	case domain.KPIView:
		return []Table{KPITable(v)}, nil
	case domain.ConcentrationView:
		return []Table{ConcentrationTable(v)}, nil
	case domain.CollaborationView:
		return []Table{CollaborationTable(v)}, nil
	case domain.ExplicitView:
		return []Table{ExplicitTable(v)}, nil
	case domain.ReleaseView:
		return []Table{ReleaseTable(v)}, nil
	case domain.DurationView:
		return []Table{DurationTable(v)}, nil
	case []domain.RankGroupCount:
		return []Table{RankGroupTable(v)}, nil
	case []domain.Track:
		return []Table{TrackTable(v)}, nil
	default:
		return nil, fmt.Errorf("view %q cannot be exported", name)
	}
}

// KPITable lists the headline indicators as metric/value pairs
func KPITable(v domain.KPIView) Table {
	t := Table{
		Name:    "kpis",
		Headers: []string{"metric", "value"},
		Rows: [][]any{
			{"total_slots", v.TotalSlots},
			{"aci", share(v.ACI)},
			{"top5_share", share(v.Top5Share)},
			{"unique_artists", v.UniqueArtists},
			{"diversity_score", share(v.DiversityScore)},
			{"collaboration_ratio", share(v.CollaborationRatio)},
			{"explicit_share", share(v.ExplicitShare)},
			{"content_variety", share(v.ContentVariety)},
		},
	}
	for _, d := range v.AlbumDistribution {
		t.Rows = append(t.Rows, []any{"release_share_" + strings.ToLower(d.Label), share(d.Share)})
	}
	return t
}

// ConcentrationTable lists every artist with slots, credit and share
func ConcentrationTable(v domain.ConcentrationView) Table {
	t := Table{Name: "concentration", Headers: []string{"rank", "artist", "slots", "credit", "share"}}
	for _, a := range v.Artists {
		t.Rows = append(t.Rows, []any{a.Rank, a.Artist, a.Slots, a.Credit, share(a.Share)})
	}
	return t
}

// CollaborationTable lists the network edges
func CollaborationTable(v domain.CollaborationView) Table {
	t := Table{Name: "collaborations", Headers: []string{"source", "target", "weight", "slots"}}
	for _, e := range v.Edges {
		t.Rows = append(t.Rows, []any{e.Source, e.Target, e.Weight, e.Slots})
	}
	return t
}

// ExplicitTable lists the explicit/clean split per window
func ExplicitTable(v domain.ExplicitView) Table {
	t := Table{Name: "explicit", Headers: []string{"window", "start", "explicit", "clean"}}
	for _, w := range v.Series {
		t.Rows = append(t.Rows, []any{w.Window, w.Start, w.Explicit, w.Clean})
	}
	return t
}

// ReleaseTable lists chart presence per release type
func ReleaseTable(v domain.ReleaseView) Table {
	t := Table{Name: "release", Headers: []string{"release_type", "slots", "tracks", "share"}}
	for _, c := range v.Counts {
		t.Rows = append(t.Rows, []any{c.ReleaseType, c.Slots, c.Tracks, share(c.Share)})
	}
	return t
}

// DurationTable lists the duration distribution
func DurationTable(v domain.DurationView) Table {
	t := Table{Name: "durations", Headers: []string{"bucket", "count"}}
	for _, b := range v.Distribution {
		t.Rows = append(t.Rows, []any{string(b.Bucket), b.Count})
	}
	return t
}

// RankGroupTable lists slots per rank segment
func RankGroupTable(v []domain.RankGroupCount) Table {
	t := Table{Name: "ranks", Headers: []string{"group", "count"}}
	for _, g := range v {
		t.Rows = append(t.Rows, []any{string(g.Group), g.Count})
	}
	return t
}

// TrackHeaders are the columns of a track export
var TrackHeaders = []string{
	"chart_date", "position", "title", "artists", "album", "release_type",
	"explicit", "duration_seconds", "popularity", "genre",
}

// TrackRow flattens one chart slot
func TrackRow(tr domain.Track) []any {
	return []any{
		tr.ChartDate, tr.Position, tr.Title, strings.Join(tr.Artists, "; "), tr.Album,
		string(tr.ReleaseType), tr.Explicit, tr.Duration, tr.Popularity, tr.Genre,
	}
}

// TrackTable lists chart slots
func TrackTable(tracks []domain.Track) Table {
	t := Table{Name: "tracks", Headers: TrackHeaders}
	for _, tr := range tracks {
		t.Rows = append(t.Rows, TrackRow(tr))
	}
	return t
}
