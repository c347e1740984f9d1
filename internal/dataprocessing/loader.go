package dataprocessing

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"chartlens/internal/files"
	"chartlens/pkg/contracts/domain"
)

// Options tunes how a dataset is loaded
type Options struct {
	// Sheet selects a worksheet in XLSX sources. Empty picks the first
	// sheet that has the required columns.
	Sheet  string
	Logger *slog.Logger
	// Now stamps DatasetMeta.LoadedAt. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now().UTC()
	}
	return time.Now().UTC()
}

// Load reads a chart export from disk and returns a normalised dataset.
// A directory path loads the newest export inside it.
// Any failure is reported as a *LoadError.
func Load(ctx context.Context, path string, opts Options) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resolved, err := files.NewDiscovery("").ResolveExport(path)
	if err != nil {
		return nil, loadErr(path, "no chart export in directory", err)
	}
	path = resolved

	format, err := DetectFormat(path)
	if err != nil {
		return nil, loadErr(path, "unsupported format", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, loadErr(path, "file not found", err)
		}
		return nil, loadErr(path, "cannot read file", err)
	}

	return Parse(ctx, path, format, data, opts)
}

// Parse normalises an in-memory chart export. source is only used for
// error messages and metadata.
func Parse(ctx context.Context, source, format string, data []byte, opts Options) (*domain.Dataset, error) {
	log := opts.logger().With("source", source, "format", format)

	if len(data) == 0 {
		return nil, loadErr(source, "file is empty", ErrNoRows)
	}

	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(data)
	case FormatXLSX:
		rows, err = readXLSX(data, opts.Sheet)
	default:
		return nil, loadErr(source, "unsupported format", fmt.Errorf("format %q", format))
	}
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = source
			return nil, le
		}
		return nil, loadErr(source, "cannot parse file", err)
	}

	rows, lines := dropBlankRows(rows)
	if len(rows) == 0 {
		return nil, loadErr(source, "file is empty", ErrNoRows)
	}

	l, missing := resolveLayout(rows[0])
	if len(missing) > 0 {
		return nil, &LoadError{
			Path:   source,
			Line:   lines[0],
			Column: strings.Join(missing, ", "),
			Reason: "missing required column",
		}
	}

	b := builder{source: source, layout: l}
	for i, row := range rows[1:] {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := b.add(row, lines[i+1]); err != nil {
			return nil, err
		}
	}

	if len(b.tracks) == 0 {
		return nil, loadErr(source, "no valid chart rows", ErrNoRows)
	}

	ds := b.finish()
	sum := blake2b.Sum256(data)
	ds.Meta.Source = source
	ds.Meta.Format = format
	ds.Meta.Fingerprint = hex.EncodeToString(sum[:])
	ds.Meta.LoadedAt = opts.now()

	log.Info("Dataset loaded",
		"rows_read", ds.Meta.RowsRead,
		"rows_kept", ds.Meta.RowsKept,
		"duplicates_dropped", ds.Meta.DuplicatesDrop,
		"incomplete_dropped", ds.Meta.IncompleteDrop,
		"distinct_tracks", ds.Meta.DistinctTracks,
		"distinct_artists", ds.Meta.DistinctArtists,
	)
	return ds, nil
}

// builder accumulates cleaned rows and derives dataset-wide fields
type builder struct {
	source string
	layout layout

	seen       map[string]bool
	tracks     []domain.Track
	read       int
	duplicates int
	incomplete int
	hasGenre   bool
	hasPop     bool
}

func (b *builder) add(row []string, line int) error {
	b.read++

	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = strings.TrimSpace(c)
	}
	key := strings.Join(cells, "\x1f")
	if b.seen == nil {
		b.seen = make(map[string]bool)
	}
	if b.seen[key] {
		b.duplicates++
		return nil
	}
	b.seen[key] = true

	for _, col := range requiredColumns {
		if b.layout.cell(row, col) == "" {
			b.incomplete++
			return nil
		}
	}

	t, err := b.parseRow(row, line)
	if err != nil {
		return err
	}
	if len(t.Artists) == 0 {
		b.incomplete++
		return nil
	}
	b.tracks = append(b.tracks, t)
	return nil
}

func (b *builder) parseRow(row []string, line int) (domain.Track, error) {
	l := b.layout
	var t domain.Track

	date, err := ParseDate(l.cell(row, colDate))
	if err != nil {
		return t, cellErr(b.source, line, l.header(colDate), "invalid date", err)
	}
	t.ChartDate = date

	pos, err := parsePosition(l.cell(row, colPosition))
	if err != nil {
		return t, cellErr(b.source, line, l.header(colPosition), "invalid position", err)
	}
	if pos < domain.MinPosition || pos > domain.MaxPosition {
		return t, cellErr(b.source, line, l.header(colPosition), "position out of range",
			fmt.Errorf("%d not in %d..%d", pos, domain.MinPosition, domain.MaxPosition))
	}
	t.Position = pos

	t.Title = strings.Join(strings.Fields(l.cell(row, colTitle)), " ")
	t.ArtistCredit = l.cell(row, colArtist)
	t.Artists = SplitArtists(t.ArtistCredit)
	t.Album = l.cell(row, colAlbum)
	t.AlbumType = strings.ToLower(l.cell(row, colAlbumType))
	t.Genre = l.cell(row, colGenre)
	if t.Genre != "" {
		b.hasGenre = true
	}

	if t.TotalTracks, err = parseOptionalInt(l.cell(row, colTotalTracks)); err != nil || t.TotalTracks < 0 {
		return t, cellErr(b.source, line, l.header(colTotalTracks), "invalid album size", err)
	}

	if t.Explicit, err = ParseBool(l.cell(row, colExplicit)); err != nil {
		return t, cellErr(b.source, line, l.header(colExplicit), "invalid explicit flag", err)
	}

	if t.Duration, err = ParseDuration(l.cell(row, colDuration), l.durationMS); err != nil {
		return t, cellErr(b.source, line, l.header(colDuration), "invalid duration", err)
	}

	if s := l.cell(row, colReleaseDate); s != "" {
		if t.ReleaseDate, err = parseReleaseDate(s); err != nil {
			return t, cellErr(b.source, line, l.header(colReleaseDate), "invalid release date", err)
		}
	}

	if s := l.cell(row, colPopularity); s != "" {
		p, err := parsePosition(s)
		if err != nil || p < 0 || p > 100 {
			if err == nil {
				err = fmt.Errorf("%d not in 0..100", p)
			}
			return t, cellErr(b.source, line, l.header(colPopularity), "invalid popularity", err)
		}
		t.Popularity = p
		b.hasPop = true
	}
	return t, nil
}

func albumKey(t domain.Track) string {
	primary := ""
	if len(t.Artists) > 0 {
		primary = domain.ArtistKey(t.Artists[0])
	}
	return domain.ArtistKey(t.Album) + "|" + primary
}

// finish canonicalises artist spellings and fills derived fields.
func (b *builder) finish() *domain.Dataset {
	display := make(map[string]string)
	albumTitles := make(map[string]map[string]bool)
	for _, t := range b.tracks {
		for _, a := range t.Artists {
			k := domain.ArtistKey(a)
			if _, ok := display[k]; !ok {
				display[k] = a
			}
		}
		if t.Album != "" {
			ak := albumKey(t)
			if albumTitles[ak] == nil {
				albumTitles[ak] = make(map[string]bool)
			}
			albumTitles[ak][domain.ArtistKey(t.Title)] = true
		}
	}

	meta := domain.DatasetMeta{
		RowsRead:       b.read,
		RowsKept:       len(b.tracks),
		DuplicatesDrop: b.duplicates,
		IncompleteDrop: b.incomplete,
		HasGenre:       b.hasGenre,
		HasPopularity:  b.hasPop,
	}

	keys := make(map[string]bool)
	for i := range b.tracks {
		t := &b.tracks[i]
		for j, a := range t.Artists {
			t.Artists[j] = display[domain.ArtistKey(a)]
		}
		t.Key = domain.TrackKey(t.Title, t.Artists)
		keys[t.Key] = true

		titles := 0
		if t.Album != "" {
			titles = len(albumTitles[albumKey(*t)])
		}
		t.ReleaseType = ClassifyRelease(t.AlbumType, t.Album, t.TotalTracks, titles)
		if t.Duration > 0 {
			t.DurationBucket = domain.BucketFor(t.Duration)
		}
		t.RankGroup = domain.RankGroupFor(t.Position)

		if meta.FirstChartDate.IsZero() || t.ChartDate.Before(meta.FirstChartDate) {
			meta.FirstChartDate = t.ChartDate
		}
		if t.ChartDate.After(meta.LastChartDate) {
			meta.LastChartDate = t.ChartDate
		}
	}
	meta.DistinctTracks = len(keys)
	meta.DistinctArtists = len(display)

	return &domain.Dataset{Tracks: b.tracks, Meta: meta}
}
