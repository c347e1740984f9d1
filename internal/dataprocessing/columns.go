package dataprocessing

import (
	"strings"
)

// column identifies a logical dataset column independent of header spelling
type column int

const (
	colDate column = iota
	colPosition
	colTitle
	colArtist
	colAlbum
	colAlbumType
	colTotalTracks
	colExplicit
	colDuration
	colReleaseDate
	colPopularity
	colGenre
)

var columnNames = map[column]string{
	colDate:        "date",
	colPosition:    "position",
	colTitle:       "song",
	colArtist:      "artist",
	colAlbum:       "album",
	colAlbumType:   "album_type",
	colTotalTracks: "total_tracks",
	colExplicit:    "is_explicit",
	colDuration:    "duration",
	colReleaseDate: "release_date",
	colPopularity:  "popularity",
	colGenre:       "genre",
}

// headerAliases maps normalised header names onto logical columns
var headerAliases = map[string]column{
	"date":               colDate,
	"chart_date":         colDate,
	"snapshot_date":      colDate,
	"position":           colPosition,
	"rank":               colPosition,
	"chart_position":     colPosition,
	"song":               colTitle,
	"title":              colTitle,
	"track":              colTitle,
	"track_name":         colTitle,
	"name":               colTitle,
	"artist":             colArtist,
	"artists":            colArtist,
	"album":              colAlbum,
	"album_name":         colAlbum,
	"album_type":         colAlbumType,
	"release_type":       colAlbumType,
	"total_tracks":       colTotalTracks,
	"album_size":         colTotalTracks,
	"is_explicit":        colExplicit,
	"explicit":           colExplicit,
	"duration_ms":        colDuration,
	"duration":           colDuration,
	"duration_s":         colDuration,
	"duration_sec":       colDuration,
	"duration_seconds":   colDuration,
	"release_date":       colReleaseDate,
	"album_release_date": colReleaseDate,
	"popularity":         colPopularity,
	"genre":              colGenre,
	"genres":             colGenre,
}

var requiredColumns = []column{colDate, colPosition, colTitle, colArtist}

// layout records where each logical column lives in a row
type layout struct {
	index      map[column]int
	headers    map[column]string
	durationMS bool
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\uFEFF")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	return h
}

// resolveLayout maps a header row. The first header matching a column wins.
func resolveLayout(header []string) (layout, []string) {
	l := layout{index: make(map[column]int), headers: make(map[column]string)}
	for i, h := range header {
		name := normalizeHeader(h)
		col, ok := headerAliases[name]
		if !ok {
			continue
		}
		if _, seen := l.index[col]; seen {
			continue
		}
		l.index[col] = i
		l.headers[col] = name
		if col == colDuration && strings.HasSuffix(name, "_ms") {
			l.durationMS = true
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := l.index[col]; !ok {
			missing = append(missing, columnNames[col])
		}
	}
	return l, missing
}

func (l layout) has(col column) bool {
	_, ok := l.index[col]
	return ok
}

// cell returns the trimmed value of col in row, or "" when absent.
func (l layout) cell(row []string, col column) string {
	i, ok := l.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (l layout) header(col column) string {
	if h, ok := l.headers[col]; ok {
		return h
	}
	return columnNames[col]
}
