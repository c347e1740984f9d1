package dataprocessing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"chartlens/pkg/contracts/domain"
)

// artistSeparator splits a raw artist credit into individual artists.
var artistSeparator = regexp.MustCompile(`(?i)\s*(?:&|,|;|\b(?:featuring|feat\.?|ft\.?)(?:\s+|$))\s*`)

// SplitArtists splits a credit such as "A feat. B & C" into its artists.
// Names are trimmed and duplicates removed, keeping the first spelling.
func SplitArtists(credit string) []string {
	parts := artistSeparator.Split(credit, -1)
	seen := make(map[string]bool, len(parts))
	artists := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.Join(strings.Fields(strings.Trim(p, "()[] ")), " ")
		if name == "" {
			continue
		}
		key := domain.ArtistKey(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		artists = append(artists, name)
	}
	return artists
}

var chartDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006/01/02",
}

var releaseDateLayouts = append(append([]string{}, chartDateLayouts...), "2006-01", "2006")

// ParseDate parses a chart snapshot date and truncates it to the day.
func ParseDate(s string) (time.Time, error) {
	return parseWith(s, chartDateLayouts)
}

func parseReleaseDate(s string) (time.Time, error) {
	return parseWith(s, releaseDateLayouts)
}

func parseWith(s string, layouts []string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.Date(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// parsePosition accepts integral values, including spreadsheet floats like "3.0".
func parsePosition(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

// ParseBool understands the spellings found in chart exports.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1", "1.0", "explicit":
		return true, nil
	case "false", "f", "no", "n", "0", "0.0", "clean", "":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// millisecondThreshold separates second values from millisecond values
// when the column name does not say which it is.
const millisecondThreshold = 10000

// ParseDuration returns a track length in seconds. Values may be "m:ss",
// plain seconds or milliseconds.
func ParseDuration(s string, millis bool) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if m, sec, ok := strings.Cut(s, ":"); ok {
		mins, err1 := strconv.Atoi(m)
		secs, err2 := strconv.ParseFloat(sec, 64)
		if err1 != nil || err2 != nil || mins < 0 || secs < 0 || secs >= 60 {
			return 0, fmt.Errorf("not a duration: %q", s)
		}
		return float64(mins)*60 + secs, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a duration: %q", s)
	}
	if millis || v > millisecondThreshold {
		return v / 1000, nil
	}
	return v, nil
}

func parseOptionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return parsePosition(s)
}

// ClassifyRelease derives the release type of a track.
// An explicit album type wins and is passed through lower-cased. Otherwise
// the album size decides, and when that is unknown the number of distinct
// charting titles on the album does.
func ClassifyRelease(albumType, album string, totalTracks, albumTitles int) domain.ReleaseType {
	if t := strings.ToLower(strings.TrimSpace(albumType)); t != "" {
		return domain.ReleaseType(t)
	}
	switch {
	case strings.TrimSpace(album) == "":
		return domain.ReleaseTypeSingle
	case totalTracks == 1:
		return domain.ReleaseTypeSingle
	case totalTracks > 1:
		return domain.ReleaseTypeAlbum
	case albumTitles > 1:
		return domain.ReleaseTypeAlbum
	default:
		return domain.ReleaseTypeSingle
	}
}
