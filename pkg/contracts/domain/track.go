package domain

import (
	"strings"
	"time"
)

// ReleaseType classifies how a charting track was released
type ReleaseType string

const (
	ReleaseTypeSingle      ReleaseType = "single"
	ReleaseTypeAlbum       ReleaseType = "album"
	ReleaseTypeCompilation ReleaseType = "compilation"
)

// DurationBucket is the coarse length class of a track
type DurationBucket string

const (
	DurationShort    DurationBucket = "Short"
	DurationMedium   DurationBucket = "Medium"
	DurationLong     DurationBucket = "Long"
	DurationVeryLong DurationBucket = "Very Long"
)

// DurationBuckets lists the buckets in display order.
var DurationBuckets = []DurationBucket{DurationShort, DurationMedium, DurationLong, DurationVeryLong}

// BucketFor returns the bucket for a duration in seconds.
// Short is under two minutes, Medium under three, Long under four.
func BucketFor(seconds float64) DurationBucket {
	minutes := seconds / 60
	switch {
	case minutes < 2:
		return DurationShort
	case minutes < 3:
		return DurationMedium
	case minutes < 4:
		return DurationLong
	default:
		return DurationVeryLong
	}
}

// RankGroup segments chart positions
type RankGroup string

const (
	RankGroupTop10 RankGroup = "Top 10"
	RankGroupTop50 RankGroup = "Top 50"
)

// RankGroups lists the rank groups in display order.
var RankGroups = []RankGroup{RankGroupTop10, RankGroupTop50}

// RankGroupFor returns the rank group for a chart position.
func RankGroupFor(position int) RankGroup {
	if position <= 10 {
		return RankGroupTop10
	}
	return RankGroupTop50
}

// Chart slot bounds for the daily Top 50 playlist.
const (
	MinPosition = 1
	MaxPosition = 50
)

// Track is one chart slot: a track at a position on a given snapshot date.
// Tracks are immutable once the dataset is loaded.
type Track struct {
	ChartDate    time.Time `json:"chart_date"`
	Position     int       `json:"position"`
	Title        string    `json:"title"`
	Artists      []string  `json:"artists"`
	ArtistCredit string    `json:"artist_credit"`
	Album        string    `json:"album,omitempty"`
	AlbumType    string    `json:"album_type,omitempty"`
	TotalTracks  int       `json:"total_tracks,omitempty"`
	Explicit     bool      `json:"explicit"`
	Duration     float64   `json:"duration_seconds"`
	ReleaseDate  time.Time `json:"release_date,omitempty"`
	Popularity   int       `json:"popularity,omitempty"`
	Genre        string    `json:"genre,omitempty"`

	// Derived at load time
	ReleaseType    ReleaseType    `json:"release_type"`
	DurationBucket DurationBucket `json:"duration_bucket"`
	RankGroup      RankGroup      `json:"rank_group"`
	Key            string         `json:"key"`
}

// IsCollaboration reports whether more than one artist is credited.
func (t Track) IsCollaboration() bool {
	return len(t.Artists) > 1
}

// HasArtist reports whether name is credited on the track, ignoring case.
func (t Track) HasArtist(name string) bool {
	key := ArtistKey(name)
	for _, a := range t.Artists {
		if ArtistKey(a) == key {
			return true
		}
	}
	return false
}

// ArtistKey is the identity used to compare artist names.
func ArtistKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// TrackKey builds the stable identity of a track from its title and artists.
func TrackKey(title string, artists []string) string {
	keys := make([]string, len(artists))
	for i, a := range artists {
		keys[i] = ArtistKey(a)
	}
	return ArtistKey(title) + "|" + strings.Join(keys, "&")
}

// Dataset is the read-only chart snapshot shared by every session.
type Dataset struct {
	Tracks []Track     `json:"-"`
	Meta   DatasetMeta `json:"meta"`
}

// DatasetMeta describes where a dataset came from and what it contains
type DatasetMeta struct {
	Source          string    `json:"source"`
	Format          string    `json:"format"`
	Fingerprint     string    `json:"fingerprint"`
	LoadedAt        time.Time `json:"loaded_at"`
	RowsRead        int       `json:"rows_read"`
	RowsKept        int       `json:"rows_kept"`
	DuplicatesDrop  int       `json:"duplicates_dropped"`
	IncompleteDrop  int       `json:"incomplete_dropped"`
	FirstChartDate  time.Time `json:"first_chart_date"`
	LastChartDate   time.Time `json:"last_chart_date"`
	DistinctTracks  int       `json:"distinct_tracks"`
	DistinctArtists int       `json:"distinct_artists"`
	HasGenre        bool      `json:"has_genre"`
	HasPopularity   bool      `json:"has_popularity"`
}

// FilterOptions lists the values a dashboard can offer in its filter widgets
type FilterOptions struct {
	FirstChartDate string   `json:"first_chart_date"`
	LastChartDate  string   `json:"last_chart_date"`
	Artists        []string `json:"artists"`
	ReleaseTypes   []string `json:"release_types"`
	Genres         []string `json:"genres"`
	ExplicitModes  []string `json:"explicit_modes"`
	TrackTypes     []string `json:"track_types"`
	Windows        []string `json:"windows"`
}
