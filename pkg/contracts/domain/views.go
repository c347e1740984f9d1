package domain

import "time"

// ArtistShare is one row of the market concentration leaderboard
type ArtistShare struct {
	Rank   int     `json:"rank"`
	Artist string  `json:"artist"`
	Slots  int     `json:"slots"`
	Credit float64 `json:"credit"`
	Share  float64 `json:"share"`
}

// ConcentrationView describes how chart slots are spread across artists.
// Slots gives full credit to every credited artist. Credit splits each slot
// equally between its artists, so credits sum to TotalSlots.
type ConcentrationView struct {
	TotalSlots    int           `json:"total_slots"`
	UniqueArtists int           `json:"unique_artists"`
	ACI           float64       `json:"aci"`
	Band          string        `json:"band"`
	Top5Share     float64       `json:"top5_share"`
	TopNShare     float64       `json:"top_n_share"`
	OtherShare    float64       `json:"other_share"`
	Diversity     float64       `json:"diversity_score"`
	TopN          int           `json:"top_n"`
	Leaders       []ArtistShare `json:"leaders"`
	Artists       []ArtistShare `json:"artists"`
}

// CollaborationNode is an artist appearing on at least one collaboration
type CollaborationNode struct {
	Artist       string `json:"artist"`
	Degree       int    `json:"degree"`
	CollabTracks int    `json:"collab_tracks"`
}

// CollaborationEdge links two artists credited on the same tracks.
// Source sorts before Target so each pair appears once.
type CollaborationEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
	Slots  int    `json:"slots"`
}

// CollaborationView is the artist co-occurrence graph
type CollaborationView struct {
	CollabTracks int                 `json:"collab_tracks"`
	CollabSlots  int                 `json:"collab_slots"`
	Ratio        float64             `json:"collaboration_ratio"`
	Nodes        []CollaborationNode `json:"nodes"`
	Edges        []CollaborationEdge `json:"edges"`
}

// Weight returns the edge weight between a and b in either order.
func (v CollaborationView) Weight(a, b string) int {
	ka, kb := ArtistKey(a), ArtistKey(b)
	for _, e := range v.Edges {
		ks, kt := ArtistKey(e.Source), ArtistKey(e.Target)
		if (ks == ka && kt == kb) || (ks == kb && kt == ka) {
			return e.Weight
		}
	}
	return 0
}

// WindowCount is the explicit/clean split inside one time window
type WindowCount struct {
	Window   string `json:"window"`
	Start    string `json:"start"`
	Explicit int    `json:"explicit"`
	Clean    int    `json:"clean"`
}

// RankSummary is a five-number summary of chart positions
type RankSummary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// ExplicitView splits the filtered slots by explicit flag
type ExplicitView struct {
	Total         int           `json:"total"`
	Explicit      int           `json:"explicit"`
	Clean         int           `json:"clean"`
	ExplicitShare float64       `json:"explicit_share"`
	Ratio         *float64      `json:"ratio"`
	Window        string        `json:"window"`
	Series        []WindowCount `json:"series"`
	ExplicitRanks RankSummary   `json:"explicit_ranks"`
	CleanRanks    RankSummary   `json:"clean_ranks"`
}

// ReleaseCount is the chart presence of one release type
type ReleaseCount struct {
	ReleaseType string  `json:"release_type"`
	Slots       int     `json:"slots"`
	Tracks      int     `json:"tracks"`
	Share       float64 `json:"share"`
}

// Point is a single scatter plot observation
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

// ReleaseView compares single and album strategies
type ReleaseView struct {
	Total          int            `json:"total"`
	Counts         []ReleaseCount `json:"counts"`
	AlbumSizeRanks []Point        `json:"album_size_vs_position"`
}

// BucketCount is the number of slots in a duration bucket
type BucketCount struct {
	Bucket DurationBucket `json:"bucket"`
	Count  int            `json:"count"`
}

// DurationView summarises track lengths in seconds
type DurationView struct {
	Count              int           `json:"count"`
	Mean               float64       `json:"mean"`
	Median             float64       `json:"median"`
	Min                float64       `json:"min"`
	Max                float64       `json:"max"`
	StdDev             float64       `json:"std_dev"`
	Distribution       []BucketCount `json:"distribution"`
	PopularityByLength []Point       `json:"duration_vs_popularity"`
}

// RankGroupCount is the number of slots in a rank segment
type RankGroupCount struct {
	Group RankGroup `json:"group"`
	Count int       `json:"count"`
}

// LabelShare is a categorical share
type LabelShare struct {
	Label string  `json:"label"`
	Share float64 `json:"share"`
}

// KPIView holds the headline market-structure indicators
type KPIView struct {
	TotalSlots         int          `json:"total_slots"`
	ACI                float64      `json:"aci"`
	Top5Share          float64      `json:"top5_share"`
	UniqueArtists      int          `json:"unique_artists"`
	DiversityScore     float64      `json:"diversity_score"`
	CollaborationRatio float64      `json:"collaboration_ratio"`
	ExplicitShare      float64      `json:"explicit_share"`
	AlbumDistribution  []LabelShare `json:"album_distribution"`
	ContentVariety     float64      `json:"content_variety"`
}

// DashboardView bundles every view for one render cycle
type DashboardView struct {
	Empty          bool              `json:"empty"`
	Filter         FilterEcho        `json:"filter"`
	KPIs           KPIView           `json:"kpis"`
	Concentration  ConcentrationView `json:"concentration"`
	Collaborations CollaborationView `json:"collaborations"`
	Explicit       ExplicitView      `json:"explicit"`
	Release        ReleaseView       `json:"release"`
	Durations      DurationView      `json:"durations"`
	RankGroups     []RankGroupCount  `json:"rank_groups"`
}

// FilterEcho reports the effective filter in wire form
type FilterEcho struct {
	From         string   `json:"from,omitempty"`
	To           string   `json:"to,omitempty"`
	Artists      []string `json:"artists"`
	Explicit     string   `json:"explicit"`
	ReleaseTypes []string `json:"release_types"`
	TrackType    string   `json:"track_type"`
	Genres       []string `json:"genres"`
	MinDuration  float64  `json:"min_duration,omitempty"`
	MaxDuration  float64  `json:"max_duration,omitempty"`
	Window       string   `json:"window"`
	TopN         int      `json:"top"`
}

// DateLayout is the wire format for chart dates.
const DateLayout = "2006-01-02"

// Echo converts a filter to its wire form.
func (f Filter) Echo() FilterEcho {
	echo := FilterEcho{
		Artists:      nonNil(f.Artists),
		Explicit:     f.Explicit,
		ReleaseTypes: nonNil(f.ReleaseTypes),
		TrackType:    f.TrackType,
		Genres:       nonNil(f.Genres),
		MinDuration:  f.MinDuration,
		MaxDuration:  f.MaxDuration,
		Window:       f.Window,
		TopN:         f.TopN,
	}
	if !f.From.IsZero() {
		echo.From = f.From.Format(DateLayout)
	}
	if !f.To.IsZero() {
		echo.To = f.To.Format(DateLayout)
	}
	return echo
}

// TrackPage is a window over the filtered track list
type TrackPage struct {
	Total  int     `json:"total"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
	Tracks []Track `json:"tracks"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Date truncates t to midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
