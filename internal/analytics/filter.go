// Package analytics computes the dashboard views from a chart dataset.
// Every function is pure: inputs are never mutated and the same inputs
// always produce the same output, element order included.
package analytics

import (
	"sort"
	"strings"

	"chartlens/pkg/contracts/domain"
)

// Apply returns the tracks matching f in dataset order. Date bounds are
// inclusive. Multiple artists, release types or genres match any of them.
// Genres are ignored when the dataset has no genre column.
func Apply(ds *domain.Dataset, f domain.Filter) []domain.Track {
	out := make([]domain.Track, 0)
	if ds == nil {
		return out
	}
	if !ds.Meta.HasGenre {
		f.Genres = nil
	}
	for _, t := range ds.Tracks {
		if matches(t, f) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t domain.Track, f domain.Filter) bool {
	day := domain.Date(t.ChartDate)
	if !f.From.IsZero() && day.Before(domain.Date(f.From)) {
		return false
	}
	if !f.To.IsZero() && day.After(domain.Date(f.To)) {
		return false
	}

	switch f.Explicit {
	case domain.ExplicitOnly:
		if !t.Explicit {
			return false
		}
	case domain.ExplicitExclude:
		if t.Explicit {
			return false
		}
	}

	switch f.TrackType {
	case domain.TrackTypeSolo:
		if t.IsCollaboration() {
			return false
		}
	case domain.TrackTypeCollab:
		if !t.IsCollaboration() {
			return false
		}
	}

	if len(f.Artists) > 0 && !anyArtist(t, f.Artists) {
		return false
	}
	if len(f.ReleaseTypes) > 0 && !containsFold(f.ReleaseTypes, string(t.ReleaseType)) {
		return false
	}
	if len(f.Genres) > 0 && !containsFold(f.Genres, t.Genre) {
		return false
	}

	if f.MinDuration > 0 && t.Duration < f.MinDuration {
		return false
	}
	if f.MaxDuration > 0 && (t.Duration <= 0 || t.Duration > f.MaxDuration) {
		return false
	}
	return true
}

func anyArtist(t domain.Track, names []string) bool {
	for _, n := range names {
		if t.HasArtist(n) {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}

// Options lists the values the dashboard widgets can offer for ds.
func Options(ds *domain.Dataset) domain.FilterOptions {
	opts := domain.FilterOptions{
		Artists:       []string{},
		ReleaseTypes:  []string{},
		Genres:        []string{},
		ExplicitModes: []string{domain.ExplicitAll, domain.ExplicitOnly, domain.ExplicitExclude},
		TrackTypes:    []string{domain.TrackTypeAll, domain.TrackTypeSolo, domain.TrackTypeCollab},
		Windows:       []string{domain.WindowDay, domain.WindowWeek, domain.WindowMonth},
	}
	if ds == nil {
		return opts
	}
	if !ds.Meta.FirstChartDate.IsZero() {
		opts.FirstChartDate = ds.Meta.FirstChartDate.Format(domain.DateLayout)
		opts.LastChartDate = ds.Meta.LastChartDate.Format(domain.DateLayout)
	}

	artists := make(map[string]string)
	releases := make(map[string]bool)
	genres := make(map[string]string)
	for _, t := range ds.Tracks {
		for _, a := range t.Artists {
			if _, ok := artists[domain.ArtistKey(a)]; !ok {
				artists[domain.ArtistKey(a)] = a
			}
		}
		releases[string(t.ReleaseType)] = true
		if t.Genre != "" {
			if _, ok := genres[strings.ToLower(t.Genre)]; !ok {
				genres[strings.ToLower(t.Genre)] = t.Genre
			}
		}
	}

	opts.Artists = sortedValues(artists)
	opts.Genres = sortedValues(genres)
	for r := range releases {
		opts.ReleaseTypes = append(opts.ReleaseTypes, r)
	}
	sort.Strings(opts.ReleaseTypes)
	return opts
}

// sortedValues returns the map values ordered by key.
func sortedValues(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}
