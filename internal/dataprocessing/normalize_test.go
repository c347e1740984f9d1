package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartlens/pkg/contracts/domain"
)

func TestSplitArtists(t *testing.T) {
	tests := []struct {
		credit string
		want   []string
	}{
		{"Dua Lipa", []string{"Dua Lipa"}},
		{"Calvin Harris & Dua Lipa", []string{"Calvin Harris", "Dua Lipa"}},
		{"A feat. B", []string{"A", "B"}},
		{"A ft. B & C", []string{"A", "B", "C"}},
		{"A Featuring B", []string{"A", "B"}},
		{"A (feat. B)", []string{"A", "B"}},
		{"A, B; C", []string{"A", "B", "C"}},
		{"Taylor Swift", []string{"Taylor Swift"}},
		{"Aftermath", []string{"Aftermath"}},
		{"A & a", []string{"A"}},
		{"  Spaced   Name  ", []string{"Spaced Name"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.credit, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitArtists(tt.credit))
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-03-09", "2024-03-09T14:30:00Z", "09/03/2024", "2024/03/09", "2024-03-09 08:00:00"} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	_, err := ParseDate("yesterday")
	assert.Error(t, err)

	rel, err := parseReleaseDate("2019")
	require.NoError(t, err)
	assert.Equal(t, 2019, rel.Year())
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"True", "1", "yes", "Y", "explicit"} {
		v, err := ParseBool(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"False", "0", "no", "", "clean"} {
		v, err := ParseBool(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in     string
		millis bool
		want   float64
	}{
		{"210000", true, 210},
		{"210000", false, 210},
		{"185", false, 185},
		{"3:05", false, 185},
		{"", false, 0},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in, tt.millis)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}

	for _, bad := range []string{"long", "-5", "3:75"} {
		_, err := ParseDuration(bad, false)
		assert.Error(t, err, bad)
	}
}

func TestClassifyRelease(t *testing.T) {
	tests := []struct {
		name        string
		albumType   string
		album       string
		totalTracks int
		titles      int
		want        domain.ReleaseType
	}{
		{"explicit single", "single", "X", 3, 1, domain.ReleaseTypeSingle},
		{"explicit album", "album", "X", 12, 1, domain.ReleaseTypeAlbum},
		{"explicit album of one track", "album", "X", 1, 1, domain.ReleaseTypeAlbum},
		{"compilation", "compilation", "X", 20, 1, domain.ReleaseTypeCompilation},
		{"unknown type passes through", " Appears_On ", "X", 12, 1, domain.ReleaseType("appears_on")},
		{"ep is kept", "EP", "X", 4, 1, domain.ReleaseType("ep")},
		{"no album", "", "", 0, 0, domain.ReleaseTypeSingle},
		{"size one", "", "X", 1, 0, domain.ReleaseTypeSingle},
		{"sized album", "", "X", 14, 1, domain.ReleaseTypeAlbum},
		{"several charting titles", "", "X", 0, 3, domain.ReleaseTypeAlbum},
		{"one charting title", "", "X", 0, 1, domain.ReleaseTypeSingle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRelease(tt.albumType, tt.album, tt.totalTracks, tt.titles))
		})
	}
}
