package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"chartlens/pkg/contracts/domain"
)

// Day parses a YYYY-MM-DD date and panics on error
func Day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// ChartTrack builds a single chart slot with derived fields filled in
func ChartTrack(date string, pos int, title string, explicit bool, artists ...string) domain.Track {
	return domain.Track{
		ChartDate:    Day(date),
		Position:     pos,
		Title:        title,
		Artists:      artists,
		ArtistCredit: joinCredit(artists),
		Explicit:     explicit,
		ReleaseType:  domain.ReleaseTypeSingle,
		RankGroup:    domain.RankGroupFor(pos),
		Key:          domain.TrackKey(title, artists),
	}
}

func joinCredit(artists []string) string {
	credit := ""
	for i, a := range artists {
		if i > 0 {
			credit += " & "
		}
		credit += a
	}
	return credit
}

// ChartDataset is a six-slot dataset spanning two weeks of January and one
// day of February 2024.
func ChartDataset() *domain.Dataset {
	tracks := []domain.Track{
		ChartTrack("2024-01-01", 1, "Houdini", false, "Dua Lipa"),
		ChartTrack("2024-01-01", 2, "Prada", true, "Casso", "RAYE", "D-Block Europe"),
		ChartTrack("2024-01-01", 12, "Lovin On Me", true, "Jack Harlow"),
		ChartTrack("2024-01-08", 1, "Houdini", false, "Dua Lipa"),
		ChartTrack("2024-01-08", 5, "Prada", true, "Casso", "RAYE", "D-Block Europe"),
		ChartTrack("2024-02-01", 3, "Escapism", true, "RAYE", "070 Shake"),
	}
	durations := []float64{185, 132, 138, 185, 132, 272}
	genres := []string{"Pop", "Rap", "Rap", "Pop", "Rap", "Pop"}
	for i := range tracks {
		tracks[i].Duration = durations[i]
		tracks[i].DurationBucket = domain.BucketFor(durations[i])
		tracks[i].Genre = genres[i]
	}
	tracks[0].Popularity = 90
	tracks[1].Popularity = 85
	tracks[5].ReleaseType = domain.ReleaseTypeAlbum
	tracks[5].TotalTracks = 15
	tracks[5].Album = "My 21st Century Blues"

	return &domain.Dataset{
		Tracks: tracks,
		Meta: domain.DatasetMeta{
			Source:          "fixture.csv",
			Format:          "csv",
			Fingerprint:     "fixture",
			RowsRead:        len(tracks),
			RowsKept:        len(tracks),
			FirstChartDate:  Day("2024-01-01"),
			LastChartDate:   Day("2024-02-01"),
			DistinctTracks:  4,
			DistinctArtists: 7,
			HasGenre:        true,
			HasPopularity:   true,
		},
	}
}

// ChartCSV is a loadable chart export in the playlist snapshot layout
const ChartCSV = `date,position,song,artist,album,album_type,total_tracks,is_explicit,duration_ms,popularity
2024-01-01,1,Houdini,Dua Lipa,Houdini,single,1,False,185000,90
2024-01-01,2,Prada,Casso & RAYE & D-Block Europe,Prada,single,1,True,132000,85
2024-01-08,1,Houdini,Dua Lipa,Houdini,single,1,False,185000,91
2024-02-01,3,Escapism,RAYE feat. 070 Shake,My 21st Century Blues,album,15,True,272000,88
`

// WriteChartCSV writes content (ChartCSV when empty) to a file in a test
// temp dir and returns its path.
func WriteChartCSV(t *testing.T, content string) string {
	t.Helper()
	if content == "" {
		content = ChartCSV
	}
	path := filepath.Join(t.TempDir(), "chart.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
