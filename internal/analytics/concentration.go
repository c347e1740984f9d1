package analytics

import (
	"sort"

	"chartlens/pkg/contracts/domain"
)

// HHI bands used for the artist concentration index
const (
	BandUnconcentrated = "unconcentrated"
	BandModerate       = "moderately_concentrated"
	BandHigh           = "highly_concentrated"
)

// Band classifies a concentration index.
func Band(hhi float64) string {
	switch {
	case hhi < 0.15:
		return BandUnconcentrated
	case hhi < 0.25:
		return BandModerate
	default:
		return BandHigh
	}
}

type artistTally struct {
	key    string
	name   string
	slots  int
	credit float64
}

// Concentration ranks artists by their share of chart slots.
// Each slot credits every listed artist once in Slots and splits one unit
// equally between them in Credit, so shares sum to one.
func Concentration(tracks []domain.Track, topN int) domain.ConcentrationView {
	if topN <= 0 {
		topN = domain.DefaultTopN
	}
	view := domain.ConcentrationView{
		TotalSlots: len(tracks),
		TopN:       topN,
		Leaders:    []domain.ArtistShare{},
		Artists:    []domain.ArtistShare{},
	}
	if len(tracks) == 0 {
		return view
	}

	tallies := tallyArtists(tracks)
	total := float64(len(tracks))

	view.UniqueArtists = len(tallies)
	view.Diversity = float64(len(tallies)) / total
	view.Artists = make([]domain.ArtistShare, len(tallies))
	for i, at := range tallies {
		share := at.credit / total
		view.Artists[i] = domain.ArtistShare{
			Rank:   i + 1,
			Artist: at.name,
			Slots:  at.slots,
			Credit: at.credit,
			Share:  share,
		}
		view.ACI += share * share
		if i < 5 {
			view.Top5Share += share
		}
		if i < topN {
			view.TopNShare += share
		} else {
			view.OtherShare += share
		}
	}
	view.Band = Band(view.ACI)
	n := topN
	if n > len(view.Artists) {
		n = len(view.Artists)
	}
	view.Leaders = view.Artists[:n:n]
	return view
}

// tallyArtists returns artists ordered by credit desc, slots desc, then name.
func tallyArtists(tracks []domain.Track) []artistTally {
	index := make(map[string]int)
	var tallies []artistTally
	for _, t := range tracks {
		if len(t.Artists) == 0 {
			continue
		}
		part := 1 / float64(len(t.Artists))
		for _, a := range t.Artists {
			k := domain.ArtistKey(a)
			i, ok := index[k]
			if !ok {
				i = len(tallies)
				index[k] = i
				tallies = append(tallies, artistTally{key: k, name: a})
			}
			tallies[i].slots++
			tallies[i].credit += part
		}
	}

	sort.SliceStable(tallies, func(i, j int) bool {
		a, b := tallies[i], tallies[j]
		if !nearlyEqual(a.credit, b.credit) {
			return a.credit > b.credit
		}
		if a.slots != b.slots {
			return a.slots > b.slots
		}
		return a.key < b.key
	})
	return tallies
}

// nearlyEqual absorbs float drift from summing fractional credits.
func nearlyEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
