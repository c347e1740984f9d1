package analytics

import (
	"sort"

	"chartlens/pkg/contracts/domain"
)

// ReleaseStrategy compares the chart presence of singles and album tracks.
func ReleaseStrategy(tracks []domain.Track) domain.ReleaseView {
	view := domain.ReleaseView{
		Total:          len(tracks),
		Counts:         []domain.ReleaseCount{},
		AlbumSizeRanks: []domain.Point{},
	}

	index := make(map[domain.ReleaseType]int)
	distinct := make(map[domain.ReleaseType]map[string]bool)
	for _, t := range tracks {
		i, ok := index[t.ReleaseType]
		if !ok {
			i = len(view.Counts)
			index[t.ReleaseType] = i
			view.Counts = append(view.Counts, domain.ReleaseCount{ReleaseType: string(t.ReleaseType)})
			distinct[t.ReleaseType] = make(map[string]bool)
		}
		view.Counts[i].Slots++
		distinct[t.ReleaseType][t.Key] = true

		if t.TotalTracks > 0 {
			view.AlbumSizeRanks = append(view.AlbumSizeRanks, domain.Point{
				X:     float64(t.TotalTracks),
				Y:     float64(t.Position),
				Label: t.Title,
			})
		}
	}

	for i := range view.Counts {
		c := &view.Counts[i]
		c.Tracks = len(distinct[domain.ReleaseType(c.ReleaseType)])
		c.Share = ratio(float64(c.Slots), float64(view.Total))
	}
	sort.Slice(view.Counts, func(i, j int) bool {
		a, b := view.Counts[i], view.Counts[j]
		if a.Slots != b.Slots {
			return a.Slots > b.Slots
		}
		return a.ReleaseType < b.ReleaseType
	})
	return view
}
