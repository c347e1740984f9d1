package analytics

import (
	"sort"

	"chartlens/pkg/contracts/domain"
)

// DurationStats summarises track lengths. Tracks without a known duration
// are left out of every figure.
func DurationStats(tracks []domain.Track) domain.DurationView {
	view := domain.DurationView{
		Distribution:       make([]domain.BucketCount, len(domain.DurationBuckets)),
		PopularityByLength: []domain.Point{},
	}
	pos := make(map[domain.DurationBucket]int, len(domain.DurationBuckets))
	for i, b := range domain.DurationBuckets {
		view.Distribution[i] = domain.BucketCount{Bucket: b}
		pos[b] = i
	}

	var values []float64
	for _, t := range tracks {
		if t.Duration <= 0 {
			continue
		}
		values = append(values, t.Duration)
		view.Distribution[pos[domain.BucketFor(t.Duration)]].Count++
		if t.Popularity > 0 {
			view.PopularityByLength = append(view.PopularityByLength, domain.Point{
				X:     t.Duration,
				Y:     float64(t.Popularity),
				Label: t.Title,
			})
		}
	}
	if len(values) == 0 {
		return view
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	view.Count = len(sorted)
	view.Mean = mean(sorted)
	view.Median = quantile(sorted, 0.5)
	view.Min = sorted[0]
	view.Max = sorted[len(sorted)-1]
	view.StdDev = stdDev(sorted)
	return view
}

// RankGroups counts slots in each rank segment.
func RankGroups(tracks []domain.Track) []domain.RankGroupCount {
	out := make([]domain.RankGroupCount, len(domain.RankGroups))
	for i, g := range domain.RankGroups {
		out[i].Group = g
	}
	for _, t := range tracks {
		for i, g := range domain.RankGroups {
			if domain.RankGroupFor(t.Position) == g {
				out[i].Count++
			}
		}
	}
	return out
}
