package analytics

import (
	"fmt"
	"sort"
	"time"

	"chartlens/pkg/contracts/domain"
)

// ExplicitBreakdown splits chart slots by explicit flag overall, per time
// window and by chart position. Ratio is nil when there are no clean slots.
func ExplicitBreakdown(tracks []domain.Track, window string) domain.ExplicitView {
	if window == "" {
		window = domain.WindowWeek
	}
	view := domain.ExplicitView{
		Total:  len(tracks),
		Window: window,
		Series: []domain.WindowCount{},
	}

	buckets := make(map[time.Time]*domain.WindowCount)
	var explicitRanks, cleanRanks []float64
	for _, t := range tracks {
		start := WindowStart(t.ChartDate, window)
		wc, ok := buckets[start]
		if !ok {
			wc = &domain.WindowCount{
				Window: WindowLabel(start, window),
				Start:  start.Format(domain.DateLayout),
			}
			buckets[start] = wc
		}
		if t.Explicit {
			view.Explicit++
			wc.Explicit++
			explicitRanks = append(explicitRanks, float64(t.Position))
		} else {
			view.Clean++
			wc.Clean++
			cleanRanks = append(cleanRanks, float64(t.Position))
		}
	}

	view.ExplicitShare = ratio(float64(view.Explicit), float64(view.Total))
	if view.Clean > 0 {
		r := float64(view.Explicit) / float64(view.Clean)
		view.Ratio = &r
	}

	starts := make([]time.Time, 0, len(buckets))
	for s := range buckets {
		starts = append(starts, s)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	for _, s := range starts {
		view.Series = append(view.Series, *buckets[s])
	}

	view.ExplicitRanks = summarize(explicitRanks)
	view.CleanRanks = summarize(cleanRanks)
	return view
}

// WindowStart returns the first day of the window containing t.
// Weeks start on Monday.
func WindowStart(t time.Time, window string) time.Time {
	day := domain.Date(t)
	switch window {
	case domain.WindowDay:
		return day
	case domain.WindowMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	}
}

// WindowLabel formats a window start for display.
func WindowLabel(start time.Time, window string) string {
	switch window {
	case domain.WindowDay:
		return start.Format(domain.DateLayout)
	case domain.WindowMonth:
		return start.Format("2006-01")
	default:
		y, w := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, w)
	}
}
