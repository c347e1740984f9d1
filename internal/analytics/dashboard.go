package analytics

import (
	"chartlens/pkg/contracts/domain"
)

// KPIs computes the headline market-structure indicators.
func KPIs(tracks []domain.Track) domain.KPIView {
	conc := Concentration(tracks, domain.DefaultTopN)
	return kpisFrom(tracks, conc, Collaborations(tracks), ExplicitBreakdown(tracks, domain.WindowWeek), ReleaseStrategy(tracks))
}

func kpisFrom(tracks []domain.Track, conc domain.ConcentrationView, collab domain.CollaborationView,
	explicit domain.ExplicitView, release domain.ReleaseView) domain.KPIView {
	kpi := domain.KPIView{
		TotalSlots:         len(tracks),
		ACI:                conc.ACI,
		Top5Share:          conc.Top5Share,
		UniqueArtists:      conc.UniqueArtists,
		DiversityScore:     conc.Diversity,
		CollaborationRatio: collab.Ratio,
		ExplicitShare:      explicit.ExplicitShare,
		AlbumDistribution:  make([]domain.LabelShare, 0, len(release.Counts)),
	}
	for _, c := range release.Counts {
		kpi.AlbumDistribution = append(kpi.AlbumDistribution, domain.LabelShare{Label: c.ReleaseType, Share: c.Share})
	}

	// distinct song titles, regardless of who performs them
	titles := make(map[string]bool)
	for _, t := range tracks {
		titles[domain.ArtistKey(t.Title)] = true
	}
	kpi.ContentVariety = ratio(float64(len(titles)), float64(len(tracks)))
	return kpi
}

// Dashboard applies f to ds and computes every view in one pass over the
// filtered tracks. An empty match is not an error.
func Dashboard(ds *domain.Dataset, f domain.Filter) domain.DashboardView {
	f = f.WithDefaults()
	tracks := Apply(ds, f)

	conc := Concentration(tracks, f.TopN)
	collab := Collaborations(tracks)
	explicit := ExplicitBreakdown(tracks, f.Window)
	release := ReleaseStrategy(tracks)

	return domain.DashboardView{
		Empty:          len(tracks) == 0,
		Filter:         f.Echo(),
		KPIs:           kpisFrom(tracks, conc, collab, explicit, release),
		Concentration:  conc,
		Collaborations: collab,
		Explicit:       explicit,
		Release:        release,
		Durations:      DurationStats(tracks),
		RankGroups:     RankGroups(tracks),
	}
}
