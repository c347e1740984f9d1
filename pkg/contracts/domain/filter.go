package domain

import "time"

// Explicit content modes
const (
	ExplicitAll     = "all"
	ExplicitOnly    = "explicit"
	ExplicitExclude = "clean"
)

// Track type modes
const (
	TrackTypeAll    = "all"
	TrackTypeSolo   = "solo"
	TrackTypeCollab = "collab"
)

// Time windows for grouped series
const (
	WindowDay   = "day"
	WindowWeek  = "week"
	WindowMonth = "month"
)

// DefaultTopN is the leaderboard size used when none is requested.
const DefaultTopN = 15

// Filter is the user's current selection. It is recreated on every
// interaction and never shared between sessions.
type Filter struct {
	From         time.Time `json:"from,omitempty"`
	To           time.Time `json:"to,omitempty"`
	Artists      []string  `json:"artists,omitempty" validate:"omitempty,dive,required,max=200"`
	Explicit     string    `json:"explicit,omitempty" validate:"omitempty,oneof=all explicit clean"`
	ReleaseTypes []string  `json:"release_types,omitempty" validate:"omitempty,dive,required,max=50"`
	TrackType    string    `json:"track_type,omitempty" validate:"omitempty,oneof=all solo collab"`
	Genres       []string  `json:"genres,omitempty" validate:"omitempty,dive,required,max=100"`
	MinDuration  float64   `json:"min_duration,omitempty" validate:"gte=0"`
	MaxDuration  float64   `json:"max_duration,omitempty" validate:"omitempty,gtefield=MinDuration"`
	Window       string    `json:"window,omitempty" validate:"omitempty,oneof=day week month"`
	TopN         int       `json:"top,omitempty" validate:"omitempty,min=1,max=50"`
}

// DateRangeValid reports whether To is not before From when both are set.
func (f Filter) DateRangeValid() bool {
	if f.From.IsZero() || f.To.IsZero() {
		return true
	}
	return !f.To.Before(f.From)
}

// WithDefaults fills unset modes with their defaults.
func (f Filter) WithDefaults() Filter {
	if f.Explicit == "" {
		f.Explicit = ExplicitAll
	}
	if f.TrackType == "" {
		f.TrackType = TrackTypeAll
	}
	if f.Window == "" {
		f.Window = WindowWeek
	}
	if f.TopN == 0 {
		f.TopN = DefaultTopN
	}
	return f
}
