// Package dataprocessing loads UK Top 50 chart exports into a normalised,
// read-only dataset.
//
// # Sources
//
// CSV and XLSX files are supported. Headers are matched case-insensitively
// and several spellings are accepted, for example "song", "title" and
// "track_name" all map to the track title. The date, position, title and
// artist columns are required.
//
// # Cleaning
//
// Loading mirrors the clean-up applied to the raw playlist scrape:
//
//	Rows → drop blank → drop duplicates → drop incomplete → parse → derive
//
// Exact duplicate rows and rows missing a required cell are dropped and
// counted in DatasetMeta. A required cell that is present but cannot be
// parsed is a *LoadError carrying the line and column.
//
// # Derived fields
//
// Artist credits are split on "&", ",", ";", "feat.", "ft." and
// "featuring". The first spelling seen for an artist is used everywhere.
// Release type, duration bucket, rank group and track key are computed once
// so the analytics layer never re-parses raw values.
//
// # Usage
//
//	ds, err := dataprocessing.Load(ctx, "data/uk_top50.csv", dataprocessing.Options{Logger: logger})
//	if err != nil {
//	    var le *dataprocessing.LoadError
//	    if errors.As(err, &le) { ... }
//	}
package dataprocessing
