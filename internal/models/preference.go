package models

import "time"

// PreferenceRow holds a student's favorite and notification flags for one
// (region, level) track. The two flags are toggled independently but share a
// single row; per-flag upserts must never clobber the other flag.
type PreferenceRow struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	Region        string    `db:"region" json:"region"`
	Level         string    `db:"level" json:"level"`
	IsFavorite    bool      `db:"is_favorite" json:"is_favorite"`
	NotifyEnabled bool      `db:"notify_enabled" json:"notify_enabled"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Track returns the preference's composite track key.
func (p PreferenceRow) Track() TrackKey {
	return TrackKey{Region: p.Region, Level: p.Level}
}

// PreferenceList is the reconciled view of a student's preferences: rows whose
// track still exists in the catalog, plus a count of suppressed stale rows.
type PreferenceList struct {
	Visible     []PreferenceRow `json:"visible"`
	HiddenCount int             `json:"hidden_count"`
}
