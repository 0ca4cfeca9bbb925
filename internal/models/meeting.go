package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TrackKey identifies a (region, level) study track. Marks, enrollments and
// preferences all hang off this composite key rather than a meeting object.
type TrackKey struct {
	Region string `json:"region"`
	Level  string `json:"level"`
}

// Valid reports whether both components are non-empty. Pairs with an empty
// region or level never count toward quota.
func (k TrackKey) Valid() bool {
	return k.Region != "" && k.Level != ""
}

// Meeting is one scheduled class occurrence within a track. The engine treats
// meetings as read-only catalog data; they are created and edited elsewhere.
type Meeting struct {
	ID          string         `db:"id" json:"id"`
	Region      string         `db:"region" json:"region"`
	Level       string         `db:"level" json:"level"`
	SequenceNo  int            `db:"sequence_no" json:"sequence_no"`
	StartsAt    time.Time      `db:"starts_at" json:"starts_at"`
	EndsAt      *time.Time     `db:"ends_at" json:"ends_at,omitempty"`
	Instructors types.JSONText `db:"instructors" json:"instructors,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Track returns the meeting's composite track key.
func (m Meeting) Track() TrackKey {
	return TrackKey{Region: m.Region, Level: m.Level}
}

// MeetingFilter scopes catalog listing queries.
type MeetingFilter struct {
	Region    string
	Level     string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// MeetingView decorates a catalog row with evaluator output for the current
// student.
type MeetingView struct {
	Meeting
	Tag               string `json:"tag"`
	Ongoing           bool   `json:"ongoing"`
	Ended             bool   `json:"ended"`
	CanMarkAttendance bool   `json:"can_mark_attendance"`
	CanUploadHomework bool   `json:"can_upload_homework"`
}
