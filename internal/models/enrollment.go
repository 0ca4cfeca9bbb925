package models

import "time"

// Enrollment records that a student follows a (region, level) track. Unique
// on (student_id, region, level); toggled by the student.
type Enrollment struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Region    string    `db:"region" json:"region"`
	Level     string    `db:"level" json:"level"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Track returns the enrollment's composite track key.
func (e Enrollment) Track() TrackKey {
	return TrackKey{Region: e.Region, Level: e.Level}
}

// RosterStudent is one student on a meeting's roster, derived from the
// enrollments matching the meeting's track.
type RosterStudent struct {
	StudentID string `db:"student_id" json:"student_id"`
	FullName  string `db:"full_name" json:"full_name"`
}
