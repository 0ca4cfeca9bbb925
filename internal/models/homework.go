package models

import "time"

// HomeworkSubmission is a per-(meeting, student) homework record. At most one
// row per pair; a non-null submitted_at means "submitted". Re-submission
// requires deleting the existing row first.
type HomeworkSubmission struct {
	ID          string    `db:"id" json:"id"`
	MeetingID   string    `db:"meeting_id" json:"meeting_id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
	Note        *string   `db:"note" json:"note,omitempty"`
	MediaURL    *string   `db:"media_url" json:"media_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
