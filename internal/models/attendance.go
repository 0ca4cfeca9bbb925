package models

import "time"

// AttendanceStatus represents the status for attendance marks.
type AttendanceStatus string

const (
	AttendanceStatusPresent  AttendanceStatus = "PRESENT"
	AttendanceStatusChecked  AttendanceStatus = "CHECKED"
	AttendanceStatusAttended AttendanceStatus = "ATTENDED"
	AttendanceStatusAbsent   AttendanceStatus = "ABSENT"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusChecked, AttendanceStatusAttended, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// Present reports whether the status counts toward attendance rates.
func (s AttendanceStatus) Present() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusChecked, AttendanceStatusAttended:
		return true
	default:
		return false
	}
}

// AttendanceMark is a per-(meeting, student) attendance record. At most one
// row per pair; repeated marks overwrite status and timestamp.
type AttendanceMark struct {
	ID        string           `db:"id" json:"id"`
	MeetingID string           `db:"meeting_id" json:"meeting_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	MarkedAt  time.Time        `db:"marked_at" json:"marked_at"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}
