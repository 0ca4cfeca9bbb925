package models

// EligibilitySnapshot is the derived per-student engagement view. It is
// recomputed from current enrollments, meetings and marks on every request
// and never persisted.
type EligibilitySnapshot struct {
	StudentID      string `json:"student_id"`
	Quota          int    `json:"quota"`
	InScopeCount   int    `json:"in_scope_count"`
	AttendedCount  int    `json:"attended_count"`
	SubmittedCount int    `json:"submitted_count"`
	AttendanceRate int    `json:"attendance_rate"`
	HomeworkRate   int    `json:"homework_rate"`
}

// CohortRates summarises one meeting's roster: who attended, who submitted,
// and the resulting percentages. The roster size is the denominator; the
// fixed per-track quota does not apply here.
type CohortRates struct {
	MeetingID         string          `json:"meeting_id"`
	RosterSize        int             `json:"roster_size"`
	AttendedCount     int             `json:"attended_count"`
	SubmittedCount    int             `json:"submitted_count"`
	AttendanceRate    int             `json:"attendance_rate"`
	HomeworkRate      int             `json:"homework_rate"`
	MissingAttendance []RosterStudent `json:"missing_attendance"`
	MissingHomework   []RosterStudent `json:"missing_homework"`
}

// RosterStatusRow is one roster line in a meeting report: the student plus
// their recorded attendance status and homework state for that meeting.
type RosterStatusRow struct {
	StudentID         string `json:"student_id"`
	FullName          string `json:"full_name"`
	AttendanceStatus  string `json:"attendance_status"`
	HomeworkSubmitted bool   `json:"homework_submitted"`
}
