package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/moyeo-lab/cohort-api/internal/models"
)

// AttendanceRepository persists attendance marks. One row per
// (meeting, student); repeated marks overwrite in place.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert inserts or updates the mark for a (meeting, student) pair.
// Last write wins on status and timestamp; concurrent calls race harmlessly
// onto the same conflict target.
func (r *AttendanceRepository) Upsert(ctx context.Context, mark *models.AttendanceMark) (*models.AttendanceMark, error) {
	now := time.Now().UTC()
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	if mark.CreatedAt.IsZero() {
		mark.CreatedAt = now
	}
	if mark.MarkedAt.IsZero() {
		mark.MarkedAt = now
	}
	mark.UpdatedAt = now
	const query = `INSERT INTO attendance_marks (id, meeting_id, student_id, status, marked_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (meeting_id, student_id)
DO UPDATE SET status = EXCLUDED.status, marked_at = EXCLUDED.marked_at, updated_at = EXCLUDED.updated_at
RETURNING id, meeting_id, student_id, status, marked_at, created_at, updated_at`
	var stored models.AttendanceMark
	if err := r.db.GetContext(ctx, &stored, query, mark.ID, mark.MeetingID, mark.StudentID, mark.Status, mark.MarkedAt, mark.CreatedAt, mark.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert attendance mark: %w", err)
	}
	return &stored, nil
}

// Get returns the mark for one (meeting, student) pair.
func (r *AttendanceRepository) Get(ctx context.Context, meetingID, studentID string) (*models.AttendanceMark, error) {
	const query = `SELECT id, meeting_id, student_id, status, marked_at, created_at, updated_at FROM attendance_marks WHERE meeting_id = $1 AND student_id = $2 LIMIT 1`
	var mark models.AttendanceMark
	if err := r.db.GetContext(ctx, &mark, query, meetingID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get attendance mark: %w", err)
	}
	return &mark, nil
}

// ListByStudent returns all marks belonging to one student.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceMark, error) {
	const query = `SELECT id, meeting_id, student_id, status, marked_at, created_at, updated_at FROM attendance_marks WHERE student_id = $1`
	var marks []models.AttendanceMark
	if err := r.db.SelectContext(ctx, &marks, query, studentID); err != nil {
		return nil, fmt.Errorf("list attendance marks by student: %w", err)
	}
	return marks, nil
}

// ListByMeeting returns all marks recorded for one meeting.
func (r *AttendanceRepository) ListByMeeting(ctx context.Context, meetingID string) ([]models.AttendanceMark, error) {
	const query = `SELECT id, meeting_id, student_id, status, marked_at, created_at, updated_at FROM attendance_marks WHERE meeting_id = $1`
	var marks []models.AttendanceMark
	if err := r.db.SelectContext(ctx, &marks, query, meetingID); err != nil {
		return nil, fmt.Errorf("list attendance marks by meeting: %w", err)
	}
	return marks, nil
}
