package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/moyeo-lab/cohort-api/internal/models"
	appErrors "github.com/moyeo-lab/cohort-api/pkg/errors"
)

// HomeworkRepository persists homework submissions. One row per
// (meeting, student); unlike attendance marks an existing row is never
// overwritten, it must be deleted first.
type HomeworkRepository struct {
	db *sqlx.DB
}

// NewHomeworkRepository constructs the repository.
func NewHomeworkRepository(db *sqlx.DB) *HomeworkRepository {
	return &HomeworkRepository{db: db}
}

// Insert stores a new submission. When a row already exists for the
// (meeting, student) pair the uniqueness target swallows the insert and the
// call fails with ErrDuplicateSubmission; under concurrent submits exactly
// one caller wins.
func (r *HomeworkRepository) Insert(ctx context.Context, submission *models.HomeworkSubmission) (*models.HomeworkSubmission, error) {
	now := time.Now().UTC()
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = now
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = now
	}
	submission.UpdatedAt = now
	const query = `INSERT INTO homework_submissions (id, meeting_id, student_id, submitted_at, note, media_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (meeting_id, student_id) DO NOTHING RETURNING id`
	var insertedID string
	err := r.db.QueryRowxContext(ctx, query, submission.ID, submission.MeetingID, submission.StudentID, submission.SubmittedAt, submission.Note, submission.MediaURL, submission.CreatedAt, submission.UpdatedAt).Scan(&insertedID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrDuplicateSubmission
		}
		return nil, fmt.Errorf("insert homework submission: %w", err)
	}
	submission.ID = insertedID
	return submission, nil
}

// Delete removes the submission for one (meeting, student) pair. Returns true
// when a row was removed. External homework-post deletion cascades through
// here by convention.
func (r *HomeworkRepository) Delete(ctx context.Context, meetingID, studentID string) (bool, error) {
	const query = `DELETE FROM homework_submissions WHERE meeting_id = $1 AND student_id = $2`
	result, err := r.db.ExecContext(ctx, query, meetingID, studentID)
	if err != nil {
		return false, fmt.Errorf("delete homework submission: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete homework submission rows affected: %w", err)
	}
	return affected > 0, nil
}

// Get returns the submission for one (meeting, student) pair.
func (r *HomeworkRepository) Get(ctx context.Context, meetingID, studentID string) (*models.HomeworkSubmission, error) {
	const query = `SELECT id, meeting_id, student_id, submitted_at, note, media_url, created_at, updated_at FROM homework_submissions WHERE meeting_id = $1 AND student_id = $2 LIMIT 1`
	var submission models.HomeworkSubmission
	if err := r.db.GetContext(ctx, &submission, query, meetingID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get homework submission: %w", err)
	}
	return &submission, nil
}

// ListByStudent returns all submissions belonging to one student.
func (r *HomeworkRepository) ListByStudent(ctx context.Context, studentID string) ([]models.HomeworkSubmission, error) {
	const query = `SELECT id, meeting_id, student_id, submitted_at, note, media_url, created_at, updated_at FROM homework_submissions WHERE student_id = $1`
	var submissions []models.HomeworkSubmission
	if err := r.db.SelectContext(ctx, &submissions, query, studentID); err != nil {
		return nil, fmt.Errorf("list homework submissions by student: %w", err)
	}
	return submissions, nil
}

// ListByMeeting returns all submissions recorded for one meeting.
func (r *HomeworkRepository) ListByMeeting(ctx context.Context, meetingID string) ([]models.HomeworkSubmission, error) {
	const query = `SELECT id, meeting_id, student_id, submitted_at, note, media_url, created_at, updated_at FROM homework_submissions WHERE meeting_id = $1`
	var submissions []models.HomeworkSubmission
	if err := r.db.SelectContext(ctx, &submissions, query, meetingID); err != nil {
		return nil, fmt.Errorf("list homework submissions by meeting: %w", err)
	}
	return submissions, nil
}
