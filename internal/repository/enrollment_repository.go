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

// EnrollmentRepository persists (student, region, level) track enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByStudent returns all enrollments for one student.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	const query = `SELECT id, student_id, region, level, created_at FROM enrollments WHERE student_id = $1 ORDER BY region, level`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// Insert adds an enrollment if it does not already exist. Returns true when a
// new row was created; concurrent duplicate inserts land on the uniqueness
// target and report false.
func (r *EnrollmentRepository) Insert(ctx context.Context, enrollment *models.Enrollment) (bool, error) {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, student_id, region, level, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (student_id, region, level) DO NOTHING RETURNING id`
	var insertedID string
	err := r.db.QueryRowxContext(ctx, query, enrollment.ID, enrollment.StudentID, enrollment.Region, enrollment.Level, enrollment.CreatedAt).Scan(&insertedID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("insert enrollment: %w", err)
	}
	return true, nil
}

// Delete removes an enrollment by its composite key. Returns true when a row
// was removed.
func (r *EnrollmentRepository) Delete(ctx context.Context, studentID, region, level string) (bool, error) {
	const query = `DELETE FROM enrollments WHERE student_id = $1 AND region = $2 AND level = $3`
	result, err := r.db.ExecContext(ctx, query, studentID, region, level)
	if err != nil {
		return false, fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete enrollment rows affected: %w", err)
	}
	return affected > 0, nil
}

// RosterByTrack returns the students enrolled in a (region, level) track,
// joined with their display names. This is a meeting's roster.
func (r *EnrollmentRepository) RosterByTrack(ctx context.Context, region, level string) ([]models.RosterStudent, error) {
	const query = `SELECT e.student_id, u.full_name
FROM enrollments e
JOIN users u ON u.id = e.student_id
WHERE e.region = $1 AND e.level = $2
ORDER BY u.full_name`
	var roster []models.RosterStudent
	if err := r.db.SelectContext(ctx, &roster, query, region, level); err != nil {
		return nil, fmt.Errorf("roster by track: %w", err)
	}
	return roster, nil
}
