package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/moyeo-lab/cohort-api/internal/models"
)

// PreferenceRepository persists per-track favorite and notification flags.
// One row per (student, region, level); each flag has its own upsert so that
// toggling one never clobbers the other.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs the repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// ListByStudent returns all preference rows for one student, stale or not.
// Staleness is a read-time concern decided against the live catalog.
func (r *PreferenceRepository) ListByStudent(ctx context.Context, studentID string) ([]models.PreferenceRow, error) {
	const query = `SELECT id, student_id, region, level, is_favorite, notify_enabled, created_at, updated_at FROM preferences WHERE student_id = $1 ORDER BY region, level`
	var rows []models.PreferenceRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return rows, nil
}

// SetFavorite upserts the favorite flag for one track. A fresh row defaults
// notify_enabled to false; an existing row keeps its notify_enabled value.
func (r *PreferenceRepository) SetFavorite(ctx context.Context, studentID, region, level string, value bool) (*models.PreferenceRow, error) {
	return r.setFlag(ctx, studentID, region, level, "is_favorite", value)
}

// SetNotify upserts the notification flag for one track, preserving the
// favorite flag the same way.
func (r *PreferenceRepository) SetNotify(ctx context.Context, studentID, region, level string, value bool) (*models.PreferenceRow, error) {
	return r.setFlag(ctx, studentID, region, level, "notify_enabled", value)
}

func (r *PreferenceRepository) setFlag(ctx context.Context, studentID, region, level, column string, value bool) (*models.PreferenceRow, error) {
	now := time.Now().UTC()
	var isFavorite, notifyEnabled bool
	switch column {
	case "is_favorite":
		isFavorite = value
	case "notify_enabled":
		notifyEnabled = value
	default:
		return nil, fmt.Errorf("unknown preference flag %q", column)
	}
	query := fmt.Sprintf(`INSERT INTO preferences (id, student_id, region, level, is_favorite, notify_enabled, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (student_id, region, level)
DO UPDATE SET %s = EXCLUDED.%s, updated_at = EXCLUDED.updated_at
RETURNING id, student_id, region, level, is_favorite, notify_enabled, created_at, updated_at`, column, column)
	var stored models.PreferenceRow
	if err := r.db.GetContext(ctx, &stored, query, uuid.NewString(), studentID, region, level, isFavorite, notifyEnabled, now, now); err != nil {
		return nil, fmt.Errorf("set preference %s: %w", column, err)
	}
	return &stored, nil
}
