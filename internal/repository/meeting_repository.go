package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/moyeo-lab/cohort-api/internal/models"
)

// MeetingRepository reads the meeting catalog. Meetings are created and
// edited by an external admin tool; this engine only reads them.
type MeetingRepository struct {
	db *sqlx.DB
}

// NewMeetingRepository constructs the repository.
func NewMeetingRepository(db *sqlx.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

const meetingColumns = `id, region, level, sequence_no, starts_at, ends_at, instructors, created_at, updated_at`

// GetByID returns one meeting.
func (r *MeetingRepository) GetByID(ctx context.Context, id string) (*models.Meeting, error) {
	query := fmt.Sprintf(`SELECT %s FROM meetings WHERE id = $1 LIMIT 1`, meetingColumns)
	var meeting models.Meeting
	if err := r.db.GetContext(ctx, &meeting, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find meeting by id: %w", err)
	}
	return &meeting, nil
}

// ListAll returns the full, unfiltered catalog ordered by track and sequence.
// Quota scoping and preference reconciliation both need the complete set, not
// a time-windowed slice.
func (r *MeetingRepository) ListAll(ctx context.Context) ([]models.Meeting, error) {
	query := fmt.Sprintf(`SELECT %s FROM meetings ORDER BY region, level, sequence_no`, meetingColumns)
	var meetings []models.Meeting
	if err := r.db.SelectContext(ctx, &meetings, query); err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return meetings, nil
}

// List returns a filtered, paginated catalog slice with total count.
func (r *MeetingRepository) List(ctx context.Context, filter models.MeetingFilter) ([]models.Meeting, int, error) {
	baseQuery := `FROM meetings WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Region != "" {
		conditions = append(conditions, fmt.Sprintf("region = $%d", len(args)+1))
		args = append(args, filter.Region)
	}
	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("level = $%d", len(args)+1))
		args = append(args, filter.Level)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("starts_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("starts_at <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"starts_at":   true,
		"sequence_no": true,
		"created_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "starts_at"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", meetingColumns, baseQuery, sortBy, sortOrder, pageSize, offset)
	var meetings []models.Meeting
	if err := r.db.SelectContext(ctx, &meetings, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list meetings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count meetings: %w", err)
	}
	return meetings, total, nil
}

// ActivePairs returns the distinct (region, level) pairs present in the
// catalog. Preferences whose pair is absent from this set are stale.
func (r *MeetingRepository) ActivePairs(ctx context.Context) ([]models.TrackKey, error) {
	const query = `SELECT DISTINCT region, level FROM meetings ORDER BY region, level`
	var pairs []models.TrackKey
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active pairs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key models.TrackKey
		if err := rows.Scan(&key.Region, &key.Level); err != nil {
			return nil, fmt.Errorf("scan active pair: %w", err)
		}
		pairs = append(pairs, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active pairs: %w", err)
	}
	return pairs, nil
}
