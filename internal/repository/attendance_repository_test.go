package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyeo-lab/cohort-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAttendanceRepositoryUpsertOverwrites(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now().UTC()
	columns := []string{"id", "meeting_id", "student_id", "status", "marked_at", "created_at", "updated_at"}

	mock.ExpectQuery("INSERT INTO attendance_marks").
		WithArgs(sqlmock.AnyArg(), "meeting-1", "student-1", models.AttendanceStatusPresent, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("mark-1", "meeting-1", "student-1", "PRESENT", now, now, now))

	stored, err := repo.Upsert(context.Background(), &models.AttendanceMark{
		MeetingID: "meeting-1",
		StudentID: "student-1",
		Status:    models.AttendanceStatusPresent,
	})
	require.NoError(t, err)
	assert.Equal(t, "mark-1", stored.ID)

	// A second mark for the same pair lands on the conflict target and
	// returns the same row with the new status.
	mock.ExpectQuery("INSERT INTO attendance_marks").
		WithArgs(sqlmock.AnyArg(), "meeting-1", "student-1", models.AttendanceStatusChecked, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("mark-1", "meeting-1", "student-1", "CHECKED", now, now, now))

	stored, err = repo.Upsert(context.Background(), &models.AttendanceMark{
		MeetingID: "meeting-1",
		StudentID: "student-1",
		Status:    models.AttendanceStatusChecked,
	})
	require.NoError(t, err)
	assert.Equal(t, "mark-1", stored.ID)
	assert.Equal(t, models.AttendanceStatusChecked, stored.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "meeting_id", "student_id", "status", "marked_at", "created_at", "updated_at"}).
		AddRow("mark-1", "meeting-1", "student-1", "PRESENT", now, now, now).
		AddRow("mark-2", "meeting-2", "student-1", "ABSENT", now, now, now)
	mock.ExpectQuery("SELECT (.+) FROM attendance_marks WHERE student_id").
		WithArgs("student-1").
		WillReturnRows(rows)

	marks, err := repo.ListByStudent(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.True(t, marks[0].Status.Present())
	assert.False(t, marks[1].Status.Present())
	assert.NoError(t, mock.ExpectationsWereMet())
}
