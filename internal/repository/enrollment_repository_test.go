package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyeo-lab/cohort-api/internal/models"
)

func TestEnrollmentRepositoryInsertNewAndExisting(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("INSERT INTO enrollments").
		WithArgs(sqlmock.AnyArg(), "student-1", "Seoul", "L1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("enr-1"))

	created, err := repo.Insert(context.Background(), &models.Enrollment{
		StudentID: "student-1",
		Region:    "Seoul",
		Level:     "L1",
	})
	require.NoError(t, err)
	assert.True(t, created)

	// Existing (student, region, level) hits the conflict target.
	mock.ExpectQuery("INSERT INTO enrollments").
		WithArgs(sqlmock.AnyArg(), "student-1", "Seoul", "L1", sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	created, err = repo.Insert(context.Background(), &models.Enrollment{
		StudentID: "student-1",
		Region:    "Seoul",
		Level:     "L1",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("DELETE FROM enrollments").
		WithArgs("student-1", "Seoul", "L1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	removed, err := repo.Delete(context.Background(), "student-1", "Seoul", "L1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryRosterByTrack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "full_name"}).
		AddRow("student-1", "Kim Jiwoo").
		AddRow("student-2", "Lee Haeun")
	mock.ExpectQuery("SELECT (.+) FROM enrollments e").
		WithArgs("Seoul", "L1").
		WillReturnRows(rows)

	roster, err := repo.RosterByTrack(context.Background(), "Seoul", "L1")
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Kim Jiwoo", roster[0].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "student_id", "region", "level", "created_at"}).
		AddRow("enr-1", "student-1", "Busan", "L2", now).
		AddRow("enr-2", "student-1", "Seoul", "L1", now)
	mock.ExpectQuery("SELECT (.+) FROM enrollments WHERE student_id").
		WithArgs("student-1").
		WillReturnRows(rows)

	enrollments, err := repo.ListByStudent(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	assert.Equal(t, models.TrackKey{Region: "Busan", Level: "L2"}, enrollments[0].Track())
	assert.NoError(t, mock.ExpectationsWereMet())
}
