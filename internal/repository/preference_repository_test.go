package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferenceRepositorySetFavoritePreservesNotify(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	now := time.Now().UTC()
	columns := []string{"id", "student_id", "region", "level", "is_favorite", "notify_enabled", "created_at", "updated_at"}

	// The row already had notify enabled; the favorite upsert must not
	// touch that column.
	mock.ExpectQuery("INSERT INTO preferences").
		WithArgs(sqlmock.AnyArg(), "student-1", "Seoul", "L1", true, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("pref-1", "student-1", "Seoul", "L1", true, true, now, now))

	stored, err := repo.SetFavorite(context.Background(), "student-1", "Seoul", "L1", true)
	require.NoError(t, err)
	assert.True(t, stored.IsFavorite)
	assert.True(t, stored.NotifyEnabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositorySetNotifyFirstCreation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	now := time.Now().UTC()
	columns := []string{"id", "student_id", "region", "level", "is_favorite", "notify_enabled", "created_at", "updated_at"}

	mock.ExpectQuery("INSERT INTO preferences").
		WithArgs(sqlmock.AnyArg(), "student-1", "Busan", "L2", false, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("pref-2", "student-1", "Busan", "L2", false, true, now, now))

	stored, err := repo.SetNotify(context.Background(), "student-1", "Busan", "L2", true)
	require.NoError(t, err)
	assert.False(t, stored.IsFavorite)
	assert.True(t, stored.NotifyEnabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "student_id", "region", "level", "is_favorite", "notify_enabled", "created_at", "updated_at"}).
		AddRow("pref-1", "student-1", "Seoul", "L1", true, false, now, now).
		AddRow("pref-2", "student-1", "Busan", "L2", false, true, now, now)
	mock.ExpectQuery("SELECT (.+) FROM preferences WHERE student_id").
		WithArgs("student-1").
		WillReturnRows(rows)

	prefs, err := repo.ListByStudent(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	assert.Equal(t, "Seoul", prefs[0].Region)
	assert.NoError(t, mock.ExpectationsWereMet())
}
