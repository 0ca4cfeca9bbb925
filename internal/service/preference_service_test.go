package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moyeo-lab/cohort-api/internal/models"
	appErrors "github.com/moyeo-lab/cohort-api/pkg/errors"
)

type mockPreferenceRepo struct {
	rows map[string]*models.PreferenceRow
}

func preferenceKey(studentID, region, level string) string {
	return studentID + "|" + region + "|" + level
}

func (m *mockPreferenceRepo) ListByStudent(ctx context.Context, studentID string) ([]models.PreferenceRow, error) {
	var out []models.PreferenceRow
	for _, row := range m.rows {
		if row.StudentID == studentID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *mockPreferenceRepo) SetFavorite(ctx context.Context, studentID, region, level string, value bool) (*models.PreferenceRow, error) {
	row := m.upsert(studentID, region, level)
	row.IsFavorite = value
	return row, nil
}

func (m *mockPreferenceRepo) SetNotify(ctx context.Context, studentID, region, level string, value bool) (*models.PreferenceRow, error) {
	row := m.upsert(studentID, region, level)
	row.NotifyEnabled = value
	return row, nil
}

func (m *mockPreferenceRepo) upsert(studentID, region, level string) *models.PreferenceRow {
	if m.rows == nil {
		m.rows = make(map[string]*models.PreferenceRow)
	}
	key := preferenceKey(studentID, region, level)
	if row, ok := m.rows[key]; ok {
		return row
	}
	row := &models.PreferenceRow{ID: key, StudentID: studentID, Region: region, Level: level}
	m.rows[key] = row
	return row
}

func newPreferenceFixture(t *testing.T, repo *mockPreferenceRepo, meetings ...models.Meeting) *PreferenceService {
	t.Helper()
	catalog := newTestCatalog(t, &mockMeetingRepo{meetings: meetings})
	return NewPreferenceService(repo, catalog, nil, zap.NewNop())
}

func TestPreferenceFlagsAreIndependent(t *testing.T) {
	repo := &mockPreferenceRepo{}
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newPreferenceFixture(t, repo, testMeeting("m1", "seoul", "beginner", 1, start, nil))

	row, err := svc.SetFavorite(context.Background(), "s1", TogglePreferenceRequest{Region: "seoul", Level: "beginner", Value: true})
	require.NoError(t, err)
	assert.True(t, row.IsFavorite)
	assert.False(t, row.NotifyEnabled)

	row, err = svc.SetNotify(context.Background(), "s1", TogglePreferenceRequest{Region: "seoul", Level: "beginner", Value: true})
	require.NoError(t, err)
	assert.True(t, row.IsFavorite)
	assert.True(t, row.NotifyEnabled)

	row, err = svc.SetFavorite(context.Background(), "s1", TogglePreferenceRequest{Region: "seoul", Level: "beginner", Value: false})
	require.NoError(t, err)
	assert.False(t, row.IsFavorite)
	assert.True(t, row.NotifyEnabled)
}

func TestPreferenceListHidesStaleTracks(t *testing.T) {
	repo := &mockPreferenceRepo{}
	ctx := context.Background()
	for _, track := range []models.TrackKey{
		{Region: "seoul", Level: "beginner"},
		{Region: "busan", Level: "advanced"},
		{Region: "daegu", Level: "beginner"},
	} {
		_, err := repo.SetFavorite(ctx, "s1", track.Region, track.Level, true)
		require.NoError(t, err)
	}

	// catalog currently carries only two of the three tracks
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newPreferenceFixture(t, repo,
		testMeeting("m1", "seoul", "beginner", 1, start, nil),
		testMeeting("m2", "daegu", "beginner", 1, start, nil),
	)

	list, err := svc.List(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, list.Visible, 2)
	assert.Equal(t, 1, list.HiddenCount)
	for _, row := range list.Visible {
		assert.NotEqual(t, "busan", row.Region)
	}
}

func TestPreferenceListEmpty(t *testing.T) {
	svc := newPreferenceFixture(t, &mockPreferenceRepo{})
	list, err := svc.List(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, list.Visible)
	assert.Zero(t, list.HiddenCount)
}

func TestPreferenceSetFlagValidation(t *testing.T) {
	svc := newPreferenceFixture(t, &mockPreferenceRepo{})
	_, err := svc.SetNotify(context.Background(), "s1", TogglePreferenceRequest{Region: "seoul"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
