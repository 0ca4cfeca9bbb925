package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moyeo-lab/cohort-api/internal/models"
	appErrors "github.com/moyeo-lab/cohort-api/pkg/errors"
)

type mockAttendanceRepo struct {
	marks map[string]*models.AttendanceMark
}

func attendanceKey(meetingID, studentID string) string {
	return meetingID + "|" + studentID
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, mark *models.AttendanceMark) (*models.AttendanceMark, error) {
	if m.marks == nil {
		m.marks = make(map[string]*models.AttendanceMark)
	}
	key := attendanceKey(mark.MeetingID, mark.StudentID)
	if existing, ok := m.marks[key]; ok {
		existing.Status = mark.Status
		existing.MarkedAt = mark.MarkedAt
		return existing, nil
	}
	stored := *mark
	stored.ID = key
	m.marks[key] = &stored
	return &stored, nil
}

func (m *mockAttendanceRepo) Get(ctx context.Context, meetingID, studentID string) (*models.AttendanceMark, error) {
	if mark, ok := m.marks[attendanceKey(meetingID, studentID)]; ok {
		return mark, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceMark, error) {
	var out []models.AttendanceMark
	for _, mark := range m.marks {
		if mark.StudentID == studentID {
			out = append(out, *mark)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) ListByMeeting(ctx context.Context, meetingID string) ([]models.AttendanceMark, error) {
	var out []models.AttendanceMark
	for _, mark := range m.marks {
		if mark.MeetingID == meetingID {
			out = append(out, *mark)
		}
	}
	return out, nil
}

func newAttendanceFixture(t *testing.T, meetings ...models.Meeting) (*AttendanceService, *mockAttendanceRepo) {
	t.Helper()
	repo := &mockAttendanceRepo{}
	catalog := newTestCatalog(t, &mockMeetingRepo{meetings: meetings})
	svc := NewAttendanceService(repo, catalog, nil, zap.NewNop())
	return svc, repo
}

func TestAttendanceMarkBeforeEnd(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	meeting := testMeeting("m1", "seoul", "beginner", 1, now.Add(-time.Hour), timePtr(now.Add(time.Hour)))
	svc, repo := newAttendanceFixture(t, meeting)
	svc.now = func() time.Time { return now }

	mark, err := svc.Mark(context.Background(), "s1", MarkAttendanceRequest{MeetingID: "m1", Status: "PRESENT"})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPresent, mark.Status)
	assert.Len(t, repo.marks, 1)
}

func TestAttendanceMarkAtEndInstant(t *testing.T) {
	end := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	meeting := testMeeting("m1", "seoul", "beginner", 1, end.Add(-2*time.Hour), timePtr(end))
	svc, _ := newAttendanceFixture(t, meeting)
	svc.now = func() time.Time { return end }

	_, err := svc.Mark(context.Background(), "s1", MarkAttendanceRequest{MeetingID: "m1", Status: "CHECKED"})
	require.NoError(t, err)
}

func TestAttendanceMarkAfterEnd(t *testing.T) {
	end := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	meeting := testMeeting("m1", "seoul", "beginner", 1, end.Add(-2*time.Hour), timePtr(end))
	svc, repo := newAttendanceFixture(t, meeting)
	svc.now = func() time.Time { return end.Add(time.Second) }

	_, err := svc.Mark(context.Background(), "s1", MarkAttendanceRequest{MeetingID: "m1", Status: "PRESENT"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrWindowClosed.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.marks)
}

func TestAttendanceMarkOpenEndedMeeting(t *testing.T) {
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	meeting := testMeeting("m1", "seoul", "beginner", 1, start, nil)
	svc, _ := newAttendanceFixture(t, meeting)
	svc.now = func() time.Time { return start.Add(365 * 24 * time.Hour) }

	_, err := svc.Mark(context.Background(), "s1", MarkAttendanceRequest{MeetingID: "m1", Status: "ATTENDED"})
	require.NoError(t, err)
}

func TestAttendanceRemarkOverwrites(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	meeting := testMeeting("m1", "seoul", "beginner", 1, now.Add(-time.Hour), timePtr(now.Add(time.Hour)))
	svc, repo := newAttendanceFixture(t, meeting)
	svc.now = func() time.Time { return now }

	_, err := svc.Mark(context.Background(), "s1", MarkAttendanceRequest{MeetingID: "m1", Status: "PRESENT"})
	require.NoError(t, err)
	mark, err := svc.Mark(context.Background(), "s1", MarkAttendanceRequest{MeetingID: "m1", Status: "ABSENT"})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusAbsent, mark.Status)
	assert.Len(t, repo.marks, 1)
}

func TestAttendanceMarkInvalidStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	meeting := testMeeting("m1", "seoul", "beginner", 1, now.Add(-time.Hour), timePtr(now.Add(time.Hour)))
	svc, _ := newAttendanceFixture(t, meeting)
	svc.now = func() time.Time { return now }

	_, err := svc.Mark(context.Background(), "s1", MarkAttendanceRequest{MeetingID: "m1", Status: "LATE"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceMarkUnknownMeeting(t *testing.T) {
	svc, _ := newAttendanceFixture(t)
	_, err := svc.Mark(context.Background(), "s1", MarkAttendanceRequest{MeetingID: "missing", Status: "PRESENT"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
