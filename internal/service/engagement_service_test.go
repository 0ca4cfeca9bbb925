package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moyeo-lab/cohort-api/internal/models"
)

// trackMeetings builds seq consecutive meetings for one track, each ending an
// hour after it starts.
func trackMeetings(region, level string, count int, firstStart time.Time) []models.Meeting {
	meetings := make([]models.Meeting, count)
	for i := 0; i < count; i++ {
		start := firstStart.Add(time.Duration(i) * 24 * time.Hour)
		meetings[i] = testMeeting(
			fmt.Sprintf("%s-%s-%d", region, level, i+1),
			region, level, i+1, start, timePtr(start.Add(time.Hour)),
		)
	}
	return meetings
}

func newEngagementFixture(t *testing.T, meetings []models.Meeting, enrollments *mockEnrollmentRepo, attendance *mockAttendanceRepo, homework *mockHomeworkRepo) *EngagementService {
	t.Helper()
	if attendance == nil {
		attendance = &mockAttendanceRepo{}
	}
	if homework == nil {
		homework = &mockHomeworkRepo{}
	}
	catalog := newTestCatalog(t, &mockMeetingRepo{meetings: meetings})
	return NewEngagementService(enrollments, attendance, homework, catalog, DefaultQuotaPerTrack, zap.NewNop())
}

func markPresent(repo *mockAttendanceRepo, studentID string, meetingIDs ...string) {
	for _, id := range meetingIDs {
		_, _ = repo.Upsert(context.Background(), &models.AttendanceMark{
			MeetingID: id, StudentID: studentID, Status: models.AttendanceStatusPresent, MarkedAt: time.Now(),
		})
	}
}

func submitHomework(repo *mockHomeworkRepo, studentID string, meetingIDs ...string) {
	for _, id := range meetingIDs {
		_, _ = repo.Insert(context.Background(), &models.HomeworkSubmission{
			MeetingID: id, StudentID: studentID, SubmittedAt: time.Now(),
		})
	}
}

func TestSnapshotSingleTrackRates(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	meetings := trackMeetings("seoul", "beginner", 12, start)
	enrollments := &mockEnrollmentRepo{enrollments: []models.Enrollment{
		{ID: "e1", StudentID: "s1", Region: "seoul", Level: "beginner"},
	}}
	attendance := &mockAttendanceRepo{}
	markPresent(attendance, "s1",
		"seoul-beginner-1", "seoul-beginner-2", "seoul-beginner-3",
		"seoul-beginner-4", "seoul-beginner-5", "seoul-beginner-6")
	homework := &mockHomeworkRepo{}
	submitHomework(homework, "s1", "seoul-beginner-1", "seoul-beginner-2")

	svc := newEngagementFixture(t, meetings, enrollments, attendance, homework)
	snapshot, err := svc.Snapshot(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, 9, snapshot.Quota)
	assert.Equal(t, 9, snapshot.InScopeCount)
	assert.Equal(t, 6, snapshot.AttendedCount)
	assert.Equal(t, 67, snapshot.AttendanceRate)
	assert.Equal(t, 2, snapshot.SubmittedCount)
	assert.Equal(t, 22, snapshot.HomeworkRate)
}

func TestSnapshotTwoTracksWithShortCatalog(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	meetings := append(
		trackMeetings("seoul", "beginner", 9, start),
		trackMeetings("busan", "advanced", 3, start)...,
	)
	enrollments := &mockEnrollmentRepo{enrollments: []models.Enrollment{
		{ID: "e1", StudentID: "s1", Region: "seoul", Level: "beginner"},
		{ID: "e2", StudentID: "s1", Region: "busan", Level: "advanced"},
	}}
	attendance := &mockAttendanceRepo{}
	markPresent(attendance, "s1",
		"seoul-beginner-1", "seoul-beginner-2", "seoul-beginner-3", "seoul-beginner-4",
		"busan-advanced-1")

	svc := newEngagementFixture(t, meetings, enrollments, attendance, nil)
	snapshot, err := svc.Snapshot(context.Background(), "s1")
	require.NoError(t, err)

	// quota stays 18 even though only 12 meetings exist
	assert.Equal(t, 18, snapshot.Quota)
	assert.Equal(t, 12, snapshot.InScopeCount)
	assert.Equal(t, 5, snapshot.AttendedCount)
	assert.Equal(t, 28, snapshot.AttendanceRate)
	assert.Equal(t, 0, snapshot.HomeworkRate)
}

func TestSnapshotIgnoresOutOfScopeMarks(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	meetings := trackMeetings("seoul", "beginner", 12, start)
	enrollments := &mockEnrollmentRepo{enrollments: []models.Enrollment{
		{ID: "e1", StudentID: "s1", Region: "seoul", Level: "beginner"},
	}}
	attendance := &mockAttendanceRepo{}
	// meetings 10-12 fall outside the first nine by sequence
	markPresent(attendance, "s1", "seoul-beginner-10", "seoul-beginner-11", "seoul-beginner-12")

	svc := newEngagementFixture(t, meetings, enrollments, attendance, nil)
	snapshot, err := svc.Snapshot(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.AttendedCount)
	assert.Equal(t, 0, snapshot.AttendanceRate)
}

func TestSnapshotAbsentDoesNotCount(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	meetings := trackMeetings("seoul", "beginner", 9, start)
	enrollments := &mockEnrollmentRepo{enrollments: []models.Enrollment{
		{ID: "e1", StudentID: "s1", Region: "seoul", Level: "beginner"},
	}}
	attendance := &mockAttendanceRepo{}
	_, err := attendance.Upsert(context.Background(), &models.AttendanceMark{
		MeetingID: "seoul-beginner-1", StudentID: "s1", Status: models.AttendanceStatusAbsent,
	})
	require.NoError(t, err)

	svc := newEngagementFixture(t, meetings, enrollments, attendance, nil)
	snapshot, err := svc.Snapshot(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.AttendedCount)
}

func TestSnapshotNoEnrollments(t *testing.T) {
	svc := newEngagementFixture(t, nil, &mockEnrollmentRepo{}, nil, nil)
	snapshot, err := svc.Snapshot(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.Quota)
	assert.Equal(t, 0, snapshot.AttendanceRate)
	assert.Equal(t, 0, snapshot.HomeworkRate)
}

func TestCohortRatesUsesRosterDenominator(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	meetings := trackMeetings("seoul", "beginner", 1, start)
	enrollments := &mockEnrollmentRepo{
		enrollments: []models.Enrollment{
			{ID: "e1", StudentID: "s1", Region: "seoul", Level: "beginner"},
			{ID: "e2", StudentID: "s2", Region: "seoul", Level: "beginner"},
			{ID: "e3", StudentID: "s3", Region: "seoul", Level: "beginner"},
		},
		names: map[string]string{"s1": "Kim", "s2": "Lee", "s3": "Park"},
	}
	attendance := &mockAttendanceRepo{}
	markPresent(attendance, "s1", "seoul-beginner-1")
	markPresent(attendance, "s2", "seoul-beginner-1")
	homework := &mockHomeworkRepo{}
	submitHomework(homework, "s1", "seoul-beginner-1")

	svc := newEngagementFixture(t, meetings, enrollments, attendance, homework)
	rates, err := svc.CohortRates(context.Background(), "seoul-beginner-1")
	require.NoError(t, err)

	assert.Equal(t, 3, rates.RosterSize)
	assert.Equal(t, 2, rates.AttendedCount)
	assert.Equal(t, 67, rates.AttendanceRate)
	assert.Equal(t, 1, rates.SubmittedCount)
	assert.Equal(t, 33, rates.HomeworkRate)
	require.Len(t, rates.MissingAttendance, 1)
	assert.Equal(t, "Park", rates.MissingAttendance[0].FullName)
	assert.Len(t, rates.MissingHomework, 2)
}

func TestRosterStatusRows(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	meetings := trackMeetings("seoul", "beginner", 1, start)
	enrollments := &mockEnrollmentRepo{
		enrollments: []models.Enrollment{
			{ID: "e1", StudentID: "s1", Region: "seoul", Level: "beginner"},
			{ID: "e2", StudentID: "s2", Region: "seoul", Level: "beginner"},
		},
		names: map[string]string{"s1": "Kim", "s2": "Lee"},
	}
	attendance := &mockAttendanceRepo{}
	markPresent(attendance, "s1", "seoul-beginner-1")
	homework := &mockHomeworkRepo{}
	submitHomework(homework, "s2", "seoul-beginner-1")

	svc := newEngagementFixture(t, meetings, enrollments, attendance, homework)
	meeting, rows, err := svc.RosterStatus(context.Background(), "seoul-beginner-1")
	require.NoError(t, err)
	assert.Equal(t, "seoul", meeting.Region)
	require.Len(t, rows, 2)
	assert.Equal(t, "PRESENT", rows[0].AttendanceStatus)
	assert.False(t, rows[0].HomeworkSubmitted)
	assert.Equal(t, "", rows[1].AttendanceStatus)
	assert.True(t, rows[1].HomeworkSubmitted)
}
