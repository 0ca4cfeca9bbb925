package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/moyeo-lab/cohort-api/internal/models"
	appErrors "github.com/moyeo-lab/cohort-api/pkg/errors"
)

type engagementEnrollmentRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	RosterByTrack(ctx context.Context, region, level string) ([]models.RosterStudent, error)
}

type engagementAttendanceRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceMark, error)
	ListByMeeting(ctx context.Context, meetingID string) ([]models.AttendanceMark, error)
}

type engagementHomeworkRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.HomeworkSubmission, error)
	ListByMeeting(ctx context.Context, meetingID string) ([]models.HomeworkSubmission, error)
}

// EngagementService computes derived engagement views. Everything here is
// recomputed from live data on each call; snapshots are never stored, so a
// catalog or enrollment change is reflected on the next request.
type EngagementService struct {
	enrollments engagementEnrollmentRepository
	attendance  engagementAttendanceRepository
	homework    engagementHomeworkRepository
	catalog     *CatalogService
	perTrack    int
	logger      *zap.Logger
}

// NewEngagementService constructs the engagement service. perTrack is the
// per-track meeting quota; zero or negative falls back to the default.
func NewEngagementService(enrollments engagementEnrollmentRepository, attendance engagementAttendanceRepository, homework engagementHomeworkRepository, catalog *CatalogService, perTrack int, logger *zap.Logger) *EngagementService {
	if perTrack <= 0 {
		perTrack = DefaultQuotaPerTrack
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EngagementService{
		enrollments: enrollments,
		attendance:  attendance,
		homework:    homework,
		catalog:     catalog,
		perTrack:    perTrack,
		logger:      logger,
	}
}

// Snapshot computes the student's quota, in-scope meeting set and both
// engagement rates. Marks on meetings outside the in-scope set are stored but
// never counted; the quota stays the denominator even when the catalog holds
// fewer meetings than quota allows.
func (s *EngagementService) Snapshot(ctx context.Context, studentID string) (*models.EligibilitySnapshot, error) {
	if studentID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list enrollments")
	}
	catalog, err := s.catalog.FullCatalog(ctx)
	if err != nil {
		return nil, err
	}
	quota := ResolveQuota(enrollments, s.perTrack)
	inScope := SelectInScope(catalog, enrollments, s.perTrack)
	scopeIDs := make(map[string]struct{}, len(inScope))
	for _, m := range inScope {
		scopeIDs[m.ID] = struct{}{}
	}

	marks, err := s.attendance.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list attendance marks")
	}
	attended := 0
	for _, mark := range marks {
		if _, ok := scopeIDs[mark.MeetingID]; ok && mark.Status.Present() {
			attended++
		}
	}

	submissions, err := s.homework.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list homework submissions")
	}
	submitted := 0
	for _, submission := range submissions {
		if _, ok := scopeIDs[submission.MeetingID]; ok {
			submitted++
		}
	}

	return &models.EligibilitySnapshot{
		StudentID:      studentID,
		Quota:          quota,
		InScopeCount:   len(inScope),
		AttendedCount:  attended,
		SubmittedCount: submitted,
		AttendanceRate: ratePercent(attended, quota),
		HomeworkRate:   ratePercent(submitted, quota),
	}, nil
}

// CohortRates summarises one meeting against its roster: every student
// enrolled in the meeting's track, who attended, who submitted, and who is
// missing. The roster size is the denominator here, not the quota.
func (s *EngagementService) CohortRates(ctx context.Context, meetingID string) (*models.CohortRates, error) {
	meeting, err := s.catalog.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	roster, err := s.enrollments.RosterByTrack(ctx, meeting.Region, meeting.Level)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load roster")
	}
	attendedBy, err := s.attendedSet(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	submittedBy, err := s.submittedSet(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	rates := &models.CohortRates{
		MeetingID:         meetingID,
		RosterSize:        len(roster),
		MissingAttendance: []models.RosterStudent{},
		MissingHomework:   []models.RosterStudent{},
	}
	for _, student := range roster {
		if attendedBy[student.StudentID] {
			rates.AttendedCount++
		} else {
			rates.MissingAttendance = append(rates.MissingAttendance, student)
		}
		if submittedBy[student.StudentID] {
			rates.SubmittedCount++
		} else {
			rates.MissingHomework = append(rates.MissingHomework, student)
		}
	}
	rates.AttendanceRate = ratePercent(rates.AttendedCount, rates.RosterSize)
	rates.HomeworkRate = ratePercent(rates.SubmittedCount, rates.RosterSize)
	return rates, nil
}

// RosterStatus returns per-student report rows for one meeting, in roster
// order. Statuses recorded by students outside the current roster are
// dropped, matching how CohortRates counts.
func (s *EngagementService) RosterStatus(ctx context.Context, meetingID string) (*models.Meeting, []models.RosterStatusRow, error) {
	meeting, err := s.catalog.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, nil, err
	}
	roster, err := s.enrollments.RosterByTrack(ctx, meeting.Region, meeting.Level)
	if err != nil {
		return nil, nil, appErrors.Persistence(err, "failed to load roster")
	}
	marks, err := s.attendance.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, nil, appErrors.Persistence(err, "failed to list attendance marks")
	}
	statusBy := make(map[string]models.AttendanceStatus, len(marks))
	for _, mark := range marks {
		statusBy[mark.StudentID] = mark.Status
	}
	submittedBy, err := s.submittedSet(ctx, meetingID)
	if err != nil {
		return nil, nil, err
	}

	rows := make([]models.RosterStatusRow, len(roster))
	for i, student := range roster {
		status := ""
		if st, ok := statusBy[student.StudentID]; ok {
			status = string(st)
		}
		rows[i] = models.RosterStatusRow{
			StudentID:         student.StudentID,
			FullName:          student.FullName,
			AttendanceStatus:  status,
			HomeworkSubmitted: submittedBy[student.StudentID],
		}
	}
	return meeting, rows, nil
}

func (s *EngagementService) attendedSet(ctx context.Context, meetingID string) (map[string]bool, error) {
	marks, err := s.attendance.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list attendance marks")
	}
	set := make(map[string]bool, len(marks))
	for _, mark := range marks {
		if mark.Status.Present() {
			set[mark.StudentID] = true
		}
	}
	return set, nil
}

func (s *EngagementService) submittedSet(ctx context.Context, meetingID string) (map[string]bool, error) {
	submissions, err := s.homework.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list homework submissions")
	}
	set := make(map[string]bool, len(submissions))
	for _, submission := range submissions {
		set[submission.StudentID] = true
	}
	return set, nil
}
