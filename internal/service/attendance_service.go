package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/moyeo-lab/cohort-api/internal/models"
	appErrors "github.com/moyeo-lab/cohort-api/pkg/errors"
)

type attendanceMarkRepository interface {
	Upsert(ctx context.Context, mark *models.AttendanceMark) (*models.AttendanceMark, error)
	Get(ctx context.Context, meetingID, studentID string) (*models.AttendanceMark, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceMark, error)
	ListByMeeting(ctx context.Context, meetingID string) ([]models.AttendanceMark, error)
}

// AttendanceService gates attendance marks behind the meeting's live window
// and persists them idempotently: re-marking overwrites the prior status.
type AttendanceService struct {
	repo      attendanceMarkRepository
	catalog   *CatalogService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceMarkRepository, catalog *CatalogService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		repo:      repo,
		catalog:   catalog,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// MarkAttendanceRequest records the caller's status for one meeting.
type MarkAttendanceRequest struct {
	MeetingID string `json:"meeting_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=PRESENT CHECKED ATTENDED ABSENT"`
}

// Mark upserts the student's attendance for a meeting. Allowed from before
// the meeting starts until its end instant inclusive; meetings with no end
// time accept marks indefinitely.
func (s *AttendanceService) Mark(ctx context.Context, studentID string, req MarkAttendanceRequest) (*models.AttendanceMark, error) {
	if studentID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance request")
	}
	meeting, err := s.catalog.GetMeeting(ctx, req.MeetingID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !s.catalog.Evaluator().CanMarkAttendance(now, meetingInterval(*meeting)) {
		return nil, appErrors.Clone(appErrors.ErrWindowClosed, "attendance window has closed for this meeting")
	}
	mark := &models.AttendanceMark{
		MeetingID: req.MeetingID,
		StudentID: studentID,
		Status:    models.AttendanceStatus(req.Status),
		MarkedAt:  now,
	}
	saved, err := s.repo.Upsert(ctx, mark)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to save attendance")
	}
	s.logger.Info("attendance marked",
		zap.String("student_id", studentID),
		zap.String("meeting_id", req.MeetingID),
		zap.String("status", string(saved.Status)))
	return saved, nil
}

// Get returns the caller's mark for one meeting, or nil when absent.
func (s *AttendanceService) Get(ctx context.Context, studentID, meetingID string) (*models.AttendanceMark, error) {
	if studentID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	mark, err := s.repo.Get(ctx, meetingID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no attendance mark for this meeting")
		}
		return nil, appErrors.Persistence(err, "failed to load attendance")
	}
	return mark, nil
}

// ListMine returns all of the caller's attendance marks.
func (s *AttendanceService) ListMine(ctx context.Context, studentID string) ([]models.AttendanceMark, error) {
	if studentID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	marks, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list attendance")
	}
	return marks, nil
}
