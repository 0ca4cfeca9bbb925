package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/moyeo-lab/cohort-api/internal/models"
	appErrors "github.com/moyeo-lab/cohort-api/pkg/errors"
)

type enrollmentTrackRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	Insert(ctx context.Context, enrollment *models.Enrollment) (bool, error)
	Delete(ctx context.Context, studentID, region, level string) (bool, error)
}

// EnrollmentService manages which tracks a student follows. Enrollment is a
// toggle: enrolling twice in the same track unenrolls.
type EnrollmentService struct {
	repo      enrollmentTrackRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo enrollmentTrackRepository, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, validator: validate, logger: logger}
}

// ToggleEnrollmentRequest names the track to toggle.
type ToggleEnrollmentRequest struct {
	Region string `json:"region" validate:"required"`
	Level  string `json:"level" validate:"required"`
}

// ToggleEnrollmentResult reports the track's state after the toggle.
type ToggleEnrollmentResult struct {
	Region   string `json:"region"`
	Level    string `json:"level"`
	Enrolled bool   `json:"enrolled"`
}

// Toggle enrolls the student in the track, or unenrolls when already
// enrolled. The insert-first ordering makes concurrent toggles settle on one
// of the two states rather than erroring.
func (s *EnrollmentService) Toggle(ctx context.Context, studentID string, req ToggleEnrollmentRequest) (*ToggleEnrollmentResult, error) {
	if studentID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment request")
	}
	enrollment := &models.Enrollment{
		StudentID: studentID,
		Region:    req.Region,
		Level:     req.Level,
	}
	created, err := s.repo.Insert(ctx, enrollment)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to save enrollment")
	}
	result := &ToggleEnrollmentResult{Region: req.Region, Level: req.Level, Enrolled: true}
	if !created {
		if _, err := s.repo.Delete(ctx, studentID, req.Region, req.Level); err != nil {
			return nil, appErrors.Persistence(err, "failed to remove enrollment")
		}
		result.Enrolled = false
	}
	s.logger.Info("enrollment toggled",
		zap.String("student_id", studentID),
		zap.String("region", req.Region),
		zap.String("level", req.Level),
		zap.Bool("enrolled", result.Enrolled))
	return result, nil
}

// List returns the student's current enrollments.
func (s *EnrollmentService) List(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	if studentID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	enrollments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list enrollments")
	}
	return enrollments, nil
}
