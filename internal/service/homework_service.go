package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/moyeo-lab/cohort-api/internal/models"
	appErrors "github.com/moyeo-lab/cohort-api/pkg/errors"
)

type homeworkSubmissionRepository interface {
	Insert(ctx context.Context, submission *models.HomeworkSubmission) (*models.HomeworkSubmission, error)
	Delete(ctx context.Context, meetingID, studentID string) (bool, error)
	Get(ctx context.Context, meetingID, studentID string) (*models.HomeworkSubmission, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.HomeworkSubmission, error)
	ListByMeeting(ctx context.Context, meetingID string) ([]models.HomeworkSubmission, error)
}

// HomeworkService gates submissions behind the post-meeting upload window.
// Submissions are single-shot per (meeting, student): a second submit fails
// with a duplicate error, and changing a submission means delete then submit
// again while the window is still open.
type HomeworkService struct {
	repo      homeworkSubmissionRepository
	catalog   *CatalogService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewHomeworkService constructs the homework service.
func NewHomeworkService(repo homeworkSubmissionRepository, catalog *CatalogService, validate *validator.Validate, logger *zap.Logger) *HomeworkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeworkService{
		repo:      repo,
		catalog:   catalog,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// SubmitHomeworkRequest records a homework submission for one meeting.
type SubmitHomeworkRequest struct {
	MeetingID string  `json:"meeting_id" validate:"required"`
	Note      *string `json:"note,omitempty" validate:"omitempty,max=2000"`
	MediaURL  *string `json:"media_url,omitempty" validate:"omitempty,url"`
}

// Submit records a submission. Allowed from the meeting's end instant until
// seven days after it, both ends inclusive; meetings without an end time
// never open for homework.
func (s *HomeworkService) Submit(ctx context.Context, studentID string, req SubmitHomeworkRequest) (*models.HomeworkSubmission, error) {
	if studentID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid homework request")
	}
	meeting, err := s.catalog.GetMeeting(ctx, req.MeetingID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !s.catalog.Evaluator().CanUploadHomework(now, meetingInterval(*meeting)) {
		return nil, appErrors.Clone(appErrors.ErrWindowClosed, "homework window is not open for this meeting")
	}
	submission := &models.HomeworkSubmission{
		MeetingID:   req.MeetingID,
		StudentID:   studentID,
		SubmittedAt: now,
		Note:        req.Note,
		MediaURL:    req.MediaURL,
	}
	saved, err := s.repo.Insert(ctx, submission)
	if err != nil {
		if errors.Is(err, appErrors.ErrDuplicateSubmission) {
			return nil, err
		}
		return nil, appErrors.Persistence(err, "failed to save homework submission")
	}
	s.logger.Info("homework submitted",
		zap.String("student_id", studentID),
		zap.String("meeting_id", req.MeetingID))
	return saved, nil
}

// Delete removes the caller's submission for a meeting. Deleting frees the
// uniqueness slot, so a fresh Submit afterwards succeeds if the window is
// still open.
func (s *HomeworkService) Delete(ctx context.Context, studentID, meetingID string) error {
	if studentID == "" {
		return appErrors.ErrUnauthorized
	}
	removed, err := s.repo.Delete(ctx, meetingID, studentID)
	if err != nil {
		return appErrors.Persistence(err, "failed to delete homework submission")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "no homework submission for this meeting")
	}
	s.logger.Info("homework submission deleted",
		zap.String("student_id", studentID),
		zap.String("meeting_id", meetingID))
	return nil
}

// ListMine returns all of the caller's submissions.
func (s *HomeworkService) ListMine(ctx context.Context, studentID string) ([]models.HomeworkSubmission, error) {
	if studentID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	submissions, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list homework submissions")
	}
	return submissions, nil
}
