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

type adminUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	UpdateApproval(ctx context.Context, id string, status models.ApprovalStatus, updatedAt time.Time) error
}

// UserService covers the admin review surface: listing signups and moving
// them through the approval lifecycle.
type UserService struct {
	repo      adminUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs the user service.
func NewUserService(repo adminUserRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// ListUsersRequest filters the admin user listing.
type ListUsersRequest struct {
	Approval  string `json:"approval" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Role      string `json:"role" validate:"omitempty,oneof=ADMIN STUDENT"`
	Search    string `json:"search"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// List returns users matching the filter with pagination metadata.
func (s *UserService) List(ctx context.Context, req ListUsersRequest) ([]models.User, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user filter")
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = 20
	}
	filter := models.UserFilter{
		Search:    req.Search,
		Page:      page,
		PageSize:  size,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.Approval != "" {
		status := models.ApprovalStatus(req.Approval)
		filter.Approval = &status
	}
	if req.Role != "" {
		role := models.UserRole(req.Role)
		filter.Role = &role
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Persistence(err, "failed to list users")
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return users, pagination, nil
}

// Get returns one user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Persistence(err, "failed to load user")
	}
	return user, nil
}

// Approve marks a pending signup as approved, letting the account log in.
func (s *UserService) Approve(ctx context.Context, id string) (*models.User, error) {
	return s.review(ctx, id, models.ApprovalApproved)
}

// Reject marks a pending signup as rejected.
func (s *UserService) Reject(ctx context.Context, id string) (*models.User, error) {
	return s.review(ctx, id, models.ApprovalRejected)
}

func (s *UserService) review(ctx context.Context, id string, status models.ApprovalStatus) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.ApprovalStatus == status {
		return user, nil
	}
	now := time.Now().UTC()
	if err := s.repo.UpdateApproval(ctx, id, status, now); err != nil {
		return nil, appErrors.Persistence(err, "failed to update approval status")
	}
	user.ApprovalStatus = status
	user.UpdatedAt = now
	s.logger.Info("signup reviewed",
		zap.String("user_id", id),
		zap.String("status", string(status)))
	return user, nil
}
