package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/moyeo-lab/cohort-api/internal/models"
	appErrors "github.com/moyeo-lab/cohort-api/pkg/errors"
)

type preferenceFlagRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.PreferenceRow, error)
	SetFavorite(ctx context.Context, studentID, region, level string, value bool) (*models.PreferenceRow, error)
	SetNotify(ctx context.Context, studentID, region, level string, value bool) (*models.PreferenceRow, error)
}

// PreferenceService manages per-track favorite and notification flags.
// Preference rows are keyed by (region, level), not by meeting ID, so they
// survive catalog rebuilds; rows whose track dropped out of the catalog are
// kept in storage but hidden from listings until the track returns.
type PreferenceService struct {
	repo      preferenceFlagRepository
	catalog   *CatalogService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPreferenceService constructs the preference service.
func NewPreferenceService(repo preferenceFlagRepository, catalog *CatalogService, validate *validator.Validate, logger *zap.Logger) *PreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{
		repo:      repo,
		catalog:   catalog,
		validator: validate,
		logger:    logger,
	}
}

// List returns the student's preferences reconciled against the live catalog:
// rows whose track still exists, plus a count of the suppressed stale rows.
// No pruning happens here; stale rows reappear if their track comes back.
func (s *PreferenceService) List(ctx context.Context, studentID string) (*models.PreferenceList, error) {
	if studentID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	rows, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list preferences")
	}
	active, err := s.catalog.ActivePairs(ctx)
	if err != nil {
		return nil, err
	}
	list := &models.PreferenceList{Visible: []models.PreferenceRow{}}
	for _, row := range rows {
		if _, ok := active[row.Track()]; ok {
			list.Visible = append(list.Visible, row)
		} else {
			list.HiddenCount++
		}
	}
	return list, nil
}

// TogglePreferenceRequest sets one flag for one track.
type TogglePreferenceRequest struct {
	Region string `json:"region" validate:"required"`
	Level  string `json:"level" validate:"required"`
	Value  bool   `json:"value"`
}

// SetFavorite upserts the favorite flag for a track. Creating the row here
// leaves notify_enabled at its default; updating preserves it.
func (s *PreferenceService) SetFavorite(ctx context.Context, studentID string, req TogglePreferenceRequest) (*models.PreferenceRow, error) {
	return s.setFlag(ctx, studentID, req, s.repo.SetFavorite)
}

// SetNotify upserts the notification flag for a track, preserving the
// favorite flag symmetrically.
func (s *PreferenceService) SetNotify(ctx context.Context, studentID string, req TogglePreferenceRequest) (*models.PreferenceRow, error) {
	return s.setFlag(ctx, studentID, req, s.repo.SetNotify)
}

func (s *PreferenceService) setFlag(ctx context.Context, studentID string, req TogglePreferenceRequest, apply func(ctx context.Context, studentID, region, level string, value bool) (*models.PreferenceRow, error)) (*models.PreferenceRow, error) {
	if studentID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preference request")
	}
	row, err := apply(ctx, studentID, req.Region, req.Level, req.Value)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to save preference")
	}
	return row, nil
}
