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
	"github.com/moyeo-lab/cohort-api/pkg/timewindow"
)

const (
	cacheKeyCatalogAll     = "catalog:meetings:all"
	cacheKeyCatalogPairs   = "catalog:pairs"
	cacheKeyCatalogPattern = "catalog:*"
)

type meetingCatalogRepository interface {
	GetByID(ctx context.Context, id string) (*models.Meeting, error)
	ListAll(ctx context.Context) ([]models.Meeting, error)
	List(ctx context.Context, filter models.MeetingFilter) ([]models.Meeting, int, error)
	ActivePairs(ctx context.Context) ([]models.TrackKey, error)
}

// CatalogService reads the meeting catalog and decorates it with evaluator
// output. The catalog is owned by an external admin tool; meetings appear and
// disappear underneath us, which is exactly what preference reconciliation
// tolerates.
type CatalogService struct {
	repo      meetingCatalogRepository
	cache     *CacheService
	metrics   *MetricsService
	evaluator *timewindow.Evaluator
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(repo meetingCatalogRepository, cache *CacheService, metrics *MetricsService, evaluator *timewindow.Evaluator, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		evaluator: evaluator,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// Evaluator exposes the shared window evaluator.
func (s *CatalogService) Evaluator() *timewindow.Evaluator {
	return s.evaluator
}

// GetMeeting returns one catalog entry.
func (s *CatalogService) GetMeeting(ctx context.Context, id string) (*models.Meeting, error) {
	meeting, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
		}
		return nil, appErrors.Persistence(err, "failed to load meeting")
	}
	return meeting, nil
}

// FullCatalog returns the complete, unfiltered meeting list. Quota scoping
// and reconciliation both depend on the full set, so it is cached briefly
// rather than per-filter.
func (s *CatalogService) FullCatalog(ctx context.Context) ([]models.Meeting, error) {
	var cached []models.Meeting
	if hit, err := s.cache.Get(ctx, cacheKeyCatalogAll, &cached); err == nil && hit {
		return cached, nil
	}
	start := time.Now()
	meetings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load meeting catalog")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("catalog_meetings", time.Since(start))
	}
	if err := s.cache.Set(ctx, cacheKeyCatalogAll, meetings, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache meeting catalog", zap.Error(err))
	}
	return meetings, nil
}

// ActivePairs returns the set of (region, level) pairs currently present in
// the catalog, computed from the full catalog rather than a time-windowed
// slice so past-dated tracks stay active.
func (s *CatalogService) ActivePairs(ctx context.Context) (map[models.TrackKey]struct{}, error) {
	var cached []models.TrackKey
	hit, err := s.cache.Get(ctx, cacheKeyCatalogPairs, &cached)
	if err != nil || !hit {
		start := time.Now()
		cached, err = s.repo.ActivePairs(ctx)
		if err != nil {
			return nil, appErrors.Persistence(err, "failed to load active pairs")
		}
		if s.metrics != nil {
			s.metrics.ObserveDBQuery("catalog_pairs", time.Since(start))
		}
		if err := s.cache.Set(ctx, cacheKeyCatalogPairs, cached, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache active pairs", zap.Error(err))
		}
	}
	pairs := make(map[models.TrackKey]struct{}, len(cached))
	for _, key := range cached {
		pairs[key] = struct{}{}
	}
	return pairs, nil
}

// RefreshCatalog drops every cached catalog payload so the next read hits the
// database. The admin tool that owns the catalog calls this after a bulk edit
// instead of waiting out the TTL.
func (s *CatalogService) RefreshCatalog(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx, cacheKeyCatalogPattern); err != nil {
		return appErrors.Persistence(err, "failed to invalidate catalog cache")
	}
	s.logger.Info("catalog cache invalidated", zap.String("pattern", cacheKeyCatalogPattern))
	return nil
}

// MeetingListRequest filters the schedule listing.
type MeetingListRequest struct {
	Region    string     `json:"region"`
	Level     string     `json:"level"`
	From      *time.Time `json:"from"`
	To        *time.Time `json:"to"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
	SortBy    string     `json:"sort_by"`
	SortOrder string     `json:"sort_order"`
}

// List returns a paginated schedule slice decorated with display tags and the
// caller's current permission flags.
func (s *CatalogService) List(ctx context.Context, req MeetingListRequest) ([]models.MeetingView, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid filter")
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = 50
	}
	filter := models.MeetingFilter{
		Region:    req.Region,
		Level:     req.Level,
		From:      req.From,
		To:        req.To,
		Page:      page,
		PageSize:  size,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	start := time.Now()
	meetings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Persistence(err, "failed to list meetings")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("catalog_list", time.Since(start))
	}
	now := s.now()
	views := make([]models.MeetingView, len(meetings))
	for i, m := range meetings {
		views[i] = s.decorate(now, m)
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return views, pagination, nil
}

func (s *CatalogService) decorate(now time.Time, m models.Meeting) models.MeetingView {
	iv := meetingInterval(m)
	cls := s.evaluator.Classify(now, iv)
	return models.MeetingView{
		Meeting:           m,
		Tag:               s.evaluator.Tag(now, iv),
		Ongoing:           cls.Ongoing,
		Ended:             cls.Ended,
		CanMarkAttendance: s.evaluator.CanMarkAttendance(now, iv),
		CanUploadHomework: s.evaluator.CanUploadHomework(now, iv),
	}
}

func meetingInterval(m models.Meeting) timewindow.Interval {
	return timewindow.Interval{StartsAt: m.StartsAt, EndsAt: m.EndsAt}
}
