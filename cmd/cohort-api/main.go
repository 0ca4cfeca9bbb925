package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/moyeo-lab/cohort-api/api/swagger"
	"github.com/moyeo-lab/cohort-api/internal/handler"
	"github.com/moyeo-lab/cohort-api/internal/middleware"
	"github.com/moyeo-lab/cohort-api/internal/models"
	"github.com/moyeo-lab/cohort-api/internal/repository"
	"github.com/moyeo-lab/cohort-api/internal/service"
	"github.com/moyeo-lab/cohort-api/pkg/cache"
	"github.com/moyeo-lab/cohort-api/pkg/config"
	"github.com/moyeo-lab/cohort-api/pkg/database"
	"github.com/moyeo-lab/cohort-api/pkg/logger"
	corsmiddleware "github.com/moyeo-lab/cohort-api/pkg/middleware/cors"
	reqidmiddleware "github.com/moyeo-lab/cohort-api/pkg/middleware/requestid"
	"github.com/moyeo-lab/cohort-api/pkg/timewindow"
)

// @title Cohort API
// @version 1.0.0
// @description Learning cohort engagement and eligibility service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	evaluator, err := timewindow.NewEvaluator(cfg.Engagement.Timezone, cfg.Engagement.HomeworkWindow)
	if err != nil {
		logr.Fatal("failed to init window evaluator", zap.Error(err))
	}

	metricsService := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	var redisClient *redis.Client
	cacheEnabled := false
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
	} else {
		defer client.Close()
		redisClient = client
		cacheRepo = repository.NewCacheRepository(client, logr)
		cacheEnabled = true
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Catalog.CacheTTL, logr, cacheEnabled)

	userRepo := repository.NewUserRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	homeworkRepo := repository.NewHomeworkRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)

	validate := validator.New()

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userService := service.NewUserService(userRepo, validate, logr)
	catalogService := service.NewCatalogService(meetingRepo, cacheService, metricsService, evaluator, validate, logr, cfg.Catalog.CacheTTL)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, validate, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, catalogService, validate, logr)
	homeworkService := service.NewHomeworkService(homeworkRepo, catalogService, validate, logr)
	engagementService := service.NewEngagementService(enrollmentRepo, attendanceRepo, homeworkRepo, catalogService, cfg.Engagement.QuotaPerTrack, logr)
	preferenceService := service.NewPreferenceService(preferenceRepo, catalogService, validate, logr)
	exportService := service.NewExportService(engagementService, nil, nil, logr)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	meetingHandler := handler.NewMeetingHandler(catalogService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	homeworkHandler := handler.NewHomeworkHandler(homeworkService)
	engagementHandler := handler.NewEngagementHandler(engagementService)
	preferenceHandler := handler.NewPreferenceHandler(preferenceService)
	reportHandler := handler.NewReportHandler(exportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "postgres"})
			return
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "redis"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.PUT("/password", middleware.JWT(authService), authHandler.ChangePassword)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))
	{
		authed.GET("/meetings", meetingHandler.List)
		authed.GET("/meetings/:id", meetingHandler.Get)

		authed.GET("/enrollments", enrollmentHandler.List)
		authed.POST("/enrollments/toggle", enrollmentHandler.Toggle)

		authed.GET("/attendance", attendanceHandler.ListMine)
		authed.POST("/attendance", attendanceHandler.Mark)
		authed.GET("/attendance/:meetingId", attendanceHandler.Get)

		authed.GET("/homework", homeworkHandler.ListMine)
		authed.POST("/homework", homeworkHandler.Submit)
		authed.DELETE("/homework/:meetingId", homeworkHandler.Delete)

		authed.GET("/engagement/me", engagementHandler.MySnapshot)

		authed.GET("/preferences", preferenceHandler.List)
		authed.PUT("/preferences/favorite", preferenceHandler.SetFavorite)
		authed.PUT("/preferences/notify", preferenceHandler.SetNotify)
	}

	admin := api.Group("")
	admin.Use(middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/users", userHandler.List)
		admin.GET("/users/:id", userHandler.Get)
		admin.POST("/users/:id/approve", userHandler.Approve)
		admin.POST("/users/:id/reject", userHandler.Reject)

		admin.POST("/catalog/refresh", meetingHandler.Refresh)

		admin.GET("/engagement/meetings/:meetingId", engagementHandler.CohortRates)

		if cfg.Reports.Enabled {
			admin.GET("/reports/meetings/:meetingId", reportHandler.RosterReport)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
