package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mindwell-care/scheduling-api/api/swagger"
	"github.com/mindwell-care/scheduling-api/internal/handler"
	"github.com/mindwell-care/scheduling-api/internal/middleware"
	"github.com/mindwell-care/scheduling-api/internal/models"
	"github.com/mindwell-care/scheduling-api/internal/repository"
	"github.com/mindwell-care/scheduling-api/internal/service"
	"github.com/mindwell-care/scheduling-api/pkg/cache"
	"github.com/mindwell-care/scheduling-api/pkg/config"
	"github.com/mindwell-care/scheduling-api/pkg/database"
	"github.com/mindwell-care/scheduling-api/pkg/logger"
	corsmiddleware "github.com/mindwell-care/scheduling-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mindwell-care/scheduling-api/pkg/middleware/requestid"
	"github.com/mindwell-care/scheduling-api/pkg/storage"
)

// @title MindWell Scheduling API
// @version 1.0.0
// @description Availability resolution and booking for the MindWell telehealth platform
// @BasePath /api/v1
// @schemes http https

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, availability caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Availability.CacheTTL, logr, true)
		}
	}

	providerRepo := repository.NewProviderRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	overrideRepo := repository.NewOverrideRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditSvc := service.NewAuditService(context.Background(), auditRepo, logr)
	defer auditSvc.Stop()

	availabilitySvc := service.NewAvailabilityService(
		providerRepo, templateRepo, overrideRepo, appointmentRepo,
		cacheSvc, metricsSvc, nil, logr,
		cfg.Availability.CacheTTL, cfg.Availability.MaxRangeDays, cfg.Booking.MinNoticeMinutes,
	)
	bookingSvc := service.NewBookingService(
		providerRepo, templateRepo, appointmentRepo, availabilitySvc,
		metricsSvc, nil, logr, cfg.Booking.MinNoticeMinutes,
	)
	scheduleSvc := service.NewScheduleService(providerRepo, templateRepo, overrideRepo, availabilitySvc, nil, logr)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, providerRepo, availabilitySvc, logr)

	var exportStore *storage.LocalStorage
	var exportSigner *storage.SignedURLSigner
	if cfg.Exports.Enabled {
		exportStore, err = storage.NewLocalStorage(cfg.Exports.Dir)
		if err != nil {
			logr.Sugar().Warnw("export archive unavailable", "error", err)
		} else {
			exportSigner = storage.NewSignedURLSigner(cfg.JWT.Secret, cfg.Exports.LinkTTL)
		}
	}
	exportSvc := service.NewExportService(providerRepo, appointmentRepo, exportStore, exportSigner, logr)

	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	appointmentHandler := handler.NewAppointmentHandler(bookingSvc, appointmentSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	bookingLimiter := middleware.NewRateLimiter(cfg.Booking.RateLimitRPS, cfg.Booking.RateLimitBurst)

	api := r.Group(cfg.APIPrefix)
	api.GET("/providers/:providerId/availability", middleware.OptionalJWT(cfg.JWT.Secret), availabilityHandler.Resolve)

	authed := api.Group("")
	authed.Use(middleware.JWT(cfg.JWT.Secret))

	schedule := authed.Group("/schedule")
	schedule.Use(middleware.RequireRoles(models.RoleProvider, models.RoleAdmin))
	schedule.GET("/template", scheduleHandler.GetTemplate)
	schedule.PUT("/template", middleware.Audit(auditSvc, "schedule.template.save", "weekly_template"), scheduleHandler.SaveTemplate)
	schedule.GET("/overrides", scheduleHandler.GetOverrides)
	schedule.PUT("/overrides", middleware.Audit(auditSvc, "schedule.overrides.replace", "schedule_override"), scheduleHandler.SaveOverrides)

	appointments := authed.Group("/appointments")
	appointments.POST("",
		middleware.RequireRoles(models.RolePatient),
		middleware.RateLimit(bookingLimiter),
		middleware.Audit(auditSvc, "appointment.book", "appointment"),
		appointmentHandler.Book)
	appointments.GET("", appointmentHandler.List)
	appointments.DELETE("/:id", middleware.Audit(auditSvc, "appointment.cancel", "appointment"), appointmentHandler.Cancel)
	appointments.GET("/:id/meeting-reference", appointmentHandler.MeetingReference)

	if cfg.Exports.Enabled {
		// Archive downloads authenticate through the signed token itself.
		api.GET("/exports/archive", exportHandler.Archived)

		exports := authed.Group("/exports")
		exports.Use(middleware.RequireRoles(models.RoleProvider, models.RoleAdmin))
		exports.GET("/day-sheet", exportHandler.DaySheet)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
