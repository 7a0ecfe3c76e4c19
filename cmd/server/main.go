package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mediatrack/campaign-api/api/swagger"
	"github.com/mediatrack/campaign-api/internal/handler"
	"github.com/mediatrack/campaign-api/internal/middleware"
	"github.com/mediatrack/campaign-api/internal/repository"
	"github.com/mediatrack/campaign-api/internal/service"
	"github.com/mediatrack/campaign-api/pkg/cache"
	"github.com/mediatrack/campaign-api/pkg/config"
	"github.com/mediatrack/campaign-api/pkg/database"
	"github.com/mediatrack/campaign-api/pkg/jobs"
	"github.com/mediatrack/campaign-api/pkg/logger"
	corsmiddleware "github.com/mediatrack/campaign-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mediatrack/campaign-api/pkg/middleware/requestid"
	"github.com/mediatrack/campaign-api/pkg/storage"
)

// @title Campaign Monitoring API
// @version 1.0.0
// @description Role-based campaign and media-monitoring management backend
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var cacheService *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheService = service.NewCacheService(repository.NewCacheRepository(redisClient, logr), logr, true)
	}

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	stationRepo := repository.NewStationRepository(db)
	analystRepo := repository.NewAnalystRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	// Services.
	metricsService := service.NewMetricsService()
	authService := service.NewAuthService(service.AuthServiceParams{
		Users:  userRepo,
		JWT:    cfg.JWT,
		Logger: logr,
	})
	userService := service.NewUserService(userRepo, nil, logr)
	clientService := service.NewClientService(clientRepo, cacheService, nil, logr)
	campaignService := service.NewCampaignService(campaignRepo, clientRepo, cacheService, nil, logr)
	stationService := service.NewStationService(stationRepo, nil, logr)
	analystService := service.NewAnalystService(analystRepo, userRepo, nil, logr)
	notificationService := service.NewNotificationService(notificationRepo, metricsService, logr, cfg.Notifications.UnreadRefreshInterval)
	assignmentService := service.NewAssignmentService(service.AssignmentServiceParams{
		Assignments: assignmentRepo,
		Campaigns:   campaignRepo,
		Analysts:    analystRepo,
		Notifier:    notificationService,
		Cache:       cacheService,
		Logger:      logr,
	})
	workloadService := service.NewWorkloadService(assignmentRepo, campaignRepo, cacheService, logr, cfg.Dashboard.CacheTTL)
	calendarService := service.NewCalendarService(assignmentRepo, logr)
	messageService := service.NewMessageService(service.MessageServiceParams{
		Messages:    messageRepo,
		Users:       userRepo,
		Logger:      logr,
		MaxPageSize: cfg.Messaging.MaxPageSize,
	})
	exportService := service.NewExportService(service.ExportServiceParams{
		Clients:     clientRepo,
		Campaigns:   campaignRepo,
		Stations:    stationRepo,
		Analysts:    analystRepo,
		Assignments: assignmentRepo,
		Execution:   assignmentRepo,
		Jobs:        exportJobRepo,
		Auditor:     userRepo,
		Store:       exportStore,
		Signer:      signer,
		Metrics:     metricsService,
		Logger:      logr,
		QueueConfig: jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
		},
	})
	dashboardService := service.NewDashboardService(service.DashboardServiceParams{
		Clients:       clientRepo,
		Campaigns:     campaignRepo,
		Stations:      stationRepo,
		Analysts:      analystRepo,
		Assignments:   assignmentRepo,
		Execution:     assignmentRepo,
		Messages:      messageRepo,
		Notifications: notificationRepo,
		Cache:         cacheService,
		Logger:        logr,
		CacheTTL:      cfg.Dashboard.CacheTTL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exportService.Start(ctx)
	notificationService.StartUnreadRefresher(ctx)

	cleanupTicker := time.NewTicker(cfg.Exports.CleanupInterval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-cleanupTicker.C:
				exportService.CleanupExpired(cfg.Exports.SignedURLTTL)
			}
		}
	}()

	// Handlers.
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	clientHandler := handler.NewClientHandler(clientService)
	campaignHandler := handler.NewCampaignHandler(campaignService)
	stationHandler := handler.NewStationHandler(stationService)
	analystHandler := handler.NewAnalystHandler(analystService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, workloadService, calendarService)
	messageHandler := handler.NewMessageHandler(messageService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, cfg.Dashboard.Enabled)
	exportHandler := handler.NewExportHandler(exportService)
	importExportHandler := handler.NewImportExportHandler(exportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg, routeDeps{
		auth:          authHandler,
		users:         userHandler,
		clients:       clientHandler,
		campaigns:     campaignHandler,
		stations:      stationHandler,
		analysts:      analystHandler,
		assignments:   assignmentHandler,
		messages:      messageHandler,
		notifications: notificationHandler,
		dashboards:    dashboardHandler,
		exports:       exportHandler,
		importExport:  importExportHandler,
		authService:   authService,
		userRepo:      userRepo,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}

	cleanupTicker.Stop()
	notificationService.StopUnreadRefresher()
	exportService.Stop()
	logr.Sugar().Infow("shutdown complete")
}
