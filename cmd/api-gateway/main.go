package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/uniportal/degree-import-api/api/swagger"
	"github.com/uniportal/degree-import-api/internal/handler"
	"github.com/uniportal/degree-import-api/internal/middleware"
	"github.com/uniportal/degree-import-api/internal/models"
	"github.com/uniportal/degree-import-api/internal/repository"
	"github.com/uniportal/degree-import-api/internal/service"
	"github.com/uniportal/degree-import-api/pkg/cache"
	"github.com/uniportal/degree-import-api/pkg/config"
	"github.com/uniportal/degree-import-api/pkg/database"
	"github.com/uniportal/degree-import-api/pkg/jobs"
	"github.com/uniportal/degree-import-api/pkg/logger"
	corsmiddleware "github.com/uniportal/degree-import-api/pkg/middleware/cors"
	reqidmiddleware "github.com/uniportal/degree-import-api/pkg/middleware/requestid"
	"github.com/uniportal/degree-import-api/pkg/storage"
)

// @title Degree Import API
// @version 1.0.0
// @description Document import, review and approval service for class-of-degree corrections
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	uploadStore, err := storage.NewLocalStorage(cfg.Import.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}

	// Repositories.
	studentRepo := repository.NewStudentRepository(db)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(redisClient, cfg.Import.ExpiryGrace)
	reportRepo := repository.NewReportRepository(db)

	// Services.
	authSvc := service.NewAuthService(userRepo, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "degree-import-api",
	}, logr)

	extractSvc := service.NewExtractService(logr)
	matchSvc := service.NewMatchService(studentRepo, logr)
	importSvc := service.NewImportService(extractSvc, matchSvc, sessionRepo, studentRepo, uploadStore, userRepo, service.ImportServiceConfig{
		MaxFileSizeBytes: cfg.Import.MaxFileSizeBytes,
		SessionTTL:       cfg.Import.SessionTTL,
	}, logr)
	studentSvc := service.NewStudentService(studentRepo, logr)

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reportSvc *service.ReportService
	if cfg.Reports.Enabled {
		exportStore, storeErr := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if storeErr != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", storeErr)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportSvc := service.NewExportService(importSvc, exportStore, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Reports.SignedURLTTL,
		}, logr, nil, nil)

		worker := service.NewReportWorker(reportRepo, exportSvc, cfg.Reports.WorkerRetries, logr)
		queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()

		reportSvc = service.NewReportService(reportRepo, importSvc, queue, exportSvc, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportSvc.RecoverPendingJobs(ctx)
		reportSvc.StartCleanup(ctx)
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	importHandler := handler.NewImportHandler(importSvc, metricsSvc, logr)
	studentHandler := handler.NewStudentHandler(studentSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metricsSvc != nil {
		r.Use(middleware.Metrics(metricsSvc))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if metricsSvc != nil {
		r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	}

	imports := api.Group("/imports", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	{
		imports.POST("/upload", importHandler.Upload)
		imports.GET("/sessions/:id", importHandler.GetSession)
		imports.POST("/sessions/:id/approvals", importHandler.SubmitApprovals)
	}

	students := api.Group("/students", middleware.JWT(authSvc))
	{
		students.GET("", studentHandler.List)
		students.GET("/:matricNo", studentHandler.Get)
	}

	if reportSvc != nil {
		reportHandler := handler.NewReportHandler(reportSvc, logr)
		reports := api.Group("/reports", middleware.JWT(authSvc))
		{
			reports.POST("/generate", reportHandler.GenerateReport)
			reports.GET("/:id", reportHandler.ReportStatus)
		}
		// Download tokens are self-authenticating.
		api.GET("/export/:token", reportHandler.DownloadExport)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
