package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/unienroll/enroll-api/api/swagger"
	"github.com/unienroll/enroll-api/internal/handler"
	"github.com/unienroll/enroll-api/internal/middleware"
	"github.com/unienroll/enroll-api/internal/models"
	"github.com/unienroll/enroll-api/internal/repository"
	"github.com/unienroll/enroll-api/internal/service"
	"github.com/unienroll/enroll-api/pkg/cache"
	"github.com/unienroll/enroll-api/pkg/config"
	"github.com/unienroll/enroll-api/pkg/database"
	"github.com/unienroll/enroll-api/pkg/jobs"
	"github.com/unienroll/enroll-api/pkg/logger"
	corsmiddleware "github.com/unienroll/enroll-api/pkg/middleware/cors"
	reqidmiddleware "github.com/unienroll/enroll-api/pkg/middleware/requestid"
	"github.com/unienroll/enroll-api/pkg/storage"
)

// @title UniEnroll API
// @version 1.0.0
// @description Student enrollment request, adjudication and billing API
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, catalog caching disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	validate := validator.New()

	store := repository.NewStore(db)
	requestRepo := repository.NewRequestRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	tokenVerifier := service.NewTokenVerifier(cfg.JWT.Secret)
	catalogSvc := service.NewCatalogService(courseRepo, enrollmentRepo, studentRepo, cacheRepo, metricsSvc, validate, logr, cfg.Catalog.CacheTTL)
	intakeSvc := service.NewIntakeService(requestRepo, enrollmentRepo, courseRepo, studentRepo, validate, logr, cfg.Enrollment.MaxCreditHours)
	adjudicationSvc := service.NewAdjudicationService(store, requestRepo, catalogSvc, logr, cfg.Enrollment.MaxCreditHours)
	billingSvc := service.NewBillingService(invoiceRepo, paymentRepo, studentRepo, validate, logr)
	evaluationSvc := service.NewEvaluationService(evaluationRepo, studentRepo, logr)

	exportStore, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.JWT.Secret, cfg.Export.TTL)
	cleanupQueue := jobs.NewQueue("export-cleanup", func(ctx context.Context, job jobs.Job) error {
		deleted, err := exportStore.CleanupOlderThan(cfg.Export.TTL)
		if err != nil {
			return err
		}
		if len(deleted) > 0 {
			logr.Info("expired exports removed", zap.Int("count", len(deleted)))
		}
		return nil
	}, jobs.QueueConfig{Logger: logr})
	cleanupQueue.Start(context.Background())
	defer cleanupQueue.Stop()
	exportSvc := service.NewExportService(requestRepo, exportStore, signer, cleanupQueue, logr)

	requestHandler := handler.NewRequestHandler(intakeSvc)
	adjudicationHandler := handler.NewAdjudicationHandler(adjudicationSvc)
	courseHandler := handler.NewCourseHandler(catalogSvc)
	billingHandler := handler.NewBillingHandler(billingSvc)
	evaluationHandler := handler.NewEvaluationHandler(evaluationSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenVerifier))

	requests := api.Group("/enrollment-requests")
	{
		requests.POST("", middleware.RequireRoles(models.RoleStudent), requestHandler.Submit)
		requests.GET("/pending", middleware.RequireRoles(models.RoleAdmin), adjudicationHandler.ListPending)
		requests.POST("/:id/approve", middleware.RequireRoles(models.RoleAdmin), adjudicationHandler.Approve)
		requests.POST("/:id/reject", middleware.RequireRoles(models.RoleAdmin), adjudicationHandler.Reject)
		requests.POST("/pending/export", middleware.RequireRoles(models.RoleAdmin), exportHandler.ExportPending)
	}

	// Signed token downloads live outside the JWT group.
	r.GET("/exports/:token", exportHandler.Download)

	courses := api.Group("/courses")
	{
		courses.GET("", courseHandler.List)
		courses.GET("/:id", courseHandler.Get)
		courses.POST("", middleware.RequireRoles(models.RoleAdmin), courseHandler.Create)
		courses.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), courseHandler.Update)
		courses.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), courseHandler.Delete)
	}

	students := api.Group("/students")
	{
		selfOrAdmin := middleware.RBAC(string(models.RoleAdmin), "SELF")
		students.GET("/:id/available-courses", selfOrAdmin, courseHandler.AvailableForStudent)
		students.GET("/:id/timetable", selfOrAdmin, courseHandler.Timetable)
		students.GET("/:id/enrollment-requests", selfOrAdmin, requestHandler.History)
		students.GET("/:id/invoice", selfOrAdmin, billingHandler.Invoice)
		students.GET("/:id/payments", selfOrAdmin, billingHandler.Payments)
		students.GET("/:id/evaluations", selfOrAdmin, evaluationHandler.ListForStudent)
	}

	api.POST("/payments", middleware.RequireRoles(models.RoleAdmin, models.RoleStudent), billingHandler.RecordPayment)
	api.POST("/evaluations/:id/complete", middleware.RequireRoles(models.RoleStudent), evaluationHandler.Complete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
