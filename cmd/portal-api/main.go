package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/campusdesk/faculty-results-api/internal/handler"
	"github.com/campusdesk/faculty-results-api/internal/middleware"
	"github.com/campusdesk/faculty-results-api/internal/repository"
	"github.com/campusdesk/faculty-results-api/internal/service"
	"github.com/campusdesk/faculty-results-api/pkg/cache"
	"github.com/campusdesk/faculty-results-api/pkg/config"
	"github.com/campusdesk/faculty-results-api/pkg/database"
	"github.com/campusdesk/faculty-results-api/pkg/logger"
	corsmiddleware "github.com/campusdesk/faculty-results-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusdesk/faculty-results-api/pkg/middleware/requestid"
)

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

	if cfg.Database.Migrate {
		if err := database.RunMigrations(db, logr); err != nil {
			logr.Sugar().Fatalw("failed to run migrations", "error", err)
		}
	}

	validate := validator.New()
	metricsService := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
		}
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Analytics.CacheTTL, logr, cacheRepo != nil)

	facultyRepo := repository.NewFacultyRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	resultRepo := repository.NewResultRepository(db)
	selectionRepo := repository.NewSelectionRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	authService := service.NewAuthService(facultyRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	subjectService := service.NewSubjectService(subjectRepo, validate, logr)
	selectionService := service.NewSelectionService(selectionRepo, subjectRepo, departmentRepo, validate, logr)
	importService := service.NewImportService(studentRepo, subjectRepo, resultRepo, cacheService, metricsService, logr, cfg.Uploads.MaxErrorDisplay)
	marksService := service.NewMarksService(studentRepo, resultRepo, cacheService, validate, logr, cfg.Uploads.MaxErrorDisplay)
	analyticsService := service.NewAnalyticsService(analyticsRepo, subjectRepo, cacheService, logr, cfg.Analytics.CacheTTL, cfg.Analytics.EpochStartYear)
	exportService := service.NewExportService(analyticsService, resultRepo, cacheService, logr)

	authHandler := handler.NewAuthHandler(authService)
	subjectHandler := handler.NewSubjectHandler(subjectService)
	selectionHandler := handler.NewSelectionHandler(selectionService)
	uploadHandler := handler.NewUploadHandler(importService, analyticsService, exportService, selectionService, cfg.Uploads.MaxFileSizeBytes)
	marksHandler := handler.NewMarksHandler(marksService, selectionService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, selectionService)
	exportHandler := handler.NewExportHandler(exportService, selectionService)
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
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/departments", selectionHandler.Departments)
		protected.GET("/selection", selectionHandler.Current)
		protected.PUT("/selection", selectionHandler.Select)

		protected.GET("/subjects", subjectHandler.List)
		protected.POST("/subjects", subjectHandler.Create)
		protected.GET("/subjects/:id", subjectHandler.Get)
		protected.PUT("/subjects/:id", subjectHandler.Update)
		protected.DELETE("/subjects/:id", subjectHandler.Delete)
		protected.GET("/subjects/:id/years/:label/results", analyticsHandler.YearResults)

		protected.GET("/students", marksHandler.Roster)
		protected.POST("/marks", marksHandler.SaveMarks)

		protected.GET("/uploads/marks/template", uploadHandler.MarksTemplate)
		protected.POST("/uploads/marks", uploadHandler.UploadMarks)
		protected.GET("/uploads/results/template", uploadHandler.ResultsTemplate)
		protected.POST("/uploads/results", uploadHandler.UploadResults)

		protected.GET("/results/analytics", analyticsHandler.Summary)
		protected.GET("/results/history", analyticsHandler.History)
		protected.GET("/results/analysis/export", exportHandler.AnalysisWorkbook)
		protected.GET("/results/analysis/pdf", exportHandler.AnalysisPDF)
		protected.GET("/results/export", exportHandler.ResultsWorkbook)
		protected.GET("/results/export/csv", exportHandler.ResultsCSV)
		protected.DELETE("/results", exportHandler.DeleteResults)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
