package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/handler"
	"github.com/noah-isme/sma-grading-api/internal/repository"
	"github.com/noah-isme/sma-grading-api/internal/service"
	"github.com/noah-isme/sma-grading-api/pkg/cache"
	"github.com/noah-isme/sma-grading-api/pkg/config"
	"github.com/noah-isme/sma-grading-api/pkg/database"
	"github.com/noah-isme/sma-grading-api/pkg/events"
	"github.com/noah-isme/sma-grading-api/pkg/export"
	"github.com/noah-isme/sma-grading-api/pkg/jobs"
	"github.com/noah-isme/sma-grading-api/pkg/logger"
	"github.com/noah-isme/sma-grading-api/pkg/storage"
)

// @title SMA Grading API
// @version 1.0.0
// @description Weighted final grades, role scoped recaps and recap exports
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	bus, err := events.New(cfg.Events, logr)
	if err != nil {
		return fmt.Errorf("init event bus: %w", err)
	}
	defer bus.Close() //nolint:errcheck

	objects, err := newObjectStore(cfg)
	if err != nil {
		return fmt.Errorf("init export storage: %w", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	examRepo := repository.NewExamRepository(db)
	gradeRecordRepo := repository.NewGradeRecordRepository(db)
	recapRepo := repository.NewRecapRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	configRepo := repository.NewConfigurationRepository(db)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Recaps.CacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	scopes := service.NewScopeResolver(classRepo, userRepo)
	access := service.NewClassAccess(classRepo)
	weightSvc := service.NewWeightService(configRepo, cacheSvc, validate, logr, cfg.Grades.WeightsCacheTTL)
	recapSvc := service.NewRecapService(recapRepo, scopes, cacheSvc, validate, logr, cfg.Recaps.CacheTTL)
	gradeSvc := service.NewGradeService(taskRepo, examRepo, gradeRecordRepo, scopes, bus, recapSvc, metrics, validate, logr, service.GradeServiceConfig{
		TaskTermFilter: cfg.Grades.TaskTermFilter,
		EventTopic:     cfg.Events.GradeTopic,
	})
	assessmentSvc := service.NewAssessmentService(taskRepo, examRepo, access, recapSvc, validate, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, metrics, logr)
	exportSvc := service.NewExportService(recapSvc, objects, export.NewRegistry(),
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		metrics, validate, logr, service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL})

	worker := service.NewRecalculationWorker(classRepo, gradeSvc, metrics, cfg.Grades.RecalcRetries, logr)
	queue := jobs.NewQueue("grade-recalculation", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Grades.RecalcWorkers,
		MaxRetries: cfg.Grades.RecalcRetries,
		RetryDelay: cfg.Grades.RecalcRetryBackoff,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()
	recalcSvc := service.NewRecalculationService(queue, validate, logr)

	if err := bus.Subscribe(ctx, cfg.Events.GradeTopic, notificationSvc.HandleGradeEvent); err != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.Events.GradeTopic, err)
	}

	go runExportCleanup(ctx, exportSvc, cfg.Exports.CleanupInterval)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, logr, metrics, authSvc, routeHandlers{
		auth:          handler.NewAuthHandler(authSvc),
		grades:        handler.NewGradeHandler(weightSvc, gradeSvc, recalcSvc, access, validate),
		assessments:   handler.NewAssessmentHandler(assessmentSvc),
		recaps:        handler.NewRecapHandler(recapSvc),
		exports:       handler.NewExportHandler(exportSvc),
		notifications: handler.NewNotificationHandler(notificationSvc),
		metrics:       handler.NewMetricsHandler(metrics, db),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newObjectStore(cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.Exports.Storage == config.StorageS3 {
		return storage.NewS3Storage(cfg.Exports.S3)
	}
	return storage.NewLocalStorage(cfg.Exports.StorageDir)
}

func runExportCleanup(ctx context.Context, exports *service.ExportService, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			exports.Cleanup()
		}
	}
}
