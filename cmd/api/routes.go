package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-grading-api/api/swagger"
	"github.com/noah-isme/sma-grading-api/internal/handler"
	"github.com/noah-isme/sma-grading-api/internal/middleware"
	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/internal/service"
	"github.com/noah-isme/sma-grading-api/pkg/config"
	"github.com/noah-isme/sma-grading-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-grading-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-grading-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	auth          *handler.AuthHandler
	grades        *handler.GradeHandler
	assessments   *handler.AssessmentHandler
	recaps        *handler.RecapHandler
	exports       *handler.ExportHandler
	notifications *handler.NotificationHandler
	metrics       *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, tokens middleware.TokenValidator, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/health", "/ready", "/metrics"))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.auth.Login)
	api.GET("/export/:token", h.exports.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))
	secured.GET("/auth/me", h.auth.Me)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

	grades := secured.Group("/grades")
	grades.GET("/weights", h.grades.Weights)
	grades.PUT("/weights", middleware.RequireRoles(models.RoleAdmin), h.grades.UpdateWeights)
	grades.POST("/calculate", staff, h.grades.Calculate)
	grades.POST("/recalculate", staff, h.grades.Recalculate)
	grades.GET("/recalculate/:id", staff, h.grades.RecalculationStatus)
	grades.GET("/records", h.grades.Records)
	grades.GET("/records/:student_id/:subject_id/:academic_year_id/:semester", h.grades.Record)

	secured.PUT("/submissions/:id/score", staff, h.assessments.ScoreSubmission)
	secured.PUT("/exams/:id/results", staff, h.assessments.UpsertExamResult)

	recaps := secured.Group("/recaps")
	recaps.GET("/grades", h.recaps.Grades)
	recaps.GET("/exams", h.recaps.Exams)
	recaps.GET("/attendance", h.recaps.Attendance)
	recaps.POST("/export", h.exports.Export)

	secured.GET("/notifications", h.notifications.List)
	secured.POST("/notifications/:id/read", h.notifications.MarkRead)

	return r
}
