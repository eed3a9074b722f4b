package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-grading-api/internal/dto"
	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
	"github.com/noah-isme/sma-grading-api/pkg/jobs"
	"github.com/noah-isme/sma-grading-api/pkg/response"
)

type weightProvider interface {
	Current(ctx context.Context) (models.GradeWeights, error)
	Update(ctx context.Context, weights models.GradeWeights, actorID string) (models.GradeWeights, error)
}

type gradeCalculatorService interface {
	Calculate(ctx context.Context, req dto.CalculateGradeRequest, weights models.GradeWeights) (*models.GradeRecord, error)
	ListForActor(ctx context.Context, actor models.Actor, query dto.GradeRecordQuery) ([]models.GradeRecord, error)
	Get(ctx context.Context, actor models.Actor, key models.GradeKey) (*models.GradeRecord, error)
}

type recalculationQueue interface {
	Enqueue(ctx context.Context, actorID string, req dto.RecalculateClassRequest, weights models.GradeWeights) (jobs.Status, error)
	Status(id string) (jobs.Status, error)
}

type classAccessChecker interface {
	Ensure(ctx context.Context, actor models.Actor, classID string) error
}

// GradeHandler exposes grade calculation endpoints.
type GradeHandler struct {
	weights   weightProvider
	grades    gradeCalculatorService
	recalc    recalculationQueue
	access    classAccessChecker
	validator *validator.Validate
}

// NewGradeHandler constructs handler.
func NewGradeHandler(weights weightProvider, grades gradeCalculatorService, recalc recalculationQueue, access classAccessChecker, validate *validator.Validate) *GradeHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &GradeHandler{weights: weights, grades: grades, recalc: recalc, access: access, validator: validate}
}

// Weights godoc
// @Summary Get grade weights
// @Tags Grades
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grades/weights [get]
func (h *GradeHandler) Weights(c *gin.Context) {
	weights, err := h.weights.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weights, nil)
}

// UpdateWeights godoc
// @Summary Replace grade weights
// @Description Weights are integer percentages that must sum to 100
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.UpdateWeightsRequest true "Weights"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grades/weights [put]
func (h *GradeHandler) UpdateWeights(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateWeightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid weights payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, "all four weights are required"))
		return
	}

	weights, err := h.weights.Update(c.Request.Context(), req.Weights(), actor.ActorID())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weights, nil)
}

// Calculate godoc
// @Summary Calculate a final grade
// @Description Computes and stores the weighted final score of one student
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.CalculateGradeRequest true "Grade key"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /grades/calculate [post]
func (h *GradeHandler) Calculate(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CalculateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid grade payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid grade payload"))
		return
	}
	ctx := c.Request.Context()
	if err := h.access.Ensure(ctx, actor, req.ClassID); err != nil {
		response.Error(c, err)
		return
	}
	weights, err := h.weights.Current(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}

	record, err := h.grades.Calculate(ctx, req, weights)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Recalculate godoc
// @Summary Recalculate a class
// @Description Queues a recalculation of every student on the class roster
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.RecalculateClassRequest true "Class and term"
// @Success 202 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /grades/recalculate [post]
func (h *GradeHandler) Recalculate(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.RecalculateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid recalculation payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid recalculation payload"))
		return
	}
	ctx := c.Request.Context()
	if err := h.access.Ensure(ctx, actor, req.ClassID); err != nil {
		response.Error(c, err)
		return
	}
	weights, err := h.weights.Current(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}

	status, err := h.recalc.Enqueue(ctx, actor.ActorID(), req, weights)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, jobResponse(status))
}

// RecalculationStatus godoc
// @Summary Get recalculation job status
// @Tags Grades
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grades/recalculate/{id} [get]
func (h *GradeHandler) RecalculationStatus(c *gin.Context) {
	status, err := h.recalc.Status(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobResponse(status), nil)
}

// Records godoc
// @Summary List stored grade records
// @Description Results are restricted to what the caller may see
// @Tags Grades
// @Produce json
// @Param class_id query string false "Class"
// @Param student_id query string false "Student"
// @Param subject_id query string false "Subject"
// @Param academic_year_id query string false "Academic year"
// @Param semester query string false "ganjil or genap"
// @Success 200 {object} response.Envelope
// @Router /grades/records [get]
func (h *GradeHandler) Records(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.GradeRecordQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid query"))
		return
	}

	records, err := h.grades.ListForActor(c.Request.Context(), actor, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Record godoc
// @Summary Get one stored grade record
// @Tags Grades
// @Produce json
// @Param student_id path string true "Student"
// @Param subject_id path string true "Subject"
// @Param academic_year_id path string true "Academic year"
// @Param semester path string true "ganjil or genap"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grades/records/{student_id}/{subject_id}/{academic_year_id}/{semester} [get]
func (h *GradeHandler) Record(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	key := models.GradeKey{
		StudentID:      c.Param("student_id"),
		SubjectID:      c.Param("subject_id"),
		AcademicYearID: c.Param("academic_year_id"),
		Semester:       models.Semester(c.Param("semester")),
	}

	record, err := h.grades.Get(c.Request.Context(), actor, key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

func jobResponse(status jobs.Status) dto.RecalculationJobResponse {
	res := dto.RecalculationJobResponse{
		ID:       status.ID,
		State:    status.State,
		Attempts: status.Attempts,
		Error:    status.Error,
	}
	if !status.UpdatedAt.IsZero() {
		res.UpdatedAt = status.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return res
}
