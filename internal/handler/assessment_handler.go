package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-grading-api/internal/dto"
	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/pkg/response"
)

type assessmentScorer interface {
	GradeSubmission(ctx context.Context, actor models.Actor, submissionID string, req dto.ScoreSubmissionRequest) (*models.Submission, error)
	UpsertExamResult(ctx context.Context, actor models.Actor, examID string, req dto.ExamResultRequest) (*models.ExamResult, error)
}

// AssessmentHandler records submission scores and exam results.
type AssessmentHandler struct {
	service assessmentScorer
}

// NewAssessmentHandler constructs handler.
func NewAssessmentHandler(svc assessmentScorer) *AssessmentHandler {
	return &AssessmentHandler{service: svc}
}

// ScoreSubmission godoc
// @Summary Score a task submission
// @Tags Assessments
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.ScoreSubmissionRequest true "Score"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /submissions/{id}/score [put]
func (h *AssessmentHandler) ScoreSubmission(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ScoreSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid score payload"))
		return
	}

	submission, err := h.service.GradeSubmission(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// UpsertExamResult godoc
// @Summary Record an exam result
// @Tags Assessments
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body dto.ExamResultRequest true "Result"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exams/{id}/results [put]
func (h *AssessmentHandler) UpsertExamResult(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ExamResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid exam result payload"))
		return
	}

	result, err := h.service.UpsertExamResult(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
