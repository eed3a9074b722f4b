package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-grading-api/internal/dto"
	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/pkg/response"
)

type recapReader interface {
	GradeRecap(ctx context.Context, actor models.Actor, filter models.RecapFilter) ([]models.RecapRow, error)
	ExamRecap(ctx context.Context, actor models.Actor, filter models.RecapFilter) ([]models.RecapRow, error)
	AttendanceRecap(ctx context.Context, actor models.Actor, filter models.RecapFilter) ([]models.AttendanceRecapRow, error)
}

// RecapHandler serves role scoped recaps.
type RecapHandler struct {
	recaps recapReader
}

// NewRecapHandler constructs handler.
func NewRecapHandler(recaps recapReader) *RecapHandler {
	return &RecapHandler{recaps: recaps}
}

// Grades godoc
// @Summary Task score recap
// @Description Per student count, average, min and max of task scores grouped by task or class
// @Tags Recaps
// @Produce json
// @Param class_id query string false "Class"
// @Param student_id query string false "Student"
// @Param task_id query string false "Task"
// @Param date_start query string false "YYYY-MM-DD"
// @Param date_end query string false "YYYY-MM-DD"
// @Param group_by query string false "task or class"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /recaps/grades [get]
func (h *RecapHandler) Grades(c *gin.Context) {
	actor, filter, ok := h.bind(c)
	if !ok {
		return
	}
	rows, err := h.recaps.GradeRecap(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Exams godoc
// @Summary Exam score recap
// @Tags Recaps
// @Produce json
// @Param class_id query string false "Class"
// @Param student_id query string false "Student"
// @Param exam_id query string false "Exam"
// @Param date_start query string false "YYYY-MM-DD"
// @Param date_end query string false "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /recaps/exams [get]
func (h *RecapHandler) Exams(c *gin.Context) {
	actor, filter, ok := h.bind(c)
	if !ok {
		return
	}
	rows, err := h.recaps.ExamRecap(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Attendance godoc
// @Summary Attendance recap
// @Tags Recaps
// @Produce json
// @Param class_id query string false "Class"
// @Param student_id query string false "Student"
// @Param date_start query string false "YYYY-MM-DD"
// @Param date_end query string false "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /recaps/attendance [get]
func (h *RecapHandler) Attendance(c *gin.Context) {
	actor, filter, ok := h.bind(c)
	if !ok {
		return
	}
	rows, err := h.recaps.AttendanceRecap(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

func (h *RecapHandler) bind(c *gin.Context) (models.Actor, models.RecapFilter, bool) {
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return nil, models.RecapFilter{}, false
	}
	var query dto.RecapQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid recap query"))
		return nil, models.RecapFilter{}, false
	}
	filter, err := query.Filter()
	if err != nil {
		response.Error(c, bindError(err, err.Error()))
		return nil, models.RecapFilter{}, false
	}
	return actor, filter, true
}
