package dto

import (
	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/pkg/jobs"
)

// CalculateGradeRequest captures POST /grades/calculate payload.
type CalculateGradeRequest struct {
	StudentID      string          `json:"student_id" validate:"required"`
	SubjectID      string          `json:"subject_id" validate:"required"`
	ClassID        string          `json:"class_id" validate:"required"`
	AcademicYearID string          `json:"academic_year_id" validate:"required"`
	Semester       models.Semester `json:"semester" validate:"required,oneof=ganjil genap"`
}

// RecalculateClassRequest captures POST /grades/recalculate payload.
type RecalculateClassRequest struct {
	SubjectID      string          `json:"subject_id" validate:"required"`
	ClassID        string          `json:"class_id" validate:"required"`
	AcademicYearID string          `json:"academic_year_id" validate:"required"`
	Semester       models.Semester `json:"semester" validate:"required,oneof=ganjil genap"`
}

// UpdateWeightsRequest captures PUT /grades/weights payload.
type UpdateWeightsRequest struct {
	Task    *int `json:"task" validate:"required"`
	Quiz    *int `json:"quiz" validate:"required"`
	Midterm *int `json:"midterm" validate:"required"`
	Final   *int `json:"final" validate:"required"`
}

// Weights converts the request into grade weights. Call after validation.
func (r UpdateWeightsRequest) Weights() models.GradeWeights {
	return models.GradeWeights{Task: *r.Task, Quiz: *r.Quiz, Midterm: *r.Midterm, Final: *r.Final}
}

// GradeRecordQuery binds GET /grades/records query parameters.
type GradeRecordQuery struct {
	ClassID        string          `form:"class_id"`
	StudentID      string          `form:"student_id"`
	SubjectID      string          `form:"subject_id"`
	AcademicYearID string          `form:"academic_year_id"`
	Semester       models.Semester `form:"semester" validate:"omitempty,oneof=ganjil genap"`
}

// RecalculationJobResponse reports the state of a class recalculation job.
type RecalculationJobResponse struct {
	ID        string     `json:"id"`
	State     jobs.State `json:"state"`
	Attempts  int        `json:"attempts"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt string     `json:"updated_at,omitempty"`
}
