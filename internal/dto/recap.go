package dto

import (
	"fmt"
	"time"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

// DateLayout is the calendar date format accepted by recap filters.
const DateLayout = "2006-01-02"

// RecapQuery binds recap filters from the query string or a JSON body.
type RecapQuery struct {
	ClassID   string `form:"class_id" json:"class_id,omitempty"`
	StudentID string `form:"student_id" json:"student_id,omitempty"`
	TaskID    string `form:"task_id" json:"task_id,omitempty"`
	ExamID    string `form:"exam_id" json:"exam_id,omitempty"`
	DateStart string `form:"date_start" json:"date_start,omitempty"`
	DateEnd   string `form:"date_end" json:"date_end,omitempty"`
	GroupBy   string `form:"group_by" json:"group_by,omitempty"`
}

// Filter parses dates and returns the service level filter.
func (q RecapQuery) Filter() (models.RecapFilter, error) {
	filter := models.RecapFilter{
		ClassID:   q.ClassID,
		StudentID: q.StudentID,
		TaskID:    q.TaskID,
		ExamID:    q.ExamID,
		GroupBy:   models.RecapGroupBy(q.GroupBy),
	}
	var err error
	if filter.DateStart, err = parseDate("date_start", q.DateStart); err != nil {
		return models.RecapFilter{}, err
	}
	if filter.DateEnd, err = parseDate("date_end", q.DateEnd); err != nil {
		return models.RecapFilter{}, err
	}
	return filter, nil
}

func parseDate(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be formatted as YYYY-MM-DD", name)
	}
	return &t, nil
}

// ExportRecapRequest captures POST /recaps/export payload.
type ExportRecapRequest struct {
	Kind   models.RecapKind `json:"kind" validate:"required,oneof=grades exams attendance"`
	Format string           `json:"format" validate:"omitempty,oneof=csv pdf xlsx"`
	RecapQuery
}
