package dto

// ScoreSubmissionRequest captures PUT /submissions/:id/score payload.
type ScoreSubmissionRequest struct {
	Score *float64 `json:"score" validate:"required"`
}

// ExamResultRequest captures PUT /exams/:id/results payload.
type ExamResultRequest struct {
	StudentID string   `json:"student_id" validate:"required"`
	Score     *float64 `json:"score" validate:"required"`
}
