package models

import "time"

// RecapKind names which recap an export renders.
type RecapKind string

const (
	RecapKindGrades     RecapKind = "grades"
	RecapKindExams      RecapKind = "exams"
	RecapKindAttendance RecapKind = "attendance"
)

// ExportResult describes a rendered and stored recap export.
type ExportResult struct {
	ID        string    `json:"id"`
	Kind      RecapKind `json:"kind"`
	Format    string    `json:"format"`
	Rows      int       `json:"rows"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
