package models

import "time"

// RecapGroupBy selects the secondary key of a grade recap.
type RecapGroupBy string

const (
	RecapGroupByTask  RecapGroupBy = "task"
	RecapGroupByClass RecapGroupBy = "class"
)

// RecapFilter holds the optional filters a caller may pass to a recap.
type RecapFilter struct {
	ClassID   string       `json:"class_id,omitempty"`
	StudentID string       `json:"student_id,omitempty"`
	TaskID    string       `json:"task_id,omitempty"`
	ExamID    string       `json:"exam_id,omitempty"`
	DateStart *time.Time   `json:"date_start,omitempty"`
	DateEnd   *time.Time   `json:"date_end,omitempty"`
	GroupBy   RecapGroupBy `json:"group_by,omitempty" validate:"omitempty,oneof=task class"`
}

// RecapScope restricts a recap to what the actor may see. Nil slices are unrestricted.
type RecapScope struct {
	Empty      bool
	ClassIDs   []string
	StudentIDs []string
}

// RecapQuery is the storage level query produced from a filter and a scope.
type RecapQuery struct {
	ClassIDs   []string
	StudentIDs []string
	TaskID     string
	ExamID     string
	DateStart  *time.Time
	DateEnd    *time.Time
	GroupBy    RecapGroupBy
}

// ScoreRow is one scored submission or exam result with display names.
type ScoreRow struct {
	StudentID     string  `db:"student_id"`
	StudentName   string  `db:"student_name"`
	SecondaryID   string  `db:"secondary_id"`
	SecondaryName string  `db:"secondary_name"`
	Score         float64 `db:"score"`
}

// RecapRow summarises the scores of one student for one task, exam or class.
type RecapRow struct {
	StudentID     string  `json:"student_id"`
	StudentName   string  `json:"student_name"`
	SecondaryID   string  `json:"secondary_id"`
	SecondaryName string  `json:"secondary_name"`
	Count         int     `json:"count"`
	Avg           float64 `json:"avg"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
}

// AttendanceRow is one attendance record with display names.
type AttendanceRow struct {
	StudentID   string           `db:"student_id"`
	StudentName string           `db:"student_name"`
	ClassID     string           `db:"class_id"`
	ClassName   string           `db:"class_name"`
	Status      AttendanceStatus `db:"status"`
}

// AttendanceRecapRow counts attendance statuses for one student in one class.
type AttendanceRecapRow struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	ClassID     string `json:"class_id"`
	ClassName   string `json:"class_name"`
	Present     int    `json:"present"`
	Permitted   int    `json:"permitted"`
	Sick        int    `json:"sick"`
	Unexcused   int    `json:"unexcused"`
	Total       int    `json:"total"`
}
