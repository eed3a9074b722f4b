package models

import "time"

// SubmissionStatus tracks whether a submission has been scored.
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusGraded    SubmissionStatus = "graded"
)

// ExamType is one of the three exam categories feeding the final grade.
type ExamType string

const (
	ExamTypeQuiz    ExamType = "UH"
	ExamTypeMidterm ExamType = "UTS"
	ExamTypeFinal   ExamType = "UAS"
)

// ExamTypes lists the categories in weighting order.
var ExamTypes = []ExamType{ExamTypeQuiz, ExamTypeMidterm, ExamTypeFinal}

// MaxScore is the upper bound of every recorded score.
const MaxScore = 100.0

// Task is an assignment given to a class for a subject.
type Task struct {
	ID             string     `db:"id" json:"id"`
	ClassID        string     `db:"class_id" json:"class_id"`
	SubjectID      string     `db:"subject_id" json:"subject_id"`
	AcademicYearID *string    `db:"academic_year_id" json:"academic_year_id,omitempty"`
	Semester       *Semester  `db:"semester" json:"semester,omitempty"`
	Title          string     `db:"title" json:"title"`
	Deadline       *time.Time `db:"deadline" json:"deadline,omitempty"`
}

// TaskFilter selects tasks feeding a task average. Nil term fields disable term filtering.
type TaskFilter struct {
	ClassID        string
	SubjectID      string
	AcademicYearID *string
	Semester       *Semester
}

// Submission is a student's response to a task.
type Submission struct {
	ID          string           `db:"id" json:"id"`
	TaskID      string           `db:"task_id" json:"task_id"`
	StudentID   string           `db:"student_id" json:"student_id"`
	Score       *float64         `db:"score" json:"score,omitempty"`
	Status      SubmissionStatus `db:"status" json:"status"`
	SubmittedAt time.Time        `db:"submitted_at" json:"submitted_at"`
	GradedAt    *time.Time       `db:"graded_at" json:"graded_at,omitempty"`
	ClassID     string           `db:"class_id" json:"class_id,omitempty"`
}

// Exam belongs to a class, subject and term.
type Exam struct {
	ID             string    `db:"id" json:"id"`
	ClassID        string    `db:"class_id" json:"class_id"`
	SubjectID      string    `db:"subject_id" json:"subject_id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	Semester       Semester  `db:"semester" json:"semester"`
	Type           ExamType  `db:"type" json:"type"`
	Title          string    `db:"title" json:"title"`
	MaxScore       float64   `db:"max_score" json:"max_score"`
	ExamDate       time.Time `db:"exam_date" json:"exam_date"`
}

// ExamFilter selects exams of a term for a class and subject.
type ExamFilter struct {
	ClassID        string
	SubjectID      string
	AcademicYearID string
	Semester       Semester
}

// ExamResult is one student's score on one exam.
type ExamResult struct {
	ID        string    `db:"id" json:"id"`
	ExamID    string    `db:"exam_id" json:"exam_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Score     float64   `db:"score" json:"score"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
