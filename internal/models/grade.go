package models

import "time"

// GradeWeights are integer percentages applied to the four grade components.
type GradeWeights struct {
	Task    int `json:"task" validate:"min=0,max=100"`
	Quiz    int `json:"quiz" validate:"min=0,max=100"`
	Midterm int `json:"midterm" validate:"min=0,max=100"`
	Final   int `json:"final" validate:"min=0,max=100"`
}

// DefaultGradeWeights applies when no weight configuration is stored.
func DefaultGradeWeights() GradeWeights {
	return GradeWeights{Task: 20, Quiz: 30, Midterm: 20, Final: 30}
}

// Sum returns the total of all four weights.
func (w GradeWeights) Sum() int {
	return w.Task + w.Quiz + w.Midterm + w.Final
}

// GradeComponents are the category averages behind a final score.
type GradeComponents struct {
	TaskAvg float64 `json:"task_avg"`
	QuizAvg float64 `json:"quiz_avg"`
	Midterm float64 `json:"midterm"`
	Final   float64 `json:"final"`
}

// GradeKey identifies one grade record.
type GradeKey struct {
	StudentID      string   `json:"student_id"`
	SubjectID      string   `json:"subject_id"`
	AcademicYearID string   `json:"academic_year_id"`
	Semester       Semester `json:"semester"`
}

// GradeRecord is the persisted snapshot of a computed grade.
type GradeRecord struct {
	ID             string          `db:"id" json:"id"`
	StudentID      string          `db:"student_id" json:"student_id"`
	SubjectID      string          `db:"subject_id" json:"subject_id"`
	ClassID        string          `db:"class_id" json:"class_id"`
	AcademicYearID string          `db:"academic_year_id" json:"academic_year_id"`
	Semester       Semester        `db:"semester" json:"semester"`
	Components     GradeComponents `db:"-" json:"components"`
	Weights        GradeWeights    `db:"-" json:"weights"`
	FinalScore     float64         `db:"final_score" json:"final_score"`
	LetterGrade    string          `db:"letter_grade" json:"letter_grade"`
	Finalized      bool            `db:"finalized" json:"finalized"`
	CalculatedAt   time.Time       `db:"calculated_at" json:"calculated_at"`
}

// Key returns the uniqueness key of the record.
func (r GradeRecord) Key() GradeKey {
	return GradeKey{StudentID: r.StudentID, SubjectID: r.SubjectID, AcademicYearID: r.AcademicYearID, Semester: r.Semester}
}

// GradeRecordFilter scopes grade record listings. Nil slices are unrestricted.
type GradeRecordFilter struct {
	StudentIDs     []string
	ClassIDs       []string
	SubjectID      string
	AcademicYearID string
	Semester       Semester
}
