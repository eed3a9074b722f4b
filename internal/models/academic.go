package models

// Semester is one half of an academic year.
type Semester string

const (
	SemesterOdd  Semester = "ganjil"
	SemesterEven Semester = "genap"
)

// Valid reports whether s is a supported semester value.
func (s Semester) Valid() bool {
	return s == SemesterOdd || s == SemesterEven
}

// Class represents an academic class or section.
type Class struct {
	ID                string  `db:"id" json:"id"`
	Name              string  `db:"name" json:"name"`
	HomeroomTeacherID *string `db:"homeroom_teacher_id" json:"homeroom_teacher_id,omitempty"`
}
