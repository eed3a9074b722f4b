package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ClassRepository answers roster and teaching-assignment questions.
type ClassRepository struct {
	db *sqlx.DB
}

func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// TeacherClassIDs lists classes where the teacher is homeroom or teaches a subject.
func (r *ClassRepository) TeacherClassIDs(ctx context.Context, teacherID string) ([]string, error) {
	const query = `SELECT DISTINCT c.id FROM classes c
LEFT JOIN class_subjects cs ON cs.class_id = c.id
WHERE c.homeroom_teacher_id = $1 OR cs.teacher_id = $1
ORDER BY c.id`
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher classes: %w", err)
	}
	return ids, nil
}

// TeacherTeachesClass reports whether the teacher is assigned to the class.
func (r *ClassRepository) TeacherTeachesClass(ctx context.Context, teacherID, classID string) (bool, error) {
	const query = `SELECT EXISTS (
	SELECT 1 FROM classes c
	WHERE c.id = $1 AND (c.homeroom_teacher_id = $2
		OR EXISTS (SELECT 1 FROM class_subjects cs WHERE cs.class_id = c.id AND cs.teacher_id = $2))
)`
	var ok bool
	if err := r.db.GetContext(ctx, &ok, query, classID, teacherID); err != nil {
		return false, fmt.Errorf("check teacher class: %w", err)
	}
	return ok, nil
}

// RosterStudentIDs lists the students enrolled in a class.
func (r *ClassRepository) RosterStudentIDs(ctx context.Context, classID string) ([]string, error) {
	const query = `SELECT student_id FROM class_students WHERE class_id = $1 ORDER BY student_id`
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, classID); err != nil {
		return nil, fmt.Errorf("list class roster: %w", err)
	}
	return ids, nil
}
