package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

const examColumns = `id, class_id, subject_id, academic_year_id, semester, type, title, max_score, exam_date`

// ExamRepository reads exams and upserts exam results.
type ExamRepository struct {
	db *sqlx.DB
}

func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// ListExams returns UH, UTS and UAS exams of one class, subject and term.
func (r *ExamRepository) ListExams(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error) {
	const query = `SELECT ` + examColumns + ` FROM exams
WHERE class_id = $1 AND subject_id = $2 AND academic_year_id = $3 AND semester = $4 AND type = ANY($5)
ORDER BY type, exam_date, id`
	types := make([]string, len(models.ExamTypes))
	for i, t := range models.ExamTypes {
		types[i] = string(t)
	}
	exams := []models.Exam{}
	if err := r.db.SelectContext(ctx, &exams, query, filter.ClassID, filter.SubjectID, filter.AcademicYearID, filter.Semester, pq.Array(types)); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// ListStudentResults returns the student's results for the given exams.
func (r *ExamRepository) ListStudentResults(ctx context.Context, studentID string, examIDs []string) ([]models.ExamResult, error) {
	const query = `SELECT id, exam_id, student_id, score, updated_at FROM exam_results
WHERE student_id = $1 AND exam_id = ANY($2)`
	results := []models.ExamResult{}
	if err := r.db.SelectContext(ctx, &results, query, studentID, pq.Array(examIDs)); err != nil {
		return nil, fmt.Errorf("list exam results: %w", err)
	}
	return results, nil
}

// FindByID loads an exam. sql.ErrNoRows is returned unwrapped.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	const query = `SELECT ` + examColumns + ` FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find exam: %w", err)
	}
	return &exam, nil
}

// UpsertResult writes one result per exam and student. The stored id is set on result.
func (r *ExamRepository) UpsertResult(ctx context.Context, result *models.ExamResult) error {
	const query = `INSERT INTO exam_results (id, exam_id, student_id, score, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (exam_id, student_id)
DO UPDATE SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
RETURNING id`
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	result.UpdatedAt = time.Now().UTC()
	if err := r.db.QueryRowxContext(ctx, query, result.ID, result.ExamID, result.StudentID, result.Score, result.UpdatedAt).Scan(&result.ID); err != nil {
		return fmt.Errorf("upsert exam result: %w", err)
	}
	return nil
}
