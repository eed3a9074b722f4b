package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

// TaskRepository reads tasks and reads or scores submissions.
type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// ListTasks returns tasks of a class and subject. Term filters also admit tasks with no term set.
func (r *TaskRepository) ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	var b strings.Builder
	b.WriteString(`SELECT id, class_id, subject_id, academic_year_id, semester, title, deadline FROM tasks`)
	conds := conditions{}
	conds.add("class_id = $%d", filter.ClassID)
	conds.add("subject_id = $%d", filter.SubjectID)
	if filter.AcademicYearID != nil {
		conds.add("(academic_year_id IS NULL OR academic_year_id = $%d)", *filter.AcademicYearID)
	}
	if filter.Semester != nil {
		conds.add("(semester IS NULL OR semester = $%d)", *filter.Semester)
	}
	conds.where(&b)
	b.WriteString(" ORDER BY id")

	tasks := []models.Task{}
	if err := r.db.SelectContext(ctx, &tasks, b.String(), conds.args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListScoredSubmissions returns the student's submissions with a score for the given tasks.
func (r *TaskRepository) ListScoredSubmissions(ctx context.Context, studentID string, taskIDs []string) ([]models.Submission, error) {
	const query = `SELECT id, task_id, student_id, score, status, submitted_at, graded_at
FROM submissions WHERE student_id = $1 AND task_id = ANY($2) AND score IS NOT NULL ORDER BY task_id`
	subs := []models.Submission{}
	if err := r.db.SelectContext(ctx, &subs, query, studentID, pq.Array(taskIDs)); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

// FindSubmission loads a submission with the class of its task. sql.ErrNoRows is returned unwrapped.
func (r *TaskRepository) FindSubmission(ctx context.Context, id string) (*models.Submission, error) {
	const query = `SELECT s.id, s.task_id, s.student_id, s.score, s.status, s.submitted_at, s.graded_at, t.class_id
FROM submissions s JOIN tasks t ON t.id = s.task_id WHERE s.id = $1`
	var sub models.Submission
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return &sub, nil
}

// ScoreSubmission stores a score and marks the submission graded.
func (r *TaskRepository) ScoreSubmission(ctx context.Context, id string, score float64, gradedAt time.Time) error {
	const query = `UPDATE submissions SET score = $2, status = $3, graded_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, score, models.SubmissionStatusGraded, gradedAt)
	if err != nil {
		return fmt.Errorf("score submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("score submission rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
