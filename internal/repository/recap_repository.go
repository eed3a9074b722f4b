package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

// RecapRepository loads the raw rows that recaps aggregate.
type RecapRepository struct {
	db *sqlx.DB
}

func NewRecapRepository(db *sqlx.DB) *RecapRepository {
	return &RecapRepository{db: db}
}

// ListSubmissionScores returns scored submissions keyed by task or by class.
func (r *RecapRepository) ListSubmissionScores(ctx context.Context, q models.RecapQuery) ([]models.ScoreRow, error) {
	secondary := `t.id AS secondary_id, t.title AS secondary_name`
	if q.GroupBy == models.RecapGroupByClass {
		secondary = `c.id AS secondary_id, c.name AS secondary_name`
	}
	var b strings.Builder
	b.WriteString(`SELECT s.student_id, u.full_name AS student_name, ` + secondary + `, s.score
FROM submissions s
JOIN tasks t ON t.id = s.task_id
JOIN classes c ON c.id = t.class_id
JOIN users u ON u.id = s.student_id
WHERE s.score IS NOT NULL`)

	conds := conditions{}
	conds.addIn("t.class_id", q.ClassIDs)
	conds.addIn("s.student_id", q.StudentIDs)
	if q.TaskID != "" {
		conds.add("s.task_id = $%d", q.TaskID)
	}
	addDateRange(&conds, "s.submitted_at", q)
	conds.and(&b)

	rows := []models.ScoreRow{}
	if err := r.db.SelectContext(ctx, &rows, b.String(), conds.args...); err != nil {
		return nil, fmt.Errorf("list submission scores: %w", err)
	}
	return rows, nil
}

// ListExamScores returns exam results keyed by exam.
func (r *RecapRepository) ListExamScores(ctx context.Context, q models.RecapQuery) ([]models.ScoreRow, error) {
	var b strings.Builder
	b.WriteString(`SELECT er.student_id, u.full_name AS student_name, e.id AS secondary_id, e.title AS secondary_name, er.score
FROM exam_results er
JOIN exams e ON e.id = er.exam_id
JOIN users u ON u.id = er.student_id`)

	conds := conditions{}
	conds.addIn("e.class_id", q.ClassIDs)
	conds.addIn("er.student_id", q.StudentIDs)
	if q.ExamID != "" {
		conds.add("er.exam_id = $%d", q.ExamID)
	}
	addDateRange(&conds, "e.exam_date", q)
	conds.where(&b)

	rows := []models.ScoreRow{}
	if err := r.db.SelectContext(ctx, &rows, b.String(), conds.args...); err != nil {
		return nil, fmt.Errorf("list exam scores: %w", err)
	}
	return rows, nil
}

// ListAttendance returns attendance records with student and class names.
func (r *RecapRepository) ListAttendance(ctx context.Context, q models.RecapQuery) ([]models.AttendanceRow, error) {
	var b strings.Builder
	b.WriteString(`SELECT ar.student_id, u.full_name AS student_name, c.id AS class_id, c.name AS class_name, ar.status
FROM attendance_records ar
JOIN attendance_sessions ses ON ses.id = ar.session_id
JOIN classes c ON c.id = ses.class_id
JOIN users u ON u.id = ar.student_id`)

	conds := conditions{}
	conds.addIn("ses.class_id", q.ClassIDs)
	conds.addIn("ar.student_id", q.StudentIDs)
	addDateRange(&conds, "ses.date", q)
	conds.where(&b)

	rows := []models.AttendanceRow{}
	if err := r.db.SelectContext(ctx, &rows, b.String(), conds.args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return rows, nil
}

// addDateRange bounds column by whole days; date_end is inclusive.
func addDateRange(conds *conditions, column string, q models.RecapQuery) {
	if q.DateStart != nil {
		conds.add(column+" >= $%d", *q.DateStart)
	}
	if q.DateEnd != nil {
		conds.add(column+" < $%d", q.DateEnd.AddDate(0, 0, 1))
	}
}
