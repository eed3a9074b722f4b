package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

const gradeRecordColumns = `id, student_id, subject_id, class_id, academic_year_id, semester,
task_avg, quiz_avg, midterm, final, weight_task, weight_quiz, weight_midterm, weight_final,
final_score, letter_grade, finalized, calculated_at`

type gradeRecordRow struct {
	ID             string          `db:"id"`
	StudentID      string          `db:"student_id"`
	SubjectID      string          `db:"subject_id"`
	ClassID        string          `db:"class_id"`
	AcademicYearID string          `db:"academic_year_id"`
	Semester       models.Semester `db:"semester"`
	TaskAvg        float64         `db:"task_avg"`
	QuizAvg        float64         `db:"quiz_avg"`
	Midterm        float64         `db:"midterm"`
	Final          float64         `db:"final"`
	WeightTask     int             `db:"weight_task"`
	WeightQuiz     int             `db:"weight_quiz"`
	WeightMidterm  int             `db:"weight_midterm"`
	WeightFinal    int             `db:"weight_final"`
	FinalScore     float64         `db:"final_score"`
	LetterGrade    string          `db:"letter_grade"`
	Finalized      bool            `db:"finalized"`
	CalculatedAt   time.Time       `db:"calculated_at"`
}

func rowFromRecord(rec *models.GradeRecord) gradeRecordRow {
	return gradeRecordRow{
		ID:             rec.ID,
		StudentID:      rec.StudentID,
		SubjectID:      rec.SubjectID,
		ClassID:        rec.ClassID,
		AcademicYearID: rec.AcademicYearID,
		Semester:       rec.Semester,
		TaskAvg:        rec.Components.TaskAvg,
		QuizAvg:        rec.Components.QuizAvg,
		Midterm:        rec.Components.Midterm,
		Final:          rec.Components.Final,
		WeightTask:     rec.Weights.Task,
		WeightQuiz:     rec.Weights.Quiz,
		WeightMidterm:  rec.Weights.Midterm,
		WeightFinal:    rec.Weights.Final,
		FinalScore:     rec.FinalScore,
		LetterGrade:    rec.LetterGrade,
		Finalized:      rec.Finalized,
		CalculatedAt:   rec.CalculatedAt,
	}
}

func (r gradeRecordRow) record() models.GradeRecord {
	return models.GradeRecord{
		ID:             r.ID,
		StudentID:      r.StudentID,
		SubjectID:      r.SubjectID,
		ClassID:        r.ClassID,
		AcademicYearID: r.AcademicYearID,
		Semester:       r.Semester,
		Components: models.GradeComponents{
			TaskAvg: r.TaskAvg,
			QuizAvg: r.QuizAvg,
			Midterm: r.Midterm,
			Final:   r.Final,
		},
		Weights: models.GradeWeights{
			Task:    r.WeightTask,
			Quiz:    r.WeightQuiz,
			Midterm: r.WeightMidterm,
			Final:   r.WeightFinal,
		},
		FinalScore:   r.FinalScore,
		LetterGrade:  r.LetterGrade,
		Finalized:    r.Finalized,
		CalculatedAt: r.CalculatedAt,
	}
}

// GradeRecordRepository persists computed grade snapshots.
type GradeRecordRepository struct {
	db *sqlx.DB
}

func NewGradeRecordRepository(db *sqlx.DB) *GradeRecordRepository {
	return &GradeRecordRepository{db: db}
}

// Upsert replaces the record for (student, subject, academic year, semester).
// The id of the stored row is written back to rec.
func (r *GradeRecordRepository) Upsert(ctx context.Context, rec *models.GradeRecord) error {
	const query = `INSERT INTO grade_records (` + gradeRecordColumns + `)
VALUES (:id, :student_id, :subject_id, :class_id, :academic_year_id, :semester,
	:task_avg, :quiz_avg, :midterm, :final, :weight_task, :weight_quiz, :weight_midterm, :weight_final,
	:final_score, :letter_grade, :finalized, :calculated_at)
ON CONFLICT (student_id, subject_id, academic_year_id, semester)
DO UPDATE SET class_id = EXCLUDED.class_id, task_avg = EXCLUDED.task_avg, quiz_avg = EXCLUDED.quiz_avg,
	midterm = EXCLUDED.midterm, final = EXCLUDED.final, weight_task = EXCLUDED.weight_task,
	weight_quiz = EXCLUDED.weight_quiz, weight_midterm = EXCLUDED.weight_midterm, weight_final = EXCLUDED.weight_final,
	final_score = EXCLUDED.final_score, letter_grade = EXCLUDED.letter_grade, finalized = EXCLUDED.finalized,
	calculated_at = EXCLUDED.calculated_at
RETURNING id`
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare grade record upsert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	if err := stmt.GetContext(ctx, &rec.ID, rowFromRecord(rec)); err != nil {
		return fmt.Errorf("upsert grade record: %w", err)
	}
	return nil
}

// Get loads one record by key. sql.ErrNoRows is returned unwrapped.
func (r *GradeRecordRepository) Get(ctx context.Context, key models.GradeKey) (*models.GradeRecord, error) {
	const query = `SELECT ` + gradeRecordColumns + ` FROM grade_records
WHERE student_id = $1 AND subject_id = $2 AND academic_year_id = $3 AND semester = $4`
	var row gradeRecordRow
	if err := r.db.GetContext(ctx, &row, query, key.StudentID, key.SubjectID, key.AcademicYearID, key.Semester); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get grade record: %w", err)
	}
	rec := row.record()
	return &rec, nil
}

// List returns records matching the filter ordered by student then subject.
func (r *GradeRecordRepository) List(ctx context.Context, filter models.GradeRecordFilter) ([]models.GradeRecord, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + gradeRecordColumns + ` FROM grade_records`)
	conds := conditions{}
	conds.addIn("student_id", filter.StudentIDs)
	conds.addIn("class_id", filter.ClassIDs)
	if filter.SubjectID != "" {
		conds.add("subject_id = $%d", filter.SubjectID)
	}
	if filter.AcademicYearID != "" {
		conds.add("academic_year_id = $%d", filter.AcademicYearID)
	}
	if filter.Semester != "" {
		conds.add("semester = $%d", filter.Semester)
	}
	conds.where(&b)
	b.WriteString(" ORDER BY student_id, subject_id, academic_year_id, semester")

	var rows []gradeRecordRow
	if err := r.db.SelectContext(ctx, &rows, b.String(), conds.args...); err != nil {
		return nil, fmt.Errorf("list grade records: %w", err)
	}
	records := make([]models.GradeRecord, len(rows))
	for i, row := range rows {
		records[i] = row.record()
	}
	return records, nil
}
