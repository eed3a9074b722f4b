package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

var taskColumns = []string{"id", "class_id", "subject_id", "academic_year_id", "semester", "title", "deadline"}

func TestListTasksWithTermFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	year := "ay-2025"
	sem := models.SemesterOdd
	mock.ExpectQuery(regexp.QuoteMeta(`FROM tasks WHERE class_id = $1 AND subject_id = $2 AND (academic_year_id IS NULL OR academic_year_id = $3) AND (semester IS NULL OR semester = $4) ORDER BY id`)).
		WithArgs("class-a", "math", year, sem).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow("t1", "class-a", "math", year, "ganjil", "Essay", nil).
			AddRow("t2", "class-a", "math", nil, nil, "Legacy", nil))

	tasks, err := repo.ListTasks(context.Background(), models.TaskFilter{
		ClassID: "class-a", SubjectID: "math", AcademicYearID: &year, Semester: &sem,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Nil(t, tasks[1].Semester)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTasksWithoutTermFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM tasks WHERE class_id = $1 AND subject_id = $2 ORDER BY id`)).
		WithArgs("class-a", "math").
		WillReturnRows(sqlmock.NewRows(taskColumns))

	tasks, err := repo.ListTasks(context.Background(), models.TaskFilter{ClassID: "class-a", SubjectID: "math"})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListScoredSubmissions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	now := time.Now()
	mock.ExpectQuery(`FROM submissions WHERE student_id = \$1 AND task_id = ANY\(\$2\) AND score IS NOT NULL`).
		WithArgs("stu-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "task_id", "student_id", "score", "status", "submitted_at", "graded_at"}).
			AddRow("s1", "t1", "stu-1", 70.0, "graded", now, now).
			AddRow("s2", "t2", "stu-1", 90.0, "graded", now, now))

	subs, err := repo.ListScoredSubmissions(context.Background(), "stu-1", []string{"t1", "t2"})
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, 90.0, *subs[1].Score)
}

func TestScoreSubmissionMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec(`UPDATE submissions SET score`).
		WithArgs("missing", 88.5, models.SubmissionStatusGraded, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ScoreSubmission(context.Background(), "missing", 88.5, time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
