package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

func TestListExams(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	now := time.Now()
	mock.ExpectQuery(`FROM exams\s+WHERE class_id = \$1 AND subject_id = \$2 AND academic_year_id = \$3 AND semester = \$4 AND type = ANY\(\$5\)`).
		WithArgs("class-a", "math", "ay-2025", models.SemesterEven, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id", "subject_id", "academic_year_id", "semester", "type", "title", "max_score", "exam_date"}).
			AddRow("e1", "class-a", "math", "ay-2025", "genap", "UH", "Quiz 1", 100.0, now))

	exams, err := repo.ListExams(context.Background(), models.ExamFilter{
		ClassID: "class-a", SubjectID: "math", AcademicYearID: "ay-2025", Semester: models.SemesterEven,
	})
	require.NoError(t, err)
	require.Len(t, exams, 1)
	assert.Equal(t, models.ExamTypeQuiz, exams[0].Type)
}

func TestUpsertResultKeepsExistingID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectQuery(`INSERT INTO exam_results .* ON CONFLICT \(exam_id, student_id\)`).
		WithArgs(sqlmock.AnyArg(), "e1", "stu-1", 75.0, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-id"))

	result := &models.ExamResult{ExamID: "e1", StudentID: "stu-1", Score: 75}
	require.NoError(t, repo.UpsertResult(context.Background(), result))
	assert.Equal(t, "existing-id", result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
