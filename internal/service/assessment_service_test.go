package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/dto"
	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type classCheckerStub struct {
	allowed map[string]bool
	err     error
}

func (s classCheckerStub) TeacherTeachesClass(ctx context.Context, teacherID, classID string) (bool, error) {
	return s.allowed[teacherID+"/"+classID], s.err
}

type submissionStoreStub struct {
	subs   map[string]models.Submission
	scored map[string]float64
}

func (s *submissionStoreStub) FindSubmission(ctx context.Context, id string) (*models.Submission, error) {
	sub, ok := s.subs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &sub, nil
}

func (s *submissionStoreStub) ScoreSubmission(ctx context.Context, id string, score float64, gradedAt time.Time) error {
	if s.scored == nil {
		s.scored = map[string]float64{}
	}
	s.scored[id] = score
	return nil
}

type examStoreStub struct {
	exams   map[string]models.Exam
	results []models.ExamResult
}

func (s *examStoreStub) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	exam, ok := s.exams[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &exam, nil
}

func (s *examStoreStub) UpsertResult(ctx context.Context, result *models.ExamResult) error {
	result.ID = "res-1"
	s.results = append(s.results, *result)
	return nil
}

func newAssessmentService() (*AssessmentService, *submissionStoreStub, *examStoreStub, *invalidatorStub) {
	subs := &submissionStoreStub{subs: map[string]models.Submission{"sub-1": {ID: "sub-1", ClassID: "class-a", Status: models.SubmissionStatusSubmitted}}}
	exams := &examStoreStub{exams: map[string]models.Exam{
		"uh-1": {ID: "uh-1", ClassID: "class-a", MaxScore: 50},
		"uas":  {ID: "uas", ClassID: "class-a", MaxScore: 0},
	}}
	access := NewClassAccess(classCheckerStub{allowed: map[string]bool{"t-1/class-a": true}})
	inv := &invalidatorStub{}
	return NewAssessmentService(subs, exams, access, inv, validator.New(), nil), subs, exams, inv
}

func TestGradeSubmission(t *testing.T) {
	svc, subs, _, inv := newAssessmentService()

	sub, err := svc.GradeSubmission(context.Background(), models.TeacherActor{ID: "t-1"}, "sub-1", dto.ScoreSubmissionRequest{Score: score(88)})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusGraded, sub.Status)
	assert.Equal(t, 88.0, subs.scored["sub-1"])
	assert.NotNil(t, sub.GradedAt)
	assert.Equal(t, 1, inv.calls)
}

func TestGradeSubmissionRejectsOutOfRange(t *testing.T) {
	svc, subs, _, _ := newAssessmentService()

	for _, v := range []float64{-1, 100.5} {
		_, err := svc.GradeSubmission(context.Background(), models.AdminActor{ID: "a"}, "sub-1", dto.ScoreSubmissionRequest{Score: score(v)})
		assert.Equal(t, appErrors.ErrScoreOutOfRange.Code, appErrors.FromError(err).Code)
	}
	assert.Empty(t, subs.scored)
}

func TestGradeSubmissionForeignTeacher(t *testing.T) {
	svc, _, _, _ := newAssessmentService()

	_, err := svc.GradeSubmission(context.Background(), models.TeacherActor{ID: "t-2"}, "sub-1", dto.ScoreSubmissionRequest{Score: score(70)})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.GradeSubmission(context.Background(), models.StudentActor{ID: "stu-1"}, "sub-1", dto.ScoreSubmissionRequest{Score: score(70)})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestGradeSubmissionNotFound(t *testing.T) {
	svc, _, _, _ := newAssessmentService()

	_, err := svc.GradeSubmission(context.Background(), models.AdminActor{ID: "a"}, "missing", dto.ScoreSubmissionRequest{Score: score(70)})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpsertExamResultRespectsMaxScore(t *testing.T) {
	svc, _, exams, _ := newAssessmentService()

	_, err := svc.UpsertExamResult(context.Background(), models.AdminActor{ID: "a"}, "uh-1", dto.ExamResultRequest{StudentID: "stu-1", Score: score(60)})
	assert.Equal(t, appErrors.ErrScoreOutOfRange.Code, appErrors.FromError(err).Code)

	res, err := svc.UpsertExamResult(context.Background(), models.AdminActor{ID: "a"}, "uh-1", dto.ExamResultRequest{StudentID: "stu-1", Score: score(50)})
	require.NoError(t, err)
	assert.Equal(t, "res-1", res.ID)

	_, err = svc.UpsertExamResult(context.Background(), models.AdminActor{ID: "a"}, "uas", dto.ExamResultRequest{StudentID: "stu-1", Score: score(100)})
	require.NoError(t, err)
	assert.Len(t, exams.results, 2)
}

func TestUpsertExamResultValidation(t *testing.T) {
	svc, _, _, _ := newAssessmentService()

	_, err := svc.UpsertExamResult(context.Background(), models.AdminActor{ID: "a"}, "uh-1", dto.ExamResultRequest{Score: score(10)})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.UpsertExamResult(context.Background(), models.AdminActor{ID: "a"}, "nope", dto.ExamResultRequest{StudentID: "stu-1", Score: score(10)})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClassAccessLookupFailure(t *testing.T) {
	access := NewClassAccess(classCheckerStub{err: errors.New("db down")})
	err := access.Ensure(context.Background(), models.TeacherActor{ID: "t-1"}, "class-a")
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.NoError(t, access.Ensure(context.Background(), models.AdminActor{ID: "a"}, "class-a"))
}
