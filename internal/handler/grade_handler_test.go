package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/dto"
	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/internal/service"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
	"github.com/noah-isme/sma-grading-api/pkg/jobs"
)

type weightProviderStub struct {
	current models.GradeWeights
	updated *models.GradeWeights
	reads   int
}

func (s *weightProviderStub) Current(ctx context.Context) (models.GradeWeights, error) {
	s.reads++
	return s.current, nil
}

func (s *weightProviderStub) Update(ctx context.Context, weights models.GradeWeights, actorID string) (models.GradeWeights, error) {
	if weights.Sum() != 100 {
		return models.GradeWeights{}, appErrors.ErrInvalidWeights
	}
	s.updated = &weights
	return weights, nil
}

type gradeServiceStub struct {
	calculated  *dto.CalculateGradeRequest
	usedWeights models.GradeWeights
	listQuery   dto.GradeRecordQuery
	gotKey      models.GradeKey
}

func (s *gradeServiceStub) Calculate(ctx context.Context, req dto.CalculateGradeRequest, weights models.GradeWeights) (*models.GradeRecord, error) {
	s.calculated = &req
	s.usedWeights = weights
	return &models.GradeRecord{StudentID: req.StudentID, FinalScore: 85, LetterGrade: "A"}, nil
}

func (s *gradeServiceStub) ListForActor(ctx context.Context, actor models.Actor, query dto.GradeRecordQuery) ([]models.GradeRecord, error) {
	s.listQuery = query
	return []models.GradeRecord{}, nil
}

func (s *gradeServiceStub) Get(ctx context.Context, actor models.Actor, key models.GradeKey) (*models.GradeRecord, error) {
	s.gotKey = key
	if key.StudentID != "s-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade record not found")
	}
	return &models.GradeRecord{StudentID: key.StudentID, SubjectID: key.SubjectID, FinalScore: 85}, nil
}

type recalcQueueStub struct {
	enqueued bool
	err      error
}

func (s *recalcQueueStub) Enqueue(ctx context.Context, actorID string, req dto.RecalculateClassRequest, weights models.GradeWeights) (jobs.Status, error) {
	if s.err != nil {
		return jobs.Status{}, s.err
	}
	s.enqueued = true
	return jobs.Status{ID: "job-1", State: jobs.StateQueued, UpdatedAt: time.Now()}, nil
}

func (s *recalcQueueStub) Status(id string) (jobs.Status, error) {
	if id != "job-1" {
		return jobs.Status{}, appErrors.Clone(appErrors.ErrNotFound, "recalculation job not found")
	}
	return jobs.Status{ID: id, State: jobs.StateSucceeded, Attempts: 1}, nil
}

type classAccessStub struct {
	allowed map[string]bool
}

func (s classAccessStub) Ensure(ctx context.Context, actor models.Actor, classID string) error {
	if _, ok := actor.(models.AdminActor); ok || s.allowed[classID] {
		return nil
	}
	return appErrors.ErrForbidden
}

type classLookupCounter struct {
	calls int
}

func (s *classLookupCounter) TeacherTeachesClass(ctx context.Context, teacherID, classID string) (bool, error) {
	s.calls++
	return true, nil
}

func newGradeHandlerForTest() (*GradeHandler, *weightProviderStub, *gradeServiceStub, *recalcQueueStub) {
	weights := &weightProviderStub{current: models.DefaultGradeWeights()}
	grades := &gradeServiceStub{}
	queue := &recalcQueueStub{}
	access := classAccessStub{allowed: map[string]bool{"class-1": true}}
	return NewGradeHandler(weights, grades, queue, access, nil), weights, grades, queue
}

func calculatePayload(classID string) dto.CalculateGradeRequest {
	return dto.CalculateGradeRequest{StudentID: "s-1", SubjectID: "math", ClassID: classID, AcademicYearID: "2024", Semester: models.SemesterOdd}
}

func TestGradeHandlerCalculateUsesCurrentWeights(t *testing.T) {
	h, _, grades, _ := newGradeHandlerForTest()
	c, w := newTestContext(t, http.MethodPost, "/grades/calculate", calculatePayload("class-1"), teacherClaims)

	h.Calculate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, grades.calculated)
	assert.Equal(t, models.DefaultGradeWeights(), grades.usedWeights)
}

func TestGradeHandlerCalculateForbiddenForForeignClass(t *testing.T) {
	h, _, grades, _ := newGradeHandlerForTest()
	c, w := newTestContext(t, http.MethodPost, "/grades/calculate", calculatePayload("class-9"), teacherClaims)

	h.Calculate(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, grades.calculated)
}

func TestGradeHandlerCalculateRequiresAuth(t *testing.T) {
	h, _, _, _ := newGradeHandlerForTest()
	c, w := newTestContext(t, http.MethodPost, "/grades/calculate", calculatePayload("class-1"), nil)

	h.Calculate(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGradeHandlerUpdateWeightsRequiresAllFields(t *testing.T) {
	h, weights, _, _ := newGradeHandlerForTest()
	c, w := newTestContext(t, http.MethodPut, "/grades/weights", `{"task":50,"quiz":50}`, adminClaims)

	h.UpdateWeights(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, weights.updated)
	body := decodeEnvelope(t, w)
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, body["error"].(map[string]interface{})["code"])
}

func TestGradeHandlerUpdateWeightsAcceptsZeroWeight(t *testing.T) {
	h, weights, _, _ := newGradeHandlerForTest()
	c, w := newTestContext(t, http.MethodPut, "/grades/weights", `{"task":0,"quiz":40,"midterm":30,"final":30}`, adminClaims)

	h.UpdateWeights(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, weights.updated)
	assert.Equal(t, 0, weights.updated.Task)
}

func TestGradeHandlerRecalculateAccepted(t *testing.T) {
	h, _, _, queue := newGradeHandlerForTest()
	payload := dto.RecalculateClassRequest{SubjectID: "math", ClassID: "class-1", AcademicYearID: "2024", Semester: models.SemesterOdd}
	c, w := newTestContext(t, http.MethodPost, "/grades/recalculate", payload, teacherClaims)

	h.Recalculate(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, queue.enqueued)
}

func TestGradeHandlerRecalculateQueueUnavailable(t *testing.T) {
	h, _, _, queue := newGradeHandlerForTest()
	queue.err = appErrors.ErrQueueUnavailable
	payload := dto.RecalculateClassRequest{SubjectID: "math", ClassID: "class-1", AcademicYearID: "2024", Semester: models.SemesterOdd}
	c, w := newTestContext(t, http.MethodPost, "/grades/recalculate", payload, adminClaims)

	h.Recalculate(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGradeHandlerRecalculationStatus(t *testing.T) {
	h, _, _, _ := newGradeHandlerForTest()

	c, w := newTestContext(t, http.MethodGet, "/grades/recalculate/job-1", nil, adminClaims)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	h.RecalculationStatus(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newTestContext(t, http.MethodGet, "/grades/recalculate/missing", nil, adminClaims)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	h.RecalculationStatus(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGradeHandlerRecordsBindsQuery(t *testing.T) {
	h, _, grades, _ := newGradeHandlerForTest()
	c, w := newTestContext(t, http.MethodGet, "/grades/records?class_id=class-1&semester=genap", nil, studentClaims)

	h.Records(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "class-1", grades.listQuery.ClassID)
	assert.Equal(t, models.Semester("genap"), grades.listQuery.Semester)
}

func TestGradeHandlerRejectsMissingClassBeforeLookup(t *testing.T) {
	lookups := &classLookupCounter{}
	weights := &weightProviderStub{current: models.DefaultGradeWeights()}
	grades := &gradeServiceStub{}
	queue := &recalcQueueStub{}
	h := NewGradeHandler(weights, grades, queue, service.NewClassAccess(lookups), nil)

	calc := calculatePayload("")
	c, w := newTestContext(t, http.MethodPost, "/grades/calculate", calc, teacherClaims)
	h.Calculate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, appErrors.ErrValidation.Code, body["error"].(map[string]interface{})["code"])

	recalc := dto.RecalculateClassRequest{SubjectID: "math", AcademicYearID: "2024", Semester: models.SemesterOdd}
	c, w = newTestContext(t, http.MethodPost, "/grades/recalculate", recalc, teacherClaims)
	h.Recalculate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	assert.Zero(t, lookups.calls)
	assert.Zero(t, weights.reads)
	assert.Nil(t, grades.calculated)
	assert.False(t, queue.enqueued)
}

func TestGradeHandlerRecordReadsPathKey(t *testing.T) {
	h, _, grades, _ := newGradeHandlerForTest()
	params := func(student string) gin.Params {
		return gin.Params{
			{Key: "student_id", Value: student},
			{Key: "subject_id", Value: "math"},
			{Key: "academic_year_id", Value: "2024"},
			{Key: "semester", Value: "ganjil"},
		}
	}

	c, w := newTestContext(t, http.MethodGet, "/grades/records/s-1/math/2024/ganjil", nil, studentClaims)
	c.Params = params("s-1")
	h.Record(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.GradeKey{StudentID: "s-1", SubjectID: "math", AcademicYearID: "2024", Semester: models.SemesterOdd}, grades.gotKey)

	c, w = newTestContext(t, http.MethodGet, "/grades/records/s-2/math/2024/ganjil", nil, studentClaims)
	c.Params = params("s-2")
	h.Record(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
