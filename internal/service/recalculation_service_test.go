package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/dto"
	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
	"github.com/noah-isme/sma-grading-api/pkg/jobs"
)

type rosterStub struct {
	ids []string
	err error
}

func (r rosterStub) RosterStudentIDs(ctx context.Context, classID string) ([]string, error) {
	return r.ids, r.err
}

type calculatorStub struct {
	calls  []string
	failOn string
}

func (c *calculatorStub) Calculate(ctx context.Context, req dto.CalculateGradeRequest, weights models.GradeWeights) (*models.GradeRecord, error) {
	c.calls = append(c.calls, req.StudentID)
	if req.StudentID == c.failOn {
		return nil, errors.New("boom")
	}
	return &models.GradeRecord{StudentID: req.StudentID}, nil
}

type dispatcherStub struct {
	err  error
	jobs []jobs.Job
}

func (d *dispatcherStub) Enqueue(job jobs.Job) error {
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

func (d *dispatcherStub) Status(id string) (jobs.Status, bool) {
	for _, j := range d.jobs {
		if j.ID == id {
			return jobs.Status{ID: id, Type: j.Type, State: jobs.StateQueued}, true
		}
	}
	return jobs.Status{}, false
}

func recalcRequest() dto.RecalculateClassRequest {
	return dto.RecalculateClassRequest{SubjectID: "math", ClassID: "class-a", AcademicYearID: "ay-2025", Semester: models.SemesterEven}
}

func TestRecalculationEnqueue(t *testing.T) {
	queue := &dispatcherStub{}
	svc := NewRecalculationService(queue, validator.New(), nil)

	status, err := svc.Enqueue(context.Background(), "t-1", recalcRequest(), models.DefaultGradeWeights())
	require.NoError(t, err)
	assert.Equal(t, jobs.StateQueued, status.State)
	require.Len(t, queue.jobs, 1)

	payload := queue.jobs[0].Payload.(RecalculationPayload)
	assert.Equal(t, "t-1", payload.RequestedBy)

	got, err := svc.Status(status.ID)
	require.NoError(t, err)
	assert.Equal(t, status.ID, got.ID)

	_, err = svc.Status("missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRecalculationEnqueueQueueFull(t *testing.T) {
	svc := NewRecalculationService(&dispatcherStub{err: fmt.Errorf("grades: %w", jobs.ErrQueueFull)}, validator.New(), nil)

	_, err := svc.Enqueue(context.Background(), "t-1", recalcRequest(), models.DefaultGradeWeights())
	assert.Equal(t, appErrors.ErrQueueUnavailable.Code, appErrors.FromError(err).Code)
}

func TestRecalculationEnqueueValidates(t *testing.T) {
	svc := NewRecalculationService(&dispatcherStub{}, validator.New(), nil)

	_, err := svc.Enqueue(context.Background(), "t-1", dto.RecalculateClassRequest{ClassID: "c"}, models.DefaultGradeWeights())
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecalculationWorkerRunsRoster(t *testing.T) {
	calc := &calculatorStub{}
	worker := NewRecalculationWorker(rosterStub{ids: []string{"stu-1", "stu-2", "stu-3"}}, calc, nil, 2, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Payload: RecalculationPayload{Request: recalcRequest(), Weights: models.DefaultGradeWeights()}})
	require.NoError(t, err)
	assert.Equal(t, []string{"stu-1", "stu-2", "stu-3"}, calc.calls)
}

func TestRecalculationWorkerReportsFailures(t *testing.T) {
	calc := &calculatorStub{failOn: "stu-2"}
	worker := NewRecalculationWorker(rosterStub{ids: []string{"stu-1", "stu-2", "stu-3"}}, calc, nil, 2, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Payload: RecalculationPayload{Request: recalcRequest()}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 students failed")
	assert.Len(t, calc.calls, 3)

	err = worker.Handle(context.Background(), jobs.Job{ID: "job-2", Payload: "nope"})
	assert.Error(t, err)
}

func TestRecalculationThroughQueue(t *testing.T) {
	calc := &calculatorStub{}
	worker := NewRecalculationWorker(rosterStub{ids: []string{"stu-1"}}, calc, nil, 0, nil)
	queue := jobs.NewQueue("grades", worker.Handle, jobs.QueueConfig{Workers: 1, BufferSize: 2})
	queue.Start(context.Background())
	defer queue.Stop()

	svc := NewRecalculationService(queue, validator.New(), nil)
	status, err := svc.Enqueue(context.Background(), "admin", recalcRequest(), models.DefaultGradeWeights())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		st, err := svc.Status(status.ID)
		return err == nil && st.State == jobs.StateSucceeded
	}, 2*time.Second, 10*time.Millisecond)
}
