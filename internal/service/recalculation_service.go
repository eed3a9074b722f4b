package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/dto"
	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
	"github.com/noah-isme/sma-grading-api/pkg/jobs"
	"github.com/noah-isme/sma-grading-api/pkg/logger"
)

// JobTypeRecalculateClass recalculates every student of a class roster.
const JobTypeRecalculateClass = "grades.recalculate_class"

// RecalculationPayload is carried by a class recalculation job.
type RecalculationPayload struct {
	Request     dto.RecalculateClassRequest
	Weights     models.GradeWeights
	RequestedBy string
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
	Status(id string) (jobs.Status, bool)
}

// RecalculationService queues class wide recalculations.
type RecalculationService struct {
	queue     jobDispatcher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRecalculationService constructs a RecalculationService.
func NewRecalculationService(queue jobDispatcher, validate *validator.Validate, logger *zap.Logger) *RecalculationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecalculationService{queue: queue, validator: validate, logger: logger}
}

// Enqueue schedules a recalculation of req's class with weights.
func (s *RecalculationService) Enqueue(ctx context.Context, actorID string, req dto.RecalculateClassRequest, weights models.GradeWeights) (jobs.Status, error) {
	if err := s.validator.Struct(req); err != nil {
		return jobs.Status{}, appErrors.Validation(err, "invalid recalculation payload")
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeRecalculateClass,
		Payload: RecalculationPayload{Request: req, Weights: weights, RequestedBy: actorID},
	}
	if err := s.queue.Enqueue(job); err != nil {
		if errors.Is(err, jobs.ErrQueueFull) || errors.Is(err, jobs.ErrQueueClosed) {
			return jobs.Status{}, appErrors.Wrap(err, appErrors.ErrQueueUnavailable.Code, appErrors.ErrQueueUnavailable.Status, "recalculation queue is unavailable")
		}
		return jobs.Status{}, appErrors.Internal(err, "failed to enqueue recalculation")
	}
	logger.ForContext(ctx, s.logger).Info("class recalculation queued",
		zap.String("job_id", job.ID),
		zap.String("class_id", req.ClassID),
		zap.String("subject_id", req.SubjectID),
		zap.String("requested_by", actorID))

	status, ok := s.queue.Status(job.ID)
	if !ok {
		status = jobs.Status{ID: job.ID, Type: job.Type, State: jobs.StateQueued, UpdatedAt: time.Now().UTC()}
	}
	return status, nil
}

// Status returns the progress of a queued recalculation.
func (s *RecalculationService) Status(id string) (jobs.Status, error) {
	status, ok := s.queue.Status(id)
	if !ok {
		return jobs.Status{}, appErrors.Clone(appErrors.ErrNotFound, "recalculation job not found")
	}
	return status, nil
}

type rosterReader interface {
	RosterStudentIDs(ctx context.Context, classID string) ([]string, error)
}

type gradeCalculator interface {
	Calculate(ctx context.Context, req dto.CalculateGradeRequest, weights models.GradeWeights) (*models.GradeRecord, error)
}

// RecalculationWorker runs class recalculation jobs on the queue.
type RecalculationWorker struct {
	roster     rosterReader
	grades     gradeCalculator
	metrics    *MetricsService
	logger     *zap.Logger
	maxRetries int
}

// NewRecalculationWorker constructs a worker.
func NewRecalculationWorker(roster rosterReader, grades gradeCalculator, metrics *MetricsService, maxRetries int, logger *zap.Logger) *RecalculationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecalculationWorker{roster: roster, grades: grades, metrics: metrics, logger: logger, maxRetries: maxRetries}
}

// Handle processes a queue job. Any failed student fails the job so the queue retries it.
func (w *RecalculationWorker) Handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(RecalculationPayload)
	if !ok {
		w.metrics.RecordRecalculationJob(false)
		return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
	}
	req := payload.Request

	students, err := w.roster.RosterStudentIDs(ctx, req.ClassID)
	if err != nil {
		return w.finish(job, fmt.Errorf("load roster of %s: %w", req.ClassID, err))
	}

	var failed int
	var lastErr error
	for _, studentID := range students {
		if err := ctx.Err(); err != nil {
			return w.finish(job, err)
		}
		_, err := w.grades.Calculate(ctx, dto.CalculateGradeRequest{
			StudentID:      studentID,
			SubjectID:      req.SubjectID,
			ClassID:        req.ClassID,
			AcademicYearID: req.AcademicYearID,
			Semester:       req.Semester,
		}, payload.Weights)
		if err != nil {
			failed++
			lastErr = err
			w.logger.Warn("student recalculation failed",
				zap.String("job_id", job.ID),
				zap.String("student_id", studentID),
				zap.Error(err))
		}
	}
	if failed > 0 {
		return w.finish(job, fmt.Errorf("%d of %d students failed: %w", failed, len(students), lastErr))
	}

	w.logger.Info("class recalculation finished",
		zap.String("job_id", job.ID),
		zap.String("class_id", req.ClassID),
		zap.Int("students", len(students)))
	return w.finish(job, nil)
}

// finish records the job outcome once the last attempt is reached or on success.
func (w *RecalculationWorker) finish(job jobs.Job, err error) error {
	if err == nil {
		w.metrics.RecordRecalculationJob(true)
		return nil
	}
	if job.Attempt >= w.maxRetries {
		w.metrics.RecordRecalculationJob(false)
	}
	return err
}
