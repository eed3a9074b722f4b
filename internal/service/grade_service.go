package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/dto"
	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
	"github.com/noah-isme/sma-grading-api/pkg/events"
	"github.com/noah-isme/sma-grading-api/pkg/logger"
)

type gradeTaskReader interface {
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	ListScoredSubmissions(ctx context.Context, studentID string, taskIDs []string) ([]models.Submission, error)
}

type gradeExamReader interface {
	ListExams(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error)
	ListStudentResults(ctx context.Context, studentID string, examIDs []string) ([]models.ExamResult, error)
}

type gradeRecordStore interface {
	Upsert(ctx context.Context, rec *models.GradeRecord) error
	Get(ctx context.Context, key models.GradeKey) (*models.GradeRecord, error)
	List(ctx context.Context, filter models.GradeRecordFilter) ([]models.GradeRecord, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
}

type recapInvalidator interface {
	InvalidateAll(ctx context.Context)
}

// GradeServiceConfig tunes grade calculation.
type GradeServiceConfig struct {
	// TaskTermFilter limits tasks to the requested academic year and semester.
	TaskTermFilter bool
	EventTopic     string
}

// GradeService computes and stores weighted final grades.
type GradeService struct {
	tasks     gradeTaskReader
	exams     gradeExamReader
	records   gradeRecordStore
	scopes    recapScoper
	publisher eventPublisher
	recaps    recapInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       GradeServiceConfig
	now       func() time.Time
}

// NewGradeService constructs a GradeService. publisher and recaps may be nil.
func NewGradeService(tasks gradeTaskReader, exams gradeExamReader, records gradeRecordStore, scopes recapScoper, publisher eventPublisher, recaps recapInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg GradeServiceConfig) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		tasks:     tasks,
		exams:     exams,
		records:   records,
		scopes:    scopes,
		publisher: publisher,
		recaps:    recaps,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Calculate loads the inputs for one student, computes the grade with weights and upserts the record.
func (s *GradeService) Calculate(ctx context.Context, req dto.CalculateGradeRequest, weights models.GradeWeights) (*models.GradeRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid grade calculation payload")
	}
	start := time.Now()

	input, err := s.loadInput(ctx, req)
	if err != nil {
		return nil, err
	}
	breakdown := CalculateGrade(input, weights)

	record := &models.GradeRecord{
		StudentID:      req.StudentID,
		SubjectID:      req.SubjectID,
		ClassID:        req.ClassID,
		AcademicYearID: req.AcademicYearID,
		Semester:       req.Semester,
		Components:     breakdown.Components,
		Weights:        breakdown.Weights,
		FinalScore:     breakdown.FinalScore,
		LetterGrade:    breakdown.LetterGrade,
		Finalized:      true,
		CalculatedAt:   s.now().UTC(),
	}
	if err := s.records.Upsert(ctx, record); err != nil {
		return nil, appErrors.Internal(err, "failed to store grade record")
	}
	s.metrics.RecordGradeCalculation(record.LetterGrade, time.Since(start))

	s.publish(ctx, record)
	if s.recaps != nil {
		s.recaps.InvalidateAll(ctx)
	}
	return record, nil
}

func (s *GradeService) loadInput(ctx context.Context, req dto.CalculateGradeRequest) (GradeInput, error) {
	taskFilter := models.TaskFilter{ClassID: req.ClassID, SubjectID: req.SubjectID}
	if s.cfg.TaskTermFilter {
		year, semester := req.AcademicYearID, req.Semester
		taskFilter.AcademicYearID = &year
		taskFilter.Semester = &semester
	}
	tasks, err := s.tasks.ListTasks(ctx, taskFilter)
	if err != nil {
		return GradeInput{}, appErrors.Internal(err, "failed to load tasks")
	}

	input := GradeInput{
		Exams:       make(map[models.ExamType][]string, len(models.ExamTypes)),
		ExamResults: make(map[string]float64),
	}

	if len(tasks) > 0 {
		taskIDs := make([]string, len(tasks))
		for i, task := range tasks {
			taskIDs[i] = task.ID
		}
		submissions, err := s.tasks.ListScoredSubmissions(ctx, req.StudentID, taskIDs)
		if err != nil {
			return GradeInput{}, appErrors.Internal(err, "failed to load submissions")
		}
		for _, sub := range submissions {
			if sub.Score != nil {
				input.SubmissionScores = append(input.SubmissionScores, *sub.Score)
			}
		}
	}

	exams, err := s.exams.ListExams(ctx, models.ExamFilter{
		ClassID:        req.ClassID,
		SubjectID:      req.SubjectID,
		AcademicYearID: req.AcademicYearID,
		Semester:       req.Semester,
	})
	if err != nil {
		return GradeInput{}, appErrors.Internal(err, "failed to load exams")
	}
	if len(exams) == 0 {
		return input, nil
	}

	examIDs := make([]string, len(exams))
	for i, exam := range exams {
		examIDs[i] = exam.ID
		input.Exams[exam.Type] = append(input.Exams[exam.Type], exam.ID)
	}
	results, err := s.exams.ListStudentResults(ctx, req.StudentID, examIDs)
	if err != nil {
		return GradeInput{}, appErrors.Internal(err, "failed to load exam results")
	}
	for _, res := range results {
		input.ExamResults[res.ExamID] = res.Score
	}
	return input, nil
}

func (s *GradeService) publish(ctx context.Context, rec *models.GradeRecord) {
	if s.publisher == nil || s.cfg.EventTopic == "" {
		return
	}
	msg, err := events.NewMessage(events.TypeGradeCalculated, events.GradeCalculated{
		StudentID:      rec.StudentID,
		SubjectID:      rec.SubjectID,
		ClassID:        rec.ClassID,
		AcademicYearID: rec.AcademicYearID,
		Semester:       string(rec.Semester),
		FinalScore:     rec.FinalScore,
		LetterGrade:    rec.LetterGrade,
		CalculatedAt:   rec.CalculatedAt,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, s.cfg.EventTopic, msg)
	}
	if err != nil {
		logger.ForContext(ctx, s.logger).Warn("failed to publish grade event",
			zap.String("student_id", rec.StudentID),
			zap.String("subject_id", rec.SubjectID),
			zap.Error(err))
	}
}

// Get returns one stored grade record if actor may see it. Records outside the
// actor's scope are reported as not found.
func (s *GradeService) Get(ctx context.Context, actor models.Actor, key models.GradeKey) (*models.GradeRecord, error) {
	if key.StudentID == "" || key.SubjectID == "" || key.AcademicYearID == "" || !key.Semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student, subject, academic year and semester are required")
	}
	rec, err := s.records.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade record not found")
		}
		return nil, appErrors.Internal(err, "failed to load grade record")
	}

	scope, err := s.scopes.Resolve(ctx, actor, models.RecapFilter{StudentID: key.StudentID})
	if err != nil {
		return nil, err
	}
	if scope.Empty ||
		(scope.StudentIDs != nil && !contains(scope.StudentIDs, rec.StudentID)) ||
		(scope.ClassIDs != nil && !contains(scope.ClassIDs, rec.ClassID)) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade record not found")
	}
	return rec, nil
}

// ListForActor lists stored grade records visible to actor.
func (s *GradeService) ListForActor(ctx context.Context, actor models.Actor, query dto.GradeRecordQuery) ([]models.GradeRecord, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Validation(err, "invalid grade record query")
	}
	scope, err := s.scopes.Resolve(ctx, actor, models.RecapFilter{ClassID: query.ClassID, StudentID: query.StudentID})
	if err != nil {
		return nil, err
	}
	if scope.Empty {
		return []models.GradeRecord{}, nil
	}
	records, err := s.records.List(ctx, models.GradeRecordFilter{
		StudentIDs:     scope.StudentIDs,
		ClassIDs:       scope.ClassIDs,
		SubjectID:      query.SubjectID,
		AcademicYearID: query.AcademicYearID,
		Semester:       query.Semester,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list grade records")
	}
	return records, nil
}
