package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/dto"
	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
	"github.com/noah-isme/sma-grading-api/pkg/logger"
)

type submissionStore interface {
	FindSubmission(ctx context.Context, id string) (*models.Submission, error)
	ScoreSubmission(ctx context.Context, id string, score float64, gradedAt time.Time) error
}

type examResultStore interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	UpsertResult(ctx context.Context, result *models.ExamResult) error
}

type classAccessEnsurer interface {
	Ensure(ctx context.Context, actor models.Actor, classID string) error
}

// AssessmentService records submission scores and exam results.
type AssessmentService struct {
	submissions submissionStore
	exams       examResultStore
	access      classAccessEnsurer
	recaps      recapInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssessmentService constructs an AssessmentService.
func NewAssessmentService(submissions submissionStore, exams examResultStore, access classAccessEnsurer, recaps recapInvalidator, validate *validator.Validate, logger *zap.Logger) *AssessmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{submissions: submissions, exams: exams, access: access, recaps: recaps, validator: validate, logger: logger}
}

// GradeSubmission stores a score in [0,100] on a submission and marks it graded.
func (s *AssessmentService) GradeSubmission(ctx context.Context, actor models.Actor, submissionID string, req dto.ScoreSubmissionRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "score is required")
	}
	if err := checkScore(*req.Score, models.MaxScore); err != nil {
		return nil, err
	}

	sub, err := s.submissions.FindSubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Internal(err, "failed to load submission")
	}
	if err := s.access.Ensure(ctx, actor, sub.ClassID); err != nil {
		return nil, err
	}

	gradedAt := time.Now().UTC()
	if err := s.submissions.ScoreSubmission(ctx, sub.ID, *req.Score, gradedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Internal(err, "failed to score submission")
	}
	sub.Score = req.Score
	sub.Status = models.SubmissionStatusGraded
	sub.GradedAt = &gradedAt

	s.invalidate(ctx)
	logger.ForContext(ctx, s.logger).Info("submission graded", zap.String("submission_id", sub.ID), zap.String("actor_id", actor.ActorID()))
	return sub, nil
}

// UpsertExamResult stores a student's score for an exam, bounded by the exam's max score.
func (s *AssessmentService) UpsertExamResult(ctx context.Context, actor models.Actor, examID string, req dto.ExamResultRequest) (*models.ExamResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "student_id and score are required")
	}

	exam, err := s.exams.FindByID(ctx, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Internal(err, "failed to load exam")
	}
	if err := s.access.Ensure(ctx, actor, exam.ClassID); err != nil {
		return nil, err
	}

	limit := exam.MaxScore
	if limit <= 0 || limit > models.MaxScore {
		limit = models.MaxScore
	}
	if err := checkScore(*req.Score, limit); err != nil {
		return nil, err
	}

	result := &models.ExamResult{ExamID: exam.ID, StudentID: req.StudentID, Score: *req.Score}
	if err := s.exams.UpsertResult(ctx, result); err != nil {
		return nil, appErrors.Internal(err, "failed to store exam result")
	}

	s.invalidate(ctx)
	return result, nil
}

func (s *AssessmentService) invalidate(ctx context.Context) {
	if s.recaps != nil {
		s.recaps.InvalidateAll(ctx)
	}
}

func checkScore(score, limit float64) error {
	if score < 0 || score > limit {
		return appErrors.Clone(appErrors.ErrScoreOutOfRange, fmt.Sprintf("score must be between 0 and %g", limit))
	}
	return nil
}
