package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
	"github.com/noah-isme/sma-grading-api/pkg/events"
)

type notificationStore interface {
	CreateBatch(ctx context.Context, items []models.Notification) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, id, userID string) (bool, error)
}

type parentLister interface {
	ParentIDs(ctx context.Context, studentID string) ([]string, error)
}

// NotificationService fans grade events out to students and parents.
type NotificationService struct {
	store   notificationStore
	parents parentLister
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(store notificationStore, parents parentLister, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: store, parents: parents, metrics: metrics, logger: logger}
}

// HandleGradeEvent consumes a grade.calculated message. Returning an error nacks the message.
func (s *NotificationService) HandleGradeEvent(ctx context.Context, msg *message.Message) error {
	var evt events.GradeCalculated
	env, err := events.Decode(msg, &evt)
	if err != nil {
		s.logger.Error("dropping undecodable event", zap.String("message_uuid", msg.UUID), zap.Error(err))
		s.metrics.RecordEvent("unknown", false)
		return nil
	}
	if env.Type != events.TypeGradeCalculated {
		return nil
	}

	err = s.notifyGrade(ctx, evt)
	s.metrics.RecordEvent(string(env.Type), err == nil)
	return err
}

func (s *NotificationService) notifyGrade(ctx context.Context, evt events.GradeCalculated) error {
	parents, err := s.parents.ParentIDs(ctx, evt.StudentID)
	if err != nil {
		return fmt.Errorf("load parents of %s: %w", evt.StudentID, err)
	}

	now := time.Now().UTC()
	body := fmt.Sprintf("Final score %.2f (%s) recorded for subject %s, semester %s.",
		evt.FinalScore, evt.LetterGrade, evt.SubjectID, evt.Semester)
	recipients := append([]string{evt.StudentID}, parents...)
	items := make([]models.Notification, 0, len(recipients))
	for _, userID := range recipients {
		items = append(items, models.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Type:      models.NotificationTypeGrade,
			Title:     "Final grade updated",
			Message:   body,
			CreatedAt: now,
		})
	}
	if err := s.store.CreateBatch(ctx, items); err != nil {
		return fmt.Errorf("store grade notifications: %w", err)
	}
	s.logger.Debug("grade notifications stored", zap.String("student_id", evt.StudentID), zap.Int("recipients", len(items)))
	return nil
}

// List returns one page of the user's notifications.
func (s *NotificationService) List(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, *models.Pagination, error) {
	items, total, err := s.store.ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list notifications")
	}
	return items, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	ok, err := s.store.MarkRead(ctx, id, userID)
	if err != nil {
		return appErrors.Internal(err, "failed to update notification")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return nil
}
