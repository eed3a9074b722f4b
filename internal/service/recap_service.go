package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type recapStore interface {
	ListSubmissionScores(ctx context.Context, q models.RecapQuery) ([]models.ScoreRow, error)
	ListExamScores(ctx context.Context, q models.RecapQuery) ([]models.ScoreRow, error)
	ListAttendance(ctx context.Context, q models.RecapQuery) ([]models.AttendanceRow, error)
}

type recapScoper interface {
	Resolve(ctx context.Context, actor models.Actor, filter models.RecapFilter) (models.RecapScope, error)
}

// RecapService builds role scoped grade, exam and attendance summaries.
type RecapService struct {
	store     recapStore
	scopes    recapScoper
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
}

// NewRecapService constructs a RecapService.
func NewRecapService(store recapStore, scopes recapScoper, cache *CacheService, validate *validator.Validate, logger *zap.Logger, ttl time.Duration) *RecapService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecapService{store: store, scopes: scopes, cache: cache, validator: validate, logger: logger, ttl: ttl}
}

// GradeRecap summarises scored submissions per student and task, or per student and class.
func (s *RecapService) GradeRecap(ctx context.Context, actor models.Actor, filter models.RecapFilter) ([]models.RecapRow, error) {
	if filter.GroupBy == "" {
		filter.GroupBy = models.RecapGroupByTask
	}
	filter.ExamID = ""
	rows := []models.RecapRow{}
	err := s.run(ctx, models.RecapKindGrades, actor, filter, &rows, func(q models.RecapQuery) error {
		scores, err := s.store.ListSubmissionScores(ctx, q)
		if err != nil {
			return err
		}
		rows = aggregateScores(scores)
		return nil
	})
	return rows, err
}

// ExamRecap summarises exam results per student and exam.
func (s *RecapService) ExamRecap(ctx context.Context, actor models.Actor, filter models.RecapFilter) ([]models.RecapRow, error) {
	filter.TaskID = ""
	filter.GroupBy = ""
	rows := []models.RecapRow{}
	err := s.run(ctx, models.RecapKindExams, actor, filter, &rows, func(q models.RecapQuery) error {
		scores, err := s.store.ListExamScores(ctx, q)
		if err != nil {
			return err
		}
		rows = aggregateScores(scores)
		return nil
	})
	return rows, err
}

// AttendanceRecap counts attendance statuses per student and class.
func (s *RecapService) AttendanceRecap(ctx context.Context, actor models.Actor, filter models.RecapFilter) ([]models.AttendanceRecapRow, error) {
	filter.TaskID = ""
	filter.ExamID = ""
	filter.GroupBy = ""
	rows := []models.AttendanceRecapRow{}
	err := s.run(ctx, models.RecapKindAttendance, actor, filter, &rows, func(q models.RecapQuery) error {
		records, err := s.store.ListAttendance(ctx, q)
		if err != nil {
			return err
		}
		rows = aggregateAttendance(records)
		return nil
	})
	return rows, err
}

// run validates, scopes and caches a recap. load fills dest from storage on a cache miss.
func (s *RecapService) run(ctx context.Context, kind models.RecapKind, actor models.Actor, filter models.RecapFilter, dest interface{}, load func(models.RecapQuery) error) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing actor")
	}
	if err := s.validator.Struct(filter); err != nil {
		return appErrors.Validation(err, "invalid recap filter")
	}
	if filter.DateStart != nil && filter.DateEnd != nil && filter.DateStart.After(*filter.DateEnd) {
		return appErrors.Clone(appErrors.ErrValidation, "date_start must not be after date_end")
	}

	scope, err := s.scopes.Resolve(ctx, actor, filter)
	if err != nil {
		return err
	}
	if scope.Empty {
		return nil
	}

	key := recapCacheKey(kind, actor, filter, scope)
	if hit, _ := s.cache.Get(ctx, key, dest); hit {
		return nil
	}

	q := models.RecapQuery{
		ClassIDs:   scope.ClassIDs,
		StudentIDs: scope.StudentIDs,
		TaskID:     filter.TaskID,
		ExamID:     filter.ExamID,
		DateStart:  filter.DateStart,
		DateEnd:    filter.DateEnd,
		GroupBy:    filter.GroupBy,
	}
	if err := load(q); err != nil {
		return appErrors.Internal(err, fmt.Sprintf("failed to build %s recap", kind))
	}

	_ = s.cache.Set(ctx, key, dest, s.ttl)
	return nil
}

// InvalidateAll drops every cached recap.
func (s *RecapService) InvalidateAll(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cachePatternRecaps); err != nil {
		s.logger.Warn("failed to invalidate recap cache", zap.Error(err))
	}
}

// recapCacheKey hashes the filter together with the resolved scope, so a change in
// class assignments or parent links maps to a fresh key.
func recapCacheKey(kind models.RecapKind, actor models.Actor, filter models.RecapFilter, scope models.RecapScope) string {
	raw, _ := json.Marshal(struct {
		Filter   models.RecapFilter `json:"f"`
		Classes  []string           `json:"c"`
		Students []string           `json:"s"`
	}{filter, scope.ClassIDs, scope.StudentIDs})
	return fmt.Sprintf("%s:%s:%s:%s:%016x", cacheKeyRecapPrefix, kind, actor.Role(), actor.ActorID(), xxhash.Sum64(raw))
}

type scoreGroup struct {
	row models.RecapRow
	sum float64
}

func aggregateScores(scores []models.ScoreRow) []models.RecapRow {
	groups := make(map[[2]string]*scoreGroup)
	order := make([]*scoreGroup, 0)
	for _, sc := range scores {
		key := [2]string{sc.StudentID, sc.SecondaryID}
		g, ok := groups[key]
		if !ok {
			g = &scoreGroup{row: models.RecapRow{
				StudentID:     sc.StudentID,
				StudentName:   sc.StudentName,
				SecondaryID:   sc.SecondaryID,
				SecondaryName: sc.SecondaryName,
				Min:           math.Inf(1),
				Max:           math.Inf(-1),
			}}
			groups[key] = g
			order = append(order, g)
		}
		g.row.Count++
		g.sum += sc.Score
		g.row.Min = math.Min(g.row.Min, sc.Score)
		g.row.Max = math.Max(g.row.Max, sc.Score)
	}

	rows := make([]models.RecapRow, len(order))
	for i, g := range order {
		g.row.Avg = round2(g.sum / float64(g.row.Count))
		g.row.Min = round2(g.row.Min)
		g.row.Max = round2(g.row.Max)
		rows[i] = g.row
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.SecondaryName != b.SecondaryName {
			return a.SecondaryName < b.SecondaryName
		}
		if a.StudentName != b.StudentName {
			return a.StudentName < b.StudentName
		}
		if a.SecondaryID != b.SecondaryID {
			return a.SecondaryID < b.SecondaryID
		}
		return a.StudentID < b.StudentID
	})
	return rows
}

func aggregateAttendance(records []models.AttendanceRow) []models.AttendanceRecapRow {
	groups := make(map[[2]string]*models.AttendanceRecapRow)
	order := make([]*models.AttendanceRecapRow, 0)
	for _, rec := range records {
		key := [2]string{rec.StudentID, rec.ClassID}
		g, ok := groups[key]
		if !ok {
			g = &models.AttendanceRecapRow{
				StudentID:   rec.StudentID,
				StudentName: rec.StudentName,
				ClassID:     rec.ClassID,
				ClassName:   rec.ClassName,
			}
			groups[key] = g
			order = append(order, g)
		}
		switch rec.Status {
		case models.AttendanceStatusPresent:
			g.Present++
		case models.AttendanceStatusPermitted:
			g.Permitted++
		case models.AttendanceStatusSick:
			g.Sick++
		case models.AttendanceStatusUnexcused:
			g.Unexcused++
		default:
			continue
		}
		g.Total++
	}

	rows := make([]models.AttendanceRecapRow, len(order))
	for i, g := range order {
		rows[i] = *g
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ClassName != b.ClassName {
			return a.ClassName < b.ClassName
		}
		if a.StudentName != b.StudentName {
			return a.StudentName < b.StudentName
		}
		if a.ClassID != b.ClassID {
			return a.ClassID < b.ClassID
		}
		return a.StudentID < b.StudentID
	})
	return rows
}
