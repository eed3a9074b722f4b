package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/dto"
	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
	"github.com/noah-isme/sma-grading-api/pkg/export"
	"github.com/noah-isme/sma-grading-api/pkg/storage"
)

type recapProvider interface {
	GradeRecap(ctx context.Context, actor models.Actor, filter models.RecapFilter) ([]models.RecapRow, error)
	ExamRecap(ctx context.Context, actor models.Actor, filter models.RecapFilter) ([]models.RecapRow, error)
	AttendanceRecap(ctx context.Context, actor models.Actor, filter models.RecapFilter) ([]models.AttendanceRecapRow, error)
}

type expiringStore interface {
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportDownload is an opened export ready to stream.
type ExportDownload struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
}

// ExportService renders recaps to files and hands out signed download links.
type ExportService struct {
	recaps    recapProvider
	store     storage.ObjectStore
	registry  *export.Registry
	signer    *storage.SignedURLSigner
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(recaps recapProvider, store storage.ObjectStore, registry *export.Registry, signer *storage.SignedURLSigner, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ExportConfig) *ExportService {
	if registry == nil {
		registry = export.NewRegistry()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		recaps:    recaps,
		store:     store,
		registry:  registry,
		signer:    signer,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Export renders the requested recap for actor, stores it and returns a signed link.
func (s *ExportService) Export(ctx context.Context, actor models.Actor, req dto.ExportRecapRequest) (*models.ExportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid export payload")
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return nil, appErrors.Validation(err, err.Error())
	}
	filter, err := req.RecapQuery.Filter()
	if err != nil {
		return nil, appErrors.Validation(err, err.Error())
	}

	dataset, err := s.buildDataset(ctx, actor, req.Kind, filter)
	if err != nil {
		return nil, err
	}
	renderer, err := s.registry.Renderer(format)
	if err != nil {
		return nil, appErrors.Validation(err, err.Error())
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}

	id := uuid.NewString()
	key := path.Join(string(req.Kind), fmt.Sprintf("%s-%s.%s", s.now().UTC().Format("20060102"), id, renderer.Extension()))
	if err := s.store.Save(ctx, key, payload, renderer.ContentType()); err != nil {
		return nil, appErrors.Internal(err, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(id, key, renderer.ContentType())
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign export link")
	}
	s.metrics.RecordExport(string(req.Kind), string(format))

	return &models.ExportResult{
		ID:        id,
		Kind:      req.Kind,
		Format:    string(format),
		Rows:      len(dataset.Rows),
		URL:       s.downloadURL(token),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *ExportService) downloadURL(token string) string {
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return fmt.Sprintf("%s/export/%s", prefix, token)
}

func (s *ExportService) buildDataset(ctx context.Context, actor models.Actor, kind models.RecapKind, filter models.RecapFilter) (export.Dataset, error) {
	switch kind {
	case models.RecapKindGrades:
		rows, err := s.recaps.GradeRecap(ctx, actor, filter)
		if err != nil {
			return export.Dataset{}, err
		}
		secondary := "Task"
		if filter.GroupBy == models.RecapGroupByClass {
			secondary = "Class"
		}
		return scoreDataset("Grade recap", secondary, rows), nil
	case models.RecapKindExams:
		rows, err := s.recaps.ExamRecap(ctx, actor, filter)
		if err != nil {
			return export.Dataset{}, err
		}
		return scoreDataset("Exam recap", "Exam", rows), nil
	case models.RecapKindAttendance:
		rows, err := s.recaps.AttendanceRecap(ctx, actor, filter)
		if err != nil {
			return export.Dataset{}, err
		}
		return attendanceDataset(rows), nil
	default:
		return export.Dataset{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown recap kind %q", kind))
	}
}

func scoreDataset(title, secondary string, rows []models.RecapRow) export.Dataset {
	ds := export.Dataset{
		Title:   title,
		Columns: []string{"Student", secondary, "Count", "Average", "Min", "Max"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		ds.Rows = append(ds.Rows, []string{
			r.StudentName,
			r.SecondaryName,
			strconv.Itoa(r.Count),
			formatScore(r.Avg),
			formatScore(r.Min),
			formatScore(r.Max),
		})
	}
	return ds
}

func attendanceDataset(rows []models.AttendanceRecapRow) export.Dataset {
	ds := export.Dataset{
		Title:   "Attendance recap",
		Columns: []string{"Student", "Class", "Present", "Permitted", "Sick", "Unexcused", "Total"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		ds.Rows = append(ds.Rows, []string{
			r.StudentName,
			r.ClassName,
			strconv.Itoa(r.Present),
			strconv.Itoa(r.Permitted),
			strconv.Itoa(r.Sick),
			strconv.Itoa(r.Unexcused),
			strconv.Itoa(r.Total),
		})
	}
	return ds
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Download validates a signed token and opens the stored file.
func (s *ExportService) Download(ctx context.Context, token string) (*ExportDownload, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "download link is invalid or expired")
	}
	body, err := s.store.Open(ctx, claims.Key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
		}
		return nil, appErrors.Internal(err, "failed to open export")
	}
	return &ExportDownload{Body: body, Filename: path.Base(claims.Key), ContentType: claims.ContentType}, nil
}

// Cleanup removes exports older than the result TTL when the store supports it.
func (s *ExportService) Cleanup() {
	cleaner, ok := s.store.(expiringStore)
	if !ok {
		return
	}
	removed, err := cleaner.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
}
