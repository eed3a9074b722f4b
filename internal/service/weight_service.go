package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
	"github.com/noah-isme/sma-grading-api/pkg/logger"
)

type weightConfigStore interface {
	Get(ctx context.Context, key string) (*models.Configuration, error)
	Upsert(ctx context.Context, cfg *models.Configuration) error
}

// WeightService reads and writes the grade component weights.
type WeightService struct {
	repo      weightConfigStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
}

// NewWeightService constructs a WeightService.
func NewWeightService(repo weightConfigStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger, ttl time.Duration) *WeightService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeightService{repo: repo, cache: cache, validator: validate, logger: logger, ttl: ttl}
}

// Current returns the stored weights or the defaults when none are stored.
func (s *WeightService) Current(ctx context.Context) (models.GradeWeights, error) {
	var cached models.GradeWeights
	if hit, _ := s.cache.Get(ctx, cacheKeyWeights, &cached); hit {
		return cached, nil
	}

	weights := models.DefaultGradeWeights()
	cfg, err := s.repo.Get(ctx, models.ConfigKeyGradeWeights)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return models.GradeWeights{}, appErrors.Internal(err, "failed to load grade weights")
	default:
		if err := json.Unmarshal([]byte(cfg.Value), &weights); err != nil {
			return models.GradeWeights{}, appErrors.Internal(err, "stored grade weights are malformed")
		}
	}

	_ = s.cache.Set(ctx, cacheKeyWeights, weights, s.ttl)
	return weights, nil
}

// Update validates and stores new weights. Each weight must be in [0,100] and the four must sum to 100.
func (s *WeightService) Update(ctx context.Context, weights models.GradeWeights, actorID string) (models.GradeWeights, error) {
	if err := s.validator.Struct(weights); err != nil {
		return models.GradeWeights{}, appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, "each weight must be between 0 and 100")
	}
	if sum := weights.Sum(); sum != 100 {
		return models.GradeWeights{}, appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("weights must sum to 100, got %d", sum))
	}

	payload, err := json.Marshal(weights)
	if err != nil {
		return models.GradeWeights{}, appErrors.Internal(err, "failed to encode grade weights")
	}
	description := "Grade component weights in percent"
	cfg := &models.Configuration{
		Key:         models.ConfigKeyGradeWeights,
		Value:       string(payload),
		Type:        models.ConfigurationTypeJSON,
		Description: &description,
		UpdatedBy:   &actorID,
	}
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return models.GradeWeights{}, appErrors.Internal(err, "failed to store grade weights")
	}

	if err := s.cache.Invalidate(ctx, cacheKeyWeights); err != nil {
		s.logger.Warn("failed to invalidate weight cache", zap.Error(err))
	}
	logger.ForContext(ctx, s.logger).Info("grade weights updated", zap.String("actor_id", actorID), zap.Any("weights", weights))
	return weights, nil
}
