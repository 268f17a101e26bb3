package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/safiripay/payment-core/internal/domain/entity"
	coreport "github.com/safiripay/payment-core/internal/domain/port/core"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/model"
)

// ProviderHealthRepository implements the health repository interface using GORM
type ProviderHealthRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewProviderHealthRepository creates a new ProviderHealthRepository instance
func NewProviderHealthRepository(db *gorm.DB, logger coreport.Logger) *ProviderHealthRepository {
	return &ProviderHealthRepository{
		db:     db,
		logger: logger,
	}
}

// GetByProvider retrieves the health record for a provider, (nil, nil) if absent
func (r *ProviderHealthRepository) GetByProvider(ctx context.Context, provider entity.Provider) (*entity.ProviderHealth, error) {
	var healthModel model.ProviderHealth
	result := r.db.WithContext(ctx).Where("provider = ?", string(provider)).First(&healthModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			// Absent record means "assume healthy"; the caller decides that
			return nil, nil
		}
		r.logger.Error("Failed to get provider health", map[string]any{
			"provider": provider,
			"error":    result.Error.Error(),
		})
		return nil, fmt.Errorf("get provider health record: %w", result.Error)
	}

	return &entity.ProviderHealth{
		Provider:            entity.Provider(healthModel.Provider),
		IsHealthy:           healthModel.IsHealthy,
		ConsecutiveFailures: healthModel.ConsecutiveFailures,
		LastCheckedAt:       healthModel.LastCheckedAt,
		LastResponseTime:    time.Duration(healthModel.LastResponseTimeMs) * time.Millisecond,
		LastSuccessAt:       healthModel.LastSuccessAt,
		LastFailureAt:       healthModel.LastFailureAt,
		LastError:           healthModel.LastError,
	}, nil
}

// Upsert inserts or updates the health record keyed by provider
func (r *ProviderHealthRepository) Upsert(ctx context.Context, health *entity.ProviderHealth) error {
	healthModel := model.ProviderHealth{
		Provider:            string(health.Provider),
		IsHealthy:           health.IsHealthy,
		ConsecutiveFailures: health.ConsecutiveFailures,
		LastCheckedAt:       health.LastCheckedAt,
		LastResponseTimeMs:  health.LastResponseTime.Milliseconds(),
		LastSuccessAt:       health.LastSuccessAt,
		LastFailureAt:       health.LastFailureAt,
		LastError:           health.LastError,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_healthy",
			"consecutive_failures",
			"last_checked_at",
			"last_response_time_ms",
			"last_success_at",
			"last_failure_at",
			"last_error",
		}),
	}).Create(&healthModel)

	if result.Error != nil {
		r.logger.Error("Failed to upsert provider health", map[string]any{
			"provider": health.Provider,
			"error":    result.Error.Error(),
		})
		return fmt.Errorf("upsert provider health record: %w", result.Error)
	}
	return nil
}
