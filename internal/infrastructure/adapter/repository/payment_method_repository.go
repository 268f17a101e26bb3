package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/safiripay/payment-core/internal/domain/entity"
	errs "github.com/safiripay/payment-core/internal/domain/error"
	coreport "github.com/safiripay/payment-core/internal/domain/port/core"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/model"
)

// PaymentMethodRepository implements the payment-method repository using GORM
type PaymentMethodRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewPaymentMethodRepository creates a new PaymentMethodRepository instance
func NewPaymentMethodRepository(db *gorm.DB, logger coreport.Logger) *PaymentMethodRepository {
	return &PaymentMethodRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PaymentMethodRepository) modelToEntity(m *model.PaymentMethod) entity.SavedPaymentMethod {
	return entity.SavedPaymentMethod{
		ID:           m.ID,
		UserID:       m.UserID,
		Provider:     entity.Provider(m.Provider),
		Method:       entity.PaymentMethod(m.Method),
		MaskedDetail: m.MaskedDetail,
		Token:        m.Token,
		IsDefault:    m.IsDefault,
	}
}

// GetByUser returns all saved methods for a user, newest first
func (r *PaymentMethodRepository) GetByUser(ctx context.Context, userID string) ([]entity.SavedPaymentMethod, error) {
	var methodModels []model.PaymentMethod
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&methodModels)

	if result.Error != nil {
		r.logger.Error("Failed to get payment methods", map[string]any{
			"user_id": userID,
			"error":   result.Error.Error(),
		})
		return nil, fmt.Errorf("get payment method records: %w", result.Error)
	}

	methods := make([]entity.SavedPaymentMethod, len(methodModels))
	for i := range methodModels {
		methods[i] = r.modelToEntity(&methodModels[i])
	}
	return methods, nil
}

// GetDefault returns the user's default method, (nil, nil) if none is set
func (r *PaymentMethodRepository) GetDefault(ctx context.Context, userID string) (*entity.SavedPaymentMethod, error) {
	var methodModel model.PaymentMethod
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&methodModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get default payment method", map[string]any{
			"user_id": userID,
			"error":   result.Error.Error(),
		})
		return nil, fmt.Errorf("get default payment method record: %w", result.Error)
	}

	method := r.modelToEntity(&methodModel)
	return &method, nil
}

// Save inserts or updates a method. Setting IsDefault clears the previous
// default in the same transaction.
func (r *PaymentMethodRepository) Save(ctx context.Context, method *entity.SavedPaymentMethod) error {
	methodModel := model.PaymentMethod{
		ID:           method.ID,
		UserID:       method.UserID,
		Provider:     string(method.Provider),
		Method:       string(method.Method),
		MaskedDetail: method.MaskedDetail,
		Token:        method.Token,
		IsDefault:    method.IsDefault,
		CreatedAt:    time.Now(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if method.IsDefault {
			clear := tx.Model(&model.PaymentMethod{}).
				Where("user_id = ? AND id <> ?", method.UserID, method.ID).
				Update("is_default", false)
			if clear.Error != nil {
				return clear.Error
			}
		}
		return tx.Save(&methodModel).Error
	})
	if err != nil {
		r.logger.Error("Failed to save payment method", map[string]any{
			"user_id":   method.UserID,
			"method_id": method.ID,
			"error":     err.Error(),
		})
		return fmt.Errorf("save payment method record: %w", err)
	}
	return nil
}

// Delete removes a method owned by the user
func (r *PaymentMethodRepository) Delete(ctx context.Context, userID, methodID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, methodID).
		Delete(&model.PaymentMethod{})

	if result.Error != nil {
		r.logger.Error("Failed to delete payment method", map[string]any{
			"user_id":   userID,
			"method_id": methodID,
			"error":     result.Error.Error(),
		})
		return fmt.Errorf("delete payment method record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: unknown payment method %s", errs.ErrInvalidRequest, methodID)
	}
	return nil
}
