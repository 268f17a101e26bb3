package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/safiripay/payment-core/internal/domain/entity"
	errs "github.com/safiripay/payment-core/internal/domain/error"
	coreport "github.com/safiripay/payment-core/internal/domain/port/core"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/model"
)

// PaymentRepository implements the payment repository interface using GORM
type PaymentRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewPaymentRepository creates a new PaymentRepository instance
func NewPaymentRepository(db *gorm.DB, logger coreport.Logger) *PaymentRepository {
	return &PaymentRepository{
		db:     db,
		logger: logger,
	}
}

// entityToModel converts a payment entity to a database model
func (r *PaymentRepository) entityToModel(payment *entity.PaymentTransaction) model.Payment {
	return model.Payment{
		ID:                payment.ID,
		UserID:            payment.UserID,
		Provider:          string(payment.Provider),
		Amount:            payment.Amount,
		AmountInCents:     payment.AmountInCents,
		Currency:          payment.Currency,
		Status:            string(payment.Status),
		ProviderReference: payment.ProviderReference,
		FailureReason:     payment.FailureReason,
		CreatedAt:         payment.CreatedAt,
		ConfirmedAt:       payment.ConfirmedAt,
	}
}

// modelToEntity converts a payment model to an entity
func (r *PaymentRepository) modelToEntity(m *model.Payment) *entity.PaymentTransaction {
	return &entity.PaymentTransaction{
		ID:                m.ID,
		UserID:            m.UserID,
		Provider:          entity.Provider(m.Provider),
		Amount:            m.Amount,
		AmountInCents:     m.AmountInCents,
		Currency:          m.Currency,
		Status:            entity.PaymentStatus(m.Status),
		ProviderReference: m.ProviderReference,
		FailureReason:     m.FailureReason,
		CreatedAt:         m.CreatedAt,
		ConfirmedAt:       m.ConfirmedAt,
	}
}

// Create saves a new payment transaction
func (r *PaymentRepository) Create(ctx context.Context, payment *entity.PaymentTransaction) error {
	paymentModel := r.entityToModel(payment)

	result := r.db.WithContext(ctx).Create(&paymentModel)
	if result.Error != nil {
		r.logger.Error("Failed to create payment", map[string]any{
			"payment_id": payment.ID,
			"user_id":    payment.UserID,
			"error":      result.Error.Error(),
		})
		return fmt.Errorf("create payment record: %w", result.Error)
	}

	r.logger.Debug("Payment created", map[string]any{
		"payment_id": payment.ID,
		"user_id":    payment.UserID,
	})
	return nil
}

// GetByID retrieves a payment by its ID
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*entity.PaymentTransaction, error) {
	var paymentModel model.Payment
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&paymentModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPaymentNotFound
		}
		r.logger.Error("Failed to get payment", map[string]any{
			"payment_id": id,
			"error":      result.Error.Error(),
		})
		return nil, fmt.Errorf("get payment record: %w", result.Error)
	}

	return r.modelToEntity(&paymentModel), nil
}

// Update persists status, provider reference, failure reason and confirmation time
func (r *PaymentRepository) Update(ctx context.Context, payment *entity.PaymentTransaction) error {
	paymentModel := r.entityToModel(payment)

	result := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]interface{}{
			"status":             paymentModel.Status,
			"provider_reference": paymentModel.ProviderReference,
			"failure_reason":     paymentModel.FailureReason,
			"confirmed_at":       paymentModel.ConfirmedAt,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update payment", map[string]any{
			"payment_id": payment.ID,
			"error":      result.Error.Error(),
		})
		return fmt.Errorf("update payment record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrPaymentNotFound
	}

	return nil
}
