package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/melodia-inc/melodia/internal/domain/payment"
	vo "github.com/melodia-inc/melodia/internal/domain/payment/valueobjects"
	"github.com/melodia-inc/melodia/internal/infrastructure/persistence/mappers"
	"github.com/melodia-inc/melodia/internal/infrastructure/persistence/models"
	"github.com/melodia-inc/melodia/internal/shared/db"
	apperrors "github.com/melodia-inc/melodia/internal/shared/errors"
)

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(database *gorm.DB) payment.Repository {
	return &paymentRepository{db: database}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model, err := mappers.PaymentToModel(p)
	if err != nil {
		return err
	}

	conn := db.GetTxFromContext(ctx, r.db)
	if err := conn.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("payment with this order id already exists")
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	p.SetID(model.ID)
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*payment.Payment, error) {
	var model models.PaymentModel

	conn := db.GetTxFromContext(ctx, r.db)
	if err := conn.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("payment not found")
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return mappers.PaymentToDomain(&model)
}

func (r *paymentRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*payment.Payment, error) {
	var model models.PaymentModel

	conn := db.GetTxFromContext(ctx, r.db)
	if err := conn.WithContext(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("payment not found")
		}
		return nil, fmt.Errorf("failed to get payment by order id: %w", err)
	}

	return mappers.PaymentToDomain(&model)
}

func (r *paymentRepository) ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]*payment.Payment, int64, error) {
	conn := db.GetTxFromContext(ctx, r.db)

	var total int64
	if err := conn.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var rows []models.PaymentModel
	if err := conn.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]*payment.Payment, 0, len(rows))
	for i := range rows {
		p, err := mappers.PaymentToDomain(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}

	return payments, total, nil
}

func (r *paymentRepository) MarkSucceededIfPending(ctx context.Context, p *payment.Payment) (bool, error) {
	model, err := mappers.PaymentToModel(p)
	if err != nil {
		return false, err
	}

	conn := db.GetTxFromContext(ctx, r.db)
	result := conn.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("id = ? AND status = ?", p.ID(), vo.PaymentStatusPending.String()).
		Updates(map[string]interface{}{
			"status":           model.Status,
			"transaction_id":   model.TransactionID,
			"gateway_response": model.GatewayResponse,
			"paid_at":          model.PaidAt,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark payment succeeded: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *paymentRepository) MarkFailedIfPending(ctx context.Context, p *payment.Payment) (bool, error) {
	model, err := mappers.PaymentToModel(p)
	if err != nil {
		return false, err
	}

	conn := db.GetTxFromContext(ctx, r.db)
	result := conn.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("id = ? AND status = ?", p.ID(), vo.PaymentStatusPending.String()).
		Updates(map[string]interface{}{
			"status":           model.Status,
			"gateway_response": model.GatewayResponse,
			"failed_at":        model.FailedAt,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark payment failed: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}
