package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/melodia-inc/melodia/internal/domain/payment"
	vo "github.com/melodia-inc/melodia/internal/domain/payment/valueobjects"
	"github.com/melodia-inc/melodia/internal/infrastructure/persistence/models"
)

func PaymentToModel(p *payment.Payment) (*models.PaymentModel, error) {
	model := &models.PaymentModel{
		ID:             p.ID(),
		UserID:         p.UserID(),
		TierID:         p.TierID(),
		Amount:         p.Amount(),
		Status:         p.Status().String(),
		PaymentMethod:  p.PaymentMethod().String(),
		GatewayOrderID: p.GatewayOrderID(),
		TransactionID:  p.TransactionID(),
		IPAddress:      p.IPAddress(),
		UserAgent:      p.UserAgent(),
		Description:    p.Description(),
		PaidAt:         p.PaidAt(),
		FailedAt:       p.FailedAt(),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}

	if len(p.GatewayResponse()) > 0 {
		payload, err := json.Marshal(p.GatewayResponse())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal gateway response: %w", err)
		}
		model.GatewayResponse = payload
	}

	return model, nil
}

func PaymentToDomain(model *models.PaymentModel) (*payment.Payment, error) {
	method, err := vo.NewPaymentMethod(model.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("invalid payment method: %w", err)
	}

	status := vo.PaymentStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", model.Status)
	}

	var gatewayResponse map[string]interface{}
	if len(model.GatewayResponse) > 0 {
		if err := json.Unmarshal(model.GatewayResponse, &gatewayResponse); err != nil {
			return nil, fmt.Errorf("failed to unmarshal gateway response: %w", err)
		}
	}

	return payment.Reconstruct(payment.ReconstructParams{
		ID:              model.ID,
		UserID:          model.UserID,
		TierID:          model.TierID,
		Amount:          model.Amount,
		Status:          status,
		PaymentMethod:   method,
		GatewayOrderID:  model.GatewayOrderID,
		TransactionID:   model.TransactionID,
		IPAddress:       model.IPAddress,
		UserAgent:       model.UserAgent,
		Description:     model.Description,
		GatewayResponse: gatewayResponse,
		PaidAt:          model.PaidAt,
		FailedAt:        model.FailedAt,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}), nil
}
