package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/melodia-inc/melodia/internal/domain/subscription"
	vo "github.com/melodia-inc/melodia/internal/domain/subscription/valueobjects"
	"github.com/melodia-inc/melodia/internal/infrastructure/persistence/models"
)

func SubscriptionToModel(s *subscription.Subscription) *models.SubscriptionModel {
	return &models.SubscriptionModel{
		ID:                 s.ID(),
		UserID:             s.UserID(),
		TierID:             s.TierID(),
		PaymentID:          s.PaymentID(),
		Status:             s.Status().String(),
		StartDate:          s.StartDate(),
		EndDate:            s.EndDate(),
		AutoRenew:          s.AutoRenew(),
		CancelledAt:        s.CancelledAt(),
		CancellationReason: s.CancellationReason(),
		CreatedAt:          s.CreatedAt(),
		UpdatedAt:          s.UpdatedAt(),
	}
}

func SubscriptionToDomain(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	status := vo.SubscriptionStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid subscription status: %s", model.Status)
	}

	return subscription.Reconstruct(subscription.ReconstructParams{
		ID:                 model.ID,
		UserID:             model.UserID,
		TierID:             model.TierID,
		PaymentID:          model.PaymentID,
		Status:             status,
		StartDate:          model.StartDate,
		EndDate:            model.EndDate,
		AutoRenew:          model.AutoRenew,
		CancelledAt:        model.CancelledAt,
		CancellationReason: model.CancellationReason,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}), nil
}

func TierToModel(t *subscription.Tier) (*models.TierModel, error) {
	model := &models.TierModel{
		ID:           t.ID(),
		Name:         t.Name(),
		Plan:         t.Plan().String(),
		Price:        t.Price(),
		DurationDays: t.DurationDays(),
		IsActive:     t.IsActive(),
		CreatedAt:    t.CreatedAt(),
		UpdatedAt:    t.UpdatedAt(),
	}

	if len(t.Features()) > 0 {
		features, err := json.Marshal(t.Features())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal features: %w", err)
		}
		model.Features = features
	}

	return model, nil
}

func TierToDomain(model *models.TierModel) (*subscription.Tier, error) {
	plan, err := vo.NewTierPlan(model.Plan)
	if err != nil {
		return nil, err
	}

	var features []string
	if len(model.Features) > 0 {
		if err := json.Unmarshal(model.Features, &features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal features: %w", err)
		}
	}

	return subscription.ReconstructTier(subscription.TierReconstructParams{
		ID:           model.ID,
		Name:         model.Name,
		Plan:         plan,
		Price:        model.Price,
		DurationDays: model.DurationDays,
		Features:     features,
		IsActive:     model.IsActive,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}), nil
}
