package valueobjects

import "fmt"

// TierPlan identifies a purchasable plan. FREE exists so every user always
// has a tier to fall back to when a paid subscription lapses.
type TierPlan string

const (
	TierPlanFree           TierPlan = "FREE"
	TierPlanPremiumMonthly TierPlan = "PREMIUM_MONTHLY"
	TierPlanPremiumYearly  TierPlan = "PREMIUM_YEARLY"
)

func NewTierPlan(value string) (TierPlan, error) {
	plan := TierPlan(value)
	if !plan.IsValid() {
		return "", fmt.Errorf("invalid tier plan: %s", value)
	}
	return plan, nil
}

func (p TierPlan) IsValid() bool {
	switch p {
	case TierPlanFree, TierPlanPremiumMonthly, TierPlanPremiumYearly:
		return true
	default:
		return false
	}
}

func (p TierPlan) IsPaid() bool {
	return p == TierPlanPremiumMonthly || p == TierPlanPremiumYearly
}

func (p TierPlan) String() string {
	return string(p)
}
