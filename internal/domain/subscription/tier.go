package subscription

import (
	"fmt"
	"time"

	vo "github.com/melodia-inc/melodia/internal/domain/subscription/valueobjects"
	"github.com/melodia-inc/melodia/internal/shared/biztime"
)

// Tier describes a purchasable subscription plan. Price is in VND and
// DurationDays is how long one purchase keeps a subscription active.
type Tier struct {
	id           uint
	name         string
	plan         vo.TierPlan
	price        int64
	durationDays int
	features     []string
	isActive     bool
	createdAt    time.Time
	updatedAt    time.Time
}

func NewTier(name string, plan vo.TierPlan, price int64, durationDays int, features []string) (*Tier, error) {
	if name == "" {
		return nil, fmt.Errorf("tier name is required")
	}
	if !plan.IsValid() {
		return nil, fmt.Errorf("invalid tier plan: %s", plan)
	}
	if price < 0 {
		return nil, fmt.Errorf("tier price cannot be negative")
	}
	if plan.IsPaid() && price == 0 {
		return nil, fmt.Errorf("paid tier must have a positive price")
	}
	if plan.IsPaid() && durationDays <= 0 {
		return nil, fmt.Errorf("paid tier must have a positive duration")
	}

	now := biztime.NowUTC()

	return &Tier{
		name:         name,
		plan:         plan,
		price:        price,
		durationDays: durationDays,
		features:     features,
		isActive:     true,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

func (t *Tier) ID() uint {
	return t.id
}

func (t *Tier) Name() string {
	return t.name
}

func (t *Tier) Plan() vo.TierPlan {
	return t.plan
}

func (t *Tier) Price() int64 {
	return t.price
}

func (t *Tier) DurationDays() int {
	return t.durationDays
}

func (t *Tier) Features() []string {
	return t.features
}

func (t *Tier) IsActive() bool {
	return t.isActive
}

func (t *Tier) IsPurchasable() bool {
	return t.isActive && t.plan.IsPaid()
}

func (t *Tier) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Tier) UpdatedAt() time.Time {
	return t.updatedAt
}

func (t *Tier) SetID(id uint) {
	t.id = id
}

// Deactivate hides the tier from new purchases without touching existing
// subscriptions.
func (t *Tier) Deactivate() {
	t.isActive = false
	t.updatedAt = biztime.NowUTC()
}

// TierReconstructParams carries persisted state back into the aggregate.
type TierReconstructParams struct {
	ID           uint
	Name         string
	Plan         vo.TierPlan
	Price        int64
	DurationDays int
	Features     []string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReconstructTier rebuilds a Tier from persistence.
func ReconstructTier(params TierReconstructParams) *Tier {
	return &Tier{
		id:           params.ID,
		name:         params.Name,
		plan:         params.Plan,
		price:        params.Price,
		durationDays: params.DurationDays,
		features:     params.Features,
		isActive:     params.IsActive,
		createdAt:    params.CreatedAt,
		updatedAt:    params.UpdatedAt,
	}
}
