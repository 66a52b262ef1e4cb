package user

import (
	"fmt"
	"time"

	"github.com/melodia-inc/melodia/internal/shared/biztime"
)

// User carries the account fields the billing side needs. Profile and
// credential management live elsewhere; this aggregate only tracks premium
// entitlement.
type User struct {
	id           uint
	email        string
	displayName  string
	isPremium    bool
	premiumUntil *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

func NewUser(email, displayName string) (*User, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	now := biztime.NowUTC()

	return &User{
		email:       email,
		displayName: displayName,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// GrantPremium marks the account premium until the given time.
func (u *User) GrantPremium(until time.Time) {
	u.isPremium = true
	u.premiumUntil = &until
	u.updatedAt = biztime.NowUTC()
}

// RevokePremium clears the premium flag once no active subscription backs it.
func (u *User) RevokePremium() {
	u.isPremium = false
	u.premiumUntil = nil
	u.updatedAt = biztime.NowUTC()
}

func (u *User) ID() uint {
	return u.id
}

func (u *User) Email() string {
	return u.email
}

func (u *User) DisplayName() string {
	return u.displayName
}

func (u *User) IsPremium() bool {
	return u.isPremium
}

func (u *User) PremiumUntil() *time.Time {
	return u.premiumUntil
}

func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

func (u *User) SetID(id uint) {
	u.id = id
}

// ReconstructParams carries persisted state back into the aggregate.
type ReconstructParams struct {
	ID           uint
	Email        string
	DisplayName  string
	IsPremium    bool
	PremiumUntil *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Reconstruct rebuilds a User from persistence.
func Reconstruct(params ReconstructParams) *User {
	return &User{
		id:           params.ID,
		email:        params.Email,
		displayName:  params.DisplayName,
		isPremium:    params.IsPremium,
		premiumUntil: params.PremiumUntil,
		createdAt:    params.CreatedAt,
		updatedAt:    params.UpdatedAt,
	}
}
