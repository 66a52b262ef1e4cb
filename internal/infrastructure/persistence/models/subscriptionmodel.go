package models

import (
	"time"

	"gorm.io/datatypes"
)

type SubscriptionModel struct {
	ID                 uint   `gorm:"primaryKey"`
	UserID             uint   `gorm:"index;not null"`
	TierID             uint   `gorm:"index;not null"`
	PaymentID          *uint  `gorm:"index"`
	Status             string `gorm:"size:20;not null;index:idx_subscriptions_status_end_date"`
	StartDate          time.Time
	EndDate            time.Time `gorm:"index:idx_subscriptions_status_end_date"`
	AutoRenew          bool      `gorm:"not null;default:false"`
	CancelledAt        *time.Time
	CancellationReason string `gorm:"size:512"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (SubscriptionModel) TableName() string {
	return "user_subscriptions"
}

type TierModel struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:64;not null"`
	Plan         string `gorm:"uniqueIndex;size:32;not null"`
	Price        int64  `gorm:"not null"`
	DurationDays int    `gorm:"not null"`
	Features     datatypes.JSON
	IsActive     bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (TierModel) TableName() string {
	return "subscription_tiers"
}
