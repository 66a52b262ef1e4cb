package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentModel struct {
	ID              uint    `gorm:"primaryKey"`
	UserID          uint    `gorm:"index;not null"`
	TierID          uint    `gorm:"not null"`
	Amount          int64   `gorm:"not null"`
	Status          string  `gorm:"size:20;not null;index"`
	PaymentMethod   string  `gorm:"size:20;not null"`
	GatewayOrderID  string  `gorm:"uniqueIndex;size:64;not null"`
	TransactionID   *string `gorm:"size:128"`
	IPAddress       string  `gorm:"size:64"`
	UserAgent       string  `gorm:"size:512"`
	Description     string  `gorm:"size:255"`
	GatewayResponse datatypes.JSON
	PaidAt          *time.Time
	FailedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (PaymentModel) TableName() string {
	return "payments"
}
