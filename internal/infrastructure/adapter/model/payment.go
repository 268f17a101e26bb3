package model

import (
	"time"
)

// Payment represents the database model for payment transactions
type Payment struct {
	ID                string    `gorm:"primaryKey;size:36"`
	UserID            string    `gorm:"not null;index;size:36"`
	Provider          string    `gorm:"not null;size:50"`
	Amount            string    `gorm:"not null;size:50"`
	AmountInCents     int64     `gorm:"not null"`
	Currency          string    `gorm:"not null;size:3"`
	Status            string    `gorm:"not null;size:50;index"`
	ProviderReference string    `gorm:"size:255"`
	FailureReason     string    `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"not null"`
	ConfirmedAt       *time.Time
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}
