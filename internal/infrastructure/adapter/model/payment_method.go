package model

import (
	"time"
)

// PaymentMethod represents the database model for saved payment instruments
type PaymentMethod struct {
	ID           string    `gorm:"primaryKey;size:36"`
	UserID       string    `gorm:"not null;index;size:36"`
	Provider     string    `gorm:"not null;size:50"`
	Method       string    `gorm:"not null;size:50"`
	MaskedDetail string    `gorm:"size:255"`
	Token        string    `gorm:"not null;size:255"`
	IsDefault    bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName specifies the table name for PaymentMethod
func (PaymentMethod) TableName() string {
	return "payment_methods"
}
