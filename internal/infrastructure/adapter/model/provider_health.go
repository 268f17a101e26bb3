package model

import (
	"time"
)

// ProviderHealth represents the database model for provider health records.
// LastResponseTimeMs stores the latency in milliseconds.
type ProviderHealth struct {
	Provider            string    `gorm:"primaryKey;size:50"`
	IsHealthy           bool      `gorm:"not null"`
	ConsecutiveFailures int       `gorm:"not null"`
	LastCheckedAt       time.Time `gorm:"not null"`
	LastResponseTimeMs  int64     `gorm:"not null"`
	LastSuccessAt       *time.Time
	LastFailureAt       *time.Time
	LastError           string `gorm:"type:text"`
}

// TableName specifies the table name for ProviderHealth
func (ProviderHealth) TableName() string {
	return "provider_health"
}
