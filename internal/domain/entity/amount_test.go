package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrs "github.com/safiripay/payment-core/internal/domain/error"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name          string
		amount        string
		expectedCents int64
		expectedError error
	}{
		{
			name:          "Valid Two Decimal Places",
			amount:        "100.50",
			expectedCents: 10050,
		},
		{
			name:          "Valid Integer Amount",
			amount:        "500",
			expectedCents: 50000,
		},
		{
			name:          "Valid Single Decimal Place",
			amount:        "25.5",
			expectedCents: 2550,
		},
		{
			name:          "Valid Smallest Amount",
			amount:        "0.01",
			expectedCents: 1,
		},
		{
			name:          "Valid With Surrounding Whitespace",
			amount:        "  42.00  ",
			expectedCents: 4200,
		},
		{
			name:          "Empty Amount",
			amount:        "",
			expectedError: domainerrs.ErrInvalidAmount,
		},
		{
			name:          "Whitespace Amount",
			amount:        "   ",
			expectedError: domainerrs.ErrInvalidAmount,
		},
		{
			name:          "Zero Amount",
			amount:        "0",
			expectedError: domainerrs.ErrInvalidAmount,
		},
		{
			name:          "Zero With Decimals",
			amount:        "0.00",
			expectedError: domainerrs.ErrInvalidAmount,
		},
		{
			name:          "Negative Amount",
			amount:        "-10.00",
			expectedError: domainerrs.ErrInvalidAmount,
		},
		{
			name:          "Too Many Decimal Places",
			amount:        "100.567",
			expectedError: domainerrs.ErrInvalidAmount,
		},
		{
			name:          "Multiple Decimal Points",
			amount:        "10.0.0",
			expectedError: domainerrs.ErrInvalidAmount,
		},
		{
			name:          "Non Numeric",
			amount:        "abc",
			expectedError: domainerrs.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cents, err := ParseAmount(tt.amount)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedCents, cents)
		})
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		expected string
	}{
		{name: "Whole And Fraction", cents: 1015, expected: "10.15"},
		{name: "Less Than One Unit", cents: 5, expected: "0.05"},
		{name: "Zero", cents: 0, expected: "0.00"},
		{name: "Negative", cents: -5, expected: "-0.05"},
		{name: "Large Value", cents: 123456789, expected: "1234567.89"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCents(tt.cents))
		})
	}
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected string
	}{
		{name: "Already Normalized", amount: "10.50", expected: "10.50"},
		{name: "Integer", amount: "10", expected: "10.00"},
		{name: "Single Decimal", amount: "10.5", expected: "10.50"},
		{name: "Extra Decimals Truncated", amount: "10.509", expected: "10.50"},
		{name: "Empty", amount: "", expected: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeAmount(tt.amount))
		})
	}
}
