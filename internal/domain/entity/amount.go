package entity

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/safiripay/payment-core/internal/domain/error"
)

// Monetary amounts are carried as fixed-point decimal strings and converted to
// integer minor units for arithmetic. Floating point is never used for money.

// MaxAmountDecimalPlaces is the maximum number of decimal places accepted for amounts
const MaxAmountDecimalPlaces = 2

// ParseAmount validates a decimal amount string and converts it to minor units
// (cents). The amount must be strictly positive: zero and negative values are
// rejected with ErrInvalidAmount before any provider is contacted.
func ParseAmount(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) == 0 {
		return 0, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}

	if strings.HasPrefix(amount, "-") {
		return 0, fmt.Errorf("%w: negative value", errs.ErrInvalidAmount)
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: invalid number format", errs.ErrInvalidAmount)
	}

	// Normalise to a pure minor-unit integer string
	var minorUnits string
	if len(parts) == 1 {
		minorUnits = parts[0] + "00"
	} else {
		switch len(parts[1]) {
		case 0:
			minorUnits = parts[0] + "00"
		case 1:
			minorUnits = parts[0] + parts[1] + "0"
		case 2:
			minorUnits = parts[0] + parts[1]
		default:
			return 0, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxAmountDecimalPlaces)
		}
	}

	value, err := strconv.ParseInt(minorUnits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}
	if value == 0 {
		return 0, fmt.Errorf("%w: zero value", errs.ErrInvalidAmount)
	}

	return value, nil
}

// FormatCents converts minor units back to a two-decimal string,
// e.g. 1015 -> "10.15", -5 -> "-0.05".
func FormatCents(cents int64) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}

	digits := strconv.FormatInt(cents, 10)
	for len(digits) < 3 {
		digits = "0" + digits
	}

	split := len(digits) - 2
	result := digits[:split] + "." + digits[split:]
	if negative {
		return "-" + result
	}
	return result
}

// NormalizeAmount standardizes an amount string to exactly two decimal places,
// truncating extra digits. Used for display values coming back from
// collaborators; inputs should go through ParseAmount instead.
func NormalizeAmount(amount string) string {
	if len(strings.TrimSpace(amount)) == 0 {
		return "0.00"
	}

	parts := strings.Split(amount, ".")
	if len(parts) == 1 {
		return parts[0] + ".00"
	}

	whole, decimal := parts[0], parts[1]
	switch len(decimal) {
	case 0:
		return whole + ".00"
	case 1:
		return whole + "." + decimal + "0"
	case 2:
		return whole + "." + decimal
	default:
		return whole + "." + decimal[:2]
	}
}
