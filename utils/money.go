package utils

import "math"

// Round2 rounds a currency amount to 2 decimal places.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ToMinorUnits converts a decimal currency amount to integer minor units, the
// representation used at the payment-gateway boundary.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts integer minor units back to a decimal amount.
func FromMinorUnits(cents int64) float64 {
	return float64(cents) / 100
}
