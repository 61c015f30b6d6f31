package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// downPaymentRate is the fixed upfront share of the total stay price.
var downPaymentRate = decimal.New(15, -2)

// Nights returns the whole-day difference between two stay dates,
// truncated to an integer day count.
func Nights(stayFrom, stayUntil time.Time) int {
	return int(stayUntil.Sub(stayFrom).Hours() / 24)
}

// DownPayment computes price * nights * 0.15 without rounding; fractional
// currency precision is kept as computed.
func DownPayment(price decimal.Decimal, nights int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(nights))).Mul(downPaymentRate)
}
