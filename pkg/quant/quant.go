// Package quant defines the fixed-point numeric types used in the hotpath.
// Prices are quoted in micros (1e-6 quote units), quantities in nanos
// (1e-9 base units). Floats and decimals appear only at boundaries.
package quant

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// PricePrecision is the fixed-point scale of PriceMicros.
	PricePrecision = 1_000_000
	// QtyPrecision is the fixed-point scale of QtyNanos.
	QtyPrecision = 1_000_000_000
)

// PriceMicros is a price in 1e-6 quote units.
type PriceMicros int64

// QtyNanos is a base-asset quantity in 1e-9 base units. Signed: positive is
// long, negative is short.
type QtyNanos int64

// TimeStamp is a unix timestamp in milliseconds.
type TimeStamp int64

var (
	priceScale = decimal.NewFromInt(PricePrecision)
	qtyScale   = decimal.NewFromInt(QtyPrecision)
)

// PriceFromDecimal converts a quote-unit decimal to PriceMicros, truncating
// below micro resolution.
func PriceFromDecimal(d decimal.Decimal) PriceMicros {
	return PriceMicros(d.Mul(priceScale).IntPart())
}

// QtyFromDecimal converts a base-unit decimal to QtyNanos, truncating below
// nano resolution.
func QtyFromDecimal(d decimal.Decimal) QtyNanos {
	return QtyNanos(d.Mul(qtyScale).IntPart())
}

// Decimal returns the price in quote units.
func (p PriceMicros) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(p)).Div(priceScale)
}

// Float returns the price in quote units as a float64. Display and strategy
// arithmetic only; never feed the result back into order quantities.
func (p PriceMicros) Float() float64 {
	return float64(p) / PricePrecision
}

// Decimal returns the quantity in base units.
func (q QtyNanos) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(q)).Div(qtyScale)
}

// Float returns the quantity in base units as a float64.
func (q QtyNanos) Float() float64 {
	return float64(q) / QtyPrecision
}

// Abs returns the magnitude of the quantity.
func (q QtyNanos) Abs() QtyNanos {
	if q < 0 {
		return -q
	}
	return q
}

// ChangeBps returns the absolute change from prev to next in basis points.
// prev must be non-zero.
func ChangeBps(prev, next PriceMicros) float64 {
	diff := int64(next) - int64(prev)
	if diff < 0 {
		diff = -diff
	}
	base := int64(prev)
	if base < 0 {
		base = -base
	}
	return float64(diff) / float64(base) * 10_000
}

// Now returns the current wall-clock time as a TimeStamp.
func Now() TimeStamp {
	return TimeStamp(time.Now().UnixMilli())
}

// Time converts the TimeStamp to a time.Time.
func (t TimeStamp) Time() time.Time {
	return time.UnixMilli(int64(t))
}
