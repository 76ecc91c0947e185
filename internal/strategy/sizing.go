package strategy

import (
	"math"

	"maker_go/pkg/quant"
)

// reductionStart is the |position ratio| above which the increasing side
// starts shrinking.
const reductionStart = 0.2

// DynamicSizing returns per-side order sizes for a given position ratio.
// The side that would grow the position shrinks linearly once |ratio| passes
// reductionStart and reaches zero at |ratio| >= 1; the reducing side always
// keeps the full configured size.
func DynamicSizing(baseSize quant.QtyNanos, positionRatio float64) (bidSize, askSize quant.QtyNanos) {
	absRatio := math.Abs(positionRatio)

	if absRatio >= 1 {
		if positionRatio > 0 {
			return 0, baseSize
		}
		return baseSize, 0
	}

	reduced := baseSize
	if absRatio > reductionStart {
		mult := 1 - (absRatio-reductionStart)/(1-reductionStart)
		reduced = quant.QtyNanos(float64(baseSize) * mult)
	}

	switch {
	case positionRatio > 0:
		return reduced, baseSize
	case positionRatio < 0:
		return baseSize, reduced
	default:
		return baseSize, baseSize
	}
}
