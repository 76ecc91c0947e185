package strategy

import "math"

// Multiplicative (tanh) skew parameters.
const (
	skewDeadband = 0.1 // no skew while |ratio| is inside the deadband
	maxSkew      = 0.8
	skewScale    = 0.2
)

// minOffsetBps floors the tightened side of the linear policy so the spread
// component never reaches zero. A zero or negative component would let the
// quote cross itself.
const minOffsetBps = 1.0

// InventorySkew maps a signed position ratio to (bid, ask) half-spread
// multipliers. Long inventory widens the bid and tightens the ask to
// encourage selling; short inventory mirrors.
func InventorySkew(positionRatio float64) (bidMult, askMult float64) {
	absRatio := math.Abs(positionRatio)
	if absRatio <= skewDeadband {
		return 1, 1
	}

	skew := maxSkew * math.Tanh(absRatio/skewScale)

	if positionRatio > 0 {
		return 1 + skew, 1 - skew
	}
	return 1 - skew, 1 + skew
}

// LinearSkewBps maps a signed position ratio to absolute (bid, ask) offsets
// in basis points from the oracle price. Both sides start at half the base
// spread; the side that would grow the position widens by up to maxSkewBps
// while the reducing side tightens, floored at minOffsetBps.
func LinearSkewBps(positionRatio, baseSpreadBps, maxSkewBps float64) (bidBps, askBps float64) {
	halfSpread := baseSpreadBps / 2
	skewBps := math.Abs(positionRatio) * maxSkewBps

	bidBps = halfSpread
	askBps = halfSpread

	if positionRatio > 0 {
		bidBps += skewBps
		askBps = math.Max(minOffsetBps, askBps-skewBps)
	} else if positionRatio < 0 {
		bidBps = math.Max(minOffsetBps, bidBps-skewBps)
		askBps += skewBps
	}

	return bidBps, askBps
}
