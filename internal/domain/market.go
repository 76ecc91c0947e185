package domain

import "maker_go/pkg/quant"

// MarketKind distinguishes instrument types on the venue.
type MarketKind string

const (
	MarketKindPerp MarketKind = "PERP"
	MarketKindSpot MarketKind = "SPOT"
)

// MarketRef identifies one tradable market. Immutable after lookup.
type MarketRef struct {
	Symbol string     `json:"symbol"` // e.g. "BTC-PERP"
	Index  uint16     `json:"index"`  // venue market index
	Kind   MarketKind `json:"kind"`
}

// OracleSample is one observation of the external reference price.
type OracleSample struct {
	Price quant.PriceMicros `json:"price"`
	Ts    quant.TimeStamp   `json:"ts"`
	Slot  uint64            `json:"slot"` // venue slot the price was observed at
}

// PriceLevel is one aggregated (price, size) rung of an order-book ladder.
type PriceLevel struct {
	Price quant.PriceMicros `json:"price"`
	Size  quant.QtyNanos    `json:"size"`
}

// L2Snapshot is an aggregated order-book view.
// Bids are sorted high to low, asks low to high. Either side may be empty.
type L2Snapshot struct {
	Bids []PriceLevel    `json:"bids"`
	Asks []PriceLevel    `json:"asks"`
	Ts   quant.TimeStamp `json:"ts"`
}

// BestBid returns the highest resting bid, or false if the side is empty.
func (s *L2Snapshot) BestBid() (PriceLevel, bool) {
	if len(s.Bids) == 0 {
		return PriceLevel{}, false
	}
	return s.Bids[0], true
}

// BestAsk returns the lowest resting ask, or false if the side is empty.
func (s *L2Snapshot) BestAsk() (PriceLevel, bool) {
	if len(s.Asks) == 0 {
		return PriceLevel{}, false
	}
	return s.Asks[0], true
}

// Position is the account's signed base-asset amount in one market.
// Zero means flat, sign is direction.
type Position struct {
	Market MarketRef
	Base   quant.QtyNanos
}

// IsFlat reports whether there is no exposure.
func (p Position) IsFlat() bool {
	return p.Base == 0
}

// Ratio returns the signed position ratio against a maximum size.
// maxSize must be positive; the result may exceed ±1.
func (p Position) Ratio(maxSize quant.QtyNanos) float64 {
	return float64(p.Base) / float64(maxSize)
}
