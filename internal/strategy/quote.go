package strategy

import (
	"fmt"

	"maker_go/internal/domain"
	"maker_go/pkg/quant"
)

// QuoteMode selects how quotes are derived.
type QuoteMode string

const (
	// QuoteModeL2 references the live book: mid-price and market spread,
	// skewed multiplicatively, then expressed as oracle offsets.
	QuoteModeL2 QuoteMode = "l2"
	// QuoteModeOracle derives offsets directly from the base spread and the
	// linear skew policy. No book dependency.
	QuoteModeOracle QuoteMode = "oracle"
)

// minOffsetMicros floors offsets at one micro on each side of the oracle so
// the resting bid can never cross the resting ask.
const minOffsetMicros = 1

// QuoteParams are the immutable strategy inputs of the quote generator.
type QuoteParams struct {
	Mode             QuoteMode
	SpreadMultiplier float64 // QuoteModeL2: market spread scale
	BaseSpreadBps    float64 // QuoteModeOracle: total spread around oracle
	MaxSkewBps       float64 // QuoteModeOracle: extra skew at full inventory
	OrderSize        quant.QtyNanos
}

// QuoteIntent is the ephemeral product of one accepted cycle: oracle-relative
// offsets and per-side sizes. Never persisted.
type QuoteIntent struct {
	BidOffset quant.PriceMicros // <= -1
	AskOffset quant.PriceMicros // >= +1
	BidSize   quant.QtyNanos
	AskSize   quant.QtyNanos
}

// Generate computes a QuoteIntent from the oracle price, the current book
// (QuoteModeL2 only, may be nil otherwise) and the signed position ratio.
// Pure: no side effects, same inputs give the same intent.
func Generate(p QuoteParams, oracle quant.PriceMicros, book *domain.L2Snapshot, positionRatio float64) (QuoteIntent, error) {
	if p.Mode == QuoteModeOracle {
		return generateOracleDirect(p, oracle, positionRatio), nil
	}
	return generateL2(p, oracle, book, positionRatio)
}

// generateL2 anchors quotes on the book mid and the observed spread, then
// re-expresses both prices as offsets from the oracle so the resting orders
// track the oracle rather than a stale mid.
func generateL2(p QuoteParams, oracle quant.PriceMicros, book *domain.L2Snapshot, positionRatio float64) (QuoteIntent, error) {
	if book == nil {
		return QuoteIntent{}, domain.NewDataUnavailable("book", domain.ErrNoLiquidity)
	}

	bestBid, ok := book.BestBid()
	if !ok {
		return QuoteIntent{}, fmt.Errorf("bid side: %w", domain.ErrNoLiquidity)
	}
	bestAsk, ok := book.BestAsk()
	if !ok {
		return QuoteIntent{}, fmt.Errorf("ask side: %w", domain.ErrNoLiquidity)
	}

	mid := (bestBid.Price.Float() + bestAsk.Price.Float()) / 2
	targetSpread := (bestAsk.Price.Float() - bestBid.Price.Float()) * p.SpreadMultiplier

	bidMult, askMult := InventorySkew(positionRatio)

	ourBid := mid - targetSpread/2*bidMult
	ourAsk := mid + targetSpread/2*askMult

	oraclePx := oracle.Float()
	intent := QuoteIntent{
		BidOffset: quant.PriceMicros((ourBid - oraclePx) * quant.PricePrecision),
		AskOffset: quant.PriceMicros((ourAsk - oraclePx) * quant.PricePrecision),
	}
	intent.BidSize, intent.AskSize = DynamicSizing(p.OrderSize, positionRatio)

	return clampOffsets(intent), nil
}

// generateOracleDirect needs no book: offsets come straight from the linear
// bps policy, sizes stay at the configured flat size.
func generateOracleDirect(p QuoteParams, oracle quant.PriceMicros, positionRatio float64) QuoteIntent {
	bidBps, askBps := LinearSkewBps(positionRatio, p.BaseSpreadBps, p.MaxSkewBps)

	oraclePx := float64(oracle)
	intent := QuoteIntent{
		BidOffset: quant.PriceMicros(-oraclePx * bidBps / 10_000),
		AskOffset: quant.PriceMicros(oraclePx * askBps / 10_000),
		BidSize:   p.OrderSize,
		AskSize:   p.OrderSize,
	}
	return clampOffsets(intent)
}

// clampOffsets enforces the no-self-cross invariant: the bid rests at least
// one micro below the oracle, the ask at least one micro above.
func clampOffsets(q QuoteIntent) QuoteIntent {
	if q.BidOffset > -minOffsetMicros {
		q.BidOffset = -minOffsetMicros
	}
	if q.AskOffset < minOffsetMicros {
		q.AskOffset = minOffsetMicros
	}
	return q
}
