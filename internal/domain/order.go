package domain

import "maker_go/pkg/quant"

// Order sides and types. All monetary values are strictly int64 fixed point.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	OrderTypeLimit  = "LIMIT"
	OrderTypeMarket = "MARKET"
)

// OrderParams describes one order to be placed. Limit orders quoted against
// the oracle carry OracleOffset and a zero Price; the venue reprices them as
// the oracle moves.
type OrderParams struct {
	ClientID     string            // client order id, unique per placement
	Market       MarketRef
	Side         string            // SideBuy or SideSell
	Type         string            // OrderTypeLimit or OrderTypeMarket
	Qty          quant.QtyNanos    // unsigned magnitude
	Price        quant.PriceMicros // absolute limit price; 0 when OracleOffset is used
	OracleOffset quant.PriceMicros // signed delta from the oracle price
	PostOnly     bool
	ReduceOnly   bool
}

// BatchOpKind enumerates the operations an order batch may contain.
type BatchOpKind int

const (
	// BatchCancelMarket cancels all resting orders in one market.
	BatchCancelMarket BatchOpKind = iota + 1
	// BatchCancelAll cancels all resting orders across markets.
	BatchCancelAll
	// BatchPlaceOrders places one or more orders.
	BatchPlaceOrders
)

// String returns the string representation of a BatchOpKind.
func (k BatchOpKind) String() string {
	switch k {
	case BatchCancelMarket:
		return "CANCEL_MARKET"
	case BatchCancelAll:
		return "CANCEL_ALL"
	case BatchPlaceOrders:
		return "PLACE_ORDERS"
	default:
		return "UNKNOWN"
	}
}

// BatchOp is one operation inside an OrderBatch.
type BatchOp struct {
	Kind   BatchOpKind
	Market MarketRef     // BatchCancelMarket only
	Orders []OrderParams // BatchPlaceOrders only
}

// OrderBatch is an ordered sequence of operations submitted as a single
// all-or-nothing unit. Either every operation takes effect or none do, so a
// cancel+place never leaves the market naked or double-quoted in between.
type OrderBatch struct {
	Ops []BatchOp
}

// CancelMarket appends a cancel-by-market operation.
func (b *OrderBatch) CancelMarket(market MarketRef) *OrderBatch {
	b.Ops = append(b.Ops, BatchOp{Kind: BatchCancelMarket, Market: market})
	return b
}

// CancelAll appends a cancel-all operation.
func (b *OrderBatch) CancelAll() *OrderBatch {
	b.Ops = append(b.Ops, BatchOp{Kind: BatchCancelAll})
	return b
}

// PlaceOrders appends a place operation.
func (b *OrderBatch) PlaceOrders(orders ...OrderParams) *OrderBatch {
	b.Ops = append(b.Ops, BatchOp{Kind: BatchPlaceOrders, Orders: orders})
	return b
}

// Signature identifies a confirmed submission on the venue.
type Signature string
