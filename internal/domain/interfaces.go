package domain

import (
	"context"
)

// MarketDataSource supplies the current oracle price and, optionally, an
// aggregated order-book snapshot for a market.
type MarketDataSource interface {
	// OraclePrice returns the latest oracle sample for the market.
	// Returns ErrOracleUnavailable (wrapped) when no sample exists.
	OraclePrice(market MarketRef) (OracleSample, error)
	// L2Snapshot returns the latest aggregated book. Either side may be
	// empty; that is not an error at this layer.
	L2Snapshot(market MarketRef) (L2Snapshot, error)
}

// PositionSource supplies the account's current signed position in a market.
type PositionSource interface {
	Position(ctx context.Context, market MarketRef) (Position, error)
}

// OrderSubmissionSink accepts atomic order batches for signing and broadcast.
type OrderSubmissionSink interface {
	Submit(ctx context.Context, batch *OrderBatch) (Signature, error)
}

// FeedWorker is a streaming market-data connector.
type FeedWorker interface {
	Connect(ctx context.Context) error
	Disconnect()
	IsConnected() bool
}
