package engine

import (
	"context"
	"errors"
	"log/slog"

	"maker_go/internal/domain"
	"maker_go/internal/infra"
	"maker_go/internal/strategy"

	"github.com/google/uuid"
)

// LifecycleManager owns order placement and teardown for one market. Every
// quote refresh is a single atomic cancel+place batch, so the market is never
// left naked or double-quoted between the cancel and the place.
type LifecycleManager struct {
	market    domain.MarketRef
	sink      domain.OrderSubmissionSink
	positions domain.PositionSource

	// unsubscribe detaches the market-data feed on shutdown. Optional.
	unsubscribe func()

	// newID generates client order ids. Tests inject a deterministic one.
	newID func() string

	logger *slog.Logger
}

// NewLifecycleManager creates a lifecycle manager for one market.
func NewLifecycleManager(market domain.MarketRef, sink domain.OrderSubmissionSink, positions domain.PositionSource, unsubscribe func()) *LifecycleManager {
	return &LifecycleManager{
		market:      market,
		sink:        sink,
		positions:   positions,
		unsubscribe: unsubscribe,
		newID:       uuid.NewString,
		logger:      slog.Default().With("module", "lifecycle", "market", market.Symbol),
	}
}

// SubmitQuotes submits one transaction cancelling all resting orders in the
// market and placing the new bid/ask as post-only oracle-offset limit orders.
// A zero-sized side (position cap reached) is simply not placed.
func (m *LifecycleManager) SubmitQuotes(ctx context.Context, intent strategy.QuoteIntent) (domain.Signature, error) {
	orders := make([]domain.OrderParams, 0, 2)

	if intent.BidSize > 0 {
		orders = append(orders, domain.OrderParams{
			ClientID:     m.newID(),
			Market:       m.market,
			Side:         domain.SideBuy,
			Type:         domain.OrderTypeLimit,
			Qty:          intent.BidSize,
			OracleOffset: intent.BidOffset,
			PostOnly:     true,
		})
	}
	if intent.AskSize > 0 {
		orders = append(orders, domain.OrderParams{
			ClientID:     m.newID(),
			Market:       m.market,
			Side:         domain.SideSell,
			Type:         domain.OrderTypeLimit,
			Qty:          intent.AskSize,
			OracleOffset: intent.AskOffset,
			PostOnly:     true,
		})
	}

	batch := (&domain.OrderBatch{}).CancelMarket(m.market).PlaceOrders(orders...)

	sig, err := m.sink.Submit(ctx, batch)
	if err != nil {
		infra.GlobalMetrics.RecordSubmissionFailed()
		var se *domain.SubmissionError
		if errors.As(err, &se) {
			return "", err
		}
		return "", domain.NewSubmissionError("rejected", err)
	}

	infra.GlobalMetrics.RecordSubmission()
	m.logger.Info("quotes updated",
		"sig", string(sig),
		"bid_offset", int64(intent.BidOffset),
		"ask_offset", int64(intent.AskOffset),
		"bid_size", int64(intent.BidSize),
		"ask_size", int64(intent.AskSize))
	return sig, nil
}

// CancelAndFlatten performs the shutdown sequence: cancel all resting orders,
// close any remaining position with one reduce-only market order, then detach
// from the data feed. Every step is best-effort; a failed step is logged and
// the remaining steps still run. Never returns an error to the caller.
func (m *LifecycleManager) CancelAndFlatten(ctx context.Context) {
	if _, err := m.sink.Submit(ctx, (&domain.OrderBatch{}).CancelAll()); err != nil {
		m.logger.Error("shutdown cancel-all failed", "error", err)
	} else {
		m.logger.Info("resting orders cancelled")
	}

	// Query the live position rather than trusting a resting-order flag;
	// the flag can go stale against confirmed-empty books.
	pos, err := m.positions.Position(ctx, m.market)
	if err != nil {
		m.logger.Error("shutdown position lookup failed", "error", err)
	} else if !pos.IsFlat() {
		side := domain.SideSell
		if pos.Base < 0 {
			side = domain.SideBuy
		}
		closeOrder := domain.OrderParams{
			ClientID:   m.newID(),
			Market:     m.market,
			Side:       side,
			Type:       domain.OrderTypeMarket,
			Qty:        pos.Base.Abs(),
			ReduceOnly: true,
		}
		if _, err := m.sink.Submit(ctx, (&domain.OrderBatch{}).PlaceOrders(closeOrder)); err != nil {
			m.logger.Error("shutdown flatten failed", "error", err)
		} else {
			infra.GlobalMetrics.RecordFlatten()
			m.logger.Info("position flattened", "side", side, "qty", int64(pos.Base.Abs()))
		}
	}

	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}
