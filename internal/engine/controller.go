package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"maker_go/internal/domain"
	"maker_go/internal/infra"
	"maker_go/internal/strategy"
	"maker_go/pkg/quant"
)

// Phase is the controller's position in its cycle state machine.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseEvaluating
	PhaseUpdating
	PhaseShuttingDown
)

// String returns the string representation of a Phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseFetching:
		return "FETCHING"
	case PhaseEvaluating:
		return "EVALUATING"
	case PhaseUpdating:
		return "UPDATING"
	case PhaseShuttingDown:
		return "SHUTTING_DOWN"
	default:
		return "UNKNOWN"
	}
}

// BotState is the per-market run state. It is threaded by value through each
// cycle and advanced only when the cycle that consumed it fully completed, so
// a failed submission naturally re-evaluates the same inputs next tick.
type BotState struct {
	PrevOraclePrice quant.PriceMicros
	LastUpdate      quant.TimeStamp
	HasActiveOrders bool
	Running         bool
}

// Config holds the immutable controller parameters for one market.
type Config struct {
	Market      domain.MarketRef
	MaxPosition quant.QtyNanos
	Quote       strategy.QuoteParams
	Gate        strategy.UpdateGate

	PollInterval    time.Duration
	Cooldown        time.Duration // sleep after a failed cycle
	ShutdownTimeout time.Duration
}

// Controller runs the fixed-interval quoting loop for one market. It owns its
// BotState exclusively; several controllers may share one read-only market
// data source but never each other's state.
type Controller struct {
	cfg       Config
	feed      domain.MarketDataSource
	positions domain.PositionSource
	lifecycle *LifecycleManager
	clock     Clock
	logger    *slog.Logger

	phase      atomic.Int32
	processing atomic.Bool // reentrancy guard while a cycle is on I/O
	stopOnce   sync.Once
}

// NewController wires a controller from its collaborators. A nil clock
// defaults to the wall clock.
func NewController(cfg Config, feed domain.MarketDataSource, positions domain.PositionSource, lifecycle *LifecycleManager, clock Clock) *Controller {
	if clock == nil {
		clock = WallClock{}
	}
	return &Controller{
		cfg:       cfg,
		feed:      feed,
		positions: positions,
		lifecycle: lifecycle,
		clock:     clock,
		logger:    slog.Default().With("module", "controller", "market", cfg.Market.Symbol),
	}
}

// Phase returns the controller's current cycle phase.
func (c *Controller) Phase() Phase {
	return Phase(c.phase.Load())
}

func (c *Controller) setPhase(p Phase) {
	c.phase.Store(int32(p))
}

// Run executes cycles until ctx is cancelled, then performs the shutdown
// sequence exactly once.
func (c *Controller) Run(ctx context.Context) {
	c.logger.Info("controller started",
		"mode", string(c.cfg.Quote.Mode),
		"poll_interval", c.cfg.PollInterval.String())

	state := BotState{Running: true}
	for state.Running && ctx.Err() == nil {
		next, err := c.Cycle(ctx, state)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			c.logger.Error("trading cycle failed", "error", err, "retriable", domain.IsRetriable(err))
			infra.GlobalMetrics.RecordError()
			// Cooldown keeps us from hot-looping against a failing dependency.
			if c.clock.Sleep(ctx, c.cfg.Cooldown) != nil {
				break
			}
		} else {
			state = next
		}

		if c.clock.Sleep(ctx, c.cfg.PollInterval) != nil {
			break
		}
	}

	c.Stop()
	c.logger.Info("controller stopped")
}

// Cycle runs one fetch/evaluate/update pass and returns the advanced state.
// On any error the input state is returned untouched.
func (c *Controller) Cycle(ctx context.Context, state BotState) (BotState, error) {
	if !c.processing.CompareAndSwap(false, true) {
		return state, nil
	}
	defer c.processing.Store(false)
	defer c.setPhase(PhaseIdle)

	started := time.Now()
	infra.GlobalMetrics.RecordCycle()

	c.setPhase(PhaseFetching)
	sample, err := c.feed.OraclePrice(c.cfg.Market)
	if err != nil {
		return state, domain.NewDataUnavailable("oracle price", err)
	}

	c.setPhase(PhaseEvaluating)
	now := c.clock.Now()
	accepted := c.cfg.Gate.Accept(now, sample.Price, strategy.GateState{
		PrevOraclePrice: state.PrevOraclePrice,
		LastUpdate:      state.LastUpdate,
	})
	if !accepted {
		infra.GlobalMetrics.RecordRejected()
		return state, nil
	}
	infra.GlobalMetrics.RecordAccepted()

	c.setPhase(PhaseUpdating)
	pos, err := c.positions.Position(ctx, c.cfg.Market)
	if err != nil {
		return state, domain.NewDataUnavailable("position", err)
	}
	ratio := pos.Ratio(c.cfg.MaxPosition)

	var book *domain.L2Snapshot
	if c.cfg.Quote.Mode == strategy.QuoteModeL2 {
		snap, err := c.feed.L2Snapshot(c.cfg.Market)
		if err != nil {
			return state, domain.NewDataUnavailable("book", err)
		}
		book = &snap
	}

	intent, err := strategy.Generate(c.cfg.Quote, sample.Price, book, ratio)
	if err != nil {
		return state, err
	}

	if _, err := c.lifecycle.SubmitQuotes(ctx, intent); err != nil {
		// State not advanced: the unchanged inputs get re-evaluated next
		// cycle against a fresh oracle sample.
		return state, err
	}

	state.PrevOraclePrice = sample.Price
	state.LastUpdate = c.clock.Now()
	state.HasActiveOrders = true

	infra.GlobalMetrics.RecordCycleLatency(time.Since(started).Nanoseconds())
	c.logger.Debug("cycle completed",
		"oracle", int64(sample.Price),
		"position_ratio", ratio,
		"elapsed", time.Since(started).String())
	return state, nil
}

// Stop performs the best-effort cancel+flatten teardown exactly once,
// bounded by the shutdown timeout. Safe to call concurrently with Run.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		c.setPhase(PhaseShuttingDown)
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout)
		defer cancel()
		c.lifecycle.CancelAndFlatten(ctx)
	})
}
