package strategy

import "maker_go/pkg/quant"

// GateState is the slice of run state the gate reads. PrevOraclePrice zero is
// the "unset" sentinel: the first sample always triggers.
type GateState struct {
	PrevOraclePrice quant.PriceMicros
	LastUpdate      quant.TimeStamp
}

// UpdateGate decides whether a new oracle sample warrants a quote refresh.
// It is a pure predicate; the caller advances GateState only after the
// accepted cycle actually completes.
type UpdateGate struct {
	DebounceMs   int64   // minimum time between accepted updates
	ThresholdBps float64 // minimum oracle move to trigger an update
}

// Accept evaluates the gate rules in order: debounce first, then the
// first-sample rule, then the bps-change threshold.
func (g UpdateGate) Accept(now quant.TimeStamp, newPrice quant.PriceMicros, state GateState) bool {
	if int64(now-state.LastUpdate) < g.DebounceMs {
		return false
	}

	if state.PrevOraclePrice == 0 {
		return true
	}

	return quant.ChangeBps(state.PrevOraclePrice, newPrice) >= g.ThresholdBps
}
