// Package service holds the shared, read-only market data cache consumed by
// the per-market controllers.
package service

import (
	"sync"

	"maker_go/internal/domain"
)

// MarketDataCache stores the latest oracle sample and L2 snapshot per market.
// Feed workers write, controllers read; several controllers may read the same
// cache concurrently.
type MarketDataCache struct {
	mu      sync.RWMutex
	entries map[uint16]*marketEntry
}

type marketEntry struct {
	oracle    domain.OracleSample
	hasOracle bool
	book      domain.L2Snapshot
	hasBook   bool
}

// NewMarketDataCache creates an empty cache.
func NewMarketDataCache() *MarketDataCache {
	return &MarketDataCache{
		entries: make(map[uint16]*marketEntry),
	}
}

// UpdateOracle stores a new oracle sample. Samples whose timestamp regresses
// against the stored one are dropped; returns whether the sample was kept.
func (c *MarketDataCache) UpdateOracle(market domain.MarketRef, sample domain.OracleSample) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(market)
	if e.hasOracle && sample.Ts < e.oracle.Ts {
		return false
	}
	e.oracle = sample
	e.hasOracle = true
	return true
}

// UpdateBook stores a new book snapshot.
func (c *MarketDataCache) UpdateBook(market domain.MarketRef, book domain.L2Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(market)
	e.book = book
	e.hasBook = true
}

// OraclePrice returns the latest oracle sample for the market.
func (c *MarketDataCache) OraclePrice(market domain.MarketRef) (domain.OracleSample, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[market.Index]
	if !ok || !e.hasOracle {
		return domain.OracleSample{}, domain.ErrOracleUnavailable
	}
	return e.oracle, nil
}

// L2Snapshot returns the latest book for the market. A market with no book
// yet yields an empty snapshot; empty sides are the caller's concern.
func (c *MarketDataCache) L2Snapshot(market domain.MarketRef) (domain.L2Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[market.Index]
	if !ok || !e.hasBook {
		return domain.L2Snapshot{}, nil
	}
	return e.book, nil
}

// entry returns the entry for a market, creating it if needed.
// Must be called with the write lock held.
func (c *MarketDataCache) entry(market domain.MarketRef) *marketEntry {
	e, ok := c.entries[market.Index]
	if !ok {
		e = &marketEntry{}
		c.entries[market.Index] = e
	}
	return e
}

var _ domain.MarketDataSource = (*MarketDataCache)(nil)
