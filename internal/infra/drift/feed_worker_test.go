package drift

import (
	"testing"
	"time"

	"maker_go/internal/domain"
	"maker_go/internal/service"
	"maker_go/pkg/quant"
)

var feedMarket = domain.MarketRef{Symbol: "SOL-PERP", Index: 0, Kind: domain.MarketKindPerp}

func TestFeedWorker_HandleOracleFrame(t *testing.T) {
	cache := service.NewMarketDataCache()
	w := NewFeedWorker("wss://x/ws", cache, []domain.MarketRef{feedMarket})

	w.handleMessage([]byte(`{
		"channel": "oracle",
		"ts": 1700000000123,
		"data": [{"marketIndex": 0, "price": "100.123456", "slot": 42}]
	}`))

	sample, err := cache.OraclePrice(feedMarket)
	if err != nil {
		t.Fatalf("OraclePrice failed: %v", err)
	}
	if sample.Price != quant.PriceMicros(100_123_456) {
		t.Errorf("expected 100123456 micros, got %d", sample.Price)
	}
	if sample.Ts != 1700000000123 || sample.Slot != 42 {
		t.Errorf("unexpected sample metadata: %+v", sample)
	}
}

func TestFeedWorker_HandleBookFrame(t *testing.T) {
	cache := service.NewMarketDataCache()
	w := NewFeedWorker("wss://x/ws", cache, []domain.MarketRef{feedMarket})

	w.handleMessage([]byte(`{
		"channel": "l2book",
		"ts": 1700000000456,
		"data": [{
			"marketIndex": 0,
			"bids": [["99.95", "1.5"], ["99.90", "3"]],
			"asks": [["100.05", "2"]]
		}]
	}`))

	book, err := cache.L2Snapshot(feedMarket)
	if err != nil {
		t.Fatalf("L2Snapshot failed: %v", err)
	}
	bid, ok := book.BestBid()
	if !ok || bid.Price != 99_950_000 || bid.Size != 1_500_000_000 {
		t.Errorf("unexpected best bid: %+v ok=%v", bid, ok)
	}
	ask, ok := book.BestAsk()
	if !ok || ask.Price != 100_050_000 || ask.Size != 2_000_000_000 {
		t.Errorf("unexpected best ask: %+v ok=%v", ask, ok)
	}
	if len(book.Bids) != 2 {
		t.Errorf("expected 2 bid levels, got %d", len(book.Bids))
	}
}

func TestFeedWorker_IgnoresUnknownMarketAndBadFrames(t *testing.T) {
	cache := service.NewMarketDataCache()
	w := NewFeedWorker("wss://x/ws", cache, []domain.MarketRef{feedMarket})

	// Unsubscribed market index.
	w.handleMessage([]byte(`{"channel": "oracle", "ts": 1, "data": [{"marketIndex": 9, "price": "5", "slot": 1}]}`))
	// Malformed price.
	w.handleMessage([]byte(`{"channel": "oracle", "ts": 1, "data": [{"marketIndex": 0, "price": "abc", "slot": 1}]}`))
	// Not JSON at all.
	w.handleMessage([]byte(`garbage`))

	if _, err := cache.OraclePrice(feedMarket); err == nil {
		t.Error("no valid frame arrived, cache must stay empty")
	}
}

func TestFeedWorker_UnsubscribeStopsUpdates(t *testing.T) {
	cache := service.NewMarketDataCache()
	w := NewFeedWorker("wss://x/ws", cache, []domain.MarketRef{feedMarket})

	w.Unsubscribe(feedMarket)

	w.handleMessage([]byte(`{"channel": "oracle", "ts": 1, "data": [{"marketIndex": 0, "price": "5", "slot": 1}]}`))
	if _, err := cache.OraclePrice(feedMarket); err == nil {
		t.Error("unsubscribed market must not be updated")
	}
}

func TestParseLadder(t *testing.T) {
	levels, err := parseLadder([][2]string{{"1.25", "0.5"}, {"1.20", "10"}})
	if err != nil {
		t.Fatalf("parseLadder failed: %v", err)
	}
	if levels[0].Price != 1_250_000 || levels[0].Size != 500_000_000 {
		t.Errorf("unexpected level: %+v", levels[0])
	}
	if levels[1].Price != 1_200_000 || levels[1].Size != 10_000_000_000 {
		t.Errorf("unexpected level: %+v", levels[1])
	}

	if _, err := parseLadder([][2]string{{"x", "1"}}); err == nil {
		t.Error("expected error on bad price")
	}
	if _, err := parseLadder([][2]string{{"1", "x"}}); err == nil {
		t.Error("expected error on bad size")
	}
}

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{7, 60 * time.Second},
		{100, 60 * time.Second},
	}

	for _, tt := range tests {
		if got := backoffDelay(tt.attempt); got != tt.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
