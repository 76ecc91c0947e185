package strategy_test

import (
	"errors"
	"testing"

	"maker_go/internal/domain"
	"maker_go/internal/strategy"
	"maker_go/pkg/quant"
)

func l2Params() strategy.QuoteParams {
	return strategy.QuoteParams{
		Mode:             strategy.QuoteModeL2,
		SpreadMultiplier: 1.5,
		OrderSize:        1_000_000,
	}
}

func oracleParams() strategy.QuoteParams {
	return strategy.QuoteParams{
		Mode:          strategy.QuoteModeOracle,
		BaseSpreadBps: 10,
		MaxSkewBps:    20,
		OrderSize:     1_000_000,
	}
}

func book(bid, ask quant.PriceMicros) *domain.L2Snapshot {
	return &domain.L2Snapshot{
		Bids: []domain.PriceLevel{{Price: bid, Size: 5_000_000_000}},
		Asks: []domain.PriceLevel{{Price: ask, Size: 5_000_000_000}},
	}
}

func approx(t *testing.T, name string, got, want quant.PriceMicros, tol int64) {
	t.Helper()
	diff := int64(got - want)
	if diff < 0 {
		diff = -diff
	}
	if diff > tol {
		t.Errorf("%s = %d, want %d (+-%d)", name, got, want, tol)
	}
}

func TestGenerateL2(t *testing.T) {
	t.Run("flat position around mid", func(t *testing.T) {
		// best bid $99.95, best ask $100.05: mid $100.00, spread $0.10.
		// target spread = 0.10 * 1.5 = 0.15, multipliers (1, 1):
		// bid $99.925, ask $100.075; oracle $100.00 -> offsets -+75_000.
		intent, err := strategy.Generate(l2Params(), 100_000_000, book(99_950_000, 100_050_000), 0)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		approx(t, "BidOffset", intent.BidOffset, -75_000, 5)
		approx(t, "AskOffset", intent.AskOffset, 75_000, 5)
		if intent.BidSize != 1_000_000 || intent.AskSize != 1_000_000 {
			t.Errorf("flat sizes: got (%d, %d)", intent.BidSize, intent.AskSize)
		}
	})

	t.Run("offsets track the oracle not the mid", func(t *testing.T) {
		// Same book, oracle $0.05 above mid: both offsets shift down by 50_000.
		intent, err := strategy.Generate(l2Params(), 100_050_000, book(99_950_000, 100_050_000), 0)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		approx(t, "BidOffset", intent.BidOffset, -125_000, 5)
		approx(t, "AskOffset", intent.AskOffset, 25_000, 5)
	})

	t.Run("long inventory skews both quotes down", func(t *testing.T) {
		// ratio 0.2 -> multipliers ~(1.609, 0.391):
		// bid = 100 - 0.075*1.609 = 99.879, ask = 100 + 0.075*0.391 = 100.029
		intent, err := strategy.Generate(l2Params(), 100_000_000, book(99_950_000, 100_050_000), 0.2)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		approx(t, "BidOffset", intent.BidOffset, -120_696, 50)
		approx(t, "AskOffset", intent.AskOffset, 29_304, 50)
		if intent.BidSize != 1_000_000 || intent.AskSize != 1_000_000 {
			t.Errorf("ratio 0.2 sizes: got (%d, %d), want full size both", intent.BidSize, intent.AskSize)
		}
	})

	t.Run("max long drops the bid size", func(t *testing.T) {
		intent, err := strategy.Generate(l2Params(), 100_000_000, book(99_950_000, 100_050_000), 1.0)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if intent.BidSize != 0 {
			t.Errorf("BidSize = %d, want 0 at max long", intent.BidSize)
		}
		if intent.AskSize != 1_000_000 {
			t.Errorf("AskSize = %d, want full size", intent.AskSize)
		}
	})

	t.Run("empty bid side fails with no liquidity", func(t *testing.T) {
		snap := &domain.L2Snapshot{Asks: []domain.PriceLevel{{Price: 100_050_000, Size: 1}}}
		_, err := strategy.Generate(l2Params(), 100_000_000, snap, 0)
		if !errors.Is(err, domain.ErrNoLiquidity) {
			t.Errorf("expected ErrNoLiquidity, got %v", err)
		}
	})

	t.Run("empty ask side fails with no liquidity", func(t *testing.T) {
		snap := &domain.L2Snapshot{Bids: []domain.PriceLevel{{Price: 99_950_000, Size: 1}}}
		_, err := strategy.Generate(l2Params(), 100_000_000, snap, 0)
		if !errors.Is(err, domain.ErrNoLiquidity) {
			t.Errorf("expected ErrNoLiquidity, got %v", err)
		}
	})
}

func TestGenerateOracleDirect(t *testing.T) {
	t.Run("flat position", func(t *testing.T) {
		// half spread 5 bps of $100.00 = 50_000 micros each side.
		intent, err := strategy.Generate(oracleParams(), 100_000_000, nil, 0)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if intent.BidOffset != -50_000 || intent.AskOffset != 50_000 {
			t.Errorf("offsets: got (%d, %d), want (-50000, 50000)", intent.BidOffset, intent.AskOffset)
		}
		if intent.BidSize != 1_000_000 || intent.AskSize != 1_000_000 {
			t.Errorf("sizes: got (%d, %d), want flat configured size", intent.BidSize, intent.AskSize)
		}
	})

	t.Run("full long widens bid and floors ask", func(t *testing.T) {
		// bid 5+20 = 25 bps = 250_000; ask floored at 1 bps = 10_000.
		intent, err := strategy.Generate(oracleParams(), 100_000_000, nil, 1.0)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if intent.BidOffset != -250_000 || intent.AskOffset != 10_000 {
			t.Errorf("offsets: got (%d, %d), want (-250000, 10000)", intent.BidOffset, intent.AskOffset)
		}
	})
}

func TestQuotesNeverCross(t *testing.T) {
	books := []*domain.L2Snapshot{
		book(99_950_000, 100_050_000),
		book(99_999_000, 100_001_000),  // one-tick-wide market
		book(95_000_000, 95_010_000),   // oracle far above the book
		book(104_990_000, 105_000_000), // oracle far below the book
	}

	for ratio := -1.0; ratio <= 1.0; ratio += 0.05 {
		for _, snap := range books {
			intent, err := strategy.Generate(l2Params(), 100_000_000, snap, ratio)
			if err != nil {
				t.Fatalf("l2 ratio %v: %v", ratio, err)
			}
			if intent.AskOffset <= intent.BidOffset {
				t.Fatalf("l2 ratio %v: ask offset %d <= bid offset %d", ratio, intent.AskOffset, intent.BidOffset)
			}
			if intent.BidOffset > -1 || intent.AskOffset < 1 {
				t.Fatalf("l2 ratio %v: offsets (%d, %d) violate the sign floor", ratio, intent.BidOffset, intent.AskOffset)
			}
		}

		intent, err := strategy.Generate(oracleParams(), 100_000_000, nil, ratio)
		if err != nil {
			t.Fatalf("oracle ratio %v: %v", ratio, err)
		}
		if intent.AskOffset <= intent.BidOffset {
			t.Fatalf("oracle ratio %v: ask offset %d <= bid offset %d", ratio, intent.AskOffset, intent.BidOffset)
		}
	}
}
