package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"maker_go/internal/domain"
	"maker_go/internal/engine"
	"maker_go/internal/infra"
	"maker_go/internal/infra/drift"
	"maker_go/internal/service"
	"maker_go/internal/strategy"
	"maker_go/pkg/quant"

	"github.com/joho/godotenv"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config *infra.Config
	Client *drift.Client
	Cache  *service.MarketDataCache
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (env, config, logger, gateway)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping Maker Go...")

	// 1. Load .env (optional; real env always wins)
	if err := godotenv.Load(); err == nil {
		slog.Info("✅ .env loaded")
	}

	// 2. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 3. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 4. Venue gateway (resolves the signing capability once)
	client, err := drift.NewClient(cfg)
	if err != nil {
		return err
	}
	b.Client = client
	slog.Info("✅ Gateway ready",
		slog.String("subaccount", client.Signer().SubAccount()),
		slog.Bool("delegated", client.Signer().IsDelegated()))

	// 5. Shared market data cache
	b.Cache = service.NewMarketDataCache()

	return nil
}

// ResolvedMarket pairs a venue market with its quoting configuration.
type ResolvedMarket struct {
	Ref domain.MarketRef
	Cfg infra.MarketConfig
}

// ResolveMarkets looks up every configured symbol on the venue. An unknown
// symbol is fatal; quoting the wrong market index is worse than not starting.
func (b *Bootstrap) ResolveMarkets(ctx context.Context) ([]ResolvedMarket, error) {
	resolved := make([]ResolvedMarket, 0, len(b.Config.Markets))
	for _, mc := range b.Config.Markets {
		ref, err := b.Client.LookupMarket(ctx, mc.Symbol)
		if err != nil {
			return nil, err
		}
		slog.Info("✅ Market resolved",
			slog.String("symbol", ref.Symbol),
			slog.Int("index", int(ref.Index)),
			slog.String("kind", string(ref.Kind)))
		resolved = append(resolved, ResolvedMarket{Ref: ref, Cfg: mc})
	}
	return resolved, nil
}

// ControllerConfig translates one market's file configuration into the
// engine's runtime parameters.
func ControllerConfig(m ResolvedMarket) engine.Config {
	return engine.Config{
		Market:      m.Ref,
		MaxPosition: quant.QtyFromDecimal(m.Cfg.MaxPositionSize),
		Quote: strategy.QuoteParams{
			Mode:             strategy.QuoteMode(strings.ToLower(m.Cfg.QuoteMode)),
			SpreadMultiplier: m.Cfg.SpreadMultiplier,
			BaseSpreadBps:    m.Cfg.BaseSpreadBps,
			MaxSkewBps:       m.Cfg.MaxSkewBps,
			OrderSize:        quant.QtyFromDecimal(m.Cfg.OrderSize),
		},
		Gate: strategy.UpdateGate{
			DebounceMs:   m.Cfg.DebounceMs,
			ThresholdBps: m.Cfg.OracleChangeThresholdBps,
		},
		PollInterval:    time.Duration(m.Cfg.PollIntervalMs) * time.Millisecond,
		Cooldown:        time.Duration(m.Cfg.CooldownMs) * time.Millisecond,
		ShutdownTimeout: time.Duration(m.Cfg.ShutdownTimeoutMs) * time.Millisecond,
	}
}
