package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"maker_go/internal/app"
	"maker_go/internal/domain"
	"maker_go/internal/engine"
	"maker_go/internal/infra/drift"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Resolve configured markets against the venue
	markets, err := bootstrap.ResolveMarkets(ctx)
	if err != nil {
		slog.Error("❌ Market resolution failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 5. Market data feed (single connection, all markets)
	refs := make([]domain.MarketRef, 0, len(markets))
	for _, m := range markets {
		refs = append(refs, m.Ref)
	}
	feed := drift.NewFeedWorker(bootstrap.Config.Venue.WSURL, bootstrap.Cache, refs)
	if err := feed.Connect(ctx); err != nil {
		slog.Error("❌ Feed connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer feed.Disconnect()
	slog.InfoContext(ctx, "✅ FeedWorker started", slog.Int("markets", len(refs)))

	// 6. One controller per market (each owns its own state)
	var wg sync.WaitGroup
	for _, m := range markets {
		market := m.Ref
		lifecycle := engine.NewLifecycleManager(market, bootstrap.Client, bootstrap.Client, func() {
			feed.Unsubscribe(market)
		})
		controller := engine.NewController(app.ControllerConfig(m), bootstrap.Cache, bootstrap.Client, lifecycle, nil)

		wg.Add(1)
		go func() {
			defer wg.Done()
			controller.Run(ctx)
		}()
		slog.InfoContext(ctx, "✅ Controller started", slog.String("symbol", market.Symbol))
	}

	slog.InfoContext(ctx, "✨ Maker Go fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal, then for every controller's teardown.
	<-ctx.Done()
	slog.Info("👋 Shutting down gracefully...")
	wg.Wait()
	slog.Info("✅ All controllers stopped")
}
