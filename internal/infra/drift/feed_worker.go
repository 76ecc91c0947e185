package drift

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"maker_go/internal/domain"
	"maker_go/internal/infra"
	"maker_go/internal/service"
	"maker_go/pkg/quant"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// FeedWorker maintains the streaming market-data connection and writes
// oracle samples and book snapshots into the shared cache. It reconnects
// with exponential backoff and resubscribes after every reconnect.
type FeedWorker struct {
	wsURL     string
	cache     *service.MarketDataCache
	logger    *slog.Logger
	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	subMu   sync.Mutex
	markets map[uint16]domain.MarketRef // active subscriptions
}

// NewFeedWorker factory. Markets are subscribed on Connect; more can be
// added later via Subscribe.
func NewFeedWorker(wsURL string, cache *service.MarketDataCache, markets []domain.MarketRef) *FeedWorker {
	byIndex := make(map[uint16]domain.MarketRef, len(markets))
	for _, m := range markets {
		byIndex[m.Index] = m
	}
	return &FeedWorker{
		wsURL:   wsURL,
		cache:   cache,
		logger:  slog.Default().With("module", "drift_feed"),
		markets: byIndex,
	}
}

func (w *FeedWorker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

func (w *FeedWorker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			retryCount++
			delay := backoffDelay(retryCount)
			w.logger.Warn("feed connection failed",
				slog.Any("error", err),
				slog.Int("retry", retryCount),
				slog.Duration("backoff", delay))
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		} else {
			retryCount = 0
			w.readLoop(ctx)
			infra.GlobalMetrics.SetFeedConnected(false)
		}
	}
}

// backoffDelay doubles per attempt from baseDelay, capped at maxDelay.
func backoffDelay(attempt int) time.Duration {
	d := baseDelay
	for i := 1; i < attempt && d < maxDelay; i++ {
		d *= 2
	}
	if d > maxDelay {
		d = maxDelay
	}
	return d
}

func (w *FeedWorker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConnectionFailed, err)
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	if err := w.subscribeAll(); err != nil {
		w.closeConnection()
		return err
	}

	go w.pingLoop(ctx)
	infra.GlobalMetrics.SetFeedConnected(true)
	w.logger.Info("feed connected", slog.String("url", w.wsURL))
	return nil
}

func (w *FeedWorker) subscribeAll() error {
	w.subMu.Lock()
	args := make([]subscribeArg, 0, 2*len(w.markets))
	for idx := range w.markets {
		args = append(args,
			subscribeArg{Channel: "oracle", MarketIndex: idx},
			subscribeArg{Channel: "l2book", MarketIndex: idx})
	}
	w.subMu.Unlock()

	if len(args) == 0 {
		return nil
	}
	req := subscribeRequest{Op: "subscribe", Args: args}
	b, _ := json.Marshal(req)
	return w.threadSafeWrite(websocket.TextMessage, b)
}

// Unsubscribe stops the oracle and book streams for one market. Used at
// per-market shutdown; safe to call while disconnected.
func (w *FeedWorker) Unsubscribe(market domain.MarketRef) {
	w.subMu.Lock()
	delete(w.markets, market.Index)
	w.subMu.Unlock()

	req := subscribeRequest{Op: "unsubscribe", Args: []subscribeArg{
		{Channel: "oracle", MarketIndex: market.Index},
		{Channel: "l2book", MarketIndex: market.Index},
	}}
	b, _ := json.Marshal(req)
	if err := w.threadSafeWrite(websocket.TextMessage, b); err != nil {
		w.logger.Warn("unsubscribe failed",
			slog.String("symbol", market.Symbol), slog.Any("error", err))
	}
}

func (w *FeedWorker) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.threadSafeWrite(websocket.TextMessage, []byte("ping"))
		}
	}
}

func (w *FeedWorker) threadSafeWrite(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.conn == nil {
		return fmt.Errorf("no conn")
	}
	return w.conn.WriteMessage(msgType, data)
}

func (w *FeedWorker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.mu.RLock()
		if w.conn == nil {
			w.mu.RUnlock()
			return
		}
		w.conn.SetReadDeadline(time.Now().Add(readTimeout))
		w.mu.RUnlock()

		_, msg, err := w.conn.ReadMessage()
		if err != nil {
			w.logger.Warn("feed read failed", slog.Any("error", err))
			w.closeConnection()
			return
		}
		if string(msg) == "pong" {
			continue
		}
		w.handleMessage(msg)
	}
}

func (w *FeedWorker) handleMessage(msg []byte) {
	var frame streamMessage
	if err := json.Unmarshal(msg, &frame); err != nil {
		w.logger.Debug("unparseable frame", slog.Any("error", err))
		return
	}
	if len(frame.Data) == 0 {
		return
	}

	for _, data := range frame.Data {
		w.subMu.Lock()
		market, ok := w.markets[data.MarketIndex]
		w.subMu.Unlock()
		if !ok {
			continue
		}

		switch frame.Channel {
		case "oracle":
			price, err := decimal.NewFromString(data.Price)
			if err != nil {
				w.logger.Warn("bad oracle price",
					slog.String("symbol", market.Symbol), slog.String("price", data.Price))
				continue
			}
			w.cache.UpdateOracle(market, domain.OracleSample{
				Price: quant.PriceFromDecimal(price),
				Ts:    quant.TimeStamp(frame.Ts),
				Slot:  data.Slot,
			})
		case "l2book":
			bids, err := parseLadder(data.Bids)
			if err != nil {
				w.logger.Warn("bad book frame",
					slog.String("symbol", market.Symbol), slog.Any("error", err))
				continue
			}
			asks, err := parseLadder(data.Asks)
			if err != nil {
				w.logger.Warn("bad book frame",
					slog.String("symbol", market.Symbol), slog.Any("error", err))
				continue
			}
			w.cache.UpdateBook(market, domain.L2Snapshot{
				Bids: bids,
				Asks: asks,
				Ts:   quant.TimeStamp(frame.Ts),
			})
		}
	}
}

// parseLadder converts [price, size] string pairs, preserving venue order.
func parseLadder(raw [][2]string) ([]domain.PriceLevel, error) {
	levels := make([]domain.PriceLevel, 0, len(raw))
	for _, pair := range raw {
		price, err := decimal.NewFromString(pair[0])
		if err != nil {
			return nil, fmt.Errorf("price %q: %w", pair[0], err)
		}
		size, err := decimal.NewFromString(pair[1])
		if err != nil {
			return nil, fmt.Errorf("size %q: %w", pair[1], err)
		}
		levels = append(levels, domain.PriceLevel{
			Price: quant.PriceFromDecimal(price),
			Size:  quant.QtyFromDecimal(size),
		})
	}
	return levels, nil
}

func (w *FeedWorker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
}

func (w *FeedWorker) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

func (w *FeedWorker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
	infra.GlobalMetrics.SetFeedConnected(false)
}

var _ domain.FeedWorker = (*FeedWorker)(nil)
