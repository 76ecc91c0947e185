package drift

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"maker_go/internal/domain"
	"maker_go/internal/infra"
	"maker_go/pkg/quant"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Client is the venue REST gateway (boundary layer). It implements
// domain.PositionSource and domain.OrderSubmissionSink.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *Signer
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates the gateway client and resolves the signer capability.
func NewClient(cfg *infra.Config) (*Client, error) {
	signer, err := NewSigner(cfg.Venue.PrivateKey, cfg.Venue.Authority, cfg.Venue.SubaccountID)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.Venue.RestURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		signer:  signer,
		limiter: rate.NewLimiter(rate.Limit(restRateLimit), restRateBurst),
		logger:  slog.Default().With("module", "drift_client"),
	}, nil
}

// Signer exposes the resolved signing capability.
func (c *Client) Signer() *Signer {
	return c.signer
}

// LookupMarket resolves a configured symbol into a MarketRef. An unknown
// symbol is a configuration error and aborts startup.
func (c *Client) LookupMarket(ctx context.Context, symbol string) (domain.MarketRef, error) {
	var resp struct {
		apiResponse
		Data []marketInfo `json:"data"`
	}
	if err := c.get(ctx, "/v1/markets", nil, &resp); err != nil {
		return domain.MarketRef{}, err
	}

	for _, m := range resp.Data {
		if m.Symbol != symbol {
			continue
		}
		kind := domain.MarketKindPerp
		if m.Kind == string(domain.MarketKindSpot) {
			kind = domain.MarketKindSpot
		}
		return domain.MarketRef{Symbol: m.Symbol, Index: m.MarketIndex, Kind: kind}, nil
	}

	return domain.MarketRef{}, &domain.ConfigError{
		Field: "markets.symbol",
		Err:   fmt.Errorf("%q: %w", symbol, domain.ErrMarketNotFound),
	}
}

// Position returns the account's signed base position in the market. A
// market absent from the account is flat.
func (c *Client) Position(ctx context.Context, market domain.MarketRef) (domain.Position, error) {
	var resp struct {
		apiResponse
		Data []positionInfo `json:"data"`
	}
	query := url.Values{"subAccount": {c.signer.SubAccount()}}
	if err := c.get(ctx, "/v1/positions", query, &resp); err != nil {
		return domain.Position{}, err
	}

	for _, p := range resp.Data {
		if p.MarketIndex != market.Index {
			continue
		}
		base, err := decimal.NewFromString(p.BaseAmount)
		if err != nil {
			return domain.Position{}, fmt.Errorf("malformed position amount %q: %w", p.BaseAmount, err)
		}
		return domain.Position{Market: market, Base: quant.QtyFromDecimal(base)}, nil
	}

	return domain.Position{Market: market}, nil
}

// Submit signs and posts one atomic order batch. The venue applies the whole
// sequence or none of it.
func (c *Client) Submit(ctx context.Context, batch *domain.OrderBatch) (domain.Signature, error) {
	body := wireBatch{SubAccount: c.signer.SubAccount()}
	for _, op := range batch.Ops {
		body.Ops = append(body.Ops, encodeBatchOp(op))
	}

	var resp batchResult
	if err := c.post(ctx, "/v1/orders/batch", body, &resp); err != nil {
		return "", classifySubmitError(err)
	}

	c.logger.Debug("batch accepted",
		slog.Int("ops", len(body.Ops)),
		slog.String("sig", resp.Data.Signature))
	return domain.Signature(resp.Data.Signature), nil
}

func encodeBatchOp(op domain.BatchOp) wireBatchOp {
	switch op.Kind {
	case domain.BatchCancelMarket:
		return wireBatchOp{Op: "cancelMarket", MarketIndex: op.Market.Index}
	case domain.BatchCancelAll:
		return wireBatchOp{Op: "cancelAll"}
	default:
		orders := make([]wireOrder, 0, len(op.Orders))
		for _, o := range op.Orders {
			orders = append(orders, encodeOrder(o))
		}
		return wireBatchOp{Op: "place", Orders: orders}
	}
}

// encodeOrder converts fixed-point order fields to decimal strings at the
// boundary.
func encodeOrder(o domain.OrderParams) wireOrder {
	w := wireOrder{
		ClientID:    o.ClientID,
		MarketIndex: o.Market.Index,
		Side:        strings.ToLower(o.Side),
		OrderType:   strings.ToLower(o.Type),
		Size:        o.Qty.Decimal().String(),
		PostOnly:    o.PostOnly,
		ReduceOnly:  o.ReduceOnly,
	}
	if o.Price != 0 {
		w.Price = o.Price.Decimal().String()
	}
	if o.OracleOffset != 0 {
		w.OracleOffset = o.OracleOffset.Decimal().String()
	}
	return w
}

// classifySubmitError maps transport and venue failures onto the submission
// error taxonomy.
func classifySubmitError(err error) error {
	var apiErr *venueError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == codeStaleOracle:
			return domain.NewSubmissionError("stale reference", err)
		case apiErr.Code >= 400 && apiErr.Code < 500:
			return domain.NewSubmissionError("rejected", err)
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewSubmissionError("timeout", err)
	}
	return domain.NewSubmissionError("transport", err)
}

const codeStaleOracle = 4221

// venueError is a non-zero business code returned by the gateway.
type venueError struct {
	Code int
	Msg  string
}

func (e *venueError) Error() string {
	return "venue error: code=" + strconv.Itoa(e.Code) + " msg=" + e.Msg
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.doRequest(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.doRequest(ctx, http.MethodPost, path, nil, body, out)
}

// doRequest handles rate limiting, auth headers and serialization.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var bodyReader io.Reader
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return err
	}

	// Sign: timestamp + method + path + body
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	payload := timestamp + method + path + string(bodyBytes)
	req.Header.Set("MAKER-KEY", c.signer.PublicKey())
	req.Header.Set("MAKER-SIGN", c.signer.Sign([]byte(payload)))
	req.Header.Set("MAKER-TIMESTAMP", timestamp)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway error: status=%d body=%s", resp.StatusCode, string(respBytes))
	}

	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	// All envelopes embed apiResponse; re-decode just the envelope to check
	// the business code.
	var env apiResponse
	if err := json.Unmarshal(respBytes, &env); err == nil && env.Code != 0 {
		return &venueError{Code: env.Code, Msg: env.Msg}
	}

	return nil
}

var (
	_ domain.PositionSource      = (*Client)(nil)
	_ domain.OrderSubmissionSink = (*Client)(nil)
)
