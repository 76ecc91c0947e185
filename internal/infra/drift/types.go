package drift

import "time"

const (
	maxRetries   = 10
	baseDelay    = 1 * time.Second
	maxDelay     = 60 * time.Second
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second

	// REST rate limit: requests per second and burst.
	restRateLimit = 10
	restRateBurst = 20
)

// subscribeRequest structure
type subscribeRequest struct {
	Op   string         `json:"op"` // "subscribe" or "unsubscribe"
	Args []subscribeArg `json:"args"`
}

type subscribeArg struct {
	Channel     string `json:"channel"` // "oracle" or "l2book"
	MarketIndex uint16 `json:"marketIndex"`
}

// streamMessage is the envelope of every feed frame.
type streamMessage struct {
	Channel string `json:"channel"`
	Ts      int64  `json:"ts"`
	Data    []struct {
		MarketIndex uint16      `json:"marketIndex"`
		Price       string      `json:"price"` // oracle channel
		Slot        uint64      `json:"slot"`
		Bids        [][2]string `json:"bids"` // l2book channel: [price, size]
		Asks        [][2]string `json:"asks"`
	} `json:"data"`
}

// apiResponse is the REST envelope.
type apiResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// marketInfo describes one listed market.
type marketInfo struct {
	Symbol      string `json:"symbol"`
	MarketIndex uint16 `json:"marketIndex"`
	Kind        string `json:"kind"` // "PERP" or "SPOT"
}

// positionInfo is one account position entry.
type positionInfo struct {
	MarketIndex uint16 `json:"marketIndex"`
	BaseAmount  string `json:"baseAmount"` // signed, base units
}

// wireOrder is the REST shape of one order placement.
type wireOrder struct {
	ClientID     string `json:"clientId"`
	MarketIndex  uint16 `json:"marketIndex"`
	Side         string `json:"side"`      // "buy", "sell"
	OrderType    string `json:"orderType"` // "limit", "market"
	Size         string `json:"size"`
	Price        string `json:"price,omitempty"`
	OracleOffset string `json:"oracleOffset,omitempty"`
	PostOnly     bool   `json:"postOnly,omitempty"`
	ReduceOnly   bool   `json:"reduceOnly,omitempty"`
}

// wireBatchOp is one operation of an atomic batch.
type wireBatchOp struct {
	Op          string      `json:"op"` // "cancelMarket", "cancelAll", "place"
	MarketIndex uint16      `json:"marketIndex,omitempty"`
	Orders      []wireOrder `json:"orders,omitempty"`
}

// wireBatch is the signed REST body of a batch submission.
type wireBatch struct {
	SubAccount string        `json:"subAccount"`
	Ops        []wireBatchOp `json:"ops"`
}

// batchResult carries the venue signature of an accepted batch.
type batchResult struct {
	apiResponse
	Data struct {
		Signature string `json:"signature"`
	} `json:"data"`
}
