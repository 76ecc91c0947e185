package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"maker_go/internal/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration. Immutable after
// LoadConfig; secrets may be overridden through environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Venue struct {
		WSURL        string `yaml:"ws_url"`
		RestURL      string `yaml:"rest_url"`
		PrivateKey   string `yaml:"private_key"`
		Authority    string `yaml:"authority"` // optional delegated signing authority
		SubaccountID uint16 `yaml:"subaccount_id"`
	} `yaml:"venue"`

	Markets []MarketConfig `yaml:"markets"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// MarketConfig is the per-market quoting configuration.
type MarketConfig struct {
	Symbol          string          `yaml:"symbol"`
	OrderSize       decimal.Decimal `yaml:"order_size"`        // base units per side
	MaxPositionSize decimal.Decimal `yaml:"max_position_size"` // base units before full skew

	QuoteMode        string  `yaml:"quote_mode"` // "l2" or "oracle"
	SpreadMultiplier float64 `yaml:"spread_multiplier"`
	BaseSpreadBps    float64 `yaml:"base_spread_bps"`
	MaxSkewBps       float64 `yaml:"max_skew_bps"`

	DebounceMs               int64   `yaml:"debounce_ms"`
	OracleChangeThresholdBps float64 `yaml:"oracle_change_threshold_bps"`
	PollIntervalMs           int64   `yaml:"poll_interval_ms"`
	CooldownMs               int64   `yaml:"cooldown_ms"`
	ShutdownTimeoutMs        int64   `yaml:"shutdown_timeout_ms"`
}

// LoadConfig reads and parses the configuration file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// overrideWithEnv replaces secret values with environment variables when set.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("MAKER_PRIVATE_KEY"); key != "" {
		cfg.Venue.PrivateKey = key
	}
	if authority := os.Getenv("MAKER_AUTHORITY"); authority != "" {
		cfg.Venue.Authority = authority
	}
	if url := os.Getenv("MAKER_WS_URL"); url != "" {
		cfg.Venue.WSURL = url
	}
	if url := os.Getenv("MAKER_REST_URL"); url != "" {
		cfg.Venue.RestURL = url
	}
}

func applyDefaults(cfg *Config) {
	for i := range cfg.Markets {
		m := &cfg.Markets[i]
		if m.QuoteMode == "" {
			m.QuoteMode = "l2"
		}
		if m.PollIntervalMs == 0 {
			m.PollIntervalMs = 100
		}
		if m.CooldownMs == 0 {
			m.CooldownMs = 5000
		}
		if m.ShutdownTimeoutMs == 0 {
			m.ShutdownTimeoutMs = 10_000
		}
	}
}

// Validate checks configuration validity. Violations are fatal at startup.
func (c *Config) Validate() error {
	if !hasPrefix(c.Venue.WSURL, "ws://") && !hasPrefix(c.Venue.WSURL, "wss://") {
		return &domain.ConfigError{Field: "venue.ws_url", Err: fmt.Errorf("invalid websocket URL: %q", c.Venue.WSURL)}
	}
	if !hasPrefix(c.Venue.RestURL, "http://") && !hasPrefix(c.Venue.RestURL, "https://") {
		return &domain.ConfigError{Field: "venue.rest_url", Err: fmt.Errorf("invalid REST URL: %q", c.Venue.RestURL)}
	}
	if c.Venue.PrivateKey == "" {
		return &domain.ConfigError{Field: "venue.private_key", Err: errors.New("missing signing key")}
	}
	if len(c.Markets) == 0 {
		return &domain.ConfigError{Field: "markets", Err: errors.New("at least one market is required")}
	}

	for _, m := range c.Markets {
		field := "markets." + m.Symbol
		if m.Symbol == "" {
			return &domain.ConfigError{Field: "markets.symbol", Err: errors.New("missing symbol")}
		}
		if !m.OrderSize.IsPositive() {
			return &domain.ConfigError{Field: field + ".order_size", Err: errors.New("must be positive")}
		}
		if !m.MaxPositionSize.IsPositive() {
			return &domain.ConfigError{Field: field + ".max_position_size", Err: errors.New("must be positive")}
		}
		if m.DebounceMs < 0 {
			return &domain.ConfigError{Field: field + ".debounce_ms", Err: errors.New("must not be negative")}
		}
		if m.OracleChangeThresholdBps < 0 {
			return &domain.ConfigError{Field: field + ".oracle_change_threshold_bps", Err: errors.New("must not be negative")}
		}

		switch strings.ToLower(m.QuoteMode) {
		case "l2":
			if m.SpreadMultiplier <= 0 {
				return &domain.ConfigError{Field: field + ".spread_multiplier", Err: errors.New("l2 mode needs a positive spread multiplier")}
			}
		case "oracle":
			if m.BaseSpreadBps <= 0 {
				return &domain.ConfigError{Field: field + ".base_spread_bps", Err: errors.New("oracle mode needs a positive base spread")}
			}
			if m.MaxSkewBps < 0 {
				return &domain.ConfigError{Field: field + ".max_skew_bps", Err: errors.New("must not be negative")}
			}
		default:
			return &domain.ConfigError{Field: field + ".quote_mode", Err: fmt.Errorf("unknown mode %q", m.QuoteMode)}
		}
	}

	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}
