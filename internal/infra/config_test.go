package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"maker_go/internal/domain"
)

const validYAML = `
app:
  name: maker
  version: 1.0.0
venue:
  ws_url: wss://stream.example.com/ws
  rest_url: https://api.example.com
  private_key: aabbccdd
markets:
  - symbol: SOL-PERP
    order_size: "0.5"
    max_position_size: "10"
    quote_mode: l2
    spread_multiplier: 1.5
    debounce_ms: 200
    oracle_change_threshold_bps: 5
logging:
  level: info
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Venue.WSURL != "wss://stream.example.com/ws" {
		t.Errorf("unexpected ws_url: %s", cfg.Venue.WSURL)
	}
	if len(cfg.Markets) != 1 {
		t.Fatalf("expected 1 market, got %d", len(cfg.Markets))
	}

	m := cfg.Markets[0]
	if m.Symbol != "SOL-PERP" {
		t.Errorf("unexpected symbol: %s", m.Symbol)
	}
	if m.OrderSize.String() != "0.5" {
		t.Errorf("unexpected order size: %s", m.OrderSize)
	}
	if m.DebounceMs != 200 || m.OracleChangeThresholdBps != 5 {
		t.Errorf("unexpected gate config: %d / %v", m.DebounceMs, m.OracleChangeThresholdBps)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	m := cfg.Markets[0]
	if m.PollIntervalMs != 100 {
		t.Errorf("expected default poll interval 100ms, got %d", m.PollIntervalMs)
	}
	if m.CooldownMs != 5000 {
		t.Errorf("expected default cooldown 5000ms, got %d", m.CooldownMs)
	}
	if m.ShutdownTimeoutMs != 10_000 {
		t.Errorf("expected default shutdown timeout 10000ms, got %d", m.ShutdownTimeoutMs)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("MAKER_PRIVATE_KEY", "eeff0011")
	t.Setenv("MAKER_WS_URL", "wss://override.example.com/ws")

	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Venue.PrivateKey != "eeff0011" {
		t.Errorf("env must override private key, got %s", cfg.Venue.PrivateKey)
	}
	if cfg.Venue.WSURL != "wss://override.example.com/ws" {
		t.Errorf("env must override ws url, got %s", cfg.Venue.WSURL)
	}
}

func TestLoadConfig_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			"bad ws url",
			`
venue:
  ws_url: ftp://x
  rest_url: https://api.example.com
  private_key: aa
markets:
  - {symbol: SOL-PERP, order_size: "0.5", max_position_size: "10", quote_mode: l2, spread_multiplier: 1.5}
`,
			"venue.ws_url",
		},
		{
			"missing key",
			`
venue:
  ws_url: wss://x/ws
  rest_url: https://api.example.com
markets:
  - {symbol: SOL-PERP, order_size: "0.5", max_position_size: "10", quote_mode: l2, spread_multiplier: 1.5}
`,
			"venue.private_key",
		},
		{
			"no markets",
			`
venue:
  ws_url: wss://x/ws
  rest_url: https://api.example.com
  private_key: aa
markets: []
`,
			"markets",
		},
		{
			"zero order size",
			`
venue:
  ws_url: wss://x/ws
  rest_url: https://api.example.com
  private_key: aa
markets:
  - {symbol: SOL-PERP, order_size: "0", max_position_size: "10", quote_mode: l2, spread_multiplier: 1.5}
`,
			"markets.SOL-PERP.order_size",
		},
		{
			"l2 without multiplier",
			`
venue:
  ws_url: wss://x/ws
  rest_url: https://api.example.com
  private_key: aa
markets:
  - {symbol: SOL-PERP, order_size: "0.5", max_position_size: "10", quote_mode: l2}
`,
			"markets.SOL-PERP.spread_multiplier",
		},
		{
			"oracle without spread",
			`
venue:
  ws_url: wss://x/ws
  rest_url: https://api.example.com
  private_key: aa
markets:
  - {symbol: SOL-PERP, order_size: "0.5", max_position_size: "10", quote_mode: oracle}
`,
			"markets.SOL-PERP.base_spread_bps",
		},
		{
			"unknown mode",
			`
venue:
  ws_url: wss://x/ws
  rest_url: https://api.example.com
  private_key: aa
markets:
  - {symbol: SOL-PERP, order_size: "0.5", max_position_size: "10", quote_mode: twap}
`,
			"markets.SOL-PERP.quote_mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			var cfgErr *domain.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
			if domain.IsRetriable(err) {
				t.Error("config errors are never retriable")
			}
		})
	}
}
