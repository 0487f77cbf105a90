package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EXPORT_LANGUAGE", "sv")
	t.Setenv("TRADEITEM_RATE_LIMIT_RPS", "")
	t.Setenv("HTTP_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "sv", cfg.ExportLanguage)
	require.Equal(t, 5, cfg.TradeItemRateLimitRPS)
	require.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "tradeitem.api", cfg.TradeItemScope)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("EXPORT_LANGUAGE", "en")
	t.Setenv("TRADEITEM_RATE_LIMIT_RPS", "20")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("TRADEITEM_TIMEOUT_MS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "en", cfg.ExportLanguage)
	require.Equal(t, 20, cfg.TradeItemRateLimitRPS)
	require.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 30000, cfg.TradeItemTimeoutMs)
}

func TestLoadRejectsBadLanguage(t *testing.T) {
	t.Setenv("EXPORT_LANGUAGE", "not a language!")
	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{ExportLanguage: "sv", TradeItemRateLimitRPS: 0, TradeItemTimeoutMs: 1}
	require.Error(t, cfg.Validate())

	cfg.TradeItemRateLimitRPS = 1
	require.NoError(t, cfg.Validate())
}

func TestRequire(t *testing.T) {
	var cfg Config
	require.Error(t, cfg.Require("TRADEITEM_USERNAME", "  "))
	require.NoError(t, cfg.Require("TRADEITEM_USERNAME", "user"))
}
