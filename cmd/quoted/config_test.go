package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineConfigFromEnv(t *testing.T) {
	t.Run("defaults survive empty env", func(t *testing.T) {
		cfg, err := engineConfigFromEnv(engineConfig{})
		require.NoError(t, err)
		assert.Equal(t, "0.008", cfg.ProtocolFeeRate.String())
		assert.Equal(t, 15*time.Second, cfg.RefreshInterval)
	})

	t.Run("all knobs override", func(t *testing.T) {
		cfg, err := engineConfigFromEnv(engineConfig{
			ProtocolFeeRate: "0.005",
			DefaultSlippage: "0.02",
			MinSlippage:     "0.005",
			MaxSlippage:     "0.3",
			ImpactWarn:      "0.05",
			ImpactBlock:     "0.2",
			RefreshInterval: 30 * time.Second,
			BookDepth:       50,
		})
		require.NoError(t, err)
		assert.True(t, cfg.ProtocolFeeRate.Equal(decimal.RequireFromString("0.005")))
		assert.True(t, cfg.DefaultSlippage.Equal(decimal.RequireFromString("0.02")))
		assert.True(t, cfg.MinSlippage.Equal(decimal.RequireFromString("0.005")))
		assert.True(t, cfg.MaxSlippage.Equal(decimal.RequireFromString("0.3")))
		assert.True(t, cfg.ImpactWarn.Equal(decimal.RequireFromString("0.05")))
		assert.True(t, cfg.ImpactBlock.Equal(decimal.RequireFromString("0.2")))
		assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
		assert.Equal(t, 50, cfg.BookDepth)
	})

	t.Run("unparseable knob rejected", func(t *testing.T) {
		_, err := engineConfigFromEnv(engineConfig{ImpactWarn: "lots"})
		require.Error(t, err)
	})

	t.Run("inconsistent thresholds rejected", func(t *testing.T) {
		_, err := engineConfigFromEnv(engineConfig{ImpactWarn: "0.5", ImpactBlock: "0.1"})
		require.Error(t, err)
	})
}
