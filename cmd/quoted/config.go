package main

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type pairConfig struct {
	FromCurrency string `envconfig:"PAIR_FROM_CURRENCY" default:"XRP"`
	FromIssuer   string `envconfig:"PAIR_FROM_ISSUER"`
	ToCurrency   string `envconfig:"PAIR_TO_CURRENCY" required:"true"`
	ToIssuer     string `envconfig:"PAIR_TO_ISSUER"`
	Amount       string `envconfig:"PAIR_AMOUNT" required:"true"`
	Slippage     string `envconfig:"PAIR_SLIPPAGE"`
}

type engineConfig struct {
	ProtocolFeeRate string        `envconfig:"SWAP_PROTOCOL_FEE_RATE"`
	DefaultSlippage string        `envconfig:"SWAP_DEFAULT_SLIPPAGE"`
	MinSlippage     string        `envconfig:"SWAP_MIN_SLIPPAGE"`
	MaxSlippage     string        `envconfig:"SWAP_MAX_SLIPPAGE"`
	ImpactWarn      string        `envconfig:"SWAP_IMPACT_WARN"`
	ImpactBlock     string        `envconfig:"SWAP_IMPACT_BLOCK"`
	RefreshInterval time.Duration `envconfig:"SWAP_REFRESH_INTERVAL"`
	BookDepth       int           `envconfig:"SWAP_BOOK_DEPTH"`
}

type config struct {
	RPCURL      string `envconfig:"XRPL_RPC_URL" default:"https://s1.ripple.com:51234"`
	MetricsPort string `envconfig:"METRICS_PORT" default:"8877"`
	Pair        pairConfig
	Engine      engineConfig
}

func newConfig() (config, error) {
	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}
