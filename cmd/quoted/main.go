package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/XRPL-Commons/gemwallet-extension-sub000/internal/metrics"
	"github.com/XRPL-Commons/gemwallet-extension-sub000/internal/swap"
	"github.com/XRPL-Commons/gemwallet-extension-sub000/internal/xrpl"
)

func main() {
	ctx := context.Background()

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.DebugLevel)

	cfg, err := newConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	engineCfg, err := engineConfigFromEnv(cfg.Engine)
	if err != nil {
		logger.Fatalf("invalid engine config: %v", err)
	}

	input, err := inputFromConfig(cfg.Pair)
	if err != nil {
		logger.Fatalf("invalid pair config: %v", err)
	}

	metrics.Register(logger)
	metricsServer := metrics.StartServer(cfg.MetricsPort, logger)
	defer func() {
		if er := metricsServer.Shutdown(ctx); er != nil {
			logger.Errorf("failed to stop metrics server: %v", er)
		}
	}()

	client := xrpl.NewClient(cfg.RPCURL)
	service := swap.NewService(client, engineCfg, logger)
	refresher := swap.NewRefresher(service, logger)

	refresher.Start(ctx, input)
	defer refresher.Stop()

	logger.WithFields(logrus.Fields{
		"pair":   input.SourceToken.String() + "/" + input.DestinationToken.String(),
		"amount": input.SourceAmount,
	}).Info("quote engine started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			logger.Info("shutting down")
			return
		case update := <-refresher.Updates():
			logUpdate(logger, update)
		}
	}
}

// engineConfigFromEnv lays the env-supplied knobs over the engine defaults
// and validates the result.
func engineConfigFromEnv(env engineConfig) (swap.Config, error) {
	cfg := swap.DefaultConfig()
	for _, knob := range []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"protocol fee rate", env.ProtocolFeeRate, &cfg.ProtocolFeeRate},
		{"default slippage", env.DefaultSlippage, &cfg.DefaultSlippage},
		{"min slippage", env.MinSlippage, &cfg.MinSlippage},
		{"max slippage", env.MaxSlippage, &cfg.MaxSlippage},
		{"impact warn threshold", env.ImpactWarn, &cfg.ImpactWarn},
		{"impact block threshold", env.ImpactBlock, &cfg.ImpactBlock},
	} {
		if knob.value == "" {
			continue
		}
		rate, err := decimal.NewFromString(knob.value)
		if err != nil {
			return swap.Config{}, fmt.Errorf("invalid %s: %w", knob.name, err)
		}
		*knob.dst = rate
	}
	if env.RefreshInterval > 0 {
		cfg.RefreshInterval = env.RefreshInterval
	}
	if env.BookDepth > 0 {
		cfg.BookDepth = env.BookDepth
	}
	if err := cfg.Validate(); err != nil {
		return swap.Config{}, err
	}
	return cfg, nil
}

func inputFromConfig(pair pairConfig) (swap.Input, error) {
	amount, err := decimal.NewFromString(pair.Amount)
	if err != nil {
		return swap.Input{}, err
	}

	slippage := decimal.Zero
	if pair.Slippage != "" {
		slippage, err = decimal.NewFromString(pair.Slippage)
		if err != nil {
			return swap.Input{}, err
		}
	}

	return swap.Input{
		SourceToken:      xrpl.Token{Currency: pair.FromCurrency, Issuer: pair.FromIssuer},
		DestinationToken: xrpl.Token{Currency: pair.ToCurrency, Issuer: pair.ToIssuer},
		SourceAmount:     amount,
		Slippage:         slippage,
	}, nil
}

func logUpdate(logger *logrus.Logger, update swap.Update) {
	if update.Err != nil {
		logger.WithError(update.Err).Error("quote cycle failed")
		return
	}

	quote := update.Quote
	switch quote.State {
	case swap.StateNoRoute:
		logger.Info("no market available for pair")
	case swap.StateFetchError:
		logger.Warn("temporarily unable to fetch quote")
	default:
		logger.WithFields(logrus.Fields{
			"state":        quote.State,
			"route":        quote.Route,
			"receive":      quote.DestinationAmount,
			"rate":         quote.Rate,
			"price_impact": quote.PriceImpact,
			"fee":          quote.Fee.Amount,
			"min_received": quote.MinimumReceived,
		}).Info("quote")
	}
}
