package swap

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrImpactTooHigh is the policy gate raised when a quote's price impact
// reaches the configured block threshold.
var ErrImpactTooHigh = errors.New("swap: price impact exceeds configured block threshold")

// Config carries the externally supplied pricing knobs. Nothing in here is
// derived by the engine.
type Config struct {
	// ProtocolFeeRate is the fraction of the output charged as protocol fee.
	ProtocolFeeRate decimal.Decimal
	// DefaultSlippage is used when the caller does not supply a tolerance.
	DefaultSlippage decimal.Decimal
	MinSlippage     decimal.Decimal
	MaxSlippage     decimal.Decimal
	// RefreshInterval is how often the refresher re-runs the pipeline.
	RefreshInterval time.Duration
	// ImpactWarn and ImpactBlock are the price-impact thresholds for the
	// warn / block classifications. Blocking is a submission policy, not a
	// data error.
	ImpactWarn  decimal.Decimal
	ImpactBlock decimal.Decimal
	// BookDepth is the offer limit per book_offers query.
	BookDepth int
}

// DefaultConfig returns the engine defaults: 0.8% protocol fee, 1% slippage
// (bounded to [0.1%, 50%]), 15s refresh, 3% impact warning, 15% impact block.
func DefaultConfig() Config {
	return Config{
		ProtocolFeeRate: decimal.NewFromFloat(0.008),
		DefaultSlippage: decimal.NewFromFloat(0.01),
		MinSlippage:     decimal.NewFromFloat(0.001),
		MaxSlippage:     decimal.NewFromFloat(0.5),
		RefreshInterval: 15 * time.Second,
		ImpactWarn:      decimal.NewFromFloat(0.03),
		ImpactBlock:     decimal.NewFromFloat(0.15),
		BookDepth:       defaultBookDepth,
	}
}

// Validate checks internal consistency of the configuration.
func (c Config) Validate() error {
	if c.ProtocolFeeRate.IsNegative() || c.ProtocolFeeRate.GreaterThanOrEqual(one) {
		return fmt.Errorf("swap: protocol fee rate %s out of [0, 1)", c.ProtocolFeeRate)
	}
	if c.MinSlippage.IsNegative() || c.MaxSlippage.GreaterThan(one) {
		return fmt.Errorf("swap: slippage bounds [%s, %s] out of [0, 1]", c.MinSlippage, c.MaxSlippage)
	}
	if c.MinSlippage.GreaterThan(c.MaxSlippage) {
		return fmt.Errorf("swap: min slippage %s above max %s", c.MinSlippage, c.MaxSlippage)
	}
	if c.DefaultSlippage.LessThan(c.MinSlippage) || c.DefaultSlippage.GreaterThan(c.MaxSlippage) {
		return fmt.Errorf("swap: default slippage %s outside [%s, %s]", c.DefaultSlippage, c.MinSlippage, c.MaxSlippage)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("swap: refresh interval must be positive")
	}
	if c.ImpactWarn.GreaterThan(c.ImpactBlock) {
		return fmt.Errorf("swap: impact warn threshold %s above block threshold %s", c.ImpactWarn, c.ImpactBlock)
	}
	return nil
}

// ClampSlippage bounds a caller-supplied tolerance to the configured range,
// substituting the default for a zero value.
func (c Config) ClampSlippage(slippage decimal.Decimal) decimal.Decimal {
	if slippage.IsZero() {
		return c.DefaultSlippage
	}
	if slippage.LessThan(c.MinSlippage) {
		return c.MinSlippage
	}
	if slippage.GreaterThan(c.MaxSlippage) {
		return c.MaxSlippage
	}
	return slippage
}

// ImpactLevel classifies a quote's price impact against the configured
// thresholds.
type ImpactLevel string

const (
	ImpactOK ImpactLevel = "ok"
	// ImpactWarned means the user should be warned before proceeding.
	ImpactWarned ImpactLevel = "warn"
	// ImpactBlocked means submission must be refused. Only a configuration
	// change may lift the block; it is never bypassed silently.
	ImpactBlocked ImpactLevel = "block"
)

// CheckImpact classifies the given price impact.
func (c Config) CheckImpact(priceImpact decimal.Decimal) ImpactLevel {
	if priceImpact.GreaterThanOrEqual(c.ImpactBlock) {
		return ImpactBlocked
	}
	if priceImpact.GreaterThanOrEqual(c.ImpactWarn) {
		return ImpactWarned
	}
	return ImpactOK
}

// AllowSubmission is the pre-build policy gate: it refuses quotes with no
// executable route and quotes whose price impact is blocked. The block is
// lifted only by changing the configured thresholds, never bypassed.
func (c Config) AllowSubmission(quote SwapQuote) error {
	if !quote.Viable() {
		return ErrQuoteNotViable
	}
	if c.CheckImpact(quote.PriceImpact) == ImpactBlocked {
		return ErrImpactTooHigh
	}
	return nil
}
