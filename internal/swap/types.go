// Package swap implements the swap quote and routing engine: it prices an
// exchange against the pair's AMM pool and order book concurrently, selects
// the better route, derives fees and the slippage-protected floor, keeps the
// quote fresh while the user decides, and builds the unsigned execution
// transaction for the chosen route.
package swap

import (
	"github.com/shopspring/decimal"

	"github.com/XRPL-Commons/gemwallet-extension-sub000/internal/xrpl"
)

// Route identifies the venue a quote executes against.
type Route string

const (
	RouteAMM Route = "amm"
	RouteDEX Route = "dex"
)

// State is the terminal state of one quote cycle. The two fetchers plus the
// selector form a small state machine; representing the outcome as a single
// tag keeps handling exhaustive instead of scattered boolean checks.
type State string

const (
	// StateQuoted means a full-size quote is available.
	StateQuoted State = "quoted"
	// StatePartial means only the order book responded and it cannot absorb
	// the full input; the quote covers a partial fill.
	StatePartial State = "partial"
	// StateNoRoute means both venues are structurally empty for the pair.
	// An absence of liquidity, not an error.
	StateNoRoute State = "no_route"
	// StateFetchError means both venues failed with transient errors and no
	// quote could be computed this cycle.
	StateFetchError State = "fetch_error"
)

// AMMQuote is the pool side's partial quote. PoolExists=false is a valid
// terminal state, not an error.
type AMMQuote struct {
	PoolExists     bool
	PoolReserveIn  decimal.Decimal
	PoolReserveOut decimal.Decimal
	TradingFee     int // hundred-thousandths, e.g. 500 = 0.5%
	ExpectedOutput decimal.Decimal
	PriceImpact    decimal.Decimal
}

// DEXQuote is the order book side's partial quote. FillPercentage < 1 means
// the visible book cannot absorb the full input, a partial-fill condition,
// not a failure.
type DEXQuote struct {
	OffersAvailable bool
	ExpectedOutput  decimal.Decimal
	InputUsed       decimal.Decimal
	FillPercentage  decimal.Decimal
	PriceImpact     decimal.Decimal
}

// SwapFee is the protocol fee charged on a swap, always denominated in the
// destination token.
type SwapFee struct {
	Amount decimal.Decimal
	Token  xrpl.Token
}

// SwapQuote is the externally consumed result of one quote cycle.
type SwapQuote struct {
	State             State
	SourceToken       xrpl.Token
	DestinationToken  xrpl.Token
	SourceAmount      decimal.Decimal
	DestinationAmount decimal.Decimal
	Rate              decimal.Decimal
	PriceImpact       decimal.Decimal
	Route             Route
	Fee               SwapFee
	MinimumReceived   decimal.Decimal
	AMM               *AMMQuote
	DEX               *DEXQuote
}

// Viable reports whether the quote carries an executable output.
func (q SwapQuote) Viable() bool {
	return q.State == StateQuoted || q.State == StatePartial
}

// Input is the tuple a quote cycle is computed for. Any change to it
// invalidates quotes produced for the previous tuple.
type Input struct {
	SourceToken      xrpl.Token
	DestinationToken xrpl.Token
	SourceAmount     decimal.Decimal
	Slippage         decimal.Decimal
}

// Equal reports whether two input tuples are identical. Used to discard
// completions that no longer match the current inputs.
func (in Input) Equal(other Input) bool {
	return in.SourceToken.Equal(other.SourceToken) &&
		in.DestinationToken.Equal(other.DestinationToken) &&
		in.SourceAmount.Equal(other.SourceAmount) &&
		in.Slippage.Equal(other.Slippage)
}
