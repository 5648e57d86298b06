package swap

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/XRPL-Commons/gemwallet-extension-sub000/internal/xrpl"
)

// tradingFeeDenom converts an XRPL AMM trading fee (hundred-thousandths) to a
// fraction.
var tradingFeeDenom = decimal.NewFromInt(100000)

// AMMQuoter produces the pool side of a swap quote.
type AMMQuoter struct {
	client xrpl.QuoteClient
}

func NewAMMQuoter(client xrpl.QuoteClient) *AMMQuoter {
	return &AMMQuoter{client: client}
}

// Quote fetches the pool for the pair and computes the expected output for
// the given input amount. A missing pool yields PoolExists=false, not an
// error; any other query failure is surfaced to the caller.
func (q *AMMQuoter) Quote(ctx context.Context, from, to xrpl.Token, amount decimal.Decimal) (AMMQuote, error) {
	info, err := q.client.AMMInfo(ctx, from, to)
	if err != nil {
		if errors.Is(err, xrpl.ErrNoPool) {
			return AMMQuote{PoolExists: false}, nil
		}
		return AMMQuote{}, fmt.Errorf("amm quote: %w", err)
	}

	// Orient reserves by asset identity: pool storage order is unrelated to
	// the direction of this swap.
	var reserveIn, reserveOut decimal.Decimal
	switch {
	case info.Amount.Token().Equal(from) && info.Amount2.Token().Equal(to):
		reserveIn = info.Amount.Decimal()
		reserveOut = info.Amount2.Decimal()
	case info.Amount2.Token().Equal(from) && info.Amount.Token().Equal(to):
		reserveIn = info.Amount2.Decimal()
		reserveOut = info.Amount.Decimal()
	default:
		return AMMQuote{}, fmt.Errorf("amm quote: pool assets %s/%s do not match pair %s/%s",
			info.Amount.Token(), info.Amount2.Token(), from, to)
	}

	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return AMMQuote{PoolExists: false}, nil
	}

	expectedOutput := calculateAMMOutput(reserveIn, reserveOut, info.TradingFee, amount)
	priceImpact := ammPriceImpact(reserveIn, reserveOut, amount, expectedOutput)

	return AMMQuote{
		PoolExists:     true,
		PoolReserveIn:  reserveIn,
		PoolReserveOut: reserveOut,
		TradingFee:     info.TradingFee,
		ExpectedOutput: expectedOutput,
		PriceImpact:    priceImpact,
	}, nil
}

// calculateAMMOutput solves the constant-product invariant for output given
// input, with the trading fee taken out of the input leg before the trade:
//
//	inputAfterFee = input * (1 - fee/100000)
//	output = reserveOut * inputAfterFee / (reserveIn + inputAfterFee)
//
// The result is strictly less than reserveOut for any finite positive input.
func calculateAMMOutput(reserveIn, reserveOut decimal.Decimal, tradingFee int, input decimal.Decimal) decimal.Decimal {
	if !input.IsPositive() {
		return decimal.Zero
	}
	feeFraction := decimal.NewFromInt(int64(tradingFee)).Div(tradingFeeDenom)
	inputAfterFee := input.Mul(decimal.NewFromInt(1).Sub(feeFraction))
	return reserveOut.Mul(inputAfterFee).Div(reserveIn.Add(inputAfterFee))
}

// ammPriceImpact measures the degradation of the realized rate against the
// pre-trade marginal rate, floored at zero.
func ammPriceImpact(reserveIn, reserveOut, input, output decimal.Decimal) decimal.Decimal {
	if !input.IsPositive() {
		return decimal.Zero
	}
	marketRate := reserveOut.Div(reserveIn)
	actualRate := output.Div(input)
	impact := decimal.NewFromInt(1).Sub(actualRate.Div(marketRate))
	if impact.IsNegative() {
		return decimal.Zero
	}
	return impact
}
