package swap

import (
	"github.com/shopspring/decimal"

	"github.com/XRPL-Commons/gemwallet-extension-sub000/internal/xrpl"
)

var one = decimal.NewFromInt(1)

// applyFees derives the protocol fee and the slippage-protected floor from a
// winning output. Holds minimumReceived <= outputAfterFee <= expectedOutput
// for any feeRate and slippage in [0, 1].
func applyFees(expectedOutput, feeRate, slippage decimal.Decimal, destination xrpl.Token) (fee SwapFee, outputAfterFee, minimumReceived decimal.Decimal) {
	fee = SwapFee{
		Amount: expectedOutput.Mul(feeRate),
		Token:  destination,
	}
	outputAfterFee = expectedOutput.Mul(one.Sub(feeRate))
	minimumReceived = outputAfterFee.Mul(one.Sub(slippage))
	return fee, outputAfterFee, minimumReceived
}
