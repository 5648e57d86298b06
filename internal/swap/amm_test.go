package swap

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XRPL-Commons/gemwallet-extension-sub000/internal/xrpl"
)

// fakeClient is a scriptable xrpl.QuoteClient shared by the pipeline tests.
// Call counters are atomic because the router queries both venues from
// separate goroutines.
type fakeClient struct {
	ammResult xrpl.AMMInfoResult
	ammErr    error
	offers    []xrpl.BookOffer
	offersErr error
	ammCalls  atomic.Int64
	bookCalls atomic.Int64
}

func (f *fakeClient) AMMInfo(_ context.Context, _, _ xrpl.Token) (xrpl.AMMInfoResult, error) {
	f.ammCalls.Add(1)
	if f.ammErr != nil {
		return xrpl.AMMInfoResult{}, f.ammErr
	}
	return f.ammResult, nil
}

func (f *fakeClient) BookOffers(_ context.Context, _, _ xrpl.Token, _ int) ([]xrpl.BookOffer, error) {
	f.bookCalls.Add(1)
	if f.offersErr != nil {
		return nil, f.offersErr
	}
	return f.offers, nil
}

var (
	usdToken = xrpl.Token{Currency: "USD", Issuer: "rvYAfWj5gh67oV6fW32ZzP3Aw4Eubs59B"}
	eurToken = xrpl.Token{Currency: "EUR", Issuer: "rvYAfWj5gh67oV6fW32ZzP3Aw4Eubs59B"}
)

func issued(value string, token xrpl.Token) xrpl.Amount {
	return xrpl.NewIssuedAmount(decimal.RequireFromString(value), token)
}

func TestCalculateAMMOutput(t *testing.T) {
	reserveIn := decimal.NewFromInt(1000000)
	reserveOut := decimal.NewFromInt(500000)

	t.Run("reference pool figures", func(t *testing.T) {
		// 1,000 in against (1,000,000 / 500,000) at 0.5% trading fee:
		// 500000 * 995 / (1000000 + 995)
		out := calculateAMMOutput(reserveIn, reserveOut, 500, decimal.NewFromInt(1000))
		assert.InDelta(t, 497.0055, out.InexactFloat64(), 0.001)

		impact := ammPriceImpact(reserveIn, reserveOut, decimal.NewFromInt(1000), out)
		assert.InDelta(t, 0.00599, impact.InexactFloat64(), 0.0001)
	})

	t.Run("monotonically increasing in input", func(t *testing.T) {
		prev := decimal.Zero
		for _, in := range []int64{1, 10, 100, 1000, 10000, 100000} {
			out := calculateAMMOutput(reserveIn, reserveOut, 500, decimal.NewFromInt(in))
			require.True(t, out.GreaterThan(prev), "output must grow with input (in=%d)", in)
			prev = out
		}
	})

	t.Run("never drains the pool", func(t *testing.T) {
		for _, in := range []int64{1, 1000000, 1000000000000} {
			out := calculateAMMOutput(reserveIn, reserveOut, 0, decimal.NewFromInt(in))
			require.True(t, out.LessThan(reserveOut), "output must stay below reserveOut (in=%d)", in)
		}
	})

	t.Run("impact grows with trade size", func(t *testing.T) {
		prev := decimal.Zero
		for _, in := range []int64{10, 1000, 100000} {
			amount := decimal.NewFromInt(in)
			out := calculateAMMOutput(reserveIn, reserveOut, 500, amount)
			impact := ammPriceImpact(reserveIn, reserveOut, amount, out)
			require.True(t, impact.GreaterThan(prev), "impact must grow with size (in=%d)", in)
			prev = impact
		}
	})

	t.Run("tiny trade has near-zero impact", func(t *testing.T) {
		amount := decimal.NewFromFloat(0.000001)
		out := calculateAMMOutput(reserveIn, reserveOut, 0, amount)
		impact := ammPriceImpact(reserveIn, reserveOut, amount, out)
		assert.True(t, impact.LessThan(decimal.NewFromFloat(0.0000001)))
	})

	t.Run("zero input yields zero output", func(t *testing.T) {
		out := calculateAMMOutput(reserveIn, reserveOut, 500, decimal.Zero)
		assert.True(t, out.IsZero())
	})
}

func TestAMMQuoterQuote(t *testing.T) {
	amount := decimal.NewFromInt(1000)

	t.Run("no pool is a terminal state, not an error", func(t *testing.T) {
		client := &fakeClient{ammErr: xrpl.ErrNoPool}
		q, err := NewAMMQuoter(client).Quote(context.Background(), usdToken, eurToken, amount)
		require.NoError(t, err)
		assert.False(t, q.PoolExists)
		assert.True(t, q.ExpectedOutput.IsZero())
		assert.True(t, q.PriceImpact.IsZero())
	})

	t.Run("reserves oriented by asset identity", func(t *testing.T) {
		// Pool stores EUR first; the quote is USD -> EUR, so the USD
		// balance must still be the in-reserve.
		client := &fakeClient{ammResult: xrpl.AMMInfoResult{
			Amount:     issued("500000", eurToken),
			Amount2:    issued("1000000", usdToken),
			TradingFee: 500,
		}}
		q, err := NewAMMQuoter(client).Quote(context.Background(), usdToken, eurToken, amount)
		require.NoError(t, err)
		require.True(t, q.PoolExists)
		assert.Equal(t, "1000000", q.PoolReserveIn.String())
		assert.Equal(t, "500000", q.PoolReserveOut.String())
		assert.InDelta(t, 497.0055, q.ExpectedOutput.InexactFloat64(), 0.001)
	})

	t.Run("mismatched pool assets rejected", func(t *testing.T) {
		client := &fakeClient{ammResult: xrpl.AMMInfoResult{
			Amount:     issued("500000", eurToken),
			Amount2:    issued("1000000", eurToken),
			TradingFee: 500,
		}}
		_, err := NewAMMQuoter(client).Quote(context.Background(), usdToken, eurToken, amount)
		require.Error(t, err)
	})

	t.Run("transient failure surfaces", func(t *testing.T) {
		client := &fakeClient{ammErr: &xrpl.QueryError{Command: "amm_info", Code: "tooBusy"}}
		_, err := NewAMMQuoter(client).Quote(context.Background(), usdToken, eurToken, amount)
		require.Error(t, err)
	})
}
