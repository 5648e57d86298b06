package swap

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XRPL-Commons/gemwallet-extension-sub000/internal/xrpl"
)

// offer builds a resting order paying `pays` USD for `gets` EUR.
func offer(pays, gets string) xrpl.BookOffer {
	return xrpl.BookOffer{
		TakerPays: issued(pays, usdToken),
		TakerGets: issued(gets, eurToken),
	}
}

func TestBookAggregatorQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("empty book is a terminal state, not an error", func(t *testing.T) {
		client := &fakeClient{}
		q, err := NewBookAggregator(client, 0).Quote(ctx, usdToken, eurToken, decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.False(t, q.OffersAvailable)
		assert.True(t, q.FillPercentage.IsZero())
		assert.True(t, q.ExpectedOutput.IsZero())
	})

	t.Run("single offer fills completely", func(t *testing.T) {
		client := &fakeClient{offers: []xrpl.BookOffer{offer("200", "100")}} // rate 0.5
		q, err := NewBookAggregator(client, 0).Quote(ctx, usdToken, eurToken, decimal.NewFromInt(100))
		require.NoError(t, err)
		require.True(t, q.OffersAvailable)
		assert.Equal(t, "50", q.ExpectedOutput.String())
		assert.Equal(t, "1", q.FillPercentage.String())
		assert.True(t, q.PriceImpact.IsZero(), "single-level fill trades at the best rate")
	})

	t.Run("blended rate across levels degrades versus best offer", func(t *testing.T) {
		client := &fakeClient{offers: []xrpl.BookOffer{
			offer("100", "100"), // quality 1
			offer("150", "100"), // quality 1.5
		}}
		q, err := NewBookAggregator(client, 0).Quote(ctx, usdToken, eurToken, decimal.NewFromInt(175))
		require.NoError(t, err)
		// 100 in at rate 1 -> 100 out; 75 in at rate 1/1.5 -> 50 out.
		assert.Equal(t, "150", q.ExpectedOutput.String())
		assert.Equal(t, "1", q.FillPercentage.String())
		// blended 150/175 vs best 1 -> impact 1/7
		assert.InDelta(t, 1.0/7.0, q.PriceImpact.InexactFloat64(), 1e-9)
	})

	t.Run("offers walked best rate first regardless of response order", func(t *testing.T) {
		client := &fakeClient{offers: []xrpl.BookOffer{
			offer("150", "100"), // worse level listed first
			offer("100", "100"),
		}}
		q, err := NewBookAggregator(client, 0).Quote(ctx, usdToken, eurToken, decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.Equal(t, "100", q.ExpectedOutput.String())
		assert.True(t, q.PriceImpact.IsZero())
	})

	t.Run("funded size overrides nominal size", func(t *testing.T) {
		funded := issued("40", usdToken)
		client := &fakeClient{offers: []xrpl.BookOffer{
			{
				TakerPays:       issued("100", usdToken),
				TakerGets:       issued("100", eurToken),
				TakerPaysFunded: &funded,
			},
		}}
		q, err := NewBookAggregator(client, 0).Quote(ctx, usdToken, eurToken, decimal.NewFromInt(100))
		require.NoError(t, err)
		// Only the funded 40 can actually execute.
		assert.Equal(t, "40", q.ExpectedOutput.String())
		assert.Equal(t, "0.4", q.FillPercentage.String())
	})

	t.Run("partial fill when book is too shallow", func(t *testing.T) {
		client := &fakeClient{offers: []xrpl.BookOffer{offer("50", "50")}}
		q, err := NewBookAggregator(client, 0).Quote(ctx, usdToken, eurToken, decimal.NewFromInt(200))
		require.NoError(t, err)
		require.True(t, q.OffersAvailable)
		assert.Equal(t, "0.25", q.FillPercentage.String())
		assert.Equal(t, "50", q.ExpectedOutput.String())
		assert.Equal(t, "50", q.InputUsed.String())
	})

	t.Run("explicit quality field wins over computed ratio", func(t *testing.T) {
		o := offer("100", "100")
		o.Quality = "2" // maker asks 2 in per unit out
		client := &fakeClient{offers: []xrpl.BookOffer{o}}
		q, err := NewBookAggregator(client, 0).Quote(ctx, usdToken, eurToken, decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.Equal(t, "50", q.ExpectedOutput.String())
	})

	t.Run("unfunded offers skipped", func(t *testing.T) {
		funded := issued("0", usdToken)
		client := &fakeClient{offers: []xrpl.BookOffer{
			{
				TakerPays:       issued("100", usdToken),
				TakerGets:       issued("100", eurToken),
				TakerPaysFunded: &funded,
			},
		}}
		q, err := NewBookAggregator(client, 0).Quote(ctx, usdToken, eurToken, decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.False(t, q.OffersAvailable)
	})

	t.Run("fill percentage stays within bounds", func(t *testing.T) {
		client := &fakeClient{offers: []xrpl.BookOffer{offer("1000", "1000")}}
		for _, in := range []int64{1, 500, 1000, 5000} {
			q, err := NewBookAggregator(client, 0).Quote(ctx, usdToken, eurToken, decimal.NewFromInt(in))
			require.NoError(t, err)
			require.True(t, q.FillPercentage.GreaterThanOrEqual(decimal.Zero))
			require.True(t, q.FillPercentage.LessThanOrEqual(decimal.NewFromInt(1)))
		}
	})
}
