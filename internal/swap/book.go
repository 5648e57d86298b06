package swap

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/XRPL-Commons/gemwallet-extension-sub000/internal/xrpl"
)

// defaultBookDepth is how many offers to request per book query. Enough for
// retail-size inputs; deeper books only matter past the partial-fill fallback.
const defaultBookDepth = 20

// BookAggregator produces the order book side of a swap quote by walking
// resting offers best-rate-first.
type BookAggregator struct {
	client xrpl.QuoteClient
	depth  int
}

func NewBookAggregator(client xrpl.QuoteClient, depth int) *BookAggregator {
	if depth <= 0 {
		depth = defaultBookDepth
	}
	return &BookAggregator{client: client, depth: depth}
}

// bookLevel is one offer reduced to the figures the walk needs: the rate the
// maker asks (pay per unit received) and the funded input capacity.
type bookLevel struct {
	quality  decimal.Decimal // taker pays per unit received; lower is better
	capacity decimal.Decimal // funded input the offer can absorb
}

// Quote fetches the book for the directed pair and aggregates offers until
// the input amount is exhausted or offers run out. An empty book yields
// OffersAvailable=false, not an error.
func (b *BookAggregator) Quote(ctx context.Context, from, to xrpl.Token, amount decimal.Decimal) (DEXQuote, error) {
	offers, err := b.client.BookOffers(ctx, from, to, b.depth)
	if err != nil {
		return DEXQuote{}, fmt.Errorf("book quote: %w", err)
	}

	levels := makeLevels(offers)
	if len(levels) == 0 {
		return DEXQuote{OffersAvailable: false}, nil
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].quality.LessThan(levels[j].quality)
	})

	totalOutput := decimal.Zero
	inputRemaining := amount
	for _, lvl := range levels {
		if !inputRemaining.IsPositive() {
			break
		}
		consumed := lvl.capacity
		if consumed.GreaterThan(inputRemaining) {
			consumed = inputRemaining
		}
		totalOutput = totalOutput.Add(consumed.Div(lvl.quality))
		inputRemaining = inputRemaining.Sub(consumed)
	}

	inputUsed := amount.Sub(inputRemaining)
	fill := decimal.Zero
	if amount.IsPositive() {
		fill = inputUsed.Div(amount)
	}

	return DEXQuote{
		OffersAvailable: true,
		ExpectedOutput:  totalOutput,
		InputUsed:       inputUsed,
		FillPercentage:  fill,
		PriceImpact:     bookPriceImpact(levels[0].quality, inputUsed, totalOutput),
	}, nil
}

// makeLevels projects offers onto walkable levels, dropping ones with no
// funded capacity. Funded size overrides nominal size when present so an
// offer the maker cannot honor is never credited.
func makeLevels(offers []xrpl.BookOffer) []bookLevel {
	levels := make([]bookLevel, 0, len(offers))
	for _, offer := range offers {
		pays := offer.TakerPays.Decimal()
		gets := offer.TakerGets.Decimal()
		if !pays.IsPositive() || !gets.IsPositive() {
			continue
		}

		quality := pays.Div(gets)
		if offer.Quality != "" {
			if q, err := decimal.NewFromString(offer.Quality); err == nil && q.IsPositive() {
				quality = q
			}
		}

		capacity := pays
		if offer.TakerPaysFunded != nil {
			capacity = offer.TakerPaysFunded.Decimal()
		}
		if !capacity.IsPositive() {
			continue
		}

		levels = append(levels, bookLevel{quality: quality, capacity: capacity})
	}
	return levels
}

// bookPriceImpact is the degradation of the realized blended rate versus the
// best single offer's rate, floored at zero.
func bookPriceImpact(bestQuality, inputUsed, output decimal.Decimal) decimal.Decimal {
	if !inputUsed.IsPositive() || !output.IsPositive() {
		return decimal.Zero
	}
	bestRate := decimal.NewFromInt(1).Div(bestQuality)
	blendedRate := output.Div(inputUsed)
	impact := decimal.NewFromInt(1).Sub(blendedRate.Div(bestRate))
	if impact.IsNegative() {
		return decimal.Zero
	}
	return impact
}
