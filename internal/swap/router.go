package swap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/XRPL-Commons/gemwallet-extension-sub000/internal/metrics"
	"github.com/XRPL-Commons/gemwallet-extension-sub000/internal/xrpl"
)

// fullFillThreshold is the minimum order-book fill required to treat the
// book's expected output as executable at full size.
var fullFillThreshold = decimal.NewFromFloat(0.99)

// ErrInvalidAmount is returned for a zero or negative input amount.
var ErrInvalidAmount = errors.New("swap: amount must be positive")

// FetchError is the pipeline-level failure raised only when both quote
// sources fail transiently in the same cycle. A single-source failure
// degrades the quote instead of suppressing the other source.
type FetchError struct {
	AMMErr error
	DEXErr error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("swap: all quote sources failed: amm: %v; dex: %v", e.AMMErr, e.DEXErr)
}

// Service runs one quote cycle: fan out to both venues, select a route,
// compose the final quote.
type Service struct {
	amm    *AMMQuoter
	book   *BookAggregator
	cfg    Config
	logger *logrus.Logger
}

func NewService(client xrpl.QuoteClient, cfg Config, logger *logrus.Logger) *Service {
	return &Service{
		amm:    NewAMMQuoter(client),
		book:   NewBookAggregator(client, cfg.BookDepth),
		cfg:    cfg,
		logger: logger,
	}
}

// Config returns the engine configuration the service was built with.
func (s *Service) Config() Config {
	return s.cfg
}

type ammResult struct {
	quote AMMQuote
	err   error
}

type dexResult struct {
	quote DEXQuote
	err   error
}

// Quote runs the full pipeline for the given input tuple. Identical source
// and destination tokens short-circuit to a no-route quote without issuing
// any query. Both sources failing transiently returns a *FetchError alongside
// a StateFetchError quote.
func (s *Service) Quote(ctx context.Context, in Input) (SwapQuote, error) {
	started := time.Now()

	if !in.SourceAmount.IsPositive() {
		return SwapQuote{}, ErrInvalidAmount
	}
	if in.SourceToken.Equal(in.DestinationToken) {
		quote := SwapQuote{
			State:            StateNoRoute,
			SourceToken:      in.SourceToken,
			DestinationToken: in.DestinationToken,
			SourceAmount:     in.SourceAmount,
		}
		metrics.ObserveCycle(string(StateNoRoute), time.Since(started).Seconds())
		return quote, nil
	}

	// The two venue queries are independent; neither waits on the other.
	ammCh := make(chan ammResult, 1)
	dexCh := make(chan dexResult, 1)
	go func() {
		q, err := s.amm.Quote(ctx, in.SourceToken, in.DestinationToken, in.SourceAmount)
		ammCh <- ammResult{quote: q, err: err}
	}()
	go func() {
		q, err := s.book.Quote(ctx, in.SourceToken, in.DestinationToken, in.SourceAmount)
		dexCh <- dexResult{quote: q, err: err}
	}()
	amm := <-ammCh
	dex := <-dexCh

	if amm.err != nil {
		metrics.ObserveSourceError("amm")
		s.logger.WithError(amm.err).Warn("amm quote source failed")
	}
	if dex.err != nil {
		metrics.ObserveSourceError("dex")
		s.logger.WithError(dex.err).Warn("dex quote source failed")
	}
	if amm.err != nil && dex.err != nil {
		metrics.ObserveCycle(string(StateFetchError), time.Since(started).Seconds())
		quote := SwapQuote{
			State:            StateFetchError,
			SourceToken:      in.SourceToken,
			DestinationToken: in.DestinationToken,
			SourceAmount:     in.SourceAmount,
		}
		return quote, &FetchError{AMMErr: amm.err, DEXErr: dex.err}
	}

	quote := s.compose(in, amm, dex)
	metrics.ObserveCycle(string(quote.State), time.Since(started).Seconds())
	if quote.Viable() {
		metrics.ObserveRoute(string(quote.Route))
	}
	return quote, nil
}

// compose picks the winning route and derives the final quote figures.
func (s *Service) compose(in Input, amm ammResult, dex dexResult) SwapQuote {
	quote := SwapQuote{
		SourceToken:      in.SourceToken,
		DestinationToken: in.DestinationToken,
		SourceAmount:     in.SourceAmount,
	}
	if amm.err == nil {
		q := amm.quote
		quote.AMM = &q
	}
	if dex.err == nil {
		q := dex.quote
		quote.DEX = &q
	}

	// Candidate outputs: the AMM figure counts only with a live pool; the
	// book figure counts only when the visible book absorbs (nearly) the
	// whole input, otherwise it is not executable at full size.
	ammOut := decimal.Zero
	if quote.AMM != nil && quote.AMM.PoolExists {
		ammOut = quote.AMM.ExpectedOutput
	}
	dexOut := decimal.Zero
	if quote.DEX != nil && quote.DEX.OffersAvailable &&
		quote.DEX.FillPercentage.GreaterThanOrEqual(fullFillThreshold) {
		dexOut = quote.DEX.ExpectedOutput
	}

	var (
		state          State
		route          Route
		expectedOutput decimal.Decimal
		priceImpact    decimal.Decimal
	)
	switch {
	// Ties resolve to AMM so repeated runs with unchanged inputs never flap.
	case ammOut.IsPositive() && ammOut.GreaterThanOrEqual(dexOut):
		state, route = StateQuoted, RouteAMM
		expectedOutput = ammOut
		priceImpact = quote.AMM.PriceImpact
	case dexOut.IsPositive():
		state, route = StateQuoted, RouteDEX
		expectedOutput = dexOut
		priceImpact = quote.DEX.PriceImpact
	case quote.DEX != nil && quote.DEX.OffersAvailable && quote.DEX.FillPercentage.IsPositive():
		// Neither venue can fill the full size; surface the book's partial
		// fill rather than failing outright.
		state, route = StatePartial, RouteDEX
		expectedOutput = quote.DEX.ExpectedOutput
		priceImpact = quote.DEX.PriceImpact
	default:
		quote.State = StateNoRoute
		return quote
	}

	slippage := s.cfg.ClampSlippage(in.Slippage)
	fee, outputAfterFee, minimumReceived := applyFees(expectedOutput, s.cfg.ProtocolFeeRate, slippage, in.DestinationToken)

	quote.State = state
	quote.Route = route
	quote.DestinationAmount = outputAfterFee
	quote.Rate = outputAfterFee.Div(in.SourceAmount)
	quote.PriceImpact = priceImpact
	quote.Fee = fee
	quote.MinimumReceived = minimumReceived

	s.logger.WithFields(logrus.Fields{
		"route":    route,
		"state":    state,
		"pair":     in.SourceToken.String() + "/" + in.DestinationToken.String(),
		"amount":   in.SourceAmount,
		"output":   outputAfterFee,
		"impact":   priceImpact,
		"min_recv": minimumReceived,
	}).Debug("composed swap quote")

	return quote
}
