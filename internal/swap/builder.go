package swap

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	xrpgo "github.com/xyield/xrpl-go/binary-codec"

	"github.com/XRPL-Commons/gemwallet-extension-sub000/internal/xrpl"
)

// Payment and OfferCreate flag bits, per the ledger's transaction format.
const (
	tfPartialPayment    uint32 = 0x00020000
	tfImmediateOrCancel uint32 = 0x00040000
)

// lastLedgerBuffer bounds how long a built transaction stays submittable
// (~5 minutes of ledgers).
const lastLedgerBuffer = 100

// ErrBatchUnavailable is returned by the batch builder while the network
// amendment it depends on is disabled.
var ErrBatchUnavailable = errors.New("swap: batch transactions unavailable")

// ErrQuoteNotViable is returned when a builder is handed a quote without an
// executable output.
var ErrQuoteNotViable = errors.New("swap: quote has no executable route")

// Account identifies the acting account for a built transaction.
type Account struct {
	Address string
	// PubKey is the hex public key placed in SigningPubKey; signing itself
	// happens elsewhere.
	PubKey string
}

// Builder turns accepted quotes into unsigned, canonically encoded ledger
// transactions. It never signs or submits.
type Builder struct {
	client xrpl.AccountInfoProvider
}

func NewBuilder(client xrpl.AccountInfoProvider) *Builder {
	return &Builder{client: client}
}

// txContext is the live network data every submittable transaction needs.
type txContext struct {
	sequence      uint32
	feeDrops      uint64
	lastLedgerSeq uint32
}

func (b *Builder) fetchTxContext(ctx context.Context, address string) (txContext, error) {
	sequence, err := b.client.AccountSequence(ctx, address)
	if err != nil {
		return txContext{}, fmt.Errorf("swap: failed to get account sequence: %w", err)
	}
	currentLedger, err := b.client.LedgerIndex(ctx)
	if err != nil {
		return txContext{}, fmt.Errorf("swap: failed to get current ledger: %w", err)
	}
	baseFee, err := b.client.BaseFee(ctx)
	if err != nil {
		return txContext{}, fmt.Errorf("swap: failed to get base fee: %w", err)
	}
	return txContext{
		sequence:      sequence,
		feeDrops:      baseFee,
		lastLedgerSeq: currentLedger + lastLedgerBuffer,
	}, nil
}

// BuildPoolPayment builds the AMM execution path: a self-addressed Payment
// asking for the quoted destination amount, capped at the source amount via
// SendMax, floored at MinimumReceived via DeliverMin, with the
// partial-payment flag so the pool may deliver less than requested but never
// less than the floor.
func (b *Builder) BuildPoolPayment(ctx context.Context, acct Account, quote SwapQuote) ([]byte, error) {
	if !quote.Viable() || quote.Route != RouteAMM {
		return nil, ErrQuoteNotViable
	}

	txc, err := b.fetchTxContext(ctx, acct.Address)
	if err != nil {
		return nil, err
	}

	amount := xrpl.AmountFromDecimal(quote.DestinationAmount, quote.DestinationToken)
	sendMax := xrpl.AmountFromDecimal(quote.SourceAmount, quote.SourceToken)
	deliverMin := xrpl.AmountFromDecimal(quote.MinimumReceived, quote.DestinationToken)

	jsonMap := map[string]any{
		"Account":            acct.Address,
		"TransactionType":    "Payment",
		"Destination":        acct.Address,
		"Amount":             amount.TxAmount(),
		"SendMax":            sendMax.TxAmount(),
		"DeliverMin":         deliverMin.TxAmount(),
		"Flags":              int(tfPartialPayment),
		"Fee":                fmt.Sprintf("%d", txc.feeDrops),
		"Sequence":           int(txc.sequence),
		"LastLedgerSequence": int(txc.lastLedgerSeq),
		"SigningPubKey":      strings.ToUpper(strings.TrimSpace(acct.PubKey)),
	}

	txBytes, err := encodeCanonical(jsonMap)
	if err != nil {
		return nil, fmt.Errorf("swap: failed to build pool payment: %w", err)
	}
	return txBytes, nil
}

// BuildBookOffer builds the DEX execution path: an OfferCreate buying the
// computed output at the computed input cost, flagged immediate-or-cancel so
// it executes against the book now or is discarded instead of resting as a
// standing order. Partial quotes offer only the input the book could absorb.
func (b *Builder) BuildBookOffer(ctx context.Context, acct Account, quote SwapQuote) ([]byte, error) {
	if !quote.Viable() || quote.Route != RouteDEX {
		return nil, ErrQuoteNotViable
	}

	txc, err := b.fetchTxContext(ctx, acct.Address)
	if err != nil {
		return nil, err
	}

	sourceAmount := quote.SourceAmount
	if quote.State == StatePartial && quote.DEX != nil {
		sourceAmount = quote.DEX.InputUsed
	}

	takerGets := xrpl.AmountFromDecimal(sourceAmount, quote.SourceToken)
	takerPays := xrpl.AmountFromDecimal(quote.DestinationAmount, quote.DestinationToken)

	jsonMap := map[string]any{
		"Account":            acct.Address,
		"TransactionType":    "OfferCreate",
		"TakerGets":          takerGets.TxAmount(),
		"TakerPays":          takerPays.TxAmount(),
		"Flags":              int(tfImmediateOrCancel),
		"Fee":                fmt.Sprintf("%d", txc.feeDrops),
		"Sequence":           int(txc.sequence),
		"LastLedgerSequence": int(txc.lastLedgerSeq),
		"SigningPubKey":      strings.ToUpper(strings.TrimSpace(acct.PubKey)),
	}

	txBytes, err := encodeCanonical(jsonMap)
	if err != nil {
		return nil, fmt.Errorf("swap: failed to build book offer: %w", err)
	}
	return txBytes, nil
}

// BuildBatch would combine the swap with the fee-collection payment in one
// atomic transaction. The required amendment is not active, so this is a
// pure no-op that reports unavailability; it must never panic or build a
// partial payload.
func (b *Builder) BuildBatch(_ context.Context, _ Account, _ SwapQuote) ([]byte, error) {
	return nil, ErrBatchUnavailable
}

// encodeCanonical produces canonical transaction bytes via an
// encode/decode/re-encode roundtrip.
func encodeCanonical(jsonMap map[string]any) ([]byte, error) {
	hexStr, err := xrpgo.Encode(jsonMap)
	if err != nil {
		return nil, fmt.Errorf("encode failed: %w", err)
	}

	decoded, err := xrpgo.Decode(strings.ToUpper(hexStr))
	if err != nil {
		return nil, fmt.Errorf("decode round-trip failed: %w", err)
	}

	canonicalHex, err := xrpgo.Encode(decoded)
	if err != nil {
		return nil, fmt.Errorf("re-encode failed: %w", err)
	}

	txBytes, err := hex.DecodeString(canonicalHex)
	if err != nil {
		return nil, fmt.Errorf("hex to bytes failed: %w", err)
	}

	return txBytes, nil
}
