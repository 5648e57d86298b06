package xrpl

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// dropsPerXRP is the number of drops in one XRP (1 XRP = 1,000,000 drops).
var dropsPerXRP = decimal.New(1, 6)

// Token identifies a fungible asset on the ledger: a currency code plus an
// optional issuing account. The native asset has no issuer.
type Token struct {
	Currency string
	Issuer   string
}

// NativeToken returns the Token for the ledger's native asset.
func NativeToken() Token {
	return Token{Currency: "XRP"}
}

// IsNative reports whether the token is the ledger's native asset.
func (t Token) IsNative() bool {
	return t.Issuer == "" && (t.Currency == "" || t.Currency == "XRP")
}

// Equal reports whether two tokens identify the same asset.
func (t Token) Equal(other Token) bool {
	if t.IsNative() && other.IsNative() {
		return true
	}
	return t.Currency == other.Currency && t.Issuer == other.Issuer
}

func (t Token) String() string {
	if t.IsNative() {
		return "XRP"
	}
	return t.Currency + "." + t.Issuer
}

// MarshalJSON emits the asset object shape used by amm_info / book_offers
// requests: {"currency":"XRP"} for native, {"currency","issuer"} otherwise.
func (t Token) MarshalJSON() ([]byte, error) {
	if t.IsNative() {
		return json.Marshal(map[string]string{"currency": "XRP"})
	}
	return json.Marshal(map[string]string{
		"currency": t.Currency,
		"issuer":   t.Issuer,
	})
}

// Amount is a ledger amount: either a bare native magnitude in drops
// (serialized as an integer string) or an issued-currency amount
// (serialized as a {currency, issuer, value} object).
type Amount struct {
	// Value is drops for the native asset, a decimal token quantity otherwise.
	Value decimal.Decimal
	Asset Token
}

// NewDropsAmount builds a native Amount from a drops figure.
func NewDropsAmount(drops decimal.Decimal) Amount {
	return Amount{Value: drops, Asset: NativeToken()}
}

// NewIssuedAmount builds an issued-currency Amount.
func NewIssuedAmount(value decimal.Decimal, token Token) Amount {
	return Amount{Value: value, Asset: token}
}

// Decimal projects the amount onto a uniform decimal scale: whole XRP for the
// native asset (drops / 10^6), the face value otherwise. All quote arithmetic
// goes through this single projection.
func (a Amount) Decimal() decimal.Decimal {
	if a.Asset.IsNative() {
		return a.Value.Div(dropsPerXRP)
	}
	return a.Value
}

// Token returns the asset identity of the amount.
func (a Amount) Token() Token {
	return a.Asset
}

// IsZero reports whether the amount's magnitude is zero.
func (a Amount) IsZero() bool {
	return a.Value.IsZero()
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	// Native amounts arrive as a bare string of drops.
	var drops string
	if err := json.Unmarshal(data, &drops); err == nil {
		v, err := decimal.NewFromString(drops)
		if err != nil {
			return fmt.Errorf("xrpl: invalid drops amount %q: %w", drops, err)
		}
		a.Value = v
		a.Asset = NativeToken()
		return nil
	}

	var issued struct {
		Currency string `json:"currency"`
		Issuer   string `json:"issuer"`
		Value    string `json:"value"`
	}
	if err := json.Unmarshal(data, &issued); err != nil {
		return fmt.Errorf("xrpl: unrecognized amount shape: %w", err)
	}
	v, err := decimal.NewFromString(issued.Value)
	if err != nil {
		return fmt.Errorf("xrpl: invalid issued amount value %q: %w", issued.Value, err)
	}
	a.Value = v
	a.Asset = Token{Currency: issued.Currency, Issuer: issued.Issuer}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Asset.IsNative() {
		// Drops are always an integer string.
		return json.Marshal(a.Value.Truncate(0).String())
	}
	return json.Marshal(map[string]string{
		"currency": a.Asset.Currency,
		"issuer":   a.Asset.Issuer,
		"value":    a.Value.String(),
	})
}

// TxAmount renders the amount in the shape expected inside a transaction's
// JSON map: a drops string for native, a {currency, issuer, value} map
// otherwise.
func (a Amount) TxAmount() any {
	if a.Asset.IsNative() {
		return a.Value.Truncate(0).String()
	}
	return map[string]any{
		"currency": a.Asset.Currency,
		"issuer":   a.Asset.Issuer,
		"value":    a.Value.String(),
	}
}

// maxIssuedDigits is the significant-digit capacity of the ledger's issued
// amount encoding. Values past it fail canonical encoding.
const maxIssuedDigits = 15

// AmountFromDecimal builds an Amount for the given token from a uniform
// decimal quantity, converting whole XRP back to drops for the native asset.
// Issued values are truncated toward zero to the encodable precision, so a
// quoted floor is never overstated on the wire.
func AmountFromDecimal(value decimal.Decimal, token Token) Amount {
	if token.IsNative() {
		return Amount{Value: value.Mul(dropsPerXRP).Truncate(0), Asset: token}
	}
	return Amount{Value: truncateSignificant(value, maxIssuedDigits), Asset: token}
}

// truncateSignificant drops coefficient digits past the given count, rounding
// toward zero.
func truncateSignificant(v decimal.Decimal, digits int32) decimal.Decimal {
	excess := int32(v.NumDigits()) - digits
	if excess <= 0 {
		return v
	}
	return v.RoundDown(-(v.Exponent() + excess))
}
