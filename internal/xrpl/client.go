// Package xrpl is a thin JSON-RPC client for the ledger queries the swap
// engine consumes, plus the polymorphic amount and token types shared by the
// quote math.
package xrpl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrNoPool is returned by AMMInfo when no pool instance exists for the pair.
// Structural absence, not a transport failure.
var ErrNoPool = errors.New("xrpl: no AMM instance for pair")

// notFoundCodes are XRPL error codes that mean the queried ledger entry does
// not exist.
var notFoundCodes = map[string]bool{
	"actNotFound":    true,
	"entryNotFound":  true,
	"objectNotFound": true,
}

// QueryError wraps a transport or ledger-side failure so callers can tell a
// transient fetch error from structural absence.
type QueryError struct {
	Command string
	Code    string
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("xrpl: %s failed: %s - %s", e.Command, e.Code, e.Message)
	}
	return fmt.Sprintf("xrpl: %s failed: %v", e.Command, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// QuoteClient is the slice of the ledger client the quote pipeline depends on.
type QuoteClient interface {
	AMMInfo(ctx context.Context, asset, asset2 Token) (AMMInfoResult, error)
	BookOffers(ctx context.Context, takerPays, takerGets Token, limit int) ([]BookOffer, error)
}

// AccountInfoProvider defines the network lookups the transaction builders
// need before a payload can be submitted.
type AccountInfoProvider interface {
	AccountSequence(ctx context.Context, address string) (uint32, error)
	LedgerIndex(ctx context.Context) (uint32, error)
	BaseFee(ctx context.Context) (feeDrops uint64, err error)
}

// Client talks to an XRPL JSON-RPC endpoint.
type Client struct {
	rpcURL     string
	httpClient *http.Client
}

// NewClient creates a new ledger client for the given RPC URL.
func NewClient(rpcURL string) *Client {
	return &Client{
		rpcURL: rpcURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type rpcRequest struct {
	Method  string           `json:"method"`
	Params  []map[string]any `json:"params"`
	ID      int              `json:"id"`
	JSONRPC string           `json:"jsonrpc"`
}

type rpcEnvelope struct {
	Result json.RawMessage `json:"result"`
}

type rpcStatus struct {
	Status       string `json:"status,omitempty"`
	Error        string `json:"error,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// makeRequest performs an XRPL JSON-RPC call and decodes the result payload
// into out. Ledger-side errors (which arrive with HTTP 200) are surfaced as
// *QueryError.
func (c *Client) makeRequest(ctx context.Context, command string, params map[string]any, out any) error {
	reqBody := rpcRequest{
		Method:  command,
		Params:  []map[string]any{params},
		ID:      1,
		JSONRPC: "2.0",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return &QueryError{Command: command, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return &QueryError{Command: command, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &QueryError{Command: command, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &QueryError{Command: command, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	var envelope rpcEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &QueryError{Command: command, Err: fmt.Errorf("decode response: %w", err)}
	}

	var status rpcStatus
	if err := json.Unmarshal(envelope.Result, &status); err != nil {
		return &QueryError{Command: command, Err: fmt.Errorf("decode result status: %w", err)}
	}
	if status.Error != "" {
		return &QueryError{
			Command: command,
			Code:    status.Error,
			Message: status.ErrorMessage,
		}
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return &QueryError{Command: command, Err: fmt.Errorf("decode result: %w", err)}
		}
	}
	return nil
}

// AMMInfo looks up the liquidity pool for the unordered token pair. Returns
// ErrNoPool when no pool instance exists.
func (c *Client) AMMInfo(ctx context.Context, asset, asset2 Token) (AMMInfoResult, error) {
	var result struct {
		AMM AMMInfoResult `json:"amm"`
	}
	err := c.makeRequest(ctx, "amm_info", map[string]any{
		"asset":  asset,
		"asset2": asset2,
	}, &result)
	if err != nil {
		var qe *QueryError
		if errors.As(err, &qe) && notFoundCodes[qe.Code] {
			return AMMInfoResult{}, ErrNoPool
		}
		return AMMInfoResult{}, err
	}
	return result.AMM, nil
}

// BookOffers fetches resting offers for the directed pair: takerPays is the
// asset the taker pays (our input), takerGets the asset the taker receives.
func (c *Client) BookOffers(ctx context.Context, takerPays, takerGets Token, limit int) ([]BookOffer, error) {
	var result struct {
		Offers []BookOffer `json:"offers"`
	}
	err := c.makeRequest(ctx, "book_offers", map[string]any{
		"taker_pays": takerPays,
		"taker_gets": takerGets,
		"limit":      limit,
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Offers, nil
}

// AccountSequence fetches the account's current sequence number.
func (c *Client) AccountSequence(ctx context.Context, address string) (uint32, error) {
	var result struct {
		AccountData struct {
			Sequence any `json:"Sequence"`
		} `json:"account_data"`
	}
	err := c.makeRequest(ctx, "account_info", map[string]any{
		"account":      address,
		"strict":       true,
		"ledger_index": "validated",
	}, &result)
	if err != nil {
		return 0, fmt.Errorf("xrpl: failed to get account info: %w", err)
	}
	return parseUint32(result.AccountData.Sequence, "sequence")
}

// LedgerIndex fetches the current validated ledger index.
func (c *Client) LedgerIndex(ctx context.Context) (uint32, error) {
	var result struct {
		LedgerIndex any `json:"ledger_index"`
	}
	err := c.makeRequest(ctx, "ledger", map[string]any{
		"ledger_index": "validated",
	}, &result)
	if err != nil {
		return 0, fmt.Errorf("xrpl: failed to get current ledger: %w", err)
	}
	return parseUint32(result.LedgerIndex, "ledger index")
}

// BaseFee fetches the network base fee in drops, with a floor of 12.
func (c *Client) BaseFee(ctx context.Context) (uint64, error) {
	var result struct {
		Info struct {
			BaseFee any `json:"base_fee"`
		} `json:"info"`
	}
	err := c.makeRequest(ctx, "server_info", map[string]any{}, &result)
	if err != nil {
		return 0, fmt.Errorf("xrpl: failed to get base fee: %w", err)
	}

	var baseFee uint64 = 12
	switch v := result.Info.BaseFee.(type) {
	case float64:
		baseFee = uint64(v)
	case string:
		fee, err := strconv.ParseUint(v, 10, 64)
		if err == nil {
			baseFee = fee
		}
	}
	if baseFee < 12 {
		baseFee = 12
	}
	return baseFee, nil
}

// parseUint32 handles XRPL fields that arrive either as a number or a string.
func parseUint32(v any, field string) (uint32, error) {
	switch t := v.(type) {
	case float64:
		return uint32(t), nil
	case string:
		n, err := strconv.ParseUint(t, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("xrpl: failed to parse %s: %w", field, err)
		}
		return uint32(n), nil
	default:
		return 0, fmt.Errorf("xrpl: unexpected %s type: %T", field, v)
	}
}
