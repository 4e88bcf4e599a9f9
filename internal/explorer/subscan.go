package explorer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Subscan endpoints.
const (
	DefaultSubscanURL        = "https://polkadot.api.subscan.io"
	DefaultSubscanTestnetURL = "https://westend.api.subscan.io"
)

// Subscan wraps the subscan API used by the Polkadot adapter for balances,
// transfer history and single-transfer lookups.
type Subscan struct {
	client  *Client
	baseURL string
	apiKey  string
}

// NewSubscan builds a subscan wrapper.
func NewSubscan(client *Client, baseURL, apiKey string) *Subscan {
	if baseURL == "" {
		baseURL = DefaultSubscanURL
	}
	return &Subscan{client: client, baseURL: baseURL, apiKey: apiKey}
}

type subscanEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// post unwraps subscan's {code, message, data} envelope, attaching the API
// key header when one is configured.
func (s *Subscan) post(ctx context.Context, path string, payload, out interface{}) error {
	var headers map[string]string
	if s.apiKey != "" {
		headers = map[string]string{"X-API-Key": s.apiKey}
	}

	var env subscanEnvelope
	if err := s.client.PostJSONWithHeaders(ctx, s.baseURL+path, headers, payload, &env); err != nil {
		return err
	}
	if env.Code != 0 {
		return fmt.Errorf("subscan request %s failed: %s", path, env.Message)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// SubscanAccount is the account section of a search result. Balance is in
// DOT units (not planck).
type SubscanAccount struct {
	Address string          `json:"address"`
	Balance decimal.Decimal `json:"balance"`
	Nonce   uint32          `json:"nonce"`
}

// Account fetches an account by address. Unknown accounts come back with a
// zero balance.
func (s *Subscan) Account(ctx context.Context, address string) (*SubscanAccount, error) {
	var out struct {
		Account SubscanAccount `json:"account"`
	}
	payload := map[string]string{"key": address}
	if err := s.post(ctx, "/api/v2/scan/search", payload, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}
	return &out.Account, nil
}

// SubscanTransfer is one balance transfer. Amount is in DOT units, Fee in
// planck.
type SubscanTransfer struct {
	Hash           string          `json:"hash"`
	BlockNum       int64           `json:"block_num"`
	BlockTimestamp int64           `json:"block_timestamp"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	Amount         decimal.Decimal `json:"amount"`
	Fee            decimal.Decimal `json:"fee"`
	Success        bool            `json:"success"`
}

// Transfers fetches one page of an address's transfer history. Pages are
// 0-based.
func (s *Subscan) Transfers(ctx context.Context, address string, row, page int) (total int, transfers []SubscanTransfer, err error) {
	var out struct {
		Count     int               `json:"count"`
		Transfers []SubscanTransfer `json:"transfers"`
	}
	payload := map[string]interface{}{"address": address, "row": row, "page": page}
	if err := s.post(ctx, "/api/scan/transfers", payload, &out); err != nil {
		return 0, nil, fmt.Errorf("failed to fetch transfers: %w", err)
	}
	return out.Count, out.Transfers, nil
}

// TransferByHash looks a single transfer up by extrinsic hash. A nil result
// with nil error means subscan does not know the hash.
func (s *Subscan) TransferByHash(ctx context.Context, hash string) (*SubscanTransfer, error) {
	var out struct {
		BlockNum       int64  `json:"block_num"`
		BlockTimestamp int64  `json:"block_timestamp"`
		ExtrinsicHash  string `json:"extrinsic_hash"`
		Success        bool   `json:"success"`
		Transfer       *struct {
			From   string          `json:"from"`
			To     string          `json:"to"`
			Amount decimal.Decimal `json:"amount"`
			Fee    decimal.Decimal `json:"fee"`
		} `json:"transfer"`
	}
	payload := map[string]string{"hash": hash}
	if err := s.post(ctx, "/api/scan/extrinsic", payload, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch extrinsic: %w", err)
	}
	if out.ExtrinsicHash == "" || out.Transfer == nil {
		return nil, nil
	}
	return &SubscanTransfer{
		Hash:           out.ExtrinsicHash,
		BlockNum:       out.BlockNum,
		BlockTimestamp: out.BlockTimestamp,
		From:           out.Transfer.From,
		To:             out.Transfer.To,
		Amount:         out.Transfer.Amount,
		Fee:            out.Transfer.Fee,
		Success:        out.Success,
	}, nil
}
