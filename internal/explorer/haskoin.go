package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// DefaultHaskoinURL is the public haskoin store endpoint for Bitcoin Cash.
const DefaultHaskoinURL = "https://api.haskoin.com/bch"

// Haskoin wraps the haskoin store API used by the Bitcoin Cash adapter.
// All values are integer satoshis.
type Haskoin struct {
	client  *Client
	baseURL string
}

// NewHaskoin builds a haskoin wrapper. An empty baseURL selects the public
// BCH endpoint.
func NewHaskoin(client *Client, baseURL string) *Haskoin {
	if baseURL == "" {
		baseURL = DefaultHaskoinURL
	}
	return &Haskoin{client: client, baseURL: baseURL}
}

// HaskoinBalance is an address balance in satoshis.
type HaskoinBalance struct {
	Address     string `json:"address"`
	Confirmed   int64  `json:"confirmed"`
	Unconfirmed int64  `json:"unconfirmed"`
	UTXOCount   int    `json:"utxo"`
	TxCount     int    `json:"txs"`
}

// Balance fetches an address balance.
func (h *Haskoin) Balance(ctx context.Context, address string) (*HaskoinBalance, error) {
	var out HaskoinBalance
	url := fmt.Sprintf("%s/address/%s/balance", h.baseURL, address)
	if err := h.client.GetJSON(ctx, url, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch balance: %w", err)
	}
	return &out, nil
}

// HaskoinUnspent is one unspent output.
type HaskoinUnspent struct {
	TxID     string `json:"txid"`
	Index    uint32 `json:"index"`
	Value    int64  `json:"value"`
	PkScript string `json:"pkscript"`
	Address  string `json:"address"`
	Block    struct {
		Height int64 `json:"height"`
	} `json:"block"`
}

// Unspent fetches the unspent outputs of an address.
func (h *Haskoin) Unspent(ctx context.Context, address string) ([]HaskoinUnspent, error) {
	var out []HaskoinUnspent
	url := fmt.Sprintf("%s/address/%s/unspent", h.baseURL, address)
	if err := h.client.GetJSON(ctx, url, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch UTXOs: %w", err)
	}
	return out, nil
}

// HaskoinTxIO is one side of a transaction. Coinbase inputs carry an empty
// address.
type HaskoinTxIO struct {
	Address string `json:"address"`
	Value   int64  `json:"value"`
}

// HaskoinTx is a full transaction.
type HaskoinTx struct {
	TxID  string `json:"txid"`
	Time  int64  `json:"time"`
	Fee   int64  `json:"fee"`
	Block struct {
		Height int64 `json:"height"`
	} `json:"block"`
	Inputs  []HaskoinTxIO `json:"inputs"`
	Outputs []HaskoinTxIO `json:"outputs"`
}

// AddressTxs fetches full transactions of an address, most recent first.
func (h *Haskoin) AddressTxs(ctx context.Context, address string, limit, offset int) ([]HaskoinTx, error) {
	var out []HaskoinTx
	url := fmt.Sprintf("%s/address/%s/transactions/full?limit=%d&offset=%d",
		h.baseURL, address, limit, offset)
	if err := h.client.GetJSON(ctx, url, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return out, nil
}

// Tx fetches a single transaction by hash. Unknown hashes return ErrNotFound.
func (h *Haskoin) Tx(ctx context.Context, txID string) (*HaskoinTx, error) {
	var out HaskoinTx
	url := fmt.Sprintf("%s/transaction/%s", h.baseURL, txID)
	if err := h.client.GetJSON(ctx, url, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("transaction %s: %w", txID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	return &out, nil
}

// Broadcast submits a signed raw transaction (hex) and returns its hash.
func (h *Haskoin) Broadcast(ctx context.Context, txHex string) (string, error) {
	body, err := h.client.PostRaw(ctx, h.baseURL+"/transactions", "text/plain", []byte(txHex))
	if err != nil {
		return "", fmt.Errorf("failed to broadcast transaction: %w", err)
	}
	var out struct {
		TxID string `json:"txid"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse broadcast response: %w", err)
	}
	return out.TxID, nil
}
