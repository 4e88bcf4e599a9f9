package explorer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultSoChainURL is the public sochain v2 endpoint.
const DefaultSoChainURL = "https://sochain.com/api/v2"

// SoChain wraps the sochain v2 API used by the Bitcoin and Litecoin
// adapters. Chain networks are sochain identifiers: BTC, BTCTEST, LTC,
// LTCTEST.
type SoChain struct {
	client  *Client
	baseURL string
}

// NewSoChain builds a sochain wrapper. An empty baseURL selects the public
// endpoint.
func NewSoChain(client *Client, baseURL string) *SoChain {
	if baseURL == "" {
		baseURL = DefaultSoChainURL
	}
	return &SoChain{client: client, baseURL: baseURL}
}

type sochainEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// get unwraps sochain's {status, data} envelope.
func (s *SoChain) get(ctx context.Context, path string, out interface{}) error {
	var env sochainEnvelope
	if err := s.client.GetJSON(ctx, s.baseURL+path, &env); err != nil {
		return err
	}
	if env.Status != "success" {
		return fmt.Errorf("sochain request %s failed: status %q", path, env.Status)
	}
	return json.Unmarshal(env.Data, out)
}

// SoChainBalance is an address balance in coin units.
type SoChainBalance struct {
	Confirmed   decimal.Decimal `json:"confirmed_balance"`
	Unconfirmed decimal.Decimal `json:"unconfirmed_balance"`
}

// Balance fetches the confirmed and unconfirmed balance of an address.
func (s *SoChain) Balance(ctx context.Context, network, address string) (*SoChainBalance, error) {
	var out SoChainBalance
	path := fmt.Sprintf("/get_address_balance/%s/%s", network, address)
	if err := s.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch balance: %w", err)
	}
	return &out, nil
}

// SoChainUTXO is one unspent output. Value is in coin units.
type SoChainUTXO struct {
	TxID          string          `json:"txid"`
	OutputNo      uint32          `json:"output_no"`
	ScriptHex     string          `json:"script_hex"`
	Value         decimal.Decimal `json:"value"`
	Confirmations int64           `json:"confirmations"`
	Time          int64           `json:"time"`
}

// Unspent fetches the unspent outputs of an address.
func (s *SoChain) Unspent(ctx context.Context, network, address string) ([]SoChainUTXO, error) {
	var out struct {
		Txs []SoChainUTXO `json:"txs"`
	}
	path := fmt.Sprintf("/get_tx_unspent/%s/%s", network, address)
	if err := s.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch UTXOs: %w", err)
	}
	return out.Txs, nil
}

// SoChainTxRef is one entry of an address's transaction list.
type SoChainTxRef struct {
	TxID string `json:"txid"`
}

// AddressTxs fetches the transaction list of an address, most recent first.
func (s *SoChain) AddressTxs(ctx context.Context, network, address string) (total int, refs []SoChainTxRef, err error) {
	var out struct {
		TotalTxs int            `json:"total_txs"`
		Txs      []SoChainTxRef `json:"txs"`
	}
	path := fmt.Sprintf("/address/%s/%s", network, address)
	if err := s.get(ctx, path, &out); err != nil {
		return 0, nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return out.TotalTxs, out.Txs, nil
}

// SoChainTxIO is one side of a transaction. Value is in coin units.
type SoChainTxIO struct {
	Address string          `json:"address"`
	Value   decimal.Decimal `json:"value"`
}

// SoChainTx is a full transaction.
type SoChainTx struct {
	TxID          string          `json:"txid"`
	BlockNo       int64           `json:"block_no"`
	Confirmations int64           `json:"confirmations"`
	Time          int64           `json:"time"`
	Fee           decimal.Decimal `json:"network_fee"`
	Inputs        []SoChainTxIO   `json:"inputs"`
	Outputs       []SoChainTxIO   `json:"outputs"`
}

// Tx fetches a single transaction by hash. Unknown hashes return
// ErrNotFound: sochain answers them with a fail status.
func (s *SoChain) Tx(ctx context.Context, network, txID string) (*SoChainTx, error) {
	var env sochainEnvelope
	path := fmt.Sprintf("/get_tx/%s/%s", network, txID)
	if err := s.client.GetJSON(ctx, s.baseURL+path, &env); err != nil {
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	if env.Status != "success" {
		return nil, fmt.Errorf("transaction %s: %w", txID, ErrNotFound)
	}
	var out SoChainTx
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}
	return &out, nil
}

// Broadcast submits a signed raw transaction and returns its hash.
func (s *SoChain) Broadcast(ctx context.Context, network, txHex string) (string, error) {
	var env sochainEnvelope
	url := fmt.Sprintf("%s/send_tx/%s", s.baseURL, network)
	payload := map[string]string{"tx_hex": txHex}
	if err := s.client.PostJSON(ctx, url, payload, &env); err != nil {
		return "", fmt.Errorf("failed to broadcast transaction: %w", err)
	}
	if env.Status != "success" {
		return "", fmt.Errorf("broadcast rejected: status %q", env.Status)
	}
	var out struct {
		TxID string `json:"txid"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return "", fmt.Errorf("failed to parse broadcast response: %w", err)
	}
	return out.TxID, nil
}
