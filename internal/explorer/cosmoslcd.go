package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Cosmos LCD endpoints.
const (
	DefaultCosmosLCDURL    = "https://api.cosmos.network"
	DefaultTHORChainLCDURL = "https://thornode.ninerealms.com"
)

// CosmosLCD wraps the legacy cosmos-sdk LCD REST API. The Cosmos Hub and
// THORChain adapters share it; the bech32 prefix and chain ID live with the
// adapters, not here.
type CosmosLCD struct {
	client  *Client
	baseURL string
}

// NewCosmosLCD builds an LCD wrapper.
func NewCosmosLCD(client *Client, baseURL string) *CosmosLCD {
	return &CosmosLCD{client: client, baseURL: baseURL}
}

// LCDAccount carries the signing metadata of an account.
type LCDAccount struct {
	AccountNumber uint64
	Sequence      uint64
}

// Account fetches account number and sequence. Fresh addresses come back as
// the zero account.
func (l *CosmosLCD) Account(ctx context.Context, address string) (*LCDAccount, error) {
	var out struct {
		Result struct {
			Value struct {
				AccountNumber json.Number `json:"account_number"`
				Sequence      json.Number `json:"sequence"`
			} `json:"value"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/auth/accounts/%s", l.baseURL, address)
	if err := l.client.GetJSON(ctx, url, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return &LCDAccount{}, nil
		}
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}

	acc := &LCDAccount{}
	if n, err := out.Result.Value.AccountNumber.Int64(); err == nil {
		acc.AccountNumber = uint64(n)
	}
	if n, err := out.Result.Value.Sequence.Int64(); err == nil {
		acc.Sequence = uint64(n)
	}
	return acc, nil
}

// LCDCoin is a denominated amount in base units.
type LCDCoin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Balances fetches the bank balances of an address.
func (l *CosmosLCD) Balances(ctx context.Context, address string) ([]LCDCoin, error) {
	var out struct {
		Result []LCDCoin `json:"result"`
	}
	url := fmt.Sprintf("%s/bank/balances/%s", l.baseURL, address)
	if err := l.client.GetJSON(ctx, url, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch balances: %w", err)
	}
	return out.Result, nil
}

// LCDTx is one transaction as returned by the /txs endpoints.
type LCDTx struct {
	TxHash    string `json:"txhash"`
	Height    string `json:"height"`
	Timestamp string `json:"timestamp"`
	Code      int    `json:"code"`
	Tx        struct {
		Value struct {
			Msg []struct {
				Type  string `json:"type"`
				Value struct {
					FromAddress string    `json:"from_address"`
					ToAddress   string    `json:"to_address"`
					Amount      []LCDCoin `json:"amount"`
				} `json:"value"`
			} `json:"msg"`
			Fee struct {
				Amount []LCDCoin `json:"amount"`
				Gas    string    `json:"gas"`
			} `json:"fee"`
			Memo string `json:"memo"`
		} `json:"value"`
	} `json:"tx"`
}

// Txs searches transactions by event. The query key is e.g. "message.sender"
// or "transfer.recipient"; pages are 1-based.
func (l *CosmosLCD) Txs(ctx context.Context, key, value string, page, limit int) (total int, txs []LCDTx, err error) {
	var out struct {
		TotalCount json.Number `json:"total_count"`
		Txs        []LCDTx     `json:"txs"`
	}
	params := url.Values{}
	params.Set(key, value)
	params.Set("page", fmt.Sprint(page))
	params.Set("limit", fmt.Sprint(limit))
	if err := l.client.GetJSON(ctx, l.baseURL+"/txs?"+params.Encode(), &out); err != nil {
		return 0, nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	if n, err := out.TotalCount.Int64(); err == nil {
		total = int(n)
	}
	return total, out.Txs, nil
}

// Tx fetches a single transaction by hash. Unknown hashes return (nil, nil).
func (l *CosmosLCD) Tx(ctx context.Context, hash string) (*LCDTx, error) {
	var out LCDTx
	url := fmt.Sprintf("%s/txs/%s", l.baseURL, hash)
	if err := l.client.GetJSON(ctx, url, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	return &out, nil
}

// BroadcastResult is the LCD broadcast response.
type BroadcastResult struct {
	Height string `json:"height"`
	TxHash string `json:"txhash"`
	Code   int    `json:"code"`
	RawLog string `json:"raw_log"`
}

// Broadcast submits a signed amino StdTx as JSON. Mode is one of "sync",
// "async", "block".
func (l *CosmosLCD) Broadcast(ctx context.Context, stdTx json.RawMessage, mode string) (*BroadcastResult, error) {
	payload := map[string]interface{}{
		"tx":   stdTx,
		"mode": mode,
	}
	var out BroadcastResult
	if err := l.client.PostJSON(ctx, l.baseURL+"/txs", payload, &out); err != nil {
		return nil, fmt.Errorf("failed to broadcast transaction: %w", err)
	}
	if out.Code != 0 {
		return nil, fmt.Errorf("broadcast rejected (code %d): %s", out.Code, out.RawLog)
	}
	return &out, nil
}
