package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Binance Chain (dex) endpoints.
const (
	DefaultBinanceDexURL        = "https://dex.binance.org"
	DefaultBinanceDexTestnetURL = "https://testnet-dex.binance.org"
)

// BinanceDex wraps the Binance Chain HTTP API used by the BNB adapter.
type BinanceDex struct {
	client  *Client
	baseURL string
}

// NewBinanceDex builds a binance dex wrapper.
func NewBinanceDex(client *Client, baseURL string) *BinanceDex {
	if baseURL == "" {
		baseURL = DefaultBinanceDexURL
	}
	return &BinanceDex{client: client, baseURL: baseURL}
}

// BinanceBalance is one asset balance. Amounts are decimal strings in BNB
// chain display units (8 decimals).
type BinanceBalance struct {
	Symbol string `json:"symbol"`
	Free   string `json:"free"`
	Frozen string `json:"frozen"`
	Locked string `json:"locked"`
}

// BinanceAccount is the /api/v1/account response.
type BinanceAccount struct {
	AccountNumber int64            `json:"account_number"`
	Sequence      int64            `json:"sequence"`
	Address       string           `json:"address"`
	Balances      []BinanceBalance `json:"balances"`
}

// Account fetches an account. Addresses the chain has never seen return an
// empty account rather than an error.
func (b *BinanceDex) Account(ctx context.Context, address string) (*BinanceAccount, error) {
	var out BinanceAccount
	url := fmt.Sprintf("%s/api/v1/account/%s", b.baseURL, address)
	if err := b.client.GetJSON(ctx, url, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return &BinanceAccount{Address: address}, nil
		}
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}
	return &out, nil
}

// BinanceTx is one entry of the transaction search result.
type BinanceTx struct {
	TxHash      string `json:"txHash"`
	BlockHeight int64  `json:"blockHeight"`
	TxType      string `json:"txType"`
	TimeStamp   string `json:"timeStamp"`
	FromAddr    string `json:"fromAddr"`
	ToAddr      string `json:"toAddr"`
	Value       string `json:"value"`
	TxAsset     string `json:"txAsset"`
	TxFee       string `json:"txFee"`
	Memo        string `json:"memo"`
}

// Transactions fetches one page of TRANSFER transactions for an address.
func (b *BinanceDex) Transactions(ctx context.Context, address string, limit, offset int) (total int, txs []BinanceTx, err error) {
	var out struct {
		Total int         `json:"total"`
		Tx    []BinanceTx `json:"tx"`
	}
	url := fmt.Sprintf("%s/api/v1/transactions?address=%s&txType=TRANSFER&limit=%d&offset=%d",
		b.baseURL, address, limit, offset)
	if err := b.client.GetJSON(ctx, url, &out); err != nil {
		return 0, nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return out.Total, out.Tx, nil
}

// BinanceRawTx is the /api/v1/tx response with format=json: the decoded
// standard tx envelope.
type BinanceRawTx struct {
	Hash   string `json:"hash"`
	Height string `json:"height"`
	Tx     struct {
		Value struct {
			Memo string `json:"memo"`
			Msg  []struct {
				Type  string `json:"type"`
				Value struct {
					Inputs []struct {
						Address string `json:"address"`
						Coins   []struct {
							Denom  string      `json:"denom"`
							Amount json.Number `json:"amount"`
						} `json:"coins"`
					} `json:"inputs"`
					Outputs []struct {
						Address string `json:"address"`
						Coins   []struct {
							Denom  string      `json:"denom"`
							Amount json.Number `json:"amount"`
						} `json:"coins"`
					} `json:"outputs"`
				} `json:"value"`
			} `json:"msg"`
		} `json:"value"`
	} `json:"tx"`
}

// Tx fetches a single transaction by hash. Unknown hashes return (nil, nil).
func (b *BinanceDex) Tx(ctx context.Context, hash string) (*BinanceRawTx, error) {
	var out BinanceRawTx
	url := fmt.Sprintf("%s/api/v1/tx/%s?format=json", b.baseURL, hash)
	if err := b.client.GetJSON(ctx, url, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	return &out, nil
}

// SendFee returns the fixed fee of a send transaction, in base units (1e8).
func (b *BinanceDex) SendFee(ctx context.Context) (int64, error) {
	var out []struct {
		FixedFeeParams *struct {
			MsgType string `json:"msg_type"`
			Fee     int64  `json:"fee"`
		} `json:"fixed_fee_params"`
	}
	if err := b.client.GetJSON(ctx, b.baseURL+"/api/v1/fees", &out); err != nil {
		return 0, fmt.Errorf("failed to fetch fees: %w", err)
	}
	for _, entry := range out {
		if entry.FixedFeeParams != nil && entry.FixedFeeParams.MsgType == "send" {
			return entry.FixedFeeParams.Fee, nil
		}
	}
	return 0, fmt.Errorf("send fee not present in fees response")
}

// Broadcast submits an amino-encoded transaction (hex) in sync mode and
// returns the transaction hash.
func (b *BinanceDex) Broadcast(ctx context.Context, txHex string) (string, error) {
	url := b.baseURL + "/api/v1/broadcast?sync=true"
	body, err := b.client.PostRaw(ctx, url, "text/plain", []byte(txHex))
	if err != nil {
		return "", fmt.Errorf("failed to broadcast transaction: %w", err)
	}
	var out []struct {
		Hash string `json:"hash"`
		OK   bool   `json:"ok"`
		Code int    `json:"code"`
		Log  string `json:"log"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse broadcast response: %w", err)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("empty broadcast response")
	}
	if !out[0].OK || out[0].Code != 0 {
		return "", fmt.Errorf("broadcast rejected (code %d): %s", out[0].Code, out[0].Log)
	}
	return out[0].Hash, nil
}
