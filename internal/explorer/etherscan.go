package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Etherscan endpoints.
const (
	DefaultEtherscanURL        = "https://api.etherscan.io/api"
	DefaultEtherscanTestnetURL = "https://api-sepolia.etherscan.io/api"
)

// Etherscan wraps the etherscan-compatible account and gastracker modules
// used by the Ethereum adapter for history and fee estimation.
type Etherscan struct {
	client  *Client
	baseURL string
	apiKey  string
}

// NewEtherscan builds an etherscan wrapper.
func NewEtherscan(client *Client, baseURL, apiKey string) *Etherscan {
	if baseURL == "" {
		baseURL = DefaultEtherscanURL
	}
	return &Etherscan{client: client, baseURL: baseURL, apiKey: apiKey}
}

type etherscanEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// get unwraps etherscan's {status, message, result} envelope. "No
// transactions found" is an empty result, not an error.
func (e *Etherscan) get(ctx context.Context, params url.Values, out interface{}) error {
	if e.apiKey != "" {
		params.Set("apikey", e.apiKey)
	}
	var env etherscanEnvelope
	if err := e.client.GetJSON(ctx, e.baseURL+"?"+params.Encode(), &env); err != nil {
		return err
	}
	if env.Status != "1" {
		if strings.Contains(env.Message, "No transactions found") {
			return nil
		}
		return fmt.Errorf("etherscan request failed: %s", env.Message)
	}
	return json.Unmarshal(env.Result, out)
}

// EtherscanTx is one entry of the account txlist (or tokentx) result. Values
// are decimal strings in base units (wei, or token base units).
type EtherscanTx struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	GasPrice        string `json:"gasPrice"`
	GasUsed         string `json:"gasUsed"`
	IsError         string `json:"isError"`
	ContractAddress string `json:"contractAddress"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
}

// TxList fetches normal transactions of an address, most recent first.
// Etherscan pages are 1-based.
func (e *Etherscan) TxList(ctx context.Context, address string, page, pageSize int) ([]EtherscanTx, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "txlist")
	params.Set("address", address)
	params.Set("page", fmt.Sprint(page))
	params.Set("offset", fmt.Sprint(pageSize))
	params.Set("sort", "desc")

	var out []EtherscanTx
	if err := e.get(ctx, params, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return out, nil
}

// TokenTx fetches ERC-20 transfer events of an address, optionally filtered
// by token contract.
func (e *Etherscan) TokenTx(ctx context.Context, address, contract string, page, pageSize int) ([]EtherscanTx, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "tokentx")
	params.Set("address", address)
	if contract != "" {
		params.Set("contractaddress", contract)
	}
	params.Set("page", fmt.Sprint(page))
	params.Set("offset", fmt.Sprint(pageSize))
	params.Set("sort", "desc")

	var out []EtherscanTx
	if err := e.get(ctx, params, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch token transfers: %w", err)
	}
	return out, nil
}

// GasOracle is the etherscan gas tracker result, prices in gwei.
type GasOracle struct {
	SafeGasPrice    string `json:"SafeGasPrice"`
	ProposeGasPrice string `json:"ProposeGasPrice"`
	FastGasPrice    string `json:"FastGasPrice"`
}

// GasOracle fetches the current gas price tiers.
func (e *Etherscan) GasOracle(ctx context.Context) (*GasOracle, error) {
	params := url.Values{}
	params.Set("module", "gastracker")
	params.Set("action", "gasoracle")

	var out GasOracle
	if err := e.get(ctx, params, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch gas oracle: %w", err)
	}
	return &out, nil
}
