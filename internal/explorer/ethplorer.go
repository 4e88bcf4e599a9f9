package explorer

import (
	"context"
	"encoding/json"
	"fmt"
)

// Ethplorer endpoints. The public "freekey" works for low request volumes.
const (
	DefaultEthplorerURL    = "https://api.ethplorer.io"
	DefaultEthplorerAPIKey = "freekey"
)

// Ethplorer wraps the ethplorer address-info endpoint, the source of ERC-20
// token balances for the Ethereum adapter.
type Ethplorer struct {
	client  *Client
	baseURL string
	apiKey  string
}

// NewEthplorer builds an ethplorer wrapper.
func NewEthplorer(client *Client, baseURL, apiKey string) *Ethplorer {
	if baseURL == "" {
		baseURL = DefaultEthplorerURL
	}
	if apiKey == "" {
		apiKey = DefaultEthplorerAPIKey
	}
	return &Ethplorer{client: client, baseURL: baseURL, apiKey: apiKey}
}

// EthplorerTokenInfo describes a token contract. Decimals arrive as either a
// number or a string depending on the token, hence json.Number.
type EthplorerTokenInfo struct {
	Address  string      `json:"address"`
	Symbol   string      `json:"symbol"`
	Decimals json.Number `json:"decimals"`
}

// EthplorerToken is one token position of an address. RawBalance is the
// balance in token base units as a decimal string.
type EthplorerToken struct {
	TokenInfo  EthplorerTokenInfo `json:"tokenInfo"`
	RawBalance string             `json:"rawBalance"`
}

// EthplorerAddressInfo is the address-info response.
type EthplorerAddressInfo struct {
	ETH struct {
		RawBalance string `json:"rawBalance"`
	} `json:"ETH"`
	Tokens []EthplorerToken `json:"tokens"`
}

// AddressInfo fetches the ETH and token balances of an address.
func (e *Ethplorer) AddressInfo(ctx context.Context, address string) (*EthplorerAddressInfo, error) {
	var out EthplorerAddressInfo
	url := fmt.Sprintf("%s/getAddressInfo/%s?apiKey=%s", e.baseURL, address, e.apiKey)
	if err := e.client.GetJSON(ctx, url, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch address info: %w", err)
	}
	return &out, nil
}
