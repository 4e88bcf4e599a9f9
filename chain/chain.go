// Package chain defines the common model shared by every per-blockchain
// client adapter: chain identifiers, assets, the transaction and balance
// shapes, the three-tier fee model, and the Client interface all adapters
// implement.
package chain

import (
	"fmt"
	"strings"
)

// ID identifies a supported blockchain.
type ID string

// Supported chains.
const (
	BTC  ID = "BTC"
	BCH  ID = "BCH"
	LTC  ID = "LTC"
	ETH  ID = "ETH"
	BNB  ID = "BNB"
	GAIA ID = "GAIA"
	THOR ID = "THOR"
	DOT  ID = "DOT"
)

// Network selects the chain environment a client talks to.
type Network string

// Network constants.
const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

// All returns every supported chain ID in a stable order.
func All() []ID {
	return []ID{BTC, BCH, LTC, ETH, BNB, GAIA, THOR, DOT}
}

// String returns the chain ticker.
func (id ID) String() string {
	return string(id)
}

// Valid reports whether the ID names a supported chain.
func (id ID) Valid() bool {
	switch id {
	case BTC, BCH, LTC, ETH, BNB, GAIA, THOR, DOT:
		return true
	}
	return false
}

// Symbol returns the native asset ticker for the chain.
func (id ID) Symbol() string {
	switch id {
	case GAIA:
		return "ATOM"
	case THOR:
		return "RUNE"
	default:
		return string(id)
	}
}

// CoinType returns the BIP-44 coin type registered for the chain. Testnets
// use coin type 1 per SLIP-44.
func (id ID) CoinType(network Network) uint32 {
	if network == Testnet {
		return 1
	}
	switch id {
	case BTC:
		return 0
	case LTC:
		return 2
	case ETH:
		return 60
	case BCH:
		return 145
	case BNB:
		return 714
	case GAIA:
		return 118
	case THOR:
		return 931
	case DOT:
		return 354
	default:
		return 0
	}
}

// Decimals returns the number of decimal places of the chain's native asset.
func (id ID) Decimals() int32 {
	switch id {
	case BTC, BCH, LTC, BNB, THOR:
		return 8
	case ETH:
		return 18
	case GAIA:
		return 6
	case DOT:
		return 10
	default:
		return 8
	}
}

// ParseID parses a chain ticker, case-insensitively matching a known chain.
func ParseID(s string) (ID, error) {
	for _, id := range All() {
		if strings.EqualFold(string(id), s) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedChain, s)
}
