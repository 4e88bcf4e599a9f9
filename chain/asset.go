package chain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Asset identifies what is being held or moved: a chain plus a ticker, and
// for tokens (ERC-20, BEP-2) the on-chain identifier of the contract or
// symbol. The string form is "CHAIN.TICKER" or "CHAIN.TICKER-ID", e.g.
// "BTC.BTC", "ETH.USDT-0xdac17f958d2ee523a2206206994597c13d831ec7".
type Asset struct {
	Chain  ID
	Ticker string
	// TokenID is the contract address (Ethereum) or full dex symbol
	// (Binance Chain) for non-native assets. Empty for native assets.
	TokenID string
}

// NativeAsset returns the native asset of a chain.
func NativeAsset(id ID) Asset {
	return Asset{Chain: id, Ticker: id.Symbol()}
}

// IsNative reports whether the asset is the chain's native asset.
func (a Asset) IsNative() bool {
	return a.TokenID == "" && a.Ticker == a.Chain.Symbol()
}

// String renders the asset in CHAIN.TICKER[-ID] notation.
func (a Asset) String() string {
	if a.TokenID == "" {
		return fmt.Sprintf("%s.%s", a.Chain, a.Ticker)
	}
	return fmt.Sprintf("%s.%s-%s", a.Chain, a.Ticker, a.TokenID)
}

// ParseAsset parses CHAIN.TICKER[-ID] notation.
func ParseAsset(s string) (Asset, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 || parts[1] == "" {
		return Asset{}, fmt.Errorf("invalid asset %q: want CHAIN.TICKER", s)
	}
	id, err := ParseID(parts[0])
	if err != nil {
		return Asset{}, err
	}
	ticker, tokenID := parts[1], ""
	if i := strings.Index(parts[1], "-"); i > 0 {
		ticker, tokenID = parts[1][:i], parts[1][i+1:]
	}
	return Asset{Chain: id, Ticker: strings.ToUpper(ticker), TokenID: tokenID}, nil
}

// FromBaseUnits converts an amount of base units (satoshi, wei, uatom...)
// into asset units using the given number of decimals.
func FromBaseUnits(base decimal.Decimal, decimals int32) decimal.Decimal {
	return base.Shift(-decimals)
}

// ToBaseUnits converts an asset-unit amount into whole base units,
// truncating any precision beyond the asset's decimals.
func ToBaseUnits(amount decimal.Decimal, decimals int32) decimal.Decimal {
	return amount.Shift(decimals).Truncate(0)
}
