// Package bitcoin adapts the Bitcoin chain: native-segwit addresses derived
// on BIP-84 paths, balances, history and broadcast through sochain, and fee
// rates from mempool.space.
package bitcoin

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/chains/utxo"
	"github.com/armadahq/armada/internal/explorer"
	"github.com/armadahq/armada/wallet"
)

// Config configures a Bitcoin client.
type Config struct {
	Network  chain.Network    `validate:"required,oneof=mainnet testnet"`
	Keychain *wallet.Keychain `validate:"required"`

	// SoChainURL and FeeURL override the public endpoints, mainly for
	// tests. Empty selects the defaults.
	SoChainURL string
	FeeURL     string

	Explorer *explorer.Client
	Logger   *zap.Logger
}

// NewClient builds a Bitcoin client.
func NewClient(cfg Config) (*utxo.Client, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid bitcoin config: %w", err)
	}

	params := &chaincfg.MainNetParams
	netCode := "BTC"
	if cfg.Network == chain.Testnet {
		params = &chaincfg.TestNet3Params
		netCode = "BTCTEST"
	}

	rest := cfg.Explorer
	if rest == nil {
		rest = explorer.New(explorer.WithLogger(cfg.Logger))
	}
	feeURL := cfg.FeeURL
	if feeURL == "" && cfg.Network == chain.Mainnet {
		feeURL = explorer.DefaultBitcoinFeeURL
	}

	return utxo.NewClient(utxo.ClientConfig{
		ID:        chain.BTC,
		Network:   cfg.Network,
		Params:    params,
		NetCode:   netCode,
		Keychain:  cfg.Keychain,
		SoChain:   explorer.NewSoChain(rest, cfg.SoChainURL),
		FeeSource: explorer.NewFeeSource(rest, feeURL, explorer.FallbackFeeRateBTC),
		Logger:    cfg.Logger,
	}), nil
}
