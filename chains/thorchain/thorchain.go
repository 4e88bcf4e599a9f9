// Package thorchain adapts THORChain, a Cosmos SDK chain with its own bech32
// prefix, message type and fee model. The heavy lifting lives in the cosmos
// package; this wrapper pins the THORChain constants and sources the
// protocol-fixed transfer fee from a thornode.
package thorchain

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/chains/cosmos"
	"github.com/armadahq/armada/internal/explorer"
	"github.com/armadahq/armada/wallet"
)

// THORChain chain IDs.
const (
	MainnetChainID  = "thorchain-mainnet-v1"
	StagenetChainID = "thorchain-stagenet-v2"
)

// fallbackNativeFee is used when the thornode constants endpoint is
// unreachable: 0.02 RUNE in 1e8 base units.
const fallbackNativeFee = 2_000_000

// Config configures a THORChain client.
type Config struct {
	Network  chain.Network    `validate:"required,oneof=mainnet testnet"`
	Keychain *wallet.Keychain `validate:"required"`

	// NodeURL overrides the public thornode endpoint. It serves both the
	// LCD API and the constants endpoint.
	NodeURL string

	Explorer *explorer.Client
	Logger   *zap.Logger
}

// NewClient builds a THORChain client.
func NewClient(cfg Config) (*cosmos.Client, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid thorchain config: %w", err)
	}

	chainID := MainnetChainID
	if cfg.Network == chain.Testnet {
		chainID = StagenetChainID
	}

	nodeURL := cfg.NodeURL
	if nodeURL == "" {
		nodeURL = explorer.DefaultTHORChainLCDURL
	}

	rest := cfg.Explorer
	if rest == nil {
		rest = explorer.New(explorer.WithLogger(cfg.Logger))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return cosmos.NewCustomClient(cosmos.Params{
		ID:      chain.THOR,
		Prefix:  "thor",
		ChainID: chainID,
		Denom:   "rune",
		MsgType: "thorchain/MsgSend",
		FlatFee: func(ctx context.Context) (int64, error) {
			fee, err := explorer.NativeTransactionFee(ctx, rest, nodeURL)
			if err != nil {
				logger.Warn("falling back to static native fee", zap.Error(err))
				return fallbackNativeFee, nil
			}
			return fee, nil
		},
		// THORChain deducts the native fee on-chain; the fee clause
		// stays empty.
		FeeInTx: false,
	}, cosmos.Config{
		Network:  cfg.Network,
		Keychain: cfg.Keychain,
		LCDURL:   nodeURL,
		Explorer: rest,
		Logger:   cfg.Logger,
	})
}
