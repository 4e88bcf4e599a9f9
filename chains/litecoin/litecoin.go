// Package litecoin adapts the Litecoin chain. Litecoin is wire compatible
// with Bitcoin, so the client reuses the shared UTXO engine with Litecoin
// chain parameters, ltc bech32 addresses and litecoinspace fee rates.
package litecoin

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/chains/utxo"
	"github.com/armadahq/armada/internal/explorer"
	"github.com/armadahq/armada/wallet"
)

// MainNetParams are the Litecoin mainnet parameters carried in the btcd
// params shape. Only the fields address encoding and signing touch are
// populated.
var MainNetParams = chaincfg.Params{
	Name:             "ltc-mainnet",
	Net:              wire.BitcoinNet(0xdbb6c0fb),
	PubKeyHashAddrID: 0x30,
	ScriptHashAddrID: 0x32,
	PrivateKeyID:     0xb0,
	Bech32HRPSegwit:  "ltc",
	HDCoinType:       2,
}

// TestNetParams are the Litecoin testnet4 parameters.
var TestNetParams = chaincfg.Params{
	Name:             "ltc-testnet4",
	Net:              wire.BitcoinNet(0xf1c8d2fd),
	PubKeyHashAddrID: 0x6f,
	ScriptHashAddrID: 0x3a,
	PrivateKeyID:     0xef,
	Bech32HRPSegwit:  "tltc",
	HDCoinType:       1,
}

func init() {
	for _, params := range []*chaincfg.Params{&MainNetParams, &TestNetParams} {
		err := chaincfg.Register(params)
		if err != nil && !errors.Is(err, chaincfg.ErrDuplicateNet) {
			panic(fmt.Sprintf("failed to register litecoin params: %v", err))
		}
	}
}

// Config configures a Litecoin client.
type Config struct {
	Network  chain.Network    `validate:"required,oneof=mainnet testnet"`
	Keychain *wallet.Keychain `validate:"required"`

	SoChainURL string
	FeeURL     string

	Explorer *explorer.Client
	Logger   *zap.Logger
}

// NewClient builds a Litecoin client.
func NewClient(cfg Config) (*utxo.Client, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid litecoin config: %w", err)
	}

	params := &MainNetParams
	netCode := "LTC"
	if cfg.Network == chain.Testnet {
		params = &TestNetParams
		netCode = "LTCTEST"
	}

	rest := cfg.Explorer
	if rest == nil {
		rest = explorer.New(explorer.WithLogger(cfg.Logger))
	}
	feeURL := cfg.FeeURL
	if feeURL == "" && cfg.Network == chain.Mainnet {
		feeURL = explorer.DefaultLitecoinFeeURL
	}

	return utxo.NewClient(utxo.ClientConfig{
		ID:        chain.LTC,
		Network:   cfg.Network,
		Params:    params,
		NetCode:   netCode,
		Keychain:  cfg.Keychain,
		SoChain:   explorer.NewSoChain(rest, cfg.SoChainURL),
		FeeSource: explorer.NewFeeSource(rest, feeURL, explorer.FallbackFeeRateLTC),
		Logger:    cfg.Logger,
	}), nil
}
