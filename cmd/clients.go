package cmd

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/chains/binance"
	"github.com/armadahq/armada/chains/bitcoin"
	"github.com/armadahq/armada/chains/bitcoincash"
	"github.com/armadahq/armada/chains/cosmos"
	"github.com/armadahq/armada/chains/ethereum"
	"github.com/armadahq/armada/chains/litecoin"
	"github.com/armadahq/armada/chains/polkadot"
	"github.com/armadahq/armada/chains/thorchain"
	"github.com/armadahq/armada/internal/explorer"
	"github.com/armadahq/armada/wallet"
)

// newRegistry constructs every chain client against the current keychain.
// Endpoint URLs and explorer API keys come from the config; all defaults are
// public endpoints.
func newRegistry(keychain *wallet.Keychain, logger *zap.Logger) (*chain.Registry, error) {
	network := keychain.Network()
	rest := explorer.New(explorer.WithLogger(logger))
	registry := chain.NewRegistry()

	btc, err := bitcoin.NewClient(bitcoin.Config{
		Network:    network,
		Keychain:   keychain,
		SoChainURL: viper.GetString("bitcoin.sochain_url"),
		FeeURL:     viper.GetString("bitcoin.fee_url"),
		Explorer:   rest,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("bitcoin: %w", err)
	}
	registry.Register(btc)

	ltc, err := litecoin.NewClient(litecoin.Config{
		Network:    network,
		Keychain:   keychain,
		SoChainURL: viper.GetString("litecoin.sochain_url"),
		FeeURL:     viper.GetString("litecoin.fee_url"),
		Explorer:   rest,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("litecoin: %w", err)
	}
	registry.Register(ltc)

	bch, err := bitcoincash.NewClient(bitcoincash.Config{
		Network:    network,
		Keychain:   keychain,
		HaskoinURL: viper.GetString("bitcoincash.haskoin_url"),
		Explorer:   rest,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("bitcoincash: %w", err)
	}
	registry.Register(bch)

	eth, err := ethereum.NewClient(ethereum.Config{
		Network:         network,
		Keychain:        keychain,
		RPCURL:          viper.GetString("ethereum.rpc_url"),
		EtherscanURL:    viper.GetString("ethereum.etherscan_url"),
		EtherscanAPIKey: viper.GetString("ethereum.etherscan_api_key"),
		EthplorerURL:    viper.GetString("ethereum.ethplorer_url"),
		EthplorerAPIKey: viper.GetString("ethereum.ethplorer_api_key"),
		Explorer:        rest,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("ethereum: %w", err)
	}
	registry.Register(eth)

	bnb, err := binance.NewClient(binance.Config{
		Network:  network,
		Keychain: keychain,
		DexURL:   viper.GetString("binance.dex_url"),
		Explorer: rest,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("binance: %w", err)
	}
	registry.Register(bnb)

	gaia, err := cosmos.NewClient(cosmos.Config{
		Network:  network,
		Keychain: keychain,
		LCDURL:   viper.GetString("cosmos.lcd_url"),
		Explorer: rest,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("cosmos: %w", err)
	}
	registry.Register(gaia)

	thor, err := thorchain.NewClient(thorchain.Config{
		Network:  network,
		Keychain: keychain,
		NodeURL:  viper.GetString("thorchain.node_url"),
		Explorer: rest,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("thorchain: %w", err)
	}
	registry.Register(thor)

	dot, err := polkadot.NewClient(polkadot.Config{
		Network:       network,
		Keychain:      keychain,
		RPCURL:        viper.GetString("polkadot.rpc_url"),
		SubscanURL:    viper.GetString("polkadot.subscan_url"),
		SubscanAPIKey: viper.GetString("polkadot.subscan_api_key"),
		Explorer:      rest,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("polkadot: %w", err)
	}
	registry.Register(dot)

	return registry, nil
}

// clientFor resolves a chain argument like "btc" or "GAIA" against a freshly
// built registry. The wallet must be unlocked.
func clientFor(manager *wallet.Manager, logger *zap.Logger, arg string) (chain.Client, error) {
	id, err := chain.ParseID(arg)
	if err != nil {
		return nil, fmt.Errorf("unsupported chain: %s. Supported chains: btc, bch, ltc, eth, bnb, gaia, thor, dot", arg)
	}

	keychain, err := manager.Keychain()
	if err != nil {
		return nil, err
	}
	registry, err := newRegistry(keychain, logger)
	if err != nil {
		return nil, err
	}
	return registry.Get(id)
}
