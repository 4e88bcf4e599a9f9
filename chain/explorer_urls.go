package chain

import "fmt"

// explorerBase returns the public block-explorer host for a chain and
// network.
func explorerBase(id ID, network Network) string {
	mainnet := network != Testnet
	switch id {
	case BTC:
		if mainnet {
			return "https://mempool.space"
		}
		return "https://mempool.space/testnet"
	case BCH:
		if mainnet {
			return "https://blockchair.com/bitcoin-cash"
		}
		return "https://www.blockchain.com/bch-testnet"
	case LTC:
		if mainnet {
			return "https://litecoinspace.org"
		}
		return "https://litecoinspace.org/testnet"
	case ETH:
		if mainnet {
			return "https://etherscan.io"
		}
		return "https://sepolia.etherscan.io"
	case BNB:
		if mainnet {
			return "https://explorer.bnbchain.org"
		}
		return "https://testnet-explorer.bnbchain.org"
	case GAIA:
		if mainnet {
			return "https://www.mintscan.io/cosmos"
		}
		return "https://explorer.theta-testnet.polypore.xyz"
	case THOR:
		if mainnet {
			return "https://runescan.io"
		}
		return "https://runescan.io/?network=stagenet"
	case DOT:
		if mainnet {
			return "https://polkadot.subscan.io"
		}
		return "https://westend.subscan.io"
	}
	return ""
}

// ExplorerTxURL returns a browser link to a transaction on the chain's
// public explorer.
func ExplorerTxURL(id ID, network Network, txID string) string {
	base := explorerBase(id, network)
	if base == "" {
		return ""
	}
	switch id {
	case BCH:
		return fmt.Sprintf("%s/transaction/%s", base, txID)
	case GAIA:
		return fmt.Sprintf("%s/txs/%s", base, txID)
	case DOT:
		return fmt.Sprintf("%s/extrinsic/%s", base, txID)
	default:
		return fmt.Sprintf("%s/tx/%s", base, txID)
	}
}

// ExplorerAddressURL returns a browser link to an address on the chain's
// public explorer.
func ExplorerAddressURL(id ID, network Network, address string) string {
	base := explorerBase(id, network)
	if base == "" {
		return ""
	}
	switch id {
	case GAIA:
		return fmt.Sprintf("%s/account/%s", base, address)
	case DOT:
		return fmt.Sprintf("%s/account/%s", base, address)
	default:
		return fmt.Sprintf("%s/address/%s", base, address)
	}
}
