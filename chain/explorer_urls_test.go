package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplorerTxURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://mempool.space/tx/abc", ExplorerTxURL(BTC, Mainnet, "abc"))
	assert.Equal(t, "https://sepolia.etherscan.io/tx/0xdef", ExplorerTxURL(ETH, Testnet, "0xdef"))
	assert.Equal(t, "https://polkadot.subscan.io/extrinsic/0x1", ExplorerTxURL(DOT, Mainnet, "0x1"))
	assert.Equal(t, "https://blockchair.com/bitcoin-cash/transaction/abc", ExplorerTxURL(BCH, Mainnet, "abc"))
	assert.Empty(t, ExplorerTxURL(ID("XYZ"), Mainnet, "abc"))
}

func TestExplorerAddressURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://litecoinspace.org/address/ltc1q", ExplorerAddressURL(LTC, Mainnet, "ltc1q"))
	assert.Equal(t, "https://www.mintscan.io/cosmos/account/cosmos1x", ExplorerAddressURL(GAIA, Mainnet, "cosmos1x"))
}
