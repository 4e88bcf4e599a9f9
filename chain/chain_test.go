package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{in: "BTC", want: BTC},
		{in: "btc", want: BTC},
		{in: "Thor", want: THOR},
		{in: "gaia", want: GAIA},
		{in: "DOGE", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseID(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			assert.ErrorIs(t, err, ErrUnsupportedChain)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestCoinTypes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0), BTC.CoinType(Mainnet))
	assert.Equal(t, uint32(2), LTC.CoinType(Mainnet))
	assert.Equal(t, uint32(145), BCH.CoinType(Mainnet))
	assert.Equal(t, uint32(60), ETH.CoinType(Mainnet))
	assert.Equal(t, uint32(714), BNB.CoinType(Mainnet))
	assert.Equal(t, uint32(118), GAIA.CoinType(Mainnet))
	assert.Equal(t, uint32(931), THOR.CoinType(Mainnet))
	assert.Equal(t, uint32(354), DOT.CoinType(Mainnet))

	// SLIP-44 testnet coin type for every chain.
	for _, id := range All() {
		assert.Equal(t, uint32(1), id.CoinType(Testnet), id)
	}
}

func TestSymbols(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ATOM", GAIA.Symbol())
	assert.Equal(t, "RUNE", THOR.Symbol())
	assert.Equal(t, "BTC", BTC.Symbol())
}
