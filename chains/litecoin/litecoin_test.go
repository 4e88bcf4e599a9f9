package litecoin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/internal/explorer"
	"github.com/armadahq/armada/wallet"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testKeychain(t *testing.T) *wallet.Keychain {
	t.Helper()
	kc, err := wallet.NewKeychain(testMnemonic, "", chain.Mainnet)
	require.NoError(t, err)
	return kc
}

func TestAddressUsesLtcPrefix(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{Network: chain.Mainnet, Keychain: testKeychain(t)})
	require.NoError(t, err)

	addr, err := client.Address(0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(addr, "ltc1"), "got %s", addr)

	again, err := client.Address(0)
	require.NoError(t, err)
	assert.Equal(t, addr, again)
}

func TestAddressDiffersFromBitcoin(t *testing.T) {
	t.Parallel()

	kc := testKeychain(t)
	client, err := NewClient(Config{Network: chain.Mainnet, Keychain: kc})
	require.NoError(t, err)

	// Coin type 2 plus the ltc prefix must never reproduce a Bitcoin
	// address.
	addr, err := client.Address(0)
	require.NoError(t, err)
	assert.NotEqual(t, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", addr)
}

func TestValidateAddress(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{Network: chain.Mainnet, Keychain: testKeychain(t)})
	require.NoError(t, err)

	own, err := client.Address(0)
	require.NoError(t, err)
	assert.NoError(t, client.ValidateAddress(own))

	// Bitcoin bech32 addresses do not verify against the ltc prefix.
	err = client.ValidateAddress("bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu")
	require.ErrorIs(t, err, chain.ErrInvalidAddress)
}

func TestBalancesUsesLitecoinNetwork(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/get_address_balance/LTC/")
		w.Write([]byte(`{"status":"success","data":{"confirmed_balance":"1.5","unconfirmed_balance":"0"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		Network: chain.Mainnet, Keychain: testKeychain(t), SoChainURL: srv.URL,
		Explorer: explorer.New(explorer.WithRateLimit(1000)),
	})
	require.NoError(t, err)

	balances, err := client.Balances(context.Background(), "ltc1qexample")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, chain.NativeAsset(chain.LTC), balances[0].Asset)
	assert.Equal(t, "150000000", balances[0].Amount.String())
}
