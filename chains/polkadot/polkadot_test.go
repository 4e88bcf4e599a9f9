package polkadot

import (
	"context"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/internal/explorer"
	"github.com/armadahq/armada/wallet"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// Alice's well-known development key.
const alicePubKeyHex = "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"

func testKeychain(t *testing.T) *wallet.Keychain {
	t.Helper()
	kc, err := wallet.NewKeychain(testMnemonic, "", chain.Mainnet)
	require.NoError(t, err)
	return kc
}

func testClient(t *testing.T, subscanURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		Network:    chain.Mainnet,
		Keychain:   testKeychain(t),
		SubscanURL: subscanURL,
		Explorer:   explorer.New(explorer.WithRateLimit(1000)),
	})
	require.NoError(t, err)
	return client
}

func TestSS58KnownVectors(t *testing.T) {
	t.Parallel()

	pubKey, err := hex.DecodeString(alicePubKeyHex)
	require.NoError(t, err)

	mainnet, err := EncodeSS58(PolkadotNetwork, pubKey)
	require.NoError(t, err)
	assert.Equal(t, "15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp5", mainnet)

	westend, err := EncodeSS58(WestendNetwork, pubKey)
	require.NoError(t, err)
	assert.Equal(t, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", westend)

	network, decoded, err := DecodeSS58(mainnet)
	require.NoError(t, err)
	assert.Equal(t, PolkadotNetwork, network)
	assert.Equal(t, pubKey, decoded)
}

func TestDecodeSS58Rejects(t *testing.T) {
	t.Parallel()

	_, _, err := DecodeSS58("not-base58-0OIl")
	assert.ErrorIs(t, err, chain.ErrInvalidAddress)

	_, _, err = DecodeSS58("abc")
	assert.ErrorIs(t, err, chain.ErrInvalidAddress)

	// Flip the last character to corrupt the checksum.
	_, _, err = DecodeSS58("15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp4")
	assert.ErrorIs(t, err, chain.ErrInvalidAddress)
}

func TestAddressDerivation(t *testing.T) {
	t.Parallel()

	client := testClient(t, "http://unused")

	addr, err := client.Address(0)
	require.NoError(t, err)
	network, _, err := DecodeSS58(addr)
	require.NoError(t, err)
	assert.Equal(t, PolkadotNetwork, network)
	assert.NoError(t, client.ValidateAddress(addr))

	addr1, err := client.Address(1)
	require.NoError(t, err)
	assert.NotEqual(t, addr, addr1)

	again, err := client.Address(0)
	require.NoError(t, err)
	assert.Equal(t, addr, again)

	// Westend addresses fail on mainnet.
	err = client.ValidateAddress("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY")
	assert.ErrorIs(t, err, chain.ErrInvalidAddress)
}

func TestBalancesInPlanck(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/scan/search", r.URL.Path)
		w.Write([]byte(`{"code":0,"message":"Success","data":{"account":{"address":"1abc","balance":"1.5","nonce":3}}}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	balances, err := client.Balances(context.Background(), "1abc")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "15000000000", balances[0].Amount.String())
}

func TestTransactionsMapping(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/scan/transfers", r.URL.Path)
		w.Write([]byte(`{"code":0,"data":{"count":1,"transfers":[{
			"hash":"0xabc","block_num":500,"block_timestamp":1700000000,
			"from":"1from","to":"1to","amount":"2.5","fee":"161331674","success":true}]}}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	page, err := client.Transactions(context.Background(), chain.TxHistoryParams{Address: "1from"})
	require.NoError(t, err)

	require.Len(t, page.Txs, 1)
	tx := page.Txs[0]
	assert.Equal(t, "0xabc", tx.Hash)
	assert.Equal(t, "25000000000", tx.From[0].Amount.String())
	assert.Equal(t, "161331674", tx.Fee.String())
	assert.Equal(t, int64(500), tx.BlockHeight)

	_, err = client.Transactions(context.Background(), chain.TxHistoryParams{
		Address: "1from", Offset: 5, Limit: 10,
	})
	require.Error(t, err)
}

func TestTransactionNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"message":"Success","data":null}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, err := client.Transaction(context.Background(), "0xdead")
	assert.ErrorIs(t, err, chain.ErrTxNotFound)
}

func TestFeesAreFlat(t *testing.T) {
	t.Parallel()

	client := testClient(t, "http://unused")
	fees, err := client.Fees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, chain.FeeFlat, fees.Type)
	assert.Equal(t, "161331674", fees.Fast.String())
}
