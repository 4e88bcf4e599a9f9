package thorchain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/chains/cosmos"
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

func testClient(t *testing.T, nodeURL string) *cosmos.Client {
	t.Helper()
	client, err := NewClient(Config{
		Network:  chain.Mainnet,
		Keychain: testKeychain(t),
		NodeURL:  nodeURL,
		Explorer: explorer.New(explorer.WithRateLimit(1000)),
	})
	require.NoError(t, err)
	return client
}

func TestAddressDerivation(t *testing.T) {
	t.Parallel()

	client := testClient(t, "http://unused")

	addr, err := client.Address(0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(addr, "thor1"))
	assert.NoError(t, client.ValidateAddress(addr))

	// A Cosmos Hub address fails under the thor prefix.
	err = client.ValidateAddress("cosmos1g3jjhgkyf36pjhe7u5cw8j9u6cgl8x929ej430")
	assert.ErrorIs(t, err, chain.ErrInvalidAddress)
}

func TestFeesFromNodeConstants(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/thorchain/constants", r.URL.Path)
		w.Write([]byte(`{"int_64_values":{"NativeTransactionFee":2000000}}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	fees, err := client.Fees(context.Background())
	require.NoError(t, err)

	assert.Equal(t, chain.FeeFlat, fees.Type)
	assert.Equal(t, "2000000", fees.Fast.String())
}

func TestFeesFallBackWhenNodeUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		Network:  chain.Mainnet,
		Keychain: testKeychain(t),
		NodeURL:  srv.URL,
		Explorer: explorer.New(explorer.WithRateLimit(1000), explorer.WithRetries(1)),
	})
	require.NoError(t, err)

	fees, err := client.Fees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2000000", fees.Fast.String())
}

func TestTransferCarriesNoFeeClause(t *testing.T) {
	t.Parallel()

	var broadcast struct {
		Tx   cosmos.StdTx `json:"tx"`
		Mode string       `json:"mode"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/auth/accounts/"):
			w.Write([]byte(`{"result":{"value":{"account_number":"9","sequence":"0"}}}`))
		case r.URL.Path == "/txs" && r.Method == http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&broadcast))
			w.Write([]byte(`{"txhash":"F00D","code":0}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	recipient, err := client.Address(1)
	require.NoError(t, err)

	hash, err := client.Transfer(context.Background(), chain.TransferParams{
		Recipient: recipient,
		Amount:    decimal.NewFromInt(50_000_000),
		Memo:      "SWAP:BTC.BTC",
	})
	require.NoError(t, err)
	assert.Equal(t, "F00D", hash)

	// The protocol deducts the native fee itself.
	assert.Empty(t, broadcast.Tx.Fee.Amount)
	require.Len(t, broadcast.Tx.Msg, 1)
	assert.Equal(t, "thorchain/MsgSend", broadcast.Tx.Msg[0].Type)
	assert.Equal(t, cosmos.Coin{Amount: "50000000", Denom: "rune"},
		broadcast.Tx.Msg[0].Value.Amount[0])
	assert.Equal(t, "SWAP:BTC.BTC", broadcast.Tx.Memo)
}
