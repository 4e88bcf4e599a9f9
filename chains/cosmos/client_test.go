package cosmos

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
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

func testClient(t *testing.T, lcdURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		Network:  chain.Mainnet,
		Keychain: testKeychain(t),
		LCDURL:   lcdURL,
		Explorer: explorer.New(explorer.WithRateLimit(1000)),
	})
	require.NoError(t, err)
	return client
}

func TestSignBytesCanonical(t *testing.T) {
	t.Parallel()

	fee := StdFee{Amount: []Coin{{Amount: "2000", Denom: "uatom"}}, Gas: "200000"}
	msgs := []Msg{{
		Type: "cosmos-sdk/MsgSend",
		Value: MsgSendValue{
			Amount:      []Coin{{Amount: "100", Denom: "uatom"}},
			FromAddress: "cosmos1from",
			ToAddress:   "cosmos1to",
		},
	}}

	bz, err := SignBytes("cosmoshub-4", 42, 7, fee, msgs, "hi")
	require.NoError(t, err)

	// Keys must appear in alphabetical order with numbers as strings.
	assert.Equal(t, `{"account_number":"42","chain_id":"cosmoshub-4",`+
		`"fee":{"amount":[{"amount":"2000","denom":"uatom"}],"gas":"200000"},`+
		`"memo":"hi",`+
		`"msgs":[{"type":"cosmos-sdk/MsgSend","value":{"amount":[{"amount":"100","denom":"uatom"}],`+
		`"from_address":"cosmos1from","to_address":"cosmos1to"}}],`+
		`"sequence":"7"}`, string(bz))
}

func TestSignBytesEscapeHTML(t *testing.T) {
	t.Parallel()

	fee := StdFee{Amount: []Coin{{Amount: "2000", Denom: "uatom"}}, Gas: "200000"}

	// Legacy amino StdSignBytes HTML-escapes memo characters, so signatures
	// only verify when we produce the same bytes.
	bz, err := SignBytes("cosmoshub-4", 42, 7, fee, nil, "a&b <c>")
	require.NoError(t, err)
	assert.Contains(t, string(bz), `"memo":"a&b <c>"`)
	assert.NotContains(t, string(bz), "&")
}

func TestAddressDerivation(t *testing.T) {
	t.Parallel()

	client := testClient(t, "http://unused")

	addr, err := client.Address(0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(addr, "cosmos1"))
	assert.NoError(t, client.ValidateAddress(addr))

	addr1, err := client.Address(1)
	require.NoError(t, err)
	assert.NotEqual(t, addr, addr1)

	again, err := client.Address(0)
	require.NoError(t, err)
	assert.Equal(t, addr, again)
}

func TestValidateAddress(t *testing.T) {
	t.Parallel()

	client := testClient(t, "http://unused")

	err := client.ValidateAddress("thor1dheycdevq39qlkxs2a6wuuzyn4aqxhve4qxtxt")
	assert.ErrorIs(t, err, chain.ErrInvalidAddress)

	err = client.ValidateAddress("not-an-address")
	assert.ErrorIs(t, err, chain.ErrInvalidAddress)
}

func TestBalances(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/bank/balances/"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": []map[string]string{
				{"denom": "uatom", "amount": "123456"},
				{"denom": "uosmo", "amount": "99"},
			},
		})
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	balances, err := client.Balances(context.Background(), "cosmos1abc")
	require.NoError(t, err)
	require.Len(t, balances, 2)

	assert.Equal(t, chain.NativeAsset(chain.GAIA), balances[0].Asset)
	assert.Equal(t, "123456", balances[0].Amount.String())
	assert.Equal(t, "UOSMO", balances[1].Asset.Ticker)
	assert.Equal(t, "99", balances[1].Amount.String())
}

func TestTransactionNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"tx not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, err := client.Transaction(context.Background(), "DEADBEEF")
	assert.ErrorIs(t, err, chain.ErrTxNotFound)
}

func TestTransactionMapping(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"txhash": "ABC123",
			"height": "1000",
			"timestamp": "2024-01-02T03:04:05Z",
			"tx": {"value": {
				"msg": [{"type": "cosmos-sdk/MsgSend", "value": {
					"from_address": "cosmos1from",
					"to_address": "cosmos1to",
					"amount": [{"denom": "uatom", "amount": "500"}]
				}}],
				"fee": {"amount": [{"denom": "uatom", "amount": "2000"}], "gas": "200000"},
				"memo": "rent"
			}}
		}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	tx, err := client.Transaction(context.Background(), "ABC123")
	require.NoError(t, err)

	assert.Equal(t, "ABC123", tx.Hash)
	assert.Equal(t, int64(1000), tx.BlockHeight)
	assert.Equal(t, "rent", tx.Memo)
	require.Len(t, tx.From, 1)
	assert.Equal(t, "cosmos1from", tx.From[0].Address)
	assert.Equal(t, "500", tx.From[0].Amount.String())
	require.Len(t, tx.To, 1)
	assert.Equal(t, "cosmos1to", tx.To[0].Address)
	assert.Equal(t, "2000", tx.Fee.String())
}

func TestTransactionMappingMalformedHeight(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"txhash": "ABC123", "height": "bogus", "tx": {"value": {}}}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	tx, err := client.Transaction(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Zero(t, tx.BlockHeight)
}

func TestTransactionsRejectMisalignedOffset(t *testing.T) {
	t.Parallel()

	client := testClient(t, "http://unused")
	_, err := client.Transactions(context.Background(), chain.TxHistoryParams{
		Address: "cosmos1addr", Offset: 7, Limit: 10,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple of limit")
}

func TestTransactionsMergeSentAndReceived(t *testing.T) {
	t.Parallel()

	txJSON := func(hash, height string) string {
		return `{"txhash":"` + hash + `","height":"` + height + `",` +
			`"timestamp":"2024-01-02T03:04:05Z","tx":{"value":{"msg":[],"memo":""}}}`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/txs", r.URL.Path)
		q := r.URL.Query()
		switch {
		case q.Get("message.sender") != "":
			w.Write([]byte(`{"total_count":"2","txs":[` +
				txJSON("AAA", "300") + "," + txJSON("BBB", "100") + `]}`))
		case q.Get("transfer.recipient") != "":
			// BBB shows up on both sides and must be deduplicated.
			w.Write([]byte(`{"total_count":"2","txs":[` +
				txJSON("CCC", "200") + "," + txJSON("BBB", "100") + `]}`))
		default:
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	page, err := client.Transactions(context.Background(), chain.TxHistoryParams{Address: "cosmos1abc"})
	require.NoError(t, err)

	require.Len(t, page.Txs, 3)
	assert.Equal(t, "AAA", page.Txs[0].Hash)
	assert.Equal(t, "CCC", page.Txs[1].Hash)
	assert.Equal(t, "BBB", page.Txs[2].Hash)
}

func TestFeesAreFlat(t *testing.T) {
	t.Parallel()

	client := testClient(t, "http://unused")
	fees, err := client.Fees(context.Background())
	require.NoError(t, err)

	assert.Equal(t, chain.FeeFlat, fees.Type)
	assert.Equal(t, "2000", fees.Average.String())
	assert.Equal(t, "2000", fees.Fastest.String())
}

func TestTransferEndToEnd(t *testing.T) {
	t.Parallel()

	var broadcast struct {
		Tx   StdTx  `json:"tx"`
		Mode string `json:"mode"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/auth/accounts/"):
			w.Write([]byte(`{"result":{"value":{"account_number":"42","sequence":"7"}}}`))
		case r.URL.Path == "/txs" && r.Method == http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&broadcast))
			w.Write([]byte(`{"txhash":"CAFED00D","code":0}`))
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
		Amount:    decimal.NewFromInt(100),
		Memo:      "lunch",
	})
	require.NoError(t, err)
	assert.Equal(t, "CAFED00D", hash)

	assert.Equal(t, "sync", broadcast.Mode)
	assert.Equal(t, "lunch", broadcast.Tx.Memo)
	require.Len(t, broadcast.Tx.Msg, 1)

	from, err := client.Address(0)
	require.NoError(t, err)
	msg := broadcast.Tx.Msg[0]
	assert.Equal(t, "cosmos-sdk/MsgSend", msg.Type)
	assert.Equal(t, from, msg.Value.FromAddress)
	assert.Equal(t, recipient, msg.Value.ToAddress)
	require.Len(t, msg.Value.Amount, 1)
	assert.Equal(t, Coin{Amount: "100", Denom: "uatom"}, msg.Value.Amount[0])

	require.Len(t, broadcast.Tx.Fee.Amount, 1)
	assert.Equal(t, Coin{Amount: "2000", Denom: "uatom"}, broadcast.Tx.Fee.Amount[0])

	require.Len(t, broadcast.Tx.Signatures, 1)
	sig := broadcast.Tx.Signatures[0]
	assert.Equal(t, PubKeySecp256k1, sig.PubKey.Type)
	rawSig, err := base64.StdEncoding.DecodeString(sig.Signature)
	require.NoError(t, err)
	assert.Len(t, rawSig, 64)
}

func TestTransferRejectsBadInput(t *testing.T) {
	t.Parallel()

	client := testClient(t, "http://unused")

	_, err := client.Transfer(context.Background(), chain.TransferParams{
		Recipient: "nope", Amount: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, chain.ErrInvalidAddress)

	recipient, err := client.Address(1)
	require.NoError(t, err)

	_, err = client.Transfer(context.Background(), chain.TransferParams{
		Recipient: recipient, Amount: decimal.RequireFromString("1.5"),
	})
	assert.ErrorIs(t, err, chain.ErrInvalidAmount)

	_, err = client.Transfer(context.Background(), chain.TransferParams{
		Recipient: recipient,
		Amount:    decimal.NewFromInt(1),
		Asset:     chain.Asset{Chain: chain.ETH, Ticker: "USDT", TokenID: "0xdac17f"},
	})
	assert.ErrorIs(t, err, chain.ErrUnsupportedChain)
}
