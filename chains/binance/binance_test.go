package binance

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"io"
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

func testClient(t *testing.T, dexURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		Network:  chain.Mainnet,
		Keychain: testKeychain(t),
		DexURL:   dexURL,
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
	assert.True(t, strings.HasPrefix(addr, "bnb1"))
	assert.NoError(t, client.ValidateAddress(addr))

	again, err := client.Address(0)
	require.NoError(t, err)
	assert.Equal(t, addr, again)

	err = client.ValidateAddress("tbnb1fg9ks3m5y6kj2ze6cfeq3yxyx9vyyvyyvyyvyy")
	assert.ErrorIs(t, err, chain.ErrInvalidAddress)
	err = client.ValidateAddress("garbage")
	assert.ErrorIs(t, err, chain.ErrInvalidAddress)
}

func TestAssetSymbolMapping(t *testing.T) {
	t.Parallel()

	assert.Equal(t, chain.NativeAsset(chain.BNB), assetFromSymbol("BNB"))

	busd := assetFromSymbol("BUSD-BD1")
	assert.Equal(t, "BUSD", busd.Ticker)
	assert.Equal(t, "BD1", busd.TokenID)
	assert.Equal(t, "BUSD-BD1", symbolFromAsset(busd))

	assert.Equal(t, "BNB", symbolFromAsset(chain.Asset{}))
}

func TestSendSignBytesCanonical(t *testing.T) {
	t.Parallel()

	bz, err := sendSignBytes("Binance-Chain-Tigris", 42, 7,
		"bnb1from", "bnb1to", "BNB", 100, "hi")
	require.NoError(t, err)

	assert.Equal(t, `{"account_number":"42","chain_id":"Binance-Chain-Tigris",`+
		`"data":null,"memo":"hi",`+
		`"msgs":[{"inputs":[{"address":"bnb1from","coins":[{"amount":100,"denom":"BNB"}]}],`+
		`"outputs":[{"address":"bnb1to","coins":[{"amount":100,"denom":"BNB"}]}]}],`+
		`"sequence":"7","source":"0"}`, string(bz))
}

func TestSendSignBytesEscapeHTML(t *testing.T) {
	t.Parallel()

	bz, err := sendSignBytes("Binance-Chain-Tigris", 42, 7,
		"bnb1from", "bnb1to", "BNB", 100, "a&b <c>")
	require.NoError(t, err)
	assert.Contains(t, string(bz), `"memo":"a&b <c>"`)
	assert.NotContains(t, string(bz), "&")
}

func TestAminoEncoding(t *testing.T) {
	t.Parallel()

	from := bytes.Repeat([]byte{0x01}, 20)
	to := bytes.Repeat([]byte{0x02}, 20)
	msg := encodeSendMsg(from, to, "BNB", 100)

	// Message carries its registered type prefix.
	assert.Equal(t, []byte{0x2A, 0x2C, 0x87, 0xFA}, msg[:4])
	assert.Contains(t, string(msg), "BNB")

	sig := encodeStdSignature(bytes.Repeat([]byte{0x03}, 33), bytes.Repeat([]byte{0x04}, 64), 42, 7)
	// Field 1 wraps the amino pubkey: prefix, length 33, key bytes.
	assert.Equal(t, byte(0x0A), sig[0])
	assert.Equal(t, []byte{0xEB, 0x5A, 0xE9, 0x87, 0x21}, sig[2:7])

	tx := encodeStdTx(msg, sig, "memo", 0)
	// Outer uvarint length covers everything after it.
	length, n := binary.Uvarint(tx)
	require.Greater(t, n, 0)
	assert.Equal(t, uint64(len(tx)-n), length)
	assert.Equal(t, []byte{0xF0, 0x62, 0x5D, 0xEE}, tx[n:n+4])
}

func TestBalancesInBaseUnits(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/api/v1/account/"))
		w.Write([]byte(`{"account_number":1,"sequence":2,"address":"bnb1abc","balances":[
			{"symbol":"BNB","free":"1.50000000","frozen":"0","locked":"0"},
			{"symbol":"BUSD-BD1","free":"0.00000099","frozen":"0","locked":"0"}]}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	balances, err := client.Balances(context.Background(), "bnb1abc")
	require.NoError(t, err)
	require.Len(t, balances, 2)

	assert.Equal(t, "150000000", balances[0].Amount.String())
	assert.Equal(t, "99", balances[1].Amount.String())
	assert.Equal(t, "BUSD", balances[1].Asset.Ticker)
}

func TestTransactionNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, err := client.Transaction(context.Background(), "DEADBEEF")
	assert.ErrorIs(t, err, chain.ErrTxNotFound)
}

func TestTransactionMalformedHeight(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hash":"AA11","height":"garbage","tx":{"value":{"msg":[],"memo":""}}}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	tx, err := client.Transaction(context.Background(), "AA11")
	require.NoError(t, err)
	assert.Zero(t, tx.BlockHeight)
}

func TestFees(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/fees", r.URL.Path)
		w.Write([]byte(`[{"fixed_fee_params":{"msg_type":"submit_proposal","fee":1000000000}},
			{"fixed_fee_params":{"msg_type":"send","fee":7500}}]`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	fees, err := client.Fees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, chain.FeeFlat, fees.Type)
	assert.Equal(t, "7500", fees.Fast.String())
}

func TestTransferEndToEnd(t *testing.T) {
	t.Parallel()

	var broadcastHex string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v1/account/"):
			w.Write([]byte(`{"account_number":42,"sequence":7,"address":"","balances":[]}`))
		case r.URL.Path == "/api/v1/broadcast":
			require.Equal(t, "true", r.URL.Query().Get("sync"))
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			broadcastHex = string(body)
			w.Write([]byte(`[{"hash":"C0FFEE","ok":true,"code":0}]`))
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
		Amount:    decimal.NewFromInt(100_000_000),
		Memo:      "order-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "C0FFEE", hash)

	raw, err := hex.DecodeString(broadcastHex)
	require.NoError(t, err)

	length, n := binary.Uvarint(raw)
	require.Greater(t, n, 0)
	assert.Equal(t, uint64(len(raw)-n), length)
	assert.Equal(t, []byte{0xF0, 0x62, 0x5D, 0xEE}, raw[n:n+4])
	assert.True(t, bytes.Contains(raw, []byte{0x2A, 0x2C, 0x87, 0xFA}))
	assert.True(t, bytes.Contains(raw, []byte{0xEB, 0x5A, 0xE9, 0x87}))
	assert.True(t, bytes.Contains(raw, []byte("order-1")))
	assert.True(t, bytes.Contains(raw, []byte("BNB")))
}

func TestTransferRejectsForeignAsset(t *testing.T) {
	t.Parallel()

	client := testClient(t, "http://unused")
	recipient, err := client.Address(1)
	require.NoError(t, err)

	_, err = client.Transfer(context.Background(), chain.TransferParams{
		Recipient: recipient,
		Amount:    decimal.NewFromInt(1),
		Asset:     chain.Asset{Chain: chain.ETH, Ticker: "USDT", TokenID: "0xdac17f"},
	})
	assert.ErrorIs(t, err, chain.ErrUnsupportedChain)
}
