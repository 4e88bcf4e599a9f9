package bitcoin

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
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

func TestNewClientValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{Network: chain.Mainnet})
	require.Error(t, err)

	_, err = NewClient(Config{Network: "regtest", Keychain: testKeychain(t)})
	require.Error(t, err)
}

func TestAddressDerivation(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{Network: chain.Mainnet, Keychain: testKeychain(t)})
	require.NoError(t, err)

	// BIP-84 reference vector for the all-abandon mnemonic at m/84'/0'/0'/0/0.
	addr, err := client.Address(0)
	require.NoError(t, err)
	assert.Equal(t, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", addr)

	// Different indexes derive different addresses, same index repeats.
	addr1, err := client.Address(1)
	require.NoError(t, err)
	assert.NotEqual(t, addr, addr1)

	again, err := client.Address(0)
	require.NoError(t, err)
	assert.Equal(t, addr, again)
}

func TestTestnetAddressPrefix(t *testing.T) {
	t.Parallel()

	kc, err := wallet.NewKeychain(testMnemonic, "", chain.Testnet)
	require.NoError(t, err)
	client, err := NewClient(Config{Network: chain.Testnet, Keychain: kc})
	require.NoError(t, err)

	addr, err := client.Address(0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(addr, "tb1"))
}

func TestValidateAddress(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{Network: chain.Mainnet, Keychain: testKeychain(t)})
	require.NoError(t, err)

	assert.NoError(t, client.ValidateAddress("bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"))
	assert.NoError(t, client.ValidateAddress("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"))

	err = client.ValidateAddress("not-an-address")
	require.ErrorIs(t, err, chain.ErrInvalidAddress)

	// Testnet address on a mainnet client.
	err = client.ValidateAddress("tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx")
	require.ErrorIs(t, err, chain.ErrInvalidAddress)
}

func TestBalances(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/get_address_balance/BTC/")
		w.Write([]byte(`{"status":"success","data":{"confirmed_balance":"0.5","unconfirmed_balance":"0.25"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		Network: chain.Mainnet, Keychain: testKeychain(t), SoChainURL: srv.URL,
		Explorer: explorer.New(explorer.WithRateLimit(1000)),
	})
	require.NoError(t, err)

	balances, err := client.Balances(context.Background(), "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, chain.NativeAsset(chain.BTC), balances[0].Asset)
	assert.Equal(t, "75000000", balances[0].Amount.String())
}

func TestTransactionNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail","data":{}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		Network: chain.Mainnet, Keychain: testKeychain(t), SoChainURL: srv.URL,
		Explorer: explorer.New(explorer.WithRateLimit(1000)),
	})
	require.NoError(t, err)

	_, err = client.Transaction(context.Background(), "ffff")
	require.ErrorIs(t, err, chain.ErrTxNotFound)
}

func TestFeesQuotesPerByteTiers(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"fastestFee":30,"halfHourFee":20,"hourFee":10}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		Network: chain.Mainnet, Keychain: testKeychain(t), FeeURL: srv.URL,
		Explorer: explorer.New(explorer.WithRateLimit(1000)),
	})
	require.NoError(t, err)

	fees, err := client.Fees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, chain.FeePerByte, fees.Type)
	assert.True(t, fees.Average.LessThan(fees.Fast))
	assert.True(t, fees.Fast.LessThan(fees.Fastest))
}

func TestTransferEndToEnd(t *testing.T) {
	t.Parallel()

	kc := testKeychain(t)

	// The UTXO set served by the fake explorer must be locked to the
	// wallet's own script for signing to validate.
	priv, err := kc.PrivateKey(chain.BTC, 0)
	require.NoError(t, err)
	ownAddr, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(priv.PubKey().SerializeCompressed()), &chaincfg.MainNetParams)
	require.NoError(t, err)
	ownScript, err := txscript.PayToAddrScript(ownAddr)
	require.NoError(t, err)

	const recipient = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"

	var broadcastHex string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/get_tx_unspent/BTC/"):
			fmt.Fprintf(w, `{"status":"success","data":{"txs":[
				{"txid":"1b1e9e0b9f5a1d2c4e6f8a0b2d4e6f8a0b2d4e6f8a0b2d4e6f8a0b2d4e6f8a0b",
				 "output_no":0,"script_hex":"%s","value":"0.001","confirmations":6,"time":1700000000}
			]}}`, hex.EncodeToString(ownScript))
		case strings.HasPrefix(r.URL.Path, "/send_tx/BTC"):
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			broadcastHex = body["tx_hex"]
			w.Write([]byte(`{"status":"success","data":{"txid":"cafebabe"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		Network: chain.Mainnet, Keychain: kc, SoChainURL: srv.URL,
		Explorer: explorer.New(explorer.WithRateLimit(1000)),
	})
	require.NoError(t, err)

	hash, err := client.Transfer(context.Background(), chain.TransferParams{
		Asset:     chain.NativeAsset(chain.BTC),
		Amount:    decimal.NewFromInt(50000),
		Recipient: recipient,
		FeeRate:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, "cafebabe", hash)

	// The broadcast transaction pays the recipient exactly the requested
	// amount and returns change to the wallet.
	raw, err := hex.DecodeString(broadcastHex)
	require.NoError(t, err)
	var tx wire.MsgTx
	require.NoError(t, tx.Deserialize(strings.NewReader(string(raw))))

	recipientAddr, err := btcutil.DecodeAddress(recipient, &chaincfg.MainNetParams)
	require.NoError(t, err)
	recipientScript, err := txscript.PayToAddrScript(recipientAddr)
	require.NoError(t, err)

	var paid, change int64
	for _, out := range tx.TxOut {
		switch {
		case string(out.PkScript) == string(recipientScript):
			paid = out.Value
		case string(out.PkScript) == string(ownScript):
			change = out.Value
		}
	}
	assert.Equal(t, int64(50000), paid)
	assert.Greater(t, change, int64(0))
	require.Len(t, tx.TxIn, 1)
	assert.NotEmpty(t, tx.TxIn[0].Witness)
}

func TestTransferInsufficientFunds(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"txs":[]}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		Network: chain.Mainnet, Keychain: testKeychain(t), SoChainURL: srv.URL,
		Explorer: explorer.New(explorer.WithRateLimit(1000)),
	})
	require.NoError(t, err)

	_, err = client.Transfer(context.Background(), chain.TransferParams{
		Asset:     chain.NativeAsset(chain.BTC),
		Amount:    decimal.NewFromInt(50000),
		Recipient: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
		FeeRate:   2,
	})
	require.ErrorIs(t, err, chain.ErrInsufficientFunds)
}
