package utxo

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) (*btcec.PrivateKey, btcutil.Address, []byte) {
	t.Helper()

	raw, err := hex.DecodeString("2222222222222222222222222222222222222222222222222222222222222222")
	require.NoError(t, err)
	key, pub := btcec.PrivKeyFromBytes(raw)

	addr, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(pub.SerializeCompressed()), &chaincfg.MainNetParams)
	require.NoError(t, err)

	script, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	return key, addr, script
}

func TestEligibleFiltersPending(t *testing.T) {
	t.Parallel()

	utxos := []UTXO{
		{TxID: "aa", Value: 1000, Confirmations: 0},
		{TxID: "bb", Value: 2000, Confirmations: 3},
	}

	confirmed := Eligible(utxos, false)
	require.Len(t, confirmed, 1)
	assert.Equal(t, "bb", confirmed[0].TxID)

	all := Eligible(utxos, true)
	assert.Len(t, all, 2)
}

func TestEligibleOrdersConfirmedLargestFirst(t *testing.T) {
	t.Parallel()

	utxos := []UTXO{
		{TxID: "pending-big", Value: 9000, Confirmations: 0},
		{TxID: "small", Value: 1000, Confirmations: 5},
		{TxID: "big", Value: 5000, Confirmations: 1},
	}

	ordered := Eligible(utxos, true)
	require.Len(t, ordered, 3)
	assert.Equal(t, "big", ordered[0].TxID)
	assert.Equal(t, "small", ordered[1].TxID)
	assert.Equal(t, "pending-big", ordered[2].TxID)
}

func TestTotal(t *testing.T) {
	t.Parallel()

	utxos := []UTXO{{Value: 1500}, {Value: 2500}}
	assert.Equal(t, btcutil.Amount(4000), Total(utxos))
}

func TestInputSourceAccumulates(t *testing.T) {
	t.Parallel()

	_, _, script := testKey(t)
	txid := "e3c0b9f5a1d2c4e6f8a0b2d4e6f8a0b2d4e6f8a0b2d4e6f8a0b2d4e6f8a0b2d4"

	source, err := InputSource([]UTXO{
		{TxID: txid, Vout: 0, Value: 1000, PkScript: script, Confirmations: 1},
		{TxID: txid, Vout: 1, Value: 2000, PkScript: script, Confirmations: 1},
		{TxID: txid, Vout: 2, Value: 3000, PkScript: script, Confirmations: 1},
	})
	require.NoError(t, err)

	total, inputs, values, scripts, err := source(2500)
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(3000), total)
	assert.Len(t, inputs, 2)

	// A larger target pulls in the remaining coin without re-adding the
	// first two.
	total, inputs, values, scripts, err = source(5000)
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(6000), total)
	assert.Len(t, inputs, 3)
	assert.Len(t, values, 3)
	assert.Len(t, scripts, 3)

	// Exhausted coins return what was gathered so the author can report
	// insufficient funds.
	total, _, _, _, err = source(10000)
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(6000), total)
}

func TestInputSourceRejectsBadTxID(t *testing.T) {
	t.Parallel()

	_, err := InputSource([]UTXO{{TxID: "not-a-hash", Value: 1000}})
	require.Error(t, err)
}
