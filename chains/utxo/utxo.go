// Package utxo implements transaction building shared by the Bitcoin,
// Bitcoin Cash and Litecoin adapters: coin selection, fee calculation,
// change and dust handling on top of the btcsuite txauthor engine.
package utxo

import (
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
)

// UTXO is one spendable output of the wallet address.
type UTXO struct {
	TxID          string
	Vout          uint32
	Value         btcutil.Amount
	PkScript      []byte
	Confirmations int64
}

// Confirmed reports whether the output has at least one confirmation.
func (u UTXO) Confirmed() bool {
	return u.Confirmations > 0
}

// Eligible filters and orders outputs for coin selection. Unconfirmed
// outputs are excluded unless spendPending is set. Confirmed outputs are
// consumed before unconfirmed ones, largest value first within each group,
// so selection settles with the fewest inputs from the safest coins.
func Eligible(utxos []UTXO, spendPending bool) []UTXO {
	eligible := make([]UTXO, 0, len(utxos))
	for _, u := range utxos {
		if !u.Confirmed() && !spendPending {
			continue
		}
		eligible = append(eligible, u)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Confirmed() != eligible[j].Confirmed() {
			return eligible[i].Confirmed()
		}
		return eligible[i].Value > eligible[j].Value
	})

	return eligible
}

// Total sums the value of the outputs.
func Total(utxos []UTXO) btcutil.Amount {
	var total btcutil.Amount
	for _, u := range utxos {
		total += u.Value
	}
	return total
}

// InputSource adapts a set of eligible outputs to the incremental input
// source the transaction author expects. Inputs accumulate across calls
// until the requested target is covered.
func InputSource(eligible []UTXO) (txauthor.InputSource, error) {
	type prepared struct {
		outPoint wire.OutPoint
		value    btcutil.Amount
		script   []byte
	}

	coins := make([]prepared, 0, len(eligible))
	for _, u := range eligible {
		hash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			return nil, err
		}
		coins = append(coins, prepared{
			outPoint: wire.OutPoint{Hash: *hash, Index: u.Vout},
			value:    u.Value,
			script:   u.PkScript,
		})
	}

	currentTotal := btcutil.Amount(0)
	currentInputs := make([]*wire.TxIn, 0, len(coins))
	currentScripts := make([][]byte, 0, len(coins))
	currentValues := make([]btcutil.Amount, 0, len(coins))

	return func(target btcutil.Amount) (btcutil.Amount, []*wire.TxIn,
		[]btcutil.Amount, [][]byte, error) {

		for currentTotal < target && len(coins) != 0 {
			next := coins[0]
			coins = coins[1:]

			currentTotal += next.value
			currentInputs = append(currentInputs, wire.NewTxIn(&next.outPoint, nil, nil))
			currentScripts = append(currentScripts, next.script)
			currentValues = append(currentValues, next.value)
		}

		return currentTotal, currentInputs, currentValues, currentScripts, nil
	}, nil
}
