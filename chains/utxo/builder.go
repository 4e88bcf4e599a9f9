package utxo

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/btcsuite/btcwallet/wallet/txsizes"

	"github.com/armadahq/armada/chain"
)

// MaxMemoLength is the standardness limit for OP_RETURN payloads.
const MaxMemoLength = 80

// MaxFeeRate is the highest fee rate Build considers sane, in sat/vB.
// It matches btcwallet's 1,000,000 sat/kvb default cap.
const MaxFeeRate = 1_000

var (
	// ErrMissingFeeRate is returned when a transfer carries no fee rate.
	ErrMissingFeeRate = errors.New("fee rate must be positive")

	// ErrFeeRateTooLarge is returned when a fee rate exceeds MaxFeeRate.
	// This prevents users from accidentally paying exorbitant fees.
	ErrFeeRateTooLarge = errors.New("fee rate too large")
)

// BuildParams describes one transfer to author.
type BuildParams struct {
	// Recipient receives Amount satoshis.
	Recipient btcutil.Address
	Amount    btcutil.Amount

	// FeeRate is in satoshis per virtual byte.
	FeeRate float64

	// Memo, when set, is carried in an OP_RETURN output.
	Memo string

	// Change receives whatever selection leaves over, unless the
	// remainder is dust, in which case it goes to the miner.
	Change btcutil.Address

	// UTXOs is the spendable set of the sending address. Unconfirmed
	// outputs are only considered when SpendPending is set.
	UTXOs        []UTXO
	SpendPending bool
}

// Build selects inputs and authors an unsigned transaction paying
// params.Amount to params.Recipient. Selection covers amount plus the fee at
// params.FeeRate; any non-dust remainder is returned to params.Change.
func Build(params BuildParams) (*txauthor.AuthoredTx, error) {
	if params.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", chain.ErrInvalidAmount)
	}
	if params.FeeRate <= 0 {
		return nil, ErrMissingFeeRate
	}
	if params.FeeRate > MaxFeeRate {
		return nil, fmt.Errorf("%w: %.2f sat/vB, max sane rate is %d sat/vB",
			ErrFeeRateTooLarge, params.FeeRate, MaxFeeRate)
	}

	recipientScript, err := txscript.PayToAddrScript(params.Recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to build recipient script: %w", err)
	}

	outputs := []*wire.TxOut{wire.NewTxOut(int64(params.Amount), recipientScript)}
	if err := txrules.CheckOutput(outputs[0], txrules.DefaultRelayFeePerKb); err != nil {
		return nil, fmt.Errorf("recipient output rejected: %w", err)
	}

	if params.Memo != "" {
		memoScript, err := MemoScript(params.Memo)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, wire.NewTxOut(0, memoScript))
	}

	inputSource, err := InputSource(Eligible(params.UTXOs, params.SpendPending))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare inputs: %w", err)
	}

	changeScript, err := txscript.PayToAddrScript(params.Change)
	if err != nil {
		return nil, fmt.Errorf("failed to build change script: %w", err)
	}
	changeSource := &txauthor.ChangeSource{
		NewScript:  func() ([]byte, error) { return changeScript, nil },
		ScriptSize: len(changeScript),
	}

	tx, err := txauthor.NewUnsignedTransaction(
		outputs, FeeRatePerKb(params.FeeRate), inputSource, changeSource,
	)
	if err != nil {
		var inputErr txauthor.InputSourceError
		if errors.As(err, &inputErr) {
			return nil, fmt.Errorf("selection cannot cover %d sats plus fee: %w",
				params.Amount, chain.ErrInsufficientFunds)
		}
		return nil, fmt.Errorf("failed to author transaction: %w", err)
	}

	return tx, nil
}

// MemoScript builds the OP_RETURN script carrying memo.
func MemoScript(memo string) ([]byte, error) {
	if len(memo) > MaxMemoLength {
		return nil, fmt.Errorf("memo exceeds %d bytes", MaxMemoLength)
	}
	script, err := txscript.NullDataScript([]byte(memo))
	if err != nil {
		return nil, fmt.Errorf("failed to build memo script: %w", err)
	}
	return script, nil
}

// FeeRatePerKb converts a sat/vB rate to the sat/kvB amount the transaction
// author works in, rounding up so the effective rate never undershoots.
func FeeRatePerKb(satPerVByte float64) btcutil.Amount {
	return btcutil.Amount(math.Ceil(satPerVByte * 1000))
}

// EstimateFee returns the fee of a typical single input transfer (one
// P2WPKH input, recipient plus change outputs, optional memo) at the given
// rate. Used to quote fees without selecting real coins.
func EstimateFee(satPerVByte float64, memoLen int) btcutil.Amount {
	outputs := []*wire.TxOut{
		{Value: 0, PkScript: make([]byte, txsizes.P2WPKHPkScriptSize)},
	}
	if memoLen > 0 {
		// OP_RETURN OP_PUSHDATA payload
		outputs = append(outputs, &wire.TxOut{PkScript: make([]byte, 2+memoLen)})
	}
	vsize := txsizes.EstimateVirtualSize(0, 0, 1, 0, outputs, txsizes.P2WPKHPkScriptSize)
	return txrules.FeeForSerializeSize(FeeRatePerKb(satPerVByte), vsize)
}

// keySource signs every input with one private key. It satisfies the
// transaction author's secrets interface for single address wallets.
type keySource struct {
	key    *btcec.PrivateKey
	params *chaincfg.Params
}

func (k keySource) GetKey(btcutil.Address) (*btcec.PrivateKey, bool, error) {
	return k.key, true, nil
}

func (k keySource) GetScript(btcutil.Address) ([]byte, error) {
	return nil, errors.New("no redeem scripts for single key wallet")
}

func (k keySource) ChainParams() *chaincfg.Params {
	return k.params
}

// Sign populates the signature scripts and witnesses of an authored
// transaction using a single private key.
func Sign(tx *txauthor.AuthoredTx, key *btcec.PrivateKey, params *chaincfg.Params) error {
	if err := tx.AddAllInputScripts(keySource{key: key, params: params}); err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// Serialize encodes a wire transaction as hex for broadcast.
func Serialize(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return hex.EncodeToString(buf.Bytes()), nil
}
