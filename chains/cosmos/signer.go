package cosmos

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// PubKeySecp256k1 is the amino type tag of tendermint secp256k1 keys.
const PubKeySecp256k1 = "tendermint/PubKeySecp256k1"

// Coin is a denominated amount. Amounts are decimal strings in base units.
type Coin struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
}

// MsgSendValue is the body of a bank send message.
type MsgSendValue struct {
	Amount      []Coin `json:"amount"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
}

// Msg is an amino-tagged message.
type Msg struct {
	Type  string       `json:"type"`
	Value MsgSendValue `json:"value"`
}

// StdFee is the fee clause of a standard transaction.
type StdFee struct {
	Amount []Coin `json:"amount"`
	Gas    string `json:"gas"`
}

// StdSignature carries the public key and signature of one signer.
type StdSignature struct {
	PubKey struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"pub_key"`
	Signature string `json:"signature"`
}

// StdTx is the legacy amino transaction shape the LCD broadcast endpoint
// accepts as JSON.
type StdTx struct {
	Msg        []Msg          `json:"msg"`
	Fee        StdFee         `json:"fee"`
	Signatures []StdSignature `json:"signatures"`
	Memo       string         `json:"memo"`
}

// signDoc is the canonical document that gets signed. Field order matches
// the alphabetical key order amino JSON requires, and all numbers are
// strings.
type signDoc struct {
	AccountNumber string `json:"account_number"`
	ChainID       string `json:"chain_id"`
	Fee           StdFee `json:"fee"`
	Memo          string `json:"memo"`
	Msgs          []Msg  `json:"msgs"`
	Sequence      string `json:"sequence"`
}

// SignBytes renders the canonical sign document for a transaction.
func SignBytes(chainID string, accountNumber, sequence uint64, fee StdFee, msgs []Msg, memo string) ([]byte, error) {
	doc := signDoc{
		AccountNumber: fmt.Sprint(accountNumber),
		ChainID:       chainID,
		Fee:           fee,
		Memo:          memo,
		Msgs:          msgs,
		Sequence:      fmt.Sprint(sequence),
	}
	bz, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sign doc: %w", err)
	}
	return bz, nil
}

// SignStdTx signs the canonical document and assembles the broadcastable
// StdTx. The signature is the raw 64-byte r||s pair over sha256 of the sign
// bytes, base64 encoded as the LCD expects.
func SignStdTx(key *btcec.PrivateKey, chainID string, accountNumber, sequence uint64,
	fee StdFee, msgs []Msg, memo string) (json.RawMessage, error) {

	signBytes, err := SignBytes(chainID, accountNumber, sequence, fee, msgs, memo)
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256(signBytes)

	// SignCompact prepends a recovery byte; amino signatures are just the
	// 64-byte r||s pair.
	compact := ecdsa.SignCompact(key, digest[:], true)
	rawSig := compact[1:]

	var sig StdSignature
	sig.PubKey.Type = PubKeySecp256k1
	sig.PubKey.Value = base64.StdEncoding.EncodeToString(key.PubKey().SerializeCompressed())
	sig.Signature = base64.StdEncoding.EncodeToString(rawSig)

	tx := StdTx{Msg: msgs, Fee: fee, Signatures: []StdSignature{sig}, Memo: memo}
	bz, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal std tx: %w", err)
	}
	return bz, nil
}
