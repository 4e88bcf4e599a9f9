package bitcoincash

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
)

// sigHashForkID marks signatures as post-fork Bitcoin Cash. It is set on
// every sighash type and appended to each signature.
const sigHashForkID = 0x40

func doubleSha256(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

// forkSigHash computes the BIP-143 style digest Bitcoin Cash signs P2PKH
// inputs with: the segwit preimage layout, with SIGHASH_FORKID set in the
// type field.
func forkSigHash(tx *wire.MsgTx, idx int, pkScript []byte, value int64) []byte {
	var prevouts bytes.Buffer
	var sequences bytes.Buffer
	for _, in := range tx.TxIn {
		prevouts.Write(in.PreviousOutPoint.Hash[:])
		binary.Write(&prevouts, binary.LittleEndian, in.PreviousOutPoint.Index)
		binary.Write(&sequences, binary.LittleEndian, in.Sequence)
	}

	var outputs bytes.Buffer
	for _, out := range tx.TxOut {
		binary.Write(&outputs, binary.LittleEndian, out.Value)
		writeVarBytes(&outputs, out.PkScript)
	}

	var preimage bytes.Buffer
	binary.Write(&preimage, binary.LittleEndian, tx.Version)
	preimage.Write(doubleSha256(prevouts.Bytes()))
	preimage.Write(doubleSha256(sequences.Bytes()))
	in := tx.TxIn[idx]
	preimage.Write(in.PreviousOutPoint.Hash[:])
	binary.Write(&preimage, binary.LittleEndian, in.PreviousOutPoint.Index)
	writeVarBytes(&preimage, pkScript)
	binary.Write(&preimage, binary.LittleEndian, value)
	binary.Write(&preimage, binary.LittleEndian, in.Sequence)
	preimage.Write(doubleSha256(outputs.Bytes()))
	binary.Write(&preimage, binary.LittleEndian, tx.LockTime)
	binary.Write(&preimage, binary.LittleEndian, uint32(txscript.SigHashAll|sigHashForkID))

	return doubleSha256(preimage.Bytes())
}

func writeVarBytes(buf *bytes.Buffer, b []byte) {
	var lenBuf [9]byte
	n := putVarInt(lenBuf[:], uint64(len(b)))
	buf.Write(lenBuf[:n])
	buf.Write(b)
}

// putVarInt encodes the Bitcoin variable-length integer.
func putVarInt(buf []byte, v uint64) int {
	switch {
	case v < 0xfd:
		buf[0] = byte(v)
		return 1
	case v <= 0xffff:
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(v))
		return 3
	case v <= 0xffffffff:
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(v))
		return 5
	default:
		buf[0] = 0xff
		binary.LittleEndian.PutUint64(buf[1:], v)
		return 9
	}
}

// signAllInputs populates the signature script of every input of an
// authored transaction. All inputs must be P2PKH outputs of the single key.
func signAllInputs(tx *txauthor.AuthoredTx, key *btcec.PrivateKey) error {
	pubKey := key.PubKey().SerializeCompressed()

	for i := range tx.Tx.TxIn {
		digest := forkSigHash(tx.Tx, i, tx.PrevScripts[i], int64(tx.PrevInputValues[i]))

		sig := ecdsa.Sign(key, digest)
		sigWithType := append(sig.Serialize(), byte(txscript.SigHashAll|sigHashForkID))

		sigScript, err := txscript.NewScriptBuilder().
			AddData(sigWithType).
			AddData(pubKey).
			Script()
		if err != nil {
			return fmt.Errorf("failed to build signature script for input %d: %w", i, err)
		}
		tx.Tx.TxIn[i].SignatureScript = sigScript
	}
	return nil
}
