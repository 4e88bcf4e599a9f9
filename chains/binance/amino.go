package binance

import (
	"bytes"
	"encoding/binary"
)

// Registered amino type prefixes on Binance Chain.
var (
	stdTxPrefix   = []byte{0xF0, 0x62, 0x5D, 0xEE}
	sendMsgPrefix = []byte{0x2A, 0x2C, 0x87, 0xFA}
	pubKeyPrefix  = []byte{0xEB, 0x5A, 0xE9, 0x87}
)

// aminoWriter builds amino binary encodings. Amino's binary form is the
// proto3 wire format with 4-byte type prefixes on registered types and a
// uvarint length on the outermost value.
type aminoWriter struct {
	buf bytes.Buffer
}

func (w *aminoWriter) bytes() []byte {
	return w.buf.Bytes()
}

func (w *aminoWriter) uvarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

// key writes a proto field key: field number and wire type.
func (w *aminoWriter) key(fieldNum int, wireType byte) {
	w.uvarint(uint64(fieldNum)<<3 | uint64(wireType))
}

// varintField writes an integer field, skipping zero values as amino does.
func (w *aminoWriter) varintField(fieldNum int, v int64) {
	if v == 0 {
		return
	}
	w.key(fieldNum, 0)
	w.uvarint(uint64(v))
}

// bytesField writes a length-delimited field, skipping empty values.
func (w *aminoWriter) bytesField(fieldNum int, v []byte) {
	if len(v) == 0 {
		return
	}
	w.key(fieldNum, 2)
	w.uvarint(uint64(len(v)))
	w.buf.Write(v)
}

// encodeCoin encodes one denominated amount.
func encodeCoin(denom string, amount int64) []byte {
	var w aminoWriter
	w.bytesField(1, []byte(denom))
	w.varintField(2, amount)
	return w.bytes()
}

// encodeInputOutput encodes one send message input or output: a raw 20-byte
// address and its coins. Inputs and outputs share the shape.
func encodeInputOutput(address []byte, denom string, amount int64) []byte {
	var w aminoWriter
	w.bytesField(1, address)
	w.bytesField(2, encodeCoin(denom, amount))
	return w.bytes()
}

// encodeSendMsg encodes a single-input single-output bank send, with the
// send message type prefix.
func encodeSendMsg(from, to []byte, denom string, amount int64) []byte {
	var w aminoWriter
	w.buf.Write(sendMsgPrefix)
	w.bytesField(1, encodeInputOutput(from, denom, amount))
	w.bytesField(2, encodeInputOutput(to, denom, amount))
	return w.bytes()
}

// encodeStdSignature encodes a standard signature: the amino-wrapped
// compressed public key, the 64-byte signature, and the signer's account
// number and sequence.
func encodeStdSignature(pubKey, sig []byte, accountNumber, sequence int64) []byte {
	var key aminoWriter
	key.buf.Write(pubKeyPrefix)
	key.uvarint(uint64(len(pubKey)))
	key.buf.Write(pubKey)

	var w aminoWriter
	w.bytesField(1, key.bytes())
	w.bytesField(2, sig)
	w.varintField(3, accountNumber)
	w.varintField(4, sequence)
	return w.bytes()
}

// encodeStdTx assembles the broadcastable transaction: uvarint total length,
// standard tx prefix, then the message, signature, memo and source fields.
func encodeStdTx(msg, signature []byte, memo string, source int64) []byte {
	var w aminoWriter
	w.buf.Write(stdTxPrefix)
	w.bytesField(1, msg)
	w.bytesField(2, signature)
	w.bytesField(3, []byte(memo))
	w.varintField(4, source)

	var out aminoWriter
	out.uvarint(uint64(len(w.bytes())))
	out.buf.Write(w.bytes())
	return out.bytes()
}
