package polkadot

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	"github.com/armadahq/armada/chain"
)

// SS58 network prefixes.
const (
	PolkadotNetwork byte = 0
	WestendNetwork  byte = 42
)

// ss58Preamble salts the checksum so an SS58 address cannot be confused
// with other base58 payloads.
var ss58Preamble = []byte("SS58PRE")

// EncodeSS58 encodes a 32-byte public key as an SS58 address under the
// given network prefix. The checksum is the first two bytes of
// blake2b-512 over the preamble and payload.
func EncodeSS58(network byte, pubKey []byte) (string, error) {
	if len(pubKey) != 32 {
		return "", fmt.Errorf("public key must be 32 bytes, got %d", len(pubKey))
	}
	payload := append([]byte{network}, pubKey...)
	checksum := blake2b.Sum512(append(ss58Preamble, payload...))
	return base58.Encode(append(payload, checksum[:2]...)), nil
}

// DecodeSS58 decodes an SS58 address, returning the network prefix and the
// 32-byte public key. Checksum failures and non-account payloads yield
// chain.ErrInvalidAddress.
func DecodeSS58(address string) (byte, []byte, error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return 0, nil, fmt.Errorf("%q: %w", address, chain.ErrInvalidAddress)
	}
	if len(raw) != 35 {
		return 0, nil, fmt.Errorf("%q is not a 32-byte account address: %w", address, chain.ErrInvalidAddress)
	}
	payload, checksum := raw[:33], raw[33:]
	expected := blake2b.Sum512(append(ss58Preamble, payload...))
	if !bytes.Equal(checksum, expected[:2]) {
		return 0, nil, fmt.Errorf("%q checksum mismatch: %w", address, chain.ErrInvalidAddress)
	}
	return payload[0], payload[1:], nil
}
