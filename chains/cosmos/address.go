// Package cosmos adapts Cosmos SDK chains that speak the legacy amino LCD
// API. The Cosmos Hub client is built here; THORChain wraps the same core
// with its own prefix, denom and fee source.
package cosmos

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/armadahq/armada/chain"
)

// AccAddress encodes a secp256k1 public key as a bech32 account address
// under the given prefix: bech32(prefix, ripemd160(sha256(pubkey))).
func AccAddress(prefix string, pubKey *btcec.PublicKey) (string, error) {
	hash := btcutil.Hash160(pubKey.SerializeCompressed())
	converted, err := bech32.ConvertBits(hash, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("failed to convert address bits: %w", err)
	}
	addr, err := bech32.Encode(prefix, converted)
	if err != nil {
		return "", fmt.Errorf("failed to encode address: %w", err)
	}
	return addr, nil
}

// ValidateAddress checks bech32 encoding, the account prefix and the
// 20-byte payload length.
func ValidateAddress(address, prefix string) error {
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return fmt.Errorf("%q: %w", address, chain.ErrInvalidAddress)
	}
	if hrp != prefix {
		return fmt.Errorf("%q has prefix %q, want %q: %w", address, hrp, prefix, chain.ErrInvalidAddress)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil || len(payload) != 20 {
		return fmt.Errorf("%q payload is not 20 bytes: %w", address, chain.ErrInvalidAddress)
	}
	return nil
}
