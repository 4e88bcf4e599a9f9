// Package bitcoincash adapts the Bitcoin Cash chain: cashaddr addresses on
// BIP-44 paths, balances and history through haskoin, and legacy P2PKH
// spends signed with the BCH fork of the BIP-143 sighash.
package bitcoincash

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/armadahq/armada/chain"
)

// Cashaddr human-readable prefixes.
const (
	MainnetPrefix = "bitcoincash"
	TestnetPrefix = "bchtest"
)

const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// polyMod is the cashaddr BCH checksum over 5-bit symbols.
func polyMod(values []byte) uint64 {
	c := uint64(1)
	for _, d := range values {
		c0 := byte(c >> 35)
		c = ((c & 0x07ffffffff) << 5) ^ uint64(d)
		if c0&0x01 != 0 {
			c ^= 0x98f2bc8e61
		}
		if c0&0x02 != 0 {
			c ^= 0x79b76d99e2
		}
		if c0&0x04 != 0 {
			c ^= 0xf33e5fb3c4
		}
		if c0&0x08 != 0 {
			c ^= 0xae2eabe2a8
		}
		if c0&0x10 != 0 {
			c ^= 0x1e4f43e470
		}
	}
	return c ^ 1
}

// expandPrefix maps the prefix into checksum symbols: the low five bits of
// each character followed by a zero separator.
func expandPrefix(prefix string) []byte {
	out := make([]byte, 0, len(prefix)+1)
	for i := 0; i < len(prefix); i++ {
		out = append(out, prefix[i]&0x1f)
	}
	return append(out, 0)
}

// convertBits regroups the bits of data from one symbol width to another.
func convertBits(data []byte, from, to uint, pad bool) ([]byte, error) {
	var acc, bits uint
	maxValue := uint(1<<to) - 1
	out := make([]byte, 0, len(data)*int(from)/int(to)+1)

	for _, b := range data {
		if uint(b)>>from != 0 {
			return nil, fmt.Errorf("symbol %d exceeds %d bits", b, from)
		}
		acc = acc<<from | uint(b)
		bits += from
		for bits >= to {
			bits -= to
			out = append(out, byte(acc>>bits&maxValue))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(to-bits)&maxValue))
		}
	} else if bits >= from || acc<<(to-bits)&maxValue != 0 {
		return nil, fmt.Errorf("invalid padding")
	}
	return out, nil
}

// EncodeCashAddr encodes a 20-byte pubkey hash as a P2PKH cashaddr,
// including the network prefix.
func EncodeCashAddr(prefix string, pkHash []byte) (string, error) {
	if len(pkHash) != 20 {
		return "", fmt.Errorf("pubkey hash must be 20 bytes, got %d", len(pkHash))
	}

	// Version byte 0: P2PKH with a 160-bit hash.
	payload, err := convertBits(append([]byte{0x00}, pkHash...), 8, 5, true)
	if err != nil {
		return "", err
	}

	checksumInput := append(expandPrefix(prefix), payload...)
	checksumInput = append(checksumInput, 0, 0, 0, 0, 0, 0, 0, 0)
	mod := polyMod(checksumInput)
	for i := 0; i < 8; i++ {
		payload = append(payload, byte(mod>>uint(5*(7-i))&0x1f))
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte(':')
	for _, v := range payload {
		b.WriteByte(charset[v])
	}
	return b.String(), nil
}

// DecodeCashAddr decodes a P2PKH cashaddr into its pubkey hash. The prefix
// may be omitted from the address, in which case expectedPrefix is assumed.
func DecodeCashAddr(address, expectedPrefix string) ([]byte, error) {
	address = strings.ToLower(address)
	prefix := expectedPrefix
	if i := strings.IndexByte(address, ':'); i >= 0 {
		prefix, address = address[:i], address[i+1:]
	}
	if prefix != expectedPrefix {
		return nil, fmt.Errorf("prefix %q, want %q", prefix, expectedPrefix)
	}
	if len(address) < 9 {
		return nil, fmt.Errorf("address too short")
	}

	values := make([]byte, len(address))
	for i := 0; i < len(address); i++ {
		v := strings.IndexByte(charset, address[i])
		if v < 0 {
			return nil, fmt.Errorf("invalid character %q", address[i])
		}
		values[i] = byte(v)
	}

	if polyMod(append(expandPrefix(prefix), values...)) != 0 {
		return nil, fmt.Errorf("checksum mismatch")
	}

	payload, err := convertBits(values[:len(values)-8], 5, 8, false)
	if err != nil {
		return nil, err
	}
	if len(payload) != 21 || payload[0] != 0x00 {
		return nil, fmt.Errorf("not a P2PKH cashaddr")
	}
	return payload[1:], nil
}

// legacyAddress converts a cashaddr (or legacy base58 address) into the
// btcutil P2PKH form transaction building works in.
func legacyAddress(address, prefix string, params *chaincfg.Params) (btcutil.Address, error) {
	if hash, err := DecodeCashAddr(address, prefix); err == nil {
		return btcutil.NewAddressPubKeyHash(hash, params)
	}
	decoded, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", address, chain.ErrInvalidAddress)
	}
	if _, ok := decoded.(*btcutil.AddressPubKeyHash); !ok {
		return nil, fmt.Errorf("%q is not P2PKH: %w", address, chain.ErrInvalidAddress)
	}
	return decoded, nil
}
