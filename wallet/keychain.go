// Package wallet holds the key material side of the clients: a BIP-39
// keychain that derives per-chain private keys and caches derived addresses,
// and a Manager that keeps the mnemonic in an encrypted vault with timed
// unlock sessions.
package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"

	"github.com/armadahq/armada/chain"
)

// Keychain derives per-chain keys from a BIP-39 mnemonic. Derived addresses
// are cached per (chain, index) since derivation is deterministic and the
// clients ask for the same address repeatedly.
type Keychain struct {
	mnemonic   string
	passphrase string
	network    chain.Network

	mu        sync.RWMutex
	addresses map[addressKey]string
}

type addressKey struct {
	id    chain.ID
	index uint32
}

// NewKeychain validates the mnemonic and builds a keychain for the network.
func NewKeychain(mnemonic, passphrase string, network chain.Network) (*Keychain, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}
	return &Keychain{
		mnemonic:   mnemonic,
		passphrase: passphrase,
		network:    network,
		addresses:  make(map[addressKey]string),
	}, nil
}

// Network returns the network the keychain derives for.
func (k *Keychain) Network() chain.Network {
	return k.network
}

// Mnemonic exposes the raw mnemonic for adapters whose signing stack
// consumes the phrase directly (Polkadot's sr25519 keyring).
func (k *Keychain) Mnemonic() string {
	return k.mnemonic
}

// purpose returns the BIP-43 purpose field for a chain. Bitcoin and
// Litecoin use native-segwit BIP-84 paths; everything else stays on BIP-44.
func purpose(id chain.ID) uint32 {
	switch id {
	case chain.BTC, chain.LTC:
		return 84
	default:
		return 44
	}
}

// DerivationPath renders the derivation path used for a chain and index.
func (k *Keychain) DerivationPath(id chain.ID, index uint32) string {
	return fmt.Sprintf("m/%d'/%d'/0'/0/%d", purpose(id), id.CoinType(k.network), index)
}

// PrivateKey derives the secp256k1 private key for a chain at an index.
func (k *Keychain) PrivateKey(id chain.ID, index uint32) (*btcec.PrivateKey, error) {
	seed := bip39.NewSeed(k.mnemonic, k.passphrase)

	// The params only select extended-key version bytes, which do not
	// change the derived keys. Derivation always runs against the
	// standard xprv/xpub versions.
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	steps := []uint32{
		hdkeychain.HardenedKeyStart + purpose(id),
		hdkeychain.HardenedKeyStart + id.CoinType(k.network),
		hdkeychain.HardenedKeyStart, // account 0'
		0,                           // external chain
		index,
	}
	for _, step := range steps {
		key, err = key.Derive(step)
		if err != nil {
			return nil, fmt.Errorf("failed to derive child %d: %w", step, err)
		}
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to extract private key: %w", err)
	}
	return priv, nil
}

// ECDSAKey derives the private key in crypto/ecdsa form, the shape the
// Ethereum stack signs with.
func (k *Keychain) ECDSAKey(id chain.ID, index uint32) (*ecdsa.PrivateKey, error) {
	priv, err := k.PrivateKey(id, index)
	if err != nil {
		return nil, err
	}
	return priv.ToECDSA(), nil
}

// CachedAddress returns the cached address for (chain, index), invoking
// derive on a miss and caching the result. Safe for concurrent use.
func (k *Keychain) CachedAddress(id chain.ID, index uint32, derive func() (string, error)) (string, error) {
	key := addressKey{id: id, index: index}

	k.mu.RLock()
	addr, ok := k.addresses[key]
	k.mu.RUnlock()
	if ok {
		return addr, nil
	}

	addr, err := derive()
	if err != nil {
		return "", err
	}

	k.mu.Lock()
	k.addresses[key] = addr
	k.mu.Unlock()
	return addr, nil
}
