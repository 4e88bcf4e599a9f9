// Package crypto implements the encrypted vault that stores the wallet
// mnemonic at rest: scrypt for key derivation, AES-256-GCM for the payload.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	ScryptN = 32768 // 2^15
	ScryptR = 8
	ScryptP = 1
	KeyLen  = 32 // AES-256 key length
)

// Vault is the serialized, encrypted form of the wallet secrets.
type Vault struct {
	Salt  []byte `json:"salt"`
	Nonce []byte `json:"nonce"`
	Data  []byte `json:"data"`
}

// VaultData is the plaintext payload of a vault.
type VaultData struct {
	Mnemonic string `json:"mnemonic"`
	// Passphrase is the optional BIP-39 passphrase ("25th word") applied
	// when deriving the seed from the mnemonic.
	Passphrase string `json:"passphrase,omitempty"`
	Version    int    `json:"version"`
}

// NewVault encrypts a mnemonic and optional BIP-39 passphrase under a
// password.
func NewVault(mnemonic, passphrase, password string) (*Vault, error) {
	salt := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := deriveKey(password, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clearBytes(key)

	payload := VaultData{
		Mnemonic:   mnemonic,
		Passphrase: passphrase,
		Version:    1,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize vault data: %w", err)
	}

	nonce := make([]byte, 12)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	encrypted, err := encrypt(key, nonce, data)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt data: %w", err)
	}

	return &Vault{
		Salt:  salt,
		Nonce: nonce,
		Data:  encrypted,
	}, nil
}

// Decrypt recovers the vault payload with the given password.
func (v *Vault) Decrypt(password string) (*VaultData, error) {
	key, err := deriveKey(password, v.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clearBytes(key)

	decrypted, err := decrypt(key, v.Nonce, v.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt vault: %w", err)
	}

	var payload VaultData
	if err := json.Unmarshal(decrypted, &payload); err != nil {
		return nil, fmt.Errorf("failed to deserialize vault data: %w", err)
	}

	return &payload, nil
}

// ValidatePassword reports whether the password decrypts the vault.
func (v *Vault) ValidatePassword(password string) bool {
	_, err := v.Decrypt(password)
	return err == nil
}

func deriveKey(password string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), salt, ScryptN, ScryptR, ScryptP, KeyLen)
	if err != nil {
		return nil, fmt.Errorf("scrypt key derivation failed: %w", err)
	}
	return key, nil
}

func encrypt(key, nonce, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aesGCM.Seal(nil, nonce, data, nil), nil
}

func decrypt(key, nonce, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := aesGCM.Open(nil, nonce, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	return plaintext, nil
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
