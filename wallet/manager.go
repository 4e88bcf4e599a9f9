package wallet

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tyler-smith/go-bip39"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/crypto"
)

const (
	// SessionDuration is how long an unlock session stays valid, in minutes.
	SessionDuration = 30

	configDirName = ".armada"
)

// SessionData holds the wallet session information.
type SessionData struct {
	Token      string    `json:"token"`
	Mnemonic   string    `json:"mnemonic"`
	Passphrase string    `json:"passphrase,omitempty"`
	Expiration time.Time `json:"expiration"`
	Network    string    `json:"network"`
}

// Manager handles vault storage, unlock sessions and hands out the keychain.
type Manager struct {
	vaultPath   string
	sessionPath string
	vault       *crypto.Vault
	mnemonic    string
	passphrase  string
	mu          sync.RWMutex
	unlocked    bool
	network     chain.Network
}

// NewManager creates a wallet manager rooted at ~/.armada.
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Sprintf("failed to get home directory: %v", err))
	}

	network := chain.Mainnet
	networkPath := filepath.Join(homeDir, configDirName, "network.txt")

	// Read network file if it exists.
	if data, err := os.ReadFile(networkPath); err == nil {
		switch chain.Network(strings.TrimSpace(string(data))) {
		case chain.Testnet:
			network = chain.Testnet
		case chain.Mainnet:
			network = chain.Mainnet
		}
	}

	return &Manager{
		vaultPath:   filepath.Join(homeDir, configDirName, "wallet.vault"),
		sessionPath: filepath.Join(homeDir, configDirName, "session.json"),
		network:     network,
	}
}

// generateSessionToken creates a random session token.
func generateSessionToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}

// createSession creates and saves a new session.
func (m *Manager) createSession() error {
	token, err := generateSessionToken()
	if err != nil {
		return fmt.Errorf("failed to generate session token: %w", err)
	}

	session := SessionData{
		Token:      token,
		Mnemonic:   m.mnemonic,
		Passphrase: m.passphrase,
		Expiration: time.Now().Add(SessionDuration * time.Minute),
		Network:    string(m.network),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(m.sessionPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// loadSession loads the session if it exists and is still valid.
func (m *Manager) loadSession() bool {
	data, err := os.ReadFile(m.sessionPath)
	if err != nil {
		return false
	}

	var session SessionData
	if err := json.Unmarshal(data, &session); err != nil {
		// Session file is corrupted, delete it.
		os.Remove(m.sessionPath)
		return false
	}

	if time.Now().After(session.Expiration) {
		os.Remove(m.sessionPath)
		return false
	}

	// A session minted on another network is not valid here.
	if session.Network != string(m.network) {
		return false
	}

	m.mnemonic = session.Mnemonic
	m.passphrase = session.Passphrase
	m.unlocked = true

	return true
}

// clearSession removes the current session.
func (m *Manager) clearSession() {
	os.Remove(m.sessionPath)
}

// Initialize creates a new wallet with a fresh 24-word mnemonic.
func (m *Manager) Initialize(password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entropy, err := bip39.NewEntropy(256) // 24 words
	if err != nil {
		return fmt.Errorf("failed to generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	return m.store(mnemonic, "", password)
}

// ImportFromMnemonic imports a wallet from an existing mnemonic and optional
// BIP-39 passphrase.
func (m *Manager) ImportFromMnemonic(mnemonic, passphrase, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !bip39.IsMnemonicValid(mnemonic) {
		return fmt.Errorf("invalid mnemonic")
	}

	return m.store(mnemonic, passphrase, password)
}

// store encrypts and persists the wallet, then opens a session. The caller
// must hold m.mu.
func (m *Manager) store(mnemonic, passphrase, password string) error {
	vault, err := crypto.NewVault(mnemonic, passphrase, password)
	if err != nil {
		return fmt.Errorf("failed to create vault: %w", err)
	}

	dir := filepath.Dir(m.vaultPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := m.saveVault(vault); err != nil {
		return fmt.Errorf("failed to save vault: %w", err)
	}

	m.vault = vault
	m.mnemonic = mnemonic
	m.passphrase = passphrase
	m.unlocked = true

	if err := m.createSession(); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// Unlock unlocks the wallet with the provided password.
func (m *Manager) Unlock(password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// First try to load an existing session.
	if m.loadSession() {
		return nil
	}

	if m.vault == nil {
		vault, err := m.loadVault()
		if err != nil {
			return fmt.Errorf("failed to load vault: %w", err)
		}
		m.vault = vault
	}

	payload, err := m.vault.Decrypt(password)
	if err != nil {
		return fmt.Errorf("invalid password")
	}

	m.mnemonic = payload.Mnemonic
	m.passphrase = payload.Passphrase
	m.unlocked = true

	if err := m.createSession(); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// Lock locks the wallet and clears sensitive data from memory.
func (m *Manager) Lock() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.unlocked = false
	m.mnemonic = ""
	m.passphrase = ""

	m.clearSession()
}

// IsUnlocked returns whether the wallet is currently unlocked.
func (m *Manager) IsUnlocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unlocked && m.mnemonic != "" {
		return true
	}

	return m.loadSession()
}

// Keychain returns the keychain for the current network. The wallet must be
// unlocked.
func (m *Manager) Keychain() (*Keychain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.unlocked && !m.loadSession() {
		return nil, chain.ErrWalletLocked
	}

	return NewKeychain(m.mnemonic, m.passphrase, m.network)
}

// Mnemonic returns the current mnemonic (only if unlocked).
func (m *Manager) Mnemonic() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unlocked && m.mnemonic != "" {
		return m.mnemonic, nil
	}

	if !m.loadSession() {
		return "", chain.ErrWalletLocked
	}

	return m.mnemonic, nil
}

// saveVault saves the vault to disk.
func (m *Manager) saveVault(vault *crypto.Vault) error {
	data, err := json.Marshal(vault)
	if err != nil {
		return fmt.Errorf("failed to marshal vault: %w", err)
	}

	if err := os.WriteFile(m.vaultPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write vault file: %w", err)
	}

	return nil
}

// loadVault loads the vault from disk.
func (m *Manager) loadVault() (*crypto.Vault, error) {
	data, err := os.ReadFile(m.vaultPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read vault file: %w", err)
	}

	var vault crypto.Vault
	if err := json.Unmarshal(data, &vault); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vault: %w", err)
	}

	return &vault, nil
}

// VaultExists checks if a vault file exists.
func (m *Manager) VaultExists() bool {
	_, err := os.Stat(m.vaultPath)
	return err == nil
}

// Network returns the network the manager was constructed for.
func (m *Manager) Network() chain.Network {
	return m.network
}
