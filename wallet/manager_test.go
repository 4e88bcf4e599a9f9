package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadahq/armada/chain"
)

func TestManagerLifecycle(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	m := NewManager()
	require.False(t, m.VaultExists())

	err := m.Initialize("correct horse battery")
	require.NoError(t, err)
	assert.True(t, m.VaultExists())
	assert.True(t, m.IsUnlocked())

	mnemonic, err := m.Mnemonic()
	require.NoError(t, err)
	assert.Len(t, strings.Fields(mnemonic), 24)

	m.Lock()
	_, err = m.Mnemonic()
	assert.ErrorIs(t, err, chain.ErrWalletLocked)

	err = m.Unlock("wrong password")
	require.Error(t, err)

	err = m.Unlock("correct horse battery")
	require.NoError(t, err)

	got, err := m.Mnemonic()
	require.NoError(t, err)
	assert.Equal(t, mnemonic, got)
}

func TestManagerSessionSurvivesRestart(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	m := NewManager()
	require.NoError(t, m.ImportFromMnemonic(testMnemonic, "", "hunter22hunter22"))

	// A fresh manager picks up the session file without a password.
	m2 := NewManager()
	assert.True(t, m2.IsUnlocked())

	kc, err := m2.Keychain()
	require.NoError(t, err)
	assert.Equal(t, chain.Mainnet, kc.Network())

	m2.Lock()
	m3 := NewManager()
	assert.False(t, m3.IsUnlocked())
}

func TestManagerRejectsInvalidMnemonic(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	m := NewManager()
	err := m.ImportFromMnemonic("not a real mnemonic at all", "", "hunter22hunter22")
	assert.Error(t, err)
	assert.False(t, m.VaultExists())
}
