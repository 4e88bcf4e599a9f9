package cmd

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/armadahq/armada/wallet"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock wallet for session",
	Long: `Unlock your Armada wallet for the current session.
This command decrypts your vault and opens a session that stays valid for
30 minutes or until you run 'armada lock'.

Example:
  armada unlock`,
	RunE: runUnlock,
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the wallet",
	Long: `Lock your Armada wallet and end the current session.

Example:
  armada lock`,
	RunE: runLock,
}

func runUnlock(cmd *cobra.Command, args []string) error {
	manager := wallet.NewManager()

	if !manager.VaultExists() {
		return fmt.Errorf("no wallet found. Run 'armada init' to create a new wallet")
	}

	if manager.IsUnlocked() {
		fmt.Println("✅ Wallet is already unlocked")
		return nil
	}

	fmt.Print("Enter your wallet password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	fmt.Println("Unlocking wallet...")
	if err := manager.Unlock(string(password)); err != nil {
		return fmt.Errorf("failed to unlock wallet: %w", err)
	}

	fmt.Println("✅ Wallet unlocked successfully!")
	fmt.Println("💡 Use 'armada address [chain]' to see your addresses")
	fmt.Println("💡 Use 'armada balance [chain]' to check your balances")

	return nil
}

func runLock(cmd *cobra.Command, args []string) error {
	manager := wallet.NewManager()
	manager.Lock()
	fmt.Println("🔒 Wallet locked")
	return nil
}
