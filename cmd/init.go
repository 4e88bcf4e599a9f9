package cmd

import (
	"fmt"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/armadahq/armada/wallet"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new wallet",
	Long: `Create a new Armada wallet with a fresh 24-word recovery phrase.
The phrase is generated locally, encrypted with your password and stored in
~/.armada/wallet.vault.

Example:
  armada init`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	manager := wallet.NewManager()

	if manager.VaultExists() {
		return fmt.Errorf("a wallet already exists. Run 'armada recovery-phrase show' to back it up, or remove ~/.armada to start over")
	}

	password, err := promptNewPassword()
	if err != nil {
		return err
	}

	fmt.Println("Generating wallet...")
	if err := manager.Initialize(password); err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	mnemonic, err := manager.Mnemonic()
	if err != nil {
		return fmt.Errorf("failed to read recovery phrase: %w", err)
	}

	fmt.Println()
	fmt.Println("✅ Wallet created successfully!")
	fmt.Println()
	fmt.Println("🔐 Recovery Phrase (write this down and keep it safe):")
	fmt.Println()
	fmt.Printf("   %s\n", color.YellowString(mnemonic))
	fmt.Println()
	fmt.Println("⚠️  Anyone with this phrase can spend your funds.")
	fmt.Println("⚠️  Armada cannot recover it for you if you lose it.")
	fmt.Println()
	fmt.Println("💡 Use 'armada address [chain]' to see your addresses")

	return nil
}

// promptNewPassword reads and confirms a new vault password.
func promptNewPassword() (string, error) {
	fmt.Print("Choose a wallet password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	return string(password), nil
}
