package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/armadahq/armada/wallet"
)

var recoveryPhraseCmd = &cobra.Command{
	Use:   "recovery-phrase [show|import]",
	Short: "Manage recovery phrase",
	Long: `Manage your wallet's recovery phrase (mnemonic).

Commands:
  show    - Display the recovery phrase (wallet must be unlocked)
  import  - Import a wallet from an existing recovery phrase`,
	Args: cobra.ExactArgs(1),
	RunE: runRecoveryPhrase,
}

func runRecoveryPhrase(cmd *cobra.Command, args []string) error {
	manager := wallet.NewManager()

	switch strings.ToLower(args[0]) {
	case "show":
		return showRecoveryPhrase(manager)
	case "import":
		return importRecoveryPhrase(manager)
	default:
		return fmt.Errorf("invalid action: %s. Use 'show' or 'import'", args[0])
	}
}

func showRecoveryPhrase(manager *wallet.Manager) error {
	if !manager.VaultExists() {
		return fmt.Errorf("no wallet found. Run 'armada init' first")
	}
	if !manager.IsUnlocked() {
		return fmt.Errorf("wallet is locked. Run 'armada unlock' first")
	}

	mnemonic, err := manager.Mnemonic()
	if err != nil {
		return fmt.Errorf("failed to get recovery phrase: %w", err)
	}

	fmt.Println("🔐 Recovery Phrase:")
	fmt.Println()
	fmt.Printf("   %s\n", color.YellowString(mnemonic))
	fmt.Println()
	fmt.Println("⚠️  Anyone with this phrase can spend your funds.")
	return nil
}

func importRecoveryPhrase(manager *wallet.Manager) error {
	if manager.VaultExists() {
		return fmt.Errorf("a wallet already exists. Remove ~/.armada to replace it")
	}

	fmt.Print("Enter your recovery phrase: ")
	reader := bufio.NewReader(os.Stdin)
	mnemonic, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read recovery phrase: %w", err)
	}
	mnemonic = strings.TrimSpace(mnemonic)

	fmt.Print("BIP-39 passphrase (press enter for none): ")
	passphrase, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	fmt.Println()

	password, err := promptNewPassword()
	if err != nil {
		return err
	}

	fmt.Println("Importing wallet...")
	if err := manager.ImportFromMnemonic(mnemonic, string(passphrase), password); err != nil {
		return fmt.Errorf("failed to import wallet: %w", err)
	}

	fmt.Println("✅ Wallet imported successfully!")
	fmt.Println("💡 Use 'armada address' to verify your addresses")
	return nil
}
