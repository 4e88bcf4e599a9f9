package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/wallet"
)

var networkCmd = &cobra.Command{
	Use:   "network [mainnet|testnet]",
	Short: "Show or change network",
	Long: `Show the current network or switch between mainnet and testnet.

Testnet maps each chain to its public test network: Bitcoin testnet3,
Litecoin testnet4, Ethereum Sepolia, Binance Chain Ganges, the Cosmos Hub
theta testnet, THORChain stagenet and Westend for Polkadot.

Examples:
  armada network            # Show current network
  armada network mainnet    # Switch to mainnet
  armada network testnet    # Switch to testnet`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNetwork,
}

func runNetwork(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return showCurrentNetwork()
	}

	network := chain.Network(strings.ToLower(args[0]))
	if network != chain.Mainnet && network != chain.Testnet {
		return fmt.Errorf("invalid network: %s. Use 'mainnet' or 'testnet'", args[0])
	}
	return setNetwork(network)
}

func showCurrentNetwork() error {
	manager := wallet.NewManager()

	if manager.Network() == chain.Mainnet {
		fmt.Printf("🌐 Current network: %s\n", color.GreenString("Mainnet"))
	} else {
		fmt.Printf("🌐 Current network: %s\n", color.YellowString("Testnet"))
		fmt.Println()
		fmt.Println("⚠️  Testnet coins have no value")
	}
	fmt.Println()
	fmt.Println("💡 Armada derives different addresses per network for your safety")
	return nil
}

func setNetwork(network chain.Network) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, ".armada")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "network.txt"), []byte(network), 0600); err != nil {
		return fmt.Errorf("failed to save network: %w", err)
	}

	if network == chain.Mainnet {
		fmt.Printf("✅ Switched to %s\n", color.GreenString("Mainnet"))
	} else {
		fmt.Printf("✅ Switched to %s\n", color.YellowString("Testnet"))
	}
	fmt.Println("💡 Unlock sessions are per network; run 'armada unlock' again")
	return nil
}
