package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/wallet"
)

var addressCmd = &cobra.Command{
	Use:   "address [chain]",
	Short: "Show wallet addresses",
	Long: `Show your wallet address for the specified blockchain, or for every
supported chain when none is given.
Supported chains: btc, bch, ltc, eth, bnb, gaia, thor, dot

Examples:
  armada address            # Show all addresses
  armada address btc        # Show Bitcoin address
  armada address eth -i 2   # Show the third Ethereum address`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAddress,
}

func init() {
	addressCmd.Flags().Uint32P("index", "i", 0, "wallet account index")
}

func runAddress(cmd *cobra.Command, args []string) error {
	manager := wallet.NewManager()
	if !manager.IsUnlocked() {
		return fmt.Errorf("wallet is locked. Run 'armada unlock' first")
	}

	index, _ := cmd.Flags().GetUint32("index")
	logger := newLogger(cmd)

	printNetwork(manager.Network())

	if len(args) == 1 {
		client, err := clientFor(manager, logger, args[0])
		if err != nil {
			return err
		}
		addr, err := client.Address(index)
		if err != nil {
			return fmt.Errorf("failed to derive %s address: %w", client.Chain(), err)
		}
		fmt.Printf("%s (%s): %s\n", client.Chain(), client.Chain().Symbol(), addr)
		return nil
	}

	keychain, err := manager.Keychain()
	if err != nil {
		return err
	}
	registry, err := newRegistry(keychain, logger)
	if err != nil {
		return err
	}

	fmt.Println("🔑 Your wallet addresses:")
	fmt.Println()
	for _, id := range registry.Chains() {
		client, err := registry.Get(id)
		if err != nil {
			return err
		}
		addr, err := client.Address(index)
		if err != nil {
			return fmt.Errorf("failed to derive %s address: %w", id, err)
		}
		fmt.Printf("%-4s (%s): %s\n", id, id.Symbol(), addr)
	}
	return nil
}

func printNetwork(network chain.Network) {
	if network == chain.Testnet {
		fmt.Printf("🌐 Network: %s\n\n", color.YellowString("Testnet"))
	} else {
		fmt.Printf("🌐 Network: %s\n\n", color.GreenString("Mainnet"))
	}
}
