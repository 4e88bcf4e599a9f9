package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/wallet"
)

// queryTimeout bounds every read-only explorer call made by a command.
const queryTimeout = 30 * time.Second

var balanceCmd = &cobra.Command{
	Use:   "balance [chain]",
	Short: "Check wallet balances",
	Long: `Check the balance of your wallet on the specified blockchain, or on
every supported chain when none is given. Token balances (ERC-20, BEP-2) are
listed alongside the native coin where the chain supports them.

Examples:
  armada balance            # All chains
  armada balance eth        # Ethereum plus ERC-20 tokens
  armada balance btc -i 1   # Second Bitcoin account`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBalance,
}

func init() {
	balanceCmd.Flags().Uint32P("index", "i", 0, "wallet account index")
}

func runBalance(cmd *cobra.Command, args []string) error {
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
		return printBalances(client, index)
	}

	keychain, err := manager.Keychain()
	if err != nil {
		return err
	}
	registry, err := newRegistry(keychain, logger)
	if err != nil {
		return err
	}

	fmt.Println("💰 Your balances:")
	fmt.Println()
	for _, id := range registry.Chains() {
		client, err := registry.Get(id)
		if err != nil {
			return err
		}
		if err := printBalances(client, index); err != nil {
			// One unreachable explorer should not hide the rest.
			fmt.Printf("%-4s: unavailable (%v)\n", id, err)
		}
	}
	return nil
}

func printBalances(client chain.Client, index uint32) error {
	addr, err := client.Address(index)
	if err != nil {
		return fmt.Errorf("failed to derive address: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	balances, err := client.Balances(ctx, addr)
	if err != nil {
		return fmt.Errorf("failed to fetch balances: %w", err)
	}

	if len(balances) == 0 {
		fmt.Printf("%-4s: 0 %s\n", client.Chain(), client.Chain().Symbol())
		return nil
	}
	for _, b := range balances {
		if b.Asset.IsNative() {
			display := chain.FromBaseUnits(b.Amount, b.Asset.Chain.Decimals())
			fmt.Printf("%-4s: %s %s\n", client.Chain(), display.String(), b.Asset.Ticker)
			continue
		}
		// Token decimals vary per contract; report base units untouched.
		fmt.Printf("%-4s: %s %s (base units)\n", client.Chain(), b.Amount.String(), b.Asset.Ticker)
	}
	return nil
}
