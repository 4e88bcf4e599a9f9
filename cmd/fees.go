package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/wallet"
)

var feesCmd = &cobra.Command{
	Use:   "fees [chain]",
	Short: "Show current transfer fees",
	Long: `Show the current transfer fee of a blockchain at the three standard
tiers (average, fast, fastest). UTXO chain quotes assume a typical
one-input two-output transaction.

Examples:
  armada fees btc
  armada fees eth`,
	Args: cobra.ExactArgs(1),
	RunE: runFees,
}

func runFees(cmd *cobra.Command, args []string) error {
	manager := wallet.NewManager()
	if !manager.IsUnlocked() {
		return fmt.Errorf("wallet is locked. Run 'armada unlock' first")
	}

	logger := newLogger(cmd)
	client, err := clientFor(manager, logger, args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	fees, err := client.Fees(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch fees: %w", err)
	}

	id := client.Chain()
	decimals := id.Decimals()
	symbol := id.Symbol()

	fmt.Printf("⛽ %s transfer fees:\n", id)
	fmt.Println()
	fmt.Printf("   Average: %s %s\n", chain.FromBaseUnits(fees.Average, decimals), symbol)
	fmt.Printf("   Fast:    %s %s\n", chain.FromBaseUnits(fees.Fast, decimals), symbol)
	fmt.Printf("   Fastest: %s %s\n", chain.FromBaseUnits(fees.Fastest, decimals), symbol)
	if fees.Type == chain.FeePerByte {
		fmt.Println()
		fmt.Println("   (size-based estimate for a typical transaction)")
	}
	return nil
}
