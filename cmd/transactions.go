package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/wallet"
)

var transactionsCmd = &cobra.Command{
	Use:     "transactions [chain] [hash]",
	Aliases: []string{"txs"},
	Short:   "Show transaction history",
	Long: `Show the transaction history of your wallet on a blockchain, most
recent first. Pass a transaction hash to look a single transaction up.

Examples:
  armada transactions btc               # Last 10 Bitcoin transactions
  armada transactions eth --limit 25    # Last 25 Ethereum transactions
  armada transactions btc <txid>        # One transaction by hash`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTransactions,
}

func init() {
	transactionsCmd.Flags().Uint32P("index", "i", 0, "wallet account index")
	transactionsCmd.Flags().Int("limit", 10, "page size")
	transactionsCmd.Flags().Int("offset", 0, "transactions to skip")
}

func runTransactions(cmd *cobra.Command, args []string) error {
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

	if len(args) == 2 {
		tx, err := client.Transaction(ctx, args[1])
		if err != nil {
			return fmt.Errorf("failed to fetch transaction: %w", err)
		}
		printTx(client.Chain(), tx)
		return nil
	}

	index, _ := cmd.Flags().GetUint32("index")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	addr, err := client.Address(index)
	if err != nil {
		return fmt.Errorf("failed to derive address: %w", err)
	}

	page, err := client.Transactions(ctx, chain.TxHistoryParams{
		Address: addr,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	fmt.Printf("📜 %s transactions for %s (%d total):\n", client.Chain(), addr, page.Total)
	fmt.Println()
	if len(page.Txs) == 0 {
		fmt.Println("   No transactions found")
		return nil
	}
	for i := range page.Txs {
		printTx(client.Chain(), &page.Txs[i])
		fmt.Println()
	}
	return nil
}

func printTx(id chain.ID, tx *chain.Tx) {
	// Token decimals vary per contract; only native amounts are scaled.
	decimals := int32(0)
	if tx.Asset.IsNative() || tx.Asset == (chain.Asset{}) {
		decimals = id.Decimals()
	}

	fmt.Printf("   Hash:   %s\n", tx.Hash)
	if !tx.Date.IsZero() {
		fmt.Printf("   Date:   %s\n", tx.Date.Format("2006-01-02 15:04:05 MST"))
	}
	if tx.BlockHeight > 0 {
		fmt.Printf("   Block:  %d\n", tx.BlockHeight)
	}
	for _, in := range tx.From {
		fmt.Printf("   From:   %s (%s %s)\n", in.Address,
			chain.FromBaseUnits(in.Amount, decimals), tx.Asset.Ticker)
	}
	for _, out := range tx.To {
		fmt.Printf("   To:     %s (%s %s)\n", out.Address,
			chain.FromBaseUnits(out.Amount, decimals), tx.Asset.Ticker)
	}
	if tx.Fee.IsPositive() {
		// Fees are always paid in the native asset.
		fmt.Printf("   Fee:    %s %s\n", chain.FromBaseUnits(tx.Fee, id.Decimals()), id.Symbol())
	}
	if tx.Memo != "" {
		fmt.Printf("   Memo:   %s\n", tx.Memo)
	}
}
