package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/wallet"
)

// transferTimeout bounds the build-sign-broadcast round trip.
const transferTimeout = 90 * time.Second

var payCmd = &cobra.Command{
	Use:   "pay [chain|asset] [amount] [address]",
	Short: "Send cryptocurrency",
	Long: `Send cryptocurrency to another address. The first argument is either
a chain (btc, eth, thor, ...) for the native coin, or a full asset like
ETH.USDT-0xdac17f958d2ee523a2206206994597c13d831ec7 for tokens.

Amounts are in coin units for native assets. Token amounts are in base
units unless --decimals is given.

Examples:
  armada pay btc 0.001 bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh
  armada pay eth 0.1 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6
  armada pay thor 25 thor1... --memo "SWAP:BTC.BTC"
  armada pay ETH.USDT-0xdac17f958d2ee523a2206206994597c13d831ec7 12.5 0x... --decimals 6`,
	Args: cobra.ExactArgs(3),
	RunE: runPay,
}

func init() {
	payCmd.Flags().Uint32P("index", "i", 0, "wallet account index")
	payCmd.Flags().String("memo", "", "transaction memo (where supported)")
	payCmd.Flags().String("fee", "fast", "fee tier: average, fast or fastest")
	payCmd.Flags().Float64("fee-rate", 0, "override fee rate in sat/vB (UTXO chains)")
	payCmd.Flags().Int32("decimals", -1, "decimals of the token amount")
	payCmd.Flags().Bool("spend-pending", false, "allow spending unconfirmed outputs (UTXO chains)")
	payCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
}

func runPay(cmd *cobra.Command, args []string) error {
	manager := wallet.NewManager()
	if !manager.IsUnlocked() {
		return fmt.Errorf("wallet is locked. Run 'armada unlock' first")
	}

	asset, err := parsePayAsset(args[0])
	if err != nil {
		return err
	}
	recipient := args[2]

	logger := newLogger(cmd)
	client, err := clientFor(manager, logger, asset.Chain.String())
	if err != nil {
		return err
	}
	if err := client.ValidateAddress(recipient); err != nil {
		return fmt.Errorf("invalid %s address: %w", asset.Chain, err)
	}

	amount, err := parsePayAmount(cmd, args[1], asset)
	if err != nil {
		return err
	}

	index, _ := cmd.Flags().GetUint32("index")
	memo, _ := cmd.Flags().GetString("memo")
	feeTier, _ := cmd.Flags().GetString("fee")
	feeRate, _ := cmd.Flags().GetFloat64("fee-rate")
	spendPending, _ := cmd.Flags().GetBool("spend-pending")
	skipConfirm, _ := cmd.Flags().GetBool("yes")

	feeOption := chain.FeeOption(strings.ToLower(feeTier))
	if _, err := (chain.Fees{}).Fee(feeOption); err != nil {
		return fmt.Errorf("invalid fee tier: %s. Use average, fast or fastest", feeTier)
	}

	from, err := client.Address(index)
	if err != nil {
		return fmt.Errorf("failed to derive sender address: %w", err)
	}

	fmt.Printf("📊 Transaction Details:\n")
	fmt.Printf("   Asset:   %s\n", asset)
	fmt.Printf("   From:    %s\n", from)
	fmt.Printf("   To:      %s\n", recipient)
	fmt.Printf("   Amount:  %s base units\n", amount)
	if memo != "" {
		fmt.Printf("   Memo:    %s\n", memo)
	}
	fmt.Printf("   Network: %s\n", manager.Network())
	fmt.Println()

	if !skipConfirm && !confirmTransaction() {
		fmt.Println("❌ Transaction cancelled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), transferTimeout)
	defer cancel()

	hash, err := client.Transfer(ctx, chain.TransferParams{
		Asset:        asset,
		Amount:       amount,
		Recipient:    recipient,
		Memo:         memo,
		WalletIndex:  index,
		FeeOption:    feeOption,
		FeeRate:      feeRate,
		SpendPending: spendPending,
	})
	if err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}

	fmt.Println("✅ Transaction sent successfully!")
	fmt.Printf("📝 Transaction Hash: %s\n", color.GreenString(hash))
	if url := chain.ExplorerTxURL(asset.Chain, manager.Network(), hash); url != "" {
		fmt.Printf("🔗 Explorer: %s\n", url)
	}
	return nil
}

// parsePayAsset accepts either a bare chain ("btc") for the native asset or
// full CHAIN.TICKER[-ID] notation.
func parsePayAsset(arg string) (chain.Asset, error) {
	if !strings.Contains(arg, ".") {
		id, err := chain.ParseID(arg)
		if err != nil {
			return chain.Asset{}, fmt.Errorf("unsupported chain: %s. Supported chains: btc, bch, ltc, eth, bnb, gaia, thor, dot", arg)
		}
		return chain.NativeAsset(id), nil
	}
	return chain.ParseAsset(arg)
}

// parsePayAmount converts the amount argument to base units. Native amounts
// are in coin units; token amounts are taken as base units unless --decimals
// says otherwise.
func parsePayAmount(cmd *cobra.Command, arg string, asset chain.Asset) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(arg)
	if err != nil || !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("invalid amount: %s", arg)
	}

	decimals := asset.Chain.Decimals()
	if !asset.IsNative() {
		decimals = 0
	}
	if flagDecimals, _ := cmd.Flags().GetInt32("decimals"); flagDecimals >= 0 {
		decimals = flagDecimals
	}

	base := chain.ToBaseUnits(amount, decimals)
	if !base.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("amount %s is below one base unit", arg)
	}
	return base, nil
}

func confirmTransaction() bool {
	fmt.Print("Proceed with this transaction? (y/N): ")
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
