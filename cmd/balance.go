package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/gasfutures/internal/app"
	"github.com/mselser95/gasfutures/internal/view"
	"github.com/mselser95/gasfutures/pkg/types"
	"github.com/mselser95/gasfutures/pkg/wallet"
	"github.com/spf13/cobra"
)

// nativeDecimals is the scale of the chain's native currency (wei -> ETH).
const nativeDecimals = 18

//nolint:gochecknoglobals // Cobra boilerplate
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Check a wallet's native and stable-token balances",
	Long: `Display the holdings of a wallet:
- Native balance (for gas)
- Stable-token balance (for bets)`,
	RunE: runBalance,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringP("address", "a", "", "Wallet address (default WALLET_ADDRESS)")
}

func runBalance(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	address, _ := cmd.Flags().GetString("address")
	if address == "" {
		address = cfg.WalletAddress
	}
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid or missing wallet address %q", address)
	}

	if cfg.StableTokenAddress == "" {
		return fmt.Errorf("STABLE_TOKEN_ADDRESS not set in .env")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	rpc, err := app.DialChain(ctx, cfg)
	if err != nil {
		return err
	}
	defer rpc.Close()

	client, err := wallet.NewClient(rpc, cfg.StableTokenAddress, logger)
	if err != nil {
		return fmt.Errorf("create wallet client: %w", err)
	}

	owner := common.HexToAddress(address)

	balances, err := client.GetBalances(ctx, owner)
	if err != nil {
		return fmt.Errorf("get balances: %w", err)
	}

	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "=== Wallet Balance Sheet ===\n\n")
	fmt.Fprintf(out, "Address: %s\n\n", owner.Hex())
	fmt.Fprintf(out, "Native:  %s\n", view.FormatUnits(balances.Native, nativeDecimals))
	fmt.Fprintf(out, "Stable:  %s\n", view.FormatUnits(balances.Stable, types.StableDecimals))

	if balances.Stable.Sign() == 0 {
		fmt.Fprintf(out, "\n⚠️  No stable tokens: bets will fail\n")
	}
	if balances.Native.Sign() == 0 {
		fmt.Fprintf(out, "⚠️  No native balance: transactions cannot pay gas\n")
	}

	return nil
}
