package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var createMarketCmd = &cobra.Command{
	Use:   "create-market",
	Short: "Create a gas futures market on-chain",
	Long: `Submits createMarket(targetBaseFee, daysUntilExpiry) from the wallet of
GASFUTURES_PRIVATE_KEY and waits for it to be mined.

The target is given in gwei (up to 9 decimals) and converted to wei. Longs win
if the base fee at expiry is above the target, shorts otherwise.`,
	RunE: runCreateMarket,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(createMarketCmd)
	createMarketCmd.Flags().StringP("gwei", "g", "", "Target base fee in gwei (required)")
	createMarketCmd.Flags().StringP("days", "d", "", "Days until expiry (required)")
	_ = createMarketCmd.MarkFlagRequired("gwei")
	_ = createMarketCmd.MarkFlagRequired("days")
}

func runCreateMarket(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	gwei, _ := cmd.Flags().GetString("gwei")
	days, _ := cmd.Flags().GetString("days")

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TxTimeout+time.Minute)
	defer cancel()

	ws, err := openWriteSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer ws.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "⏳ Creating market: target %s gwei, expiry in %s day(s)...\n", gwei, days)

	ws.desk.OpenCreate()
	pending, err := ws.desk.CreateMarket(ctx, gwei, days)

	return ws.report(ctx, out, pending, err, nil)
}
