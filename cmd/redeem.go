package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/gasfutures/internal/trade"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var redeemCmd = &cobra.Command{
	Use:   "redeem <market-id>",
	Short: "Redeem winnings from a resolved market",
	Args:  cobra.ExactArgs(1),
	RunE:  runRedeem,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(redeemCmd)
}

func runRedeem(cmd *cobra.Command, args []string) error {
	marketID, err := trade.ParseMarketID(args[0])
	if err != nil {
		return err
	}

	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TxTimeout+time.Minute)
	defer cancel()

	ws, err := openWriteSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer ws.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "⏳ Redeeming market %d...\n", marketID)

	pending, err := ws.desk.Redeem(ctx, marketID)

	return ws.report(ctx, out, pending, err, &marketID)
}
