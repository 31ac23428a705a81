package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mselser95/gasfutures/internal/trade"
	"github.com/spf13/cobra"
)

const (
	sideLong  = "long"
	sideShort = "short"
)

//nolint:gochecknoglobals // Cobra boilerplate
var betCmd = &cobra.Command{
	Use:   "bet <long|short> <market-id> <amount>",
	Short: "Bet long or short on a gas futures market",
	Long: `Stakes a stable-token amount (up to 6 decimals) on a market from the wallet
of GASFUTURES_PRIVATE_KEY.

long wins if the base fee at expiry is above the market target, short wins
otherwise. The contract must already be approved to spend the stake.`,
	Args: cobra.ExactArgs(3),
	RunE: runBet,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(betCmd)
}

func runBet(cmd *cobra.Command, args []string) error {
	side := strings.ToLower(args[0])
	if side != sideLong && side != sideShort {
		return fmt.Errorf("side must be %q or %q, got %q", sideLong, sideShort, args[0])
	}

	marketID, err := trade.ParseMarketID(args[1])
	if err != nil {
		return err
	}
	amount := args[2]

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
	fmt.Fprintf(out, "⏳ Betting %s %s on market %d...\n", amount, side, marketID)

	bet := ws.desk.BetLong
	if side == sideShort {
		bet = ws.desk.BetShort
	}

	pending, err := bet(ctx, marketID, amount)

	return ws.report(ctx, out, pending, err, &marketID)
}
