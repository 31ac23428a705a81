package cmd

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/gasfutures/internal/myriad"
	"github.com/mselser95/gasfutures/internal/portfolio"
	"github.com/mselser95/gasfutures/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var portfolioCmd = &cobra.Command{
	Use:   "portfolio <address>",
	Short: "Show a wallet's positions and profit",
	Long: `Fetches every page of a wallet's portfolio from the Myriad API and prints
each position with its value, cost basis, profit and ROI, followed by totals.`,
	Args: cobra.ExactArgs(1),
	RunE: runPortfolio,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.Flags().String("market", "", "Only positions of this market slug")
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	address := args[0]
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid address %q", address)
	}

	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	slug, _ := cmd.Flags().GetString("market")

	client := myriad.NewClient(cfg.MyriadAPIURL, cfg.APITimeout, logger)

	service, err := portfolio.NewService(client, cfg.PortfolioSize, cfg.NetworkID, logger)
	if err != nil {
		return fmt.Errorf("create portfolio service: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	positions, err := service.FetchAll(ctx, address, types.PortfolioQuery{
		MarketSlug: slug,
		NetworkID:  cfg.NetworkID,
	})
	if err != nil {
		return fmt.Errorf("fetch portfolio: %w", err)
	}

	out := cmd.OutOrStdout()

	if len(positions) == 0 {
		fmt.Fprintln(out, "No positions")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MARKET\tOUTCOME\tSTATUS\tSHARES\tVALUE\tPROFIT\tROI")
	for i := range positions {
		p := &positions[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%+.2f\t%s\n",
			truncate(p.MarketTitle, 40), p.OutcomeTitle, p.Status, p.Shares, p.Value, p.Profit, formatROI(p.ROI))
	}
	_ = tw.Flush()

	sum := portfolio.Summarize(positions)

	fmt.Fprintf(out, "\n=== Summary ===\n")
	fmt.Fprintf(out, "Positions: %d\n", sum.Positions)
	fmt.Fprintf(out, "Value:     %.2f\n", sum.Value)
	fmt.Fprintf(out, "Invested:  %.2f\n", sum.Invested)
	fmt.Fprintf(out, "Profit:    %+.2f (%s)\n", sum.Profit, formatROI(sum.ROI))
	if sum.Claimable > 0 {
		fmt.Fprintf(out, "💰 %d position(s) with winnings to claim\n", sum.Claimable)
	}

	statuses := make([]string, 0, len(sum.ByStatus))
	for status := range sum.ByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Fprintf(out, "  %-8s %d\n", status, sum.ByStatus[types.PositionStatus(status)])
	}

	return nil
}

func formatROI(roi *float64) string {
	if roi == nil {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", *roi*100)
}
