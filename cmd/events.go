package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/gasfutures/internal/myriad"
	"github.com/mselser95/gasfutures/internal/portfolio"
	"github.com/mselser95/gasfutures/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var eventsCmd = &cobra.Command{
	Use:   "events <address>",
	Short: "List a wallet's market activity",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvents,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntP("page", "p", 1, "Page number")
	eventsCmd.Flags().IntP("limit", "l", 20, "Events per page")
	eventsCmd.Flags().Int64("market", 0, "Only events of this market id")
	eventsCmd.Flags().Bool("positions", false, "Replay the whole feed and print the positions it implies")
}

func runEvents(cmd *cobra.Command, args []string) error {
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

	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")
	marketID, _ := cmd.Flags().GetInt64("market")
	positions, _ := cmd.Flags().GetBool("positions")

	client := myriad.NewClient(cfg.MyriadAPIURL, cfg.APITimeout, logger)

	if positions {
		service, err := portfolio.NewService(client, cfg.PortfolioSize, cfg.NetworkID, logger)
		if err != nil {
			return fmt.Errorf("create portfolio service: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		res, err := service.Replay(ctx, client, address, marketID)
		if err != nil {
			return fmt.Errorf("replay events: %w", err)
		}

		printReplay(cmd.OutOrStdout(), res)
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	resp, err := client.FetchUserEvents(ctx, address, &types.UserEventsQuery{
		Page:      page,
		Limit:     limit,
		MarketID:  marketID,
		NetworkID: cfg.NetworkID,
	})
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}

	out := cmd.OutOrStdout()

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTION\tMARKET\tOUTCOME\tSHARES\tVALUE")
	for _, ev := range resp.Data {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%.2f\n",
			time.Unix(ev.Timestamp, 0).UTC().Format("2006-01-02 15:04"),
			ev.Action, truncate(ev.MarketTitle, 40), ev.OutcomeTitle, ev.Shares, ev.Value)
	}
	_ = tw.Flush()

	p := resp.Pagination
	fmt.Fprintf(out, "\npage %d of %d, %d events total\n", p.Page, p.TotalPages, p.Total)

	return nil
}

func printReplay(out io.Writer, res *portfolio.ReplayResult) {
	if len(res.Positions) == 0 {
		fmt.Fprintf(out, "No positions in %d events\n", res.Events)
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MARKET\tOUTCOME\tSTATUS\tSHARES\tINVESTED\tPROFIT\tROI")
	for i := range res.Positions {
		p := &res.Positions[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%+.2f\t%s\n",
			truncate(p.MarketTitle, 40), p.OutcomeTitle, p.Status, p.Shares, *p.Invested, p.Profit, formatROI(p.ROI))
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "\n%d positions from %d events", len(res.Positions), res.Events)
	if res.Skipped > 0 {
		fmt.Fprintf(out, ", %d skipped", res.Skipped)
	}
	fmt.Fprintln(out)
}
