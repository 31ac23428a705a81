package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/gasfutures/internal/filters"
	"github.com/mselser95/gasfutures/internal/myriad"
	"github.com/mselser95/gasfutures/internal/pager"
	"github.com/mselser95/gasfutures/internal/view"
	"github.com/mselser95/gasfutures/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "List markets from the Myriad API",
	Long: `Fetches pages of the market list for one filter, concatenates them in page
order and prints the markets that have not expired yet.

Topics: all, crypto, sports, politics, economy, gaming, culture, sentiment.
Sorts: volume_24h (trending), volume (popular), published_at (new),
liquidity, expires_at.`,
	RunE: runMarkets,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(marketsCmd)
	addFilterFlags(marketsCmd)
	marketsCmd.Flags().IntP("pages", "p", 1, "Number of pages to aggregate (0 = all)")
	marketsCmd.Flags().BoolP("verbose", "v", false, "Show outcomes and topics")
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("keyword", "k", "", "Search keyword")
	cmd.Flags().StringP("topic", "t", filters.TopicAll, "Topic filter")
	cmd.Flags().StringP("sort", "s", "", "Sort key (default from MARKET_SORT)")
	cmd.Flags().String("state", "", "Market state: open, closed, resolved (default from MARKET_STATE)")
	cmd.Flags().IntP("limit", "l", 0, "Page size (default from MARKET_PAGE_SIZE)")
}

func filterFromFlags(cmd *cobra.Command, cfg *config.Config) (filters.Filter, int, error) {
	keyword, _ := cmd.Flags().GetString("keyword")
	topic, _ := cmd.Flags().GetString("topic")
	sort, _ := cmd.Flags().GetString("sort")
	state, _ := cmd.Flags().GetString("state")
	limit, _ := cmd.Flags().GetInt("limit")

	if sort == "" {
		sort = string(cfg.DefaultSort)
	}
	if state == "" {
		state = string(cfg.DefaultState)
	}
	if limit == 0 {
		limit = cfg.PageSize
	}

	f, err := filters.New(keyword, topic, sort, state)
	if err != nil {
		return filters.Filter{}, 0, err
	}

	return f, limit, nil
}

func newController(cfg *config.Config, logger *zap.Logger, f filters.Filter, limit int) (*pager.Controller, error) {
	client := myriad.NewClient(cfg.MyriadAPIURL, cfg.APITimeout, logger)

	return pager.New(&pager.Config{
		Fetcher:   client,
		NetworkID: cfg.NetworkID,
		Limit:     limit,
		Filter:    f,
		Logger:    logger,
	})
}

func runMarkets(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	f, limit, err := filterFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	pages, _ := cmd.Flags().GetInt("pages")
	verbose, _ := cmd.Flags().GetBool("verbose")

	ctrl, err := newController(cfg, logger, f, limit)
	if err != nil {
		return fmt.Errorf("create pager: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	err = ctrl.Collect(ctx, pages)
	if err != nil {
		return fmt.Errorf("fetch markets: %w", err)
	}

	snap := ctrl.Snapshot()
	rows := view.ProjectMarkets(snap.Items, timeNow())

	out := cmd.OutOrStdout()
	printMarketRows(out, rows, verbose)

	fmt.Fprintf(out, "\n%d live of %d fetched markets, %d page(s)", len(rows), len(snap.Items), snap.Pages)
	if snap.Pagination != nil {
		fmt.Fprintf(out, " of %d", snap.Pagination.TotalPages)
	}
	if snap.HasMore {
		fmt.Fprintf(out, ", more available")
	}
	fmt.Fprintln(out)

	return nil
}
