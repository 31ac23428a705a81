package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mselser95/gasfutures/internal/myriad"
	"github.com/mselser95/gasfutures/internal/view"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var marketCmd = &cobra.Command{
	Use:   "market <id-or-slug>",
	Short: "Show one market from the Myriad API",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarket,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(marketCmd)
}

func runMarket(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	client := myriad.NewClient(cfg.MyriadAPIURL, cfg.APITimeout, logger)

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	m, err := client.FetchMarket(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetch market: %w", err)
	}

	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "=== %s ===\n\n", m.Title)
	fmt.Fprintf(out, "ID:         %d\n", m.ID)
	fmt.Fprintf(out, "Slug:       %s\n", m.Slug)
	fmt.Fprintf(out, "State:      %s\n", m.State)
	if len(m.Topics) > 0 {
		fmt.Fprintf(out, "Topics:     %s\n", strings.Join(m.Topics, ", "))
	}
	if m.ExpiresAt != nil {
		fmt.Fprintf(out, "Expires:    %s (%s)\n",
			m.ExpiresAt.Format(time.RFC3339), view.FormatRemaining(m.ExpiresAt.Sub(timeNow())))
	}
	fmt.Fprintf(out, "Volume:     %.2f (24h %.2f)\n", m.Volume, m.Volume24h)
	fmt.Fprintf(out, "Liquidity:  %.2f\n", m.Liquidity)
	fmt.Fprintf(out, "Fee:        %.4f\n", m.Fee)
	if m.ResolutionSource != "" {
		fmt.Fprintf(out, "Resolution: %s\n", m.ResolutionSource)
	}

	fmt.Fprintf(out, "\nOutcomes:\n")
	for _, o := range m.Outcomes {
		marker := "  "
		if m.ResolvedOutcomeID != nil && *m.ResolvedOutcomeID == o.ID {
			marker = "✅"
		}
		fmt.Fprintf(out, "%s %-30s price %.3f  shares %.2f\n", marker, truncate(o.Title, 30), o.Price, o.Shares)
	}

	if m.Description != "" {
		fmt.Fprintf(out, "\n%s\n", m.Description)
	}

	return nil
}
