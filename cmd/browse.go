package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mselser95/gasfutures/internal/pager"
	"github.com/mselser95/gasfutures/internal/view"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Scroll through the market list page by page",
	Long: `Loads the first page of markets for a filter, then loads the next page every
time you press Enter, the way an infinite list loads when its bottom comes
into view. Type q and Enter to quit.`,
	RunE: runBrowse,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(browseCmd)
	addFilterFlags(browseCmd)
	browseCmd.Flags().BoolP("verbose", "v", false, "Show outcomes and topics")
}

func runBrowse(cmd *cobra.Command, args []string) error {
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

	verbose, _ := cmd.Flags().GetBool("verbose")

	ctrl, err := newController(cfg, logger, f, limit)
	if err != nil {
		return fmt.Errorf("create pager: %w", err)
	}

	out := cmd.OutOrStdout()
	b := &browser{ctrl: ctrl, out: out, verbose: verbose}

	trigger := pager.NewTrigger(ctrl, b.onLoad, logger)
	defer trigger.Close()

	fmt.Fprintf(out, "⏳ Loading %s markets...\n", f.Topic())

	_, err = ctrl.FetchNext(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch first page: %w", err)
	}
	b.onLoad(true, nil)

	return b.loop(cmd.Context(), cmd.InOrStdin(), trigger)
}

// browser prints rows as pages arrive. Rows of a page are printed once.
type browser struct {
	ctrl    *pager.Controller
	out     io.Writer
	verbose bool

	mu      sync.Mutex
	printed int
}

func (b *browser) onLoad(fetched bool, err error) {
	if err != nil {
		fmt.Fprintf(b.out, "❌ Failed to load page: %v\n", err)
		return
	}
	if !fetched {
		return
	}

	snap := b.ctrl.Snapshot()

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(snap.Items) < b.printed {
		b.printed = 0
	}
	fresh := snap.Items[b.printed:]
	b.printed = len(snap.Items)

	rows := view.ProjectMarkets(fresh, timeNow())
	printMarketRows(b.out, rows, b.verbose)

	fmt.Fprintf(b.out, "\n📄 page %d: %d live of %d new markets", snap.Pages, len(rows), len(fresh))
	if snap.Pagination != nil {
		fmt.Fprintf(b.out, " (%d total)", snap.Pagination.Total)
	}
	fmt.Fprintln(b.out)
}

func (b *browser) loop(ctx context.Context, in io.Reader, trigger *pager.Trigger) error {
	scanner := bufio.NewScanner(in)

	for {
		if !b.ctrl.HasMore() {
			fmt.Fprintln(b.out, "✅ End of list")
			return nil
		}

		fmt.Fprint(b.out, "[Enter] more, [q] quit: ")

		if !scanner.Scan() {
			return scanner.Err()
		}
		if strings.EqualFold(strings.TrimSpace(scanner.Text()), "q") {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		trigger.Observe(true)
		trigger.Wait()
	}
}
