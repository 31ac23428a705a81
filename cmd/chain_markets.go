package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/gasfutures/internal/chain"
	"github.com/mselser95/gasfutures/internal/view"
	"github.com/mselser95/gasfutures/pkg/wallet"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var chainMarketsCmd = &cobra.Command{
	Use:   "chain-markets",
	Short: "List the gas futures markets stored on-chain",
	Long: `Reads every market of the gas futures contract: target base fee, expiry,
long and short pool totals and the resolution outcome. With --address (or
WALLET_ADDRESS) it also reads that wallet's long and short balances.`,
	RunE: runChainMarkets,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(chainMarketsCmd)
	chainMarketsCmd.Flags().StringP("address", "a", "", "Wallet to read balances for (default WALLET_ADDRESS)")
	chainMarketsCmd.Flags().Bool("live", false, "Hide expired markets")
}

func runChainMarkets(cmd *cobra.Command, args []string) error {
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
	live, _ := cmd.Flags().GetBool("live")

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	reader, err := openChainReader(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer reader.Close()

	pollerCfg := &chain.PollerConfig{
		Reader:      reader.contract,
		Interval:    cfg.ChainPollInterval,
		Concurrency: cfg.ChainReadConcurrency,
		Logger:      logger,
	}

	if address != "" {
		session := wallet.NewSession()
		err = session.Connect(address)
		if err != nil {
			return fmt.Errorf("connect wallet: %w", err)
		}
		pollerCfg.Wallet = session
	}

	poller, err := chain.NewPoller(pollerCfg)
	if err != nil {
		return fmt.Errorf("create poller: %w", err)
	}

	_, err = poller.Poll(ctx)
	if err != nil {
		return fmt.Errorf("read markets: %w", err)
	}

	snap := poller.Snapshot()
	out := cmd.OutOrStdout()

	if snap == nil || len(snap.Markets) == 0 {
		fmt.Fprintln(out, "No markets on-chain")
		return nil
	}

	rows := view.ProjectChain(snap.Markets, timeNow())
	if live {
		rows = liveChainRows(rows)
	}

	printChainRows(out, rows)

	fmt.Fprintf(out, "\n%d market(s) at %s", len(rows), reader.contract.Address().Hex())
	if snap.Address != "" {
		fmt.Fprintf(out, ", balances of %s", view.TruncateAddress(snap.Address, 4))
	}
	fmt.Fprintln(out)

	return nil
}

func liveChainRows(rows []view.ChainRow) []view.ChainRow {
	live := make([]view.ChainRow, 0, len(rows))
	for _, row := range rows {
		if !row.Expired {
			live = append(live, row)
		}
	}
	return live
}
