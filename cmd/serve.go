package cmd

import (
	"fmt"

	"github.com/mselser95/gasfutures/internal/app"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve market views over HTTP",
	Long: `Starts the HTTP server, which will:
1. Serve the aggregated market list at /api/markets (filter query params + pages)
2. Poll the gas futures contract and serve it at /api/chain/markets
3. Push every on-chain poll result to websocket clients at /ws/chain
4. Serve portfolios at /api/portfolio/{address}
5. Track the WALLET_ADDRESS balances as Prometheus metrics at /metrics

Chain features are enabled by GASFUTURES_CONTRACT_ADDRESS and
STABLE_TOKEN_ADDRESS.`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
