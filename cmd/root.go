package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "gasfutures",
	Short: "Gas futures market client",
	Long: `Client for the gas futures prediction markets.

Browses the market list served by the Myriad REST API, reads the on-chain
gas futures contract (markets, pool totals, your long/short balances) and
submits writes to it: create a market, bet long or short, redeem winnings.

The serve command exposes the aggregated views over HTTP and pushes every
on-chain poll result to websocket clients.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		err := godotenv.Load()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: .env file not found\n")
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
