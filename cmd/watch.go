package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/gasfutures/pkg/httpserver"
	"github.com/mselser95/gasfutures/pkg/websocket"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow on-chain markets pushed by a running server",
	Long: `Connects to the /ws/chain push stream of a running "gasfutures serve" and
prints the on-chain market table every time the server polls the contract.
Reconnects with backoff if the connection drops. Ctrl-C to stop.`,
	RunE: runWatch,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringP("url", "u", "", "Push endpoint (default ws://localhost:$HTTP_PORT/ws/chain)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	url, _ := cmd.Flags().GetString("url")
	if url == "" {
		url = "ws://localhost:" + cfg.HTTPPort + "/ws/chain"
	}

	client, err := websocket.New(websocket.Config{
		URL: url,
		Reconnect: websocket.ReconnectConfig{
			InitialDelay:      time.Second,
			MaxDelay:          30 * time.Second,
			BackoffMultiplier: 2.0,
			JitterPercent:     0.2,
		},
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("create push client: %w", err)
	}
	defer client.Close()

	err = client.Start()
	if err != nil {
		return fmt.Errorf("connect %s: %w", url, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ Watching %s\n", url)

	return watchLoop(ctx, client.Messages(), func(resp *httpserver.ChainMarketsResponse) {
		fmt.Fprintf(out, "\n=== %s", resp.PolledAt.Format(time.RFC3339))
		if resp.Address != "" {
			fmt.Fprintf(out, " (%s)", resp.Address)
		}
		fmt.Fprintf(out, " ===\n")
		printChainRows(out, resp.Markets)
	})
}

func watchLoop(ctx context.Context, messages <-chan websocket.Message, onMarkets func(*httpserver.ChainMarketsResponse)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if msg.Type != httpserver.MessageTypeChainMarkets {
				continue
			}

			var resp httpserver.ChainMarketsResponse
			err := json.Unmarshal(msg.Data, &resp)
			if err != nil {
				return fmt.Errorf("decode %s message: %w", msg.Type, err)
			}

			onMarkets(&resp)
		}
	}
}
