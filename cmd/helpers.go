package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/mselser95/gasfutures/internal/app"
	"github.com/mselser95/gasfutures/internal/chain"
	"github.com/mselser95/gasfutures/internal/storage"
	"github.com/mselser95/gasfutures/internal/trade"
	"github.com/mselser95/gasfutures/internal/view"
	"github.com/mselser95/gasfutures/pkg/config"
	"github.com/mselser95/gasfutures/pkg/types"
	"github.com/mselser95/gasfutures/pkg/wallet"
	"go.uber.org/zap"
)

const privateKeyEnv = "GASFUTURES_PRIVATE_KEY"

func loadEnv() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	return cfg, logger, nil
}

// chainReader is a read-only connection to the contract.
type chainReader struct {
	rpc      *ethclient.Client
	contract *chain.Contract
}

func openChainReader(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*chainReader, error) {
	rpc, err := app.DialChain(ctx, cfg)
	if err != nil {
		return nil, err
	}

	contract, err := chain.NewContract(rpc, cfg.ContractAddress, logger)
	if err != nil {
		rpc.Close()
		return nil, fmt.Errorf("open contract: %w", err)
	}

	return &chainReader{rpc: rpc, contract: contract}, nil
}

func (r *chainReader) Close() {
	r.rpc.Close()
}

// writeSession bundles everything a write command needs: a signing
// transactor, the desk running the write flow, and a poller connected as the
// signer so the affected market can be re-read afterwards.
type writeSession struct {
	*chainReader
	transactor *chain.Transactor
	desk       *trade.Desk
	poller     *chain.Poller
	journal    storage.Journal
}

func openWriteSession(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*writeSession, error) {
	privateKey := os.Getenv(privateKeyEnv)
	if privateKey == "" {
		return nil, fmt.Errorf("%s not set in .env", privateKeyEnv)
	}

	reader, err := openChainReader(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	ws := &writeSession{chainReader: reader}

	err = ws.init(ctx, cfg, logger, privateKey)
	if err != nil {
		ws.Close()
		return nil, err
	}

	return ws, nil
}

func (ws *writeSession) init(ctx context.Context, cfg *config.Config, logger *zap.Logger, privateKey string) error {
	var err error

	ws.transactor, err = chain.NewTransactor(&chain.TransactorConfig{
		Backend:         ws.rpc,
		ContractAddress: cfg.ContractAddress,
		ChainID:         cfg.ChainID,
		PrivateKeyHex:   privateKey,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("create transactor: %w", err)
	}

	session := wallet.NewSession()
	err = session.Connect(ws.transactor.From().Hex())
	if err != nil {
		return fmt.Errorf("connect signer: %w", err)
	}

	ws.poller, err = chain.NewPoller(&chain.PollerConfig{
		Reader:      ws.contract,
		Wallet:      session,
		Interval:    cfg.ChainPollInterval,
		Concurrency: cfg.ChainReadConcurrency,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("create poller: %w", err)
	}

	ws.journal, err = app.SetupJournal(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	ws.desk, err = trade.NewDesk(&trade.Config{
		Submitter: ws.transactor,
		Refresher: ws.poller,
		Recorder:  ws.journal,
		Timeout:   cfg.TxTimeout,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("create desk: %w", err)
	}

	return nil
}

func (ws *writeSession) Close() {
	if ws.journal != nil {
		_ = ws.journal.Close()
	}
	ws.chainReader.Close()
}

// report prints the outcome of a write and, on success, the re-read market.
func (ws *writeSession) report(
	ctx context.Context,
	w io.Writer,
	pending *types.PendingTransaction,
	err error,
	marketID *uint64,
) error {
	if err != nil {
		var txErr *trade.TxError
		if errors.As(err, &txErr) {
			fmt.Fprintf(w, "❌ %s failed: %s\n", txErr.Method, txErr.Hash)
		}
		return err
	}

	fmt.Fprintf(w, "✅ %s confirmed: %s\n", pending.Method, pending.Hash)

	_, err = ws.poller.Poll(ctx)
	if err != nil {
		return fmt.Errorf("reload markets: %w", err)
	}

	snap := ws.poller.Snapshot()
	if snap == nil {
		return nil
	}

	rows := view.ProjectChain(snap.Markets, timeNow())
	if marketID != nil {
		for _, row := range rows {
			if row.ID == *marketID {
				printChainRows(w, []view.ChainRow{row})
				return nil
			}
		}
	}

	if len(rows) > 0 {
		printChainRows(w, rows[len(rows)-1:])
	}

	return nil
}

func printMarketRows(w io.Writer, rows []view.MarketRow, verbose bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTITLE\tSTATE\tVOLUME 24H\tLIQUIDITY\tENDS IN")
	for _, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%.2f\t%s\n",
			row.ID, truncate(row.Title, 60), row.State, row.Volume24h, row.Liquidity, row.TimeRemaining)

		if verbose {
			for _, o := range row.Outcomes {
				fmt.Fprintf(tw, "\t  %s\t\t%.3f\t\t\n", o.Title, o.Price)
			}
			if len(row.Topics) > 0 {
				fmt.Fprintf(tw, "\t  topics: %s\t\t\t\t\n", strings.Join(row.Topics, ", "))
			}
		}
	}
}

func printChainRows(w io.Writer, rows []view.ChainRow) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTARGET (GWEI)\tENDS IN\tLONG POOL\tSHORT POOL\tYOUR LONG\tYOUR SHORT\tSIDE\tOUTCOME")
	for _, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.ID, row.TargetGwei, row.TimeRemaining,
			row.TotalLong, row.TotalShort, row.UserLong, row.UserShort,
			sideLabel(row.PositionSign), row.Outcome)
	}
}

func sideLabel(sign int) string {
	switch {
	case sign > 0:
		return "long"
	case sign < 0:
		return "short"
	default:
		return "-"
	}
}

// truncate shortens s to n runes, marking the cut with "..." when there is
// room for it.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}

	r := []rune(s)
	if len(r) <= n {
		return s
	}

	if n < 4 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

//nolint:gochecknoglobals // replaced in tests
var timeNow = time.Now
