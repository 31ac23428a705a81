package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/mselser95/gasfutures/internal/chain"
	"github.com/mselser95/gasfutures/internal/myriad"
	"github.com/mselser95/gasfutures/internal/portfolio"
	"github.com/mselser95/gasfutures/internal/storage"
	"github.com/mselser95/gasfutures/pkg/cache"
	"github.com/mselser95/gasfutures/pkg/config"
	"github.com/mselser95/gasfutures/pkg/healthprobe"
	"github.com/mselser95/gasfutures/pkg/httpserver"
	"github.com/mselser95/gasfutures/pkg/wallet"
	"go.uber.org/zap"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthprobe.New(),
		session:       wallet.NewSession(),
		unsubscribe:   func() {},
		ctx:           ctx,
		cancel:        cancel,
	}

	err := a.setup(ctx)
	if err != nil {
		a.closeResources()
		cancel()
		return nil, err
	}

	return a, nil
}

func (a *App) setup(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	pageCache, err := SetupCache(logger)
	if err != nil {
		return fmt.Errorf("setup cache: %w", err)
	}
	a.pageCache = pageCache

	if cfg.WalletAddress != "" {
		err = a.session.Connect(cfg.WalletAddress)
		if err != nil {
			return fmt.Errorf("connect wallet: %w", err)
		}
	}

	marketClient := myriad.NewClient(cfg.MyriadAPIURL, cfg.APITimeout, logger)

	portfolioService, err := portfolio.NewService(marketClient, cfg.PortfolioSize, cfg.NetworkID, logger)
	if err != nil {
		return fmt.Errorf("setup portfolio service: %w", err)
	}

	a.journal, err = SetupJournal(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("setup journal: %w", err)
	}

	if cfg.ContractAddress != "" || cfg.StableTokenAddress != "" {
		a.rpc, err = DialChain(ctx, cfg)
		if err != nil {
			return fmt.Errorf("dial chain: %w", err)
		}
	}

	err = a.setupPoller()
	if err != nil {
		return err
	}

	err = a.setupTracker(portfolioService)
	if err != nil {
		return err
	}

	serverCfg := &httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: a.healthChecker,
		Markets:       marketClient,
		PageCache:     pageCache,
		CacheTTL:      cfg.PageCacheTTL,
		NetworkID:     cfg.NetworkID,
		PageSize:      cfg.PageSize,
		Portfolio:     portfolioService,
	}

	if a.poller != nil {
		serverCfg.Chain = a.poller
	}

	if lister, ok := a.journal.(httpserver.TransactionLister); ok {
		serverCfg.Transactions = lister
	}

	a.httpServer = httpserver.New(serverCfg)

	return nil
}

func (a *App) setupPoller() error {
	if a.cfg.ContractAddress == "" {
		a.logger.Warn("chain-poller-disabled",
			zap.String("reason", "GASFUTURES_CONTRACT_ADDRESS not set"))
		return nil
	}

	contract, err := chain.NewContract(a.rpc, a.cfg.ContractAddress, a.logger)
	if err != nil {
		return fmt.Errorf("setup contract: %w", err)
	}

	changes, unsubscribe := a.session.Subscribe()
	a.unsubscribe = unsubscribe

	a.poller, err = chain.NewPoller(&chain.PollerConfig{
		Reader:         contract,
		Wallet:         a.session,
		AddressChanges: changes,
		Interval:       a.cfg.ChainPollInterval,
		Concurrency:    a.cfg.ChainReadConcurrency,
		Logger:         a.logger,
	})
	if err != nil {
		return fmt.Errorf("setup poller: %w", err)
	}

	poller := a.poller
	a.healthChecker.AddCheck("chain", func() error {
		if poller.Snapshot() == nil {
			return errors.New("no chain snapshot yet")
		}
		return nil
	})

	return nil
}

func (a *App) setupTracker(holdings wallet.HoldingsSource) error {
	if a.cfg.StableTokenAddress == "" {
		a.logger.Info("wallet-tracker-disabled",
			zap.String("reason", "STABLE_TOKEN_ADDRESS not set"))
		return nil
	}

	client, err := wallet.NewClient(a.rpc, a.cfg.StableTokenAddress, a.logger)
	if err != nil {
		return fmt.Errorf("setup wallet client: %w", err)
	}

	a.tracker, err = wallet.New(&wallet.Config{
		Client:       client,
		Session:      a.session,
		Holdings:     holdings,
		PollInterval: a.cfg.WalletTrackInterval,
		Logger:       a.logger,
	})
	if err != nil {
		return fmt.Errorf("setup wallet tracker: %w", err)
	}

	return nil
}

// SetupCache creates the process page cache.
func SetupCache(logger *zap.Logger) (*cache.RistrettoCache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000, // 10x expected max pages
		MaxCost:     1000,  // Maximum 1000 pages in cache
		BufferItems: 64,
		Logger:      logger,
	})
}

// SetupJournal opens the transaction journal selected by STORAGE_MODE.
func SetupJournal(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Journal, error) {
	if cfg.StorageMode == "postgres" {
		pgStorage, err := storage.NewPostgresStorage(ctx, &storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	return storage.NewConsoleStorage(logger), nil
}

// DialChain connects to the configured RPC endpoint.
func DialChain(ctx context.Context, cfg *config.Config) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.RPCURL, err)
	}

	return client, nil
}
