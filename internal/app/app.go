package app

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/mselser95/gasfutures/internal/chain"
	"github.com/mselser95/gasfutures/internal/storage"
	"github.com/mselser95/gasfutures/pkg/cache"
	"github.com/mselser95/gasfutures/pkg/config"
	"github.com/mselser95/gasfutures/pkg/healthprobe"
	"github.com/mselser95/gasfutures/pkg/httpserver"
	"github.com/mselser95/gasfutures/pkg/wallet"
	"go.uber.org/zap"
)

// App is the main application orchestrator for serve mode.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	pageCache     *cache.RistrettoCache
	session       *wallet.Session
	rpc           *ethclient.Client
	poller        *chain.Poller // nil without a contract address
	tracker       *wallet.Tracker
	journal       storage.Journal
	unsubscribe   func()
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}
