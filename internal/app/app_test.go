package app

import (
	"context"
	"testing"
	"time"

	"github.com/mselser95/gasfutures/internal/storage"
	"github.com/mselser95/gasfutures/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:             "info",
		HTTPPort:             "0",
		MyriadAPIURL:         "http://127.0.0.1:1",
		NetworkID:            2741,
		PageSize:             12,
		PageCacheTTL:         30 * time.Second,
		APITimeout:           time.Second,
		PortfolioSize:        50,
		RPCURL:               "http://127.0.0.1:1",
		ChainID:              11155111,
		ChainPollInterval:    15 * time.Second,
		ChainReadConcurrency: 4,
		TxTimeout:            time.Minute,
		WalletTrackInterval:  time.Minute,
		StorageMode:          "console",
	}
}

func TestNew_MarketsOnly(t *testing.T) {
	a, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, a.httpServer)
	assert.NotNil(t, a.pageCache)
	assert.Nil(t, a.rpc)
	assert.Nil(t, a.poller)
	assert.Nil(t, a.tracker)
	assert.IsType(t, &storage.ConsoleStorage{}, a.journal)

	_, connected := a.session.Address()
	assert.False(t, connected)

	require.NoError(t, a.Shutdown())
}

func TestNew_WithChain(t *testing.T) {
	cfg := testConfig()
	cfg.ContractAddress = "0x1111111111111111111111111111111111111111"
	cfg.StableTokenAddress = "0x2222222222222222222222222222222222222222"
	cfg.WalletAddress = "0x3333333333333333333333333333333333333333"

	a, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, a.rpc)
	assert.NotNil(t, a.poller)
	assert.NotNil(t, a.tracker)

	addr, connected := a.session.Address()
	assert.True(t, connected)
	assert.Equal(t, cfg.WalletAddress, addr.Hex())

	assert.Nil(t, a.poller.Snapshot())

	require.NoError(t, a.Shutdown())
}

func TestNew_InvalidWallet(t *testing.T) {
	cfg := testConfig()
	cfg.WalletAddress = "not-an-address"

	_, err := New(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect wallet")
}

func TestNew_InvalidContract(t *testing.T) {
	cfg := testConfig()
	cfg.ContractAddress = "0x0000000000000000000000000000000000000000"

	_, err := New(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup contract")
}

func TestSetupJournal_Console(t *testing.T) {
	journal, err := SetupJournal(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer journal.Close()

	assert.IsType(t, &storage.ConsoleStorage{}, journal)
}
