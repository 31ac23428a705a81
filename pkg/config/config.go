package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/gasfutures/pkg/types"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Market API
	MyriadAPIURL  string
	NetworkID     int
	PageSize      int
	DefaultSort   types.SortKey
	DefaultState  types.MarketState
	PageCacheTTL  time.Duration
	APITimeout    time.Duration
	PortfolioSize int

	// Chain
	RPCURL               string
	ChainID              int64
	ContractAddress      string
	StableTokenAddress   string
	WalletAddress        string
	ChainPollInterval    time.Duration
	ChainReadConcurrency int
	TxTimeout            time.Duration
	WalletTrackInterval  time.Duration

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		MyriadAPIURL:  getEnvOrDefault("MYRIAD_API_URL", "https://api-v2.myriadprotocol.com"),
		NetworkID:     getIntOrDefault("MYRIAD_NETWORK_ID", 2741), // Abstract mainnet
		PageSize:      getIntOrDefault("MARKET_PAGE_SIZE", 12),
		DefaultSort:   types.SortKey(getEnvOrDefault("MARKET_SORT", string(types.SortVolume24h))),
		DefaultState:  types.MarketState(getEnvOrDefault("MARKET_STATE", string(types.MarketStateOpen))),
		PageCacheTTL:  getDurationOrDefault("PAGE_CACHE_TTL", 30*time.Second),
		APITimeout:    getDurationOrDefault("MYRIAD_API_TIMEOUT", 30*time.Second),
		PortfolioSize: getIntOrDefault("PORTFOLIO_PAGE_SIZE", 50),

		RPCURL:               getEnvOrDefault("RPC_URL", "https://ethereum-sepolia-rpc.publicnode.com"),
		ChainID:              int64(getIntOrDefault("CHAIN_ID", 11155111)), // Sepolia
		ContractAddress:      os.Getenv("GASFUTURES_CONTRACT_ADDRESS"),
		StableTokenAddress:   os.Getenv("STABLE_TOKEN_ADDRESS"),
		WalletAddress:        os.Getenv("WALLET_ADDRESS"),
		ChainPollInterval:    getDurationOrDefault("CHAIN_POLL_INTERVAL", 15*time.Second),
		ChainReadConcurrency: getIntOrDefault("CHAIN_READ_CONCURRENCY", 8),
		TxTimeout:            getDurationOrDefault("TX_TIMEOUT", 3*time.Minute),
		WalletTrackInterval:  getDurationOrDefault("WALLET_TRACK_INTERVAL", time.Minute),

		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "gasfutures"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "gasfutures"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "gasfutures"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.MyriadAPIURL == "" {
		return fmt.Errorf("MYRIAD_API_URL cannot be empty")
	}

	if _, err := url.ParseRequestURI(c.MyriadAPIURL); err != nil {
		return fmt.Errorf("MYRIAD_API_URL is not a valid URL: %w", err)
	}

	if c.PageSize < 1 || c.PageSize > types.MaxPageLimit {
		return fmt.Errorf("MARKET_PAGE_SIZE must be between 1 and %d, got %d", types.MaxPageLimit, c.PageSize)
	}

	if _, ok := types.ParseSortKey(string(c.DefaultSort)); !ok {
		return fmt.Errorf("MARKET_SORT %q is not a valid sort key", c.DefaultSort)
	}

	if _, ok := types.ParseMarketState(string(c.DefaultState)); !ok {
		return fmt.Errorf("MARKET_STATE %q is not a valid market state", c.DefaultState)
	}

	if c.RPCURL == "" {
		return fmt.Errorf("RPC_URL cannot be empty")
	}

	for name, addr := range map[string]string{
		"GASFUTURES_CONTRACT_ADDRESS": c.ContractAddress,
		"STABLE_TOKEN_ADDRESS":        c.StableTokenAddress,
		"WALLET_ADDRESS":              c.WalletAddress,
	} {
		if addr != "" && !common.IsHexAddress(addr) {
			return fmt.Errorf("%s is not a hex address: %q", name, addr)
		}
	}

	if c.ChainPollInterval <= 0 {
		return fmt.Errorf("CHAIN_POLL_INTERVAL must be positive, got %v", c.ChainPollInterval)
	}

	if c.ChainReadConcurrency < 1 {
		return fmt.Errorf("CHAIN_READ_CONCURRENCY must be at least 1, got %d", c.ChainReadConcurrency)
	}

	if c.StorageMode != "console" && c.StorageMode != "postgres" {
		return fmt.Errorf("STORAGE_MODE must be 'console' or 'postgres', got %q", c.StorageMode)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
