package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const balanceOfABI = `[{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"}]`

// Backend is the node surface the client reads from. *ethclient.Client
// satisfies it.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Client reads wallet balances from the chain.
type Client struct {
	backend    Backend
	stable     common.Address
	balanceABI abi.ABI
	logger     *zap.Logger
}

// Balances holds on-chain balances of one address.
type Balances struct {
	Native *big.Int // in wei
	Stable *big.Int // in 6-decimal units
}

// NewClient creates a client reading the stable token at stableToken.
func NewClient(backend Backend, stableToken string, logger *zap.Logger) (c *Client, err error) {
	if backend == nil {
		return nil, errors.New("backend cannot be nil")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if !common.IsHexAddress(stableToken) {
		return nil, fmt.Errorf("invalid stable token address %q", stableToken)
	}

	parsedABI, err := abi.JSON(strings.NewReader(balanceOfABI))
	if err != nil {
		return nil, fmt.Errorf("parse ABI: %w", err)
	}

	client := &Client{
		backend:    backend,
		stable:     common.HexToAddress(stableToken),
		balanceABI: parsedABI,
		logger:     logger,
	}

	return client, nil
}

// StableBalance returns owner's stable-token balance in 6-decimal units.
func (c *Client) StableBalance(ctx context.Context, owner common.Address) (balance *big.Int, err error) {
	data, err := c.balanceABI.Pack("balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("pack ABI: %w", err)
	}

	token := c.stable
	msg := ethereum.CallMsg{
		To:   &token,
		Data: data,
	}

	result, err := c.backend.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call contract: %w", err)
	}

	balance = new(big.Int).SetBytes(result)
	return balance, nil
}

// GetBalances fetches the native and stable-token balances of address.
func (c *Client) GetBalances(ctx context.Context, address common.Address) (balances *Balances, err error) {
	native, err := c.backend.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("get native balance: %w", err)
	}

	stable, err := c.StableBalance(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("get stable balance: %w", err)
	}

	balances = &Balances{
		Native: native,
		Stable: stable,
	}

	return balances, nil
}
