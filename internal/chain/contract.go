// Package chain reads and writes the gas futures market contract and keeps
// an eventually-consistent copy of its markets.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/gasfutures/pkg/types"
	"go.uber.org/zap"
)

// ErrNoContract is returned when no contract address is configured.
var ErrNoContract = errors.New("contract address not configured")

// Reader is the contract read surface.
type Reader interface {
	MarketCount(ctx context.Context) (uint64, error)
	Market(ctx context.Context, index uint64) (*types.ChainMarket, error)
	Balances(ctx context.Context, index uint64, owner common.Address) (long *big.Int, short *big.Int, err error)
}

// Caller executes read-only contract calls. *ethclient.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Contract reads the gas futures contract through eth_call.
type Contract struct {
	caller  Caller
	address common.Address
	abi     abi.ABI
	logger  *zap.Logger
}

// NewContract creates a contract reader. address must be a non-zero hex
// address.
func NewContract(caller Caller, address string, logger *zap.Logger) (*Contract, error) {
	if caller == nil {
		return nil, errors.New("caller cannot be nil")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	addr := common.HexToAddress(address)
	if !common.IsHexAddress(address) || addr == (common.Address{}) {
		return nil, ErrNoContract
	}

	parsed, err := ParseABI()
	if err != nil {
		return nil, err
	}

	return &Contract{
		caller:  caller,
		address: addr,
		abi:     parsed,
		logger:  logger,
	}, nil
}

// Address returns the contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// MarketCount returns the number of markets created so far.
func (c *Contract) MarketCount(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, MethodMarketCount)
	if err != nil {
		return 0, err
	}

	count, err := uintAt(out, 0)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", MethodMarketCount, err)
	}

	if !count.IsUint64() {
		return 0, fmt.Errorf("market count overflows uint64: %s", count)
	}

	return count.Uint64(), nil
}

// Market returns the market at index. User balances are left zero.
func (c *Contract) Market(ctx context.Context, index uint64) (*types.ChainMarket, error) {
	out, err := c.call(ctx, MethodMarkets, new(big.Int).SetUint64(index))
	if err != nil {
		return nil, err
	}

	return decodeMarket(index, out)
}

// Balances returns owner's long and short stakes in the market at index.
func (c *Contract) Balances(ctx context.Context, index uint64, owner common.Address) (*big.Int, *big.Int, error) {
	id := new(big.Int).SetUint64(index)

	longOut, err := c.call(ctx, MethodLongBalances, id, owner)
	if err != nil {
		return nil, nil, err
	}

	long, err := uintAt(longOut, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", MethodLongBalances, err)
	}

	shortOut, err := c.call(ctx, MethodShortBalances, id, owner)
	if err != nil {
		return nil, nil, err
	}

	short, err := uintAt(shortOut, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", MethodShortBalances, err)
	}

	return long, short, nil
}

func (c *Contract) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	to := c.address
	msg := ethereum.CallMsg{
		To:   &to,
		Data: data,
	}

	start := time.Now()
	result, err := c.caller.CallContract(ctx, msg, nil)
	ContractCallDurationSeconds.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		ContractCallErrorsTotal.WithLabelValues(method).Inc()
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	out, err := c.abi.Unpack(method, result)
	if err != nil {
		ContractCallErrorsTotal.WithLabelValues(method).Inc()
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}

	return out, nil
}

func decodeMarket(index uint64, out []interface{}) (*types.ChainMarket, error) {
	if len(out) != 6 {
		return nil, fmt.Errorf("decode %s: expected 6 fields, got %d", MethodMarkets, len(out))
	}

	target, err := uintAt(out, 0)
	if err != nil {
		return nil, fmt.Errorf("decode targetBaseFee: %w", err)
	}

	expiry, err := uintAt(out, 1)
	if err != nil {
		return nil, fmt.Errorf("decode expiry: %w", err)
	}

	totalLong, err := uintAt(out, 2)
	if err != nil {
		return nil, fmt.Errorf("decode totalLong: %w", err)
	}

	totalShort, err := uintAt(out, 3)
	if err != nil {
		return nil, fmt.Errorf("decode totalShort: %w", err)
	}

	resolved, ok := out[4].(bool)
	if !ok {
		return nil, fmt.Errorf("decode resolved: unexpected type %T", out[4])
	}

	outcome, ok := out[5].(bool)
	if !ok {
		return nil, fmt.Errorf("decode outcome: unexpected type %T", out[5])
	}

	return &types.ChainMarket{
		ID:            index,
		TargetBaseFee: target,
		Expiry:        time.Unix(expiry.Int64(), 0).UTC(),
		TotalLong:     totalLong,
		TotalShort:    totalShort,
		Resolved:      resolved,
		Outcome:       outcome,
		UserLong:      new(big.Int),
		UserShort:     new(big.Int),
	}, nil
}

func uintAt(out []interface{}, i int) (*big.Int, error) {
	if i >= len(out) {
		return nil, fmt.Errorf("missing output %d", i)
	}

	v, ok := out[i].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("output %d: unexpected type %T", i, out[i])
	}

	return v, nil
}
