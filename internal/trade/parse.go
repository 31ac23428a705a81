package trade

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/mselser95/gasfutures/pkg/types"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidTargetFee is returned for a target fee that is not a positive
	// gwei amount with at most 9 decimals.
	ErrInvalidTargetFee = errors.New("target fee must be a positive gwei amount")

	// ErrInvalidDays is returned for a non-positive or non-integer expiry.
	ErrInvalidDays = errors.New("days until expiry must be a positive integer")

	// ErrInvalidAmount is returned for a stake that is not a positive amount
	// with at most 6 decimals.
	ErrInvalidAmount = errors.New("amount must be a positive stable-token amount")

	// ErrInvalidMarket is returned for a malformed market id.
	ErrInvalidMarket = errors.New("market id must be a non-negative integer")
)

// ParseGwei converts a gwei string ("0.5", "7") to wei.
func ParseGwei(s string) (*big.Int, error) {
	v, err := parseFixed(s, types.FeeDecimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTargetFee, s)
	}
	return v, nil
}

// ParseAmount converts a stable-token amount ("12.5") to its 6-decimal
// integer form.
func ParseAmount(s string) (*big.Int, error) {
	v, err := parseFixed(s, types.StableDecimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return v, nil
}

// ParseDays parses a positive whole number of days.
func ParseDays(s string) (*big.Int, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || n == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDays, s)
	}
	return new(big.Int).SetUint64(n), nil
}

// ParseMarketID parses an on-chain market index.
func ParseMarketID(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMarket, s)
	}
	return n, nil
}

// parseFixed scales a positive decimal string by 10^decimals and rejects
// values that do not fit exactly.
func parseFixed(s string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}

	if !d.IsPositive() {
		return nil, errors.New("not positive")
	}

	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, errors.New("too many decimals")
	}

	return scaled.BigInt(), nil
}
