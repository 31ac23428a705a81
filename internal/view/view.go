// Package view turns aggregated market data into display rows. Every
// projection takes a single time snapshot so rows rendered together agree on
// what "now" is.
package view

import (
	"fmt"
	"math/big"
	"time"

	"github.com/mselser95/gasfutures/pkg/types"
	"github.com/shopspring/decimal"
)

// DropExpired returns the items whose expiry is absent or after now. The input
// slice is not modified.
func DropExpired(items []types.MarketSummary, now time.Time) []types.MarketSummary {
	kept := make([]types.MarketSummary, 0, len(items))
	for _, item := range items {
		if item.ExpiresAt == nil || item.ExpiresAt.After(now) {
			kept = append(kept, item)
		}
	}
	return kept
}

// MarketRow is the display form of a remote market summary.
type MarketRow struct {
	types.MarketSummary
	TimeRemaining string `json:"timeRemaining"`
}

// ProjectMarkets drops expired items and derives the remaining time of the
// rest, all against the same now.
func ProjectMarkets(items []types.MarketSummary, now time.Time) []MarketRow {
	live := DropExpired(items, now)

	rows := make([]MarketRow, 0, len(live))
	for _, item := range live {
		row := MarketRow{MarketSummary: item, TimeRemaining: "-"}
		if item.ExpiresAt != nil {
			row.TimeRemaining = FormatRemaining(item.ExpiresAt.Sub(now))
		}
		rows = append(rows, row)
	}

	return rows
}

// ChainRow is the display form of an on-chain market.
type ChainRow struct {
	ID            uint64    `json:"id"`
	TargetGwei    string    `json:"targetGwei"`
	Expiry        time.Time `json:"expiry"`
	TimeRemaining string    `json:"timeRemaining"`
	Expired       bool      `json:"expired"`
	TotalLong     string    `json:"totalLong"`
	TotalShort    string    `json:"totalShort"`
	UserLong      string    `json:"userLong"`
	UserShort     string    `json:"userShort"`
	PositionSign  int       `json:"positionSign"`
	Resolved      bool      `json:"resolved"`
	Outcome       string    `json:"outcome"`
}

// ProjectChain formats on-chain markets. Unlike ProjectMarkets it keeps
// expired markets: they still need to be resolved and redeemed.
func ProjectChain(markets []types.ChainMarket, now time.Time) []ChainRow {
	rows := make([]ChainRow, 0, len(markets))
	for i := range markets {
		m := &markets[i]

		row := ChainRow{
			ID:            m.ID,
			TargetGwei:    FormatUnits(m.TargetBaseFee, types.FeeDecimals),
			Expiry:        m.Expiry,
			TimeRemaining: FormatRemaining(m.Expiry.Sub(now)),
			Expired:       m.Expired(now),
			TotalLong:     FormatUnits(m.TotalLong, types.StableDecimals),
			TotalShort:    FormatUnits(m.TotalShort, types.StableDecimals),
			UserLong:      FormatUnits(m.UserLong, types.StableDecimals),
			UserShort:     FormatUnits(m.UserShort, types.StableDecimals),
			PositionSign:  PositionSign(m.UserLong, m.UserShort),
			Resolved:      m.Resolved,
			Outcome:       "pending",
		}

		if m.Resolved {
			row.Outcome = "short"
			if m.Outcome {
				row.Outcome = "long"
			}
		}

		rows = append(rows, row)
	}

	return rows
}

// PositionSign is +1 when the long side is larger, -1 when the short side is
// larger, 0 when flat. Nil counts as zero.
func PositionSign(long, short *big.Int) int {
	return orZero(long).Cmp(orZero(short))
}

// FormatUnits renders a fixed-point integer with the given number of decimals.
func FormatUnits(v *big.Int, decimals int32) string {
	return decimal.NewFromBigInt(orZero(v), -decimals).String()
}

// FormatRemaining renders a duration compactly: "2d 4h", "3h 12m", "35m",
// "<1m", or "ended" when d <= 0.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "ended"
	}

	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return "<1m"
	}
}

// TruncateAddress shortens an address to its first chars hex digits and last
// chars characters: 0x1234...abcd.
func TruncateAddress(addr string, chars int) string {
	if chars <= 0 || len(addr) <= 2*chars+2 {
		return addr
	}
	return addr[:chars+2] + "..." + addr[len(addr)-chars:]
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
