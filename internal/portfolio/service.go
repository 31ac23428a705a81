// Package portfolio fetches and summarizes a user's positions and models the
// position lifecycle.
package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/mselser95/gasfutures/pkg/types"
	"github.com/mselser95/gasfutures/pkg/wallet"
	"go.uber.org/zap"
)

// maxPages bounds FetchAll against a server that never reports the end.
const maxPages = 1000

// Fetcher fetches one page of positions. *myriad.Client satisfies it.
type Fetcher interface {
	FetchPortfolio(ctx context.Context, address string, q *types.PortfolioQuery) (*types.PortfolioResponse, error)
}

// Service pages through a user's portfolio.
type Service struct {
	fetcher   Fetcher
	pageSize  int
	networkID int
	logger    *zap.Logger
}

// NewService creates a portfolio service scoped to networkID. Zero means
// every network.
func NewService(fetcher Fetcher, pageSize int, networkID int, logger *zap.Logger) (*Service, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher cannot be nil")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if pageSize < 1 || pageSize > types.MaxPageLimit {
		return nil, fmt.Errorf("page size must be between 1 and %d, got %d", types.MaxPageLimit, pageSize)
	}

	return &Service{fetcher: fetcher, pageSize: pageSize, networkID: networkID, logger: logger}, nil
}

// FetchAll requests pages one at a time, in order, until the server reports
// no next page or returns an empty page. Every position is normalized.
func (s *Service) FetchAll(ctx context.Context, address string, q types.PortfolioQuery) ([]types.Position, error) {
	var positions []types.Position

	q.Limit = s.pageSize
	for page := 1; page <= maxPages; page++ {
		q.Page = page

		resp, err := s.fetcher.FetchPortfolio(ctx, address, &q)
		if err != nil {
			return nil, fmt.Errorf("fetch portfolio page %d: %w", page, err)
		}

		for i := range resp.Data {
			Normalize(&resp.Data[i])
		}
		positions = append(positions, resp.Data...)

		if !resp.Pagination.HasNext || len(resp.Data) == 0 {
			s.logger.Debug("portfolio-fetched",
				zap.String("address", address),
				zap.Int("pages", page),
				zap.Int("positions", len(positions)))
			return positions, nil
		}
	}

	return positions, fmt.Errorf("portfolio exceeds %d pages", maxPages)
}

// Summary aggregates a set of positions.
type Summary struct {
	Positions int                          `json:"positions"`
	Value     float64                      `json:"value"`
	Invested  float64                      `json:"invested"`
	Profit    float64                      `json:"profit"`
	ROI       *float64                     `json:"roi"`
	Claimable int                          `json:"claimable"`
	ByStatus  map[types.PositionStatus]int `json:"byStatus"`
}

// Summarize totals value, cost basis and profit across positions.
func Summarize(positions []types.Position) Summary {
	sum := Summary{
		Positions: len(positions),
		ByStatus:  make(map[types.PositionStatus]int),
	}

	for i := range positions {
		p := &positions[i]

		sum.Value += p.Value
		sum.Profit += p.Profit
		if p.Invested != nil {
			sum.Invested += *p.Invested
		} else {
			sum.Invested += p.Value - p.Profit
		}

		if p.WinningsToClaim && !p.WinningsClaimed {
			sum.Claimable++
		}

		sum.ByStatus[p.Status]++
	}

	sum.ROI = ROI(sum.Profit, sum.Invested)

	return sum
}

// Holdings summarizes every position of address for the wallet tracker.
func (s *Service) Holdings(ctx context.Context, address string) (*wallet.Holdings, error) {
	positions, err := s.FetchAll(ctx, address, types.PortfolioQuery{NetworkID: s.networkID})
	if err != nil {
		return nil, err
	}

	sum := Summarize(positions)

	return &wallet.Holdings{
		Positions: sum.Positions,
		Value:     sum.Value,
		Invested:  sum.Invested,
		Profit:    sum.Profit,
		Claimable: sum.Claimable,
	}, nil
}
