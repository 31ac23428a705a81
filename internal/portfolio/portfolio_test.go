package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/mselser95/gasfutures/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func f64(v float64) *float64 { return &v }

func TestTransition(t *testing.T) {
	allowed := []struct {
		from types.PositionStatus
		ev   Event
		to   types.PositionStatus
	}{
		{types.PositionOngoing, EventResolvedWon, types.PositionWon},
		{types.PositionOngoing, EventResolvedLost, types.PositionLost},
		{types.PositionOngoing, EventExited, types.PositionSold},
		{types.PositionWon, EventClaimed, types.PositionClaimed},
	}

	for _, tt := range allowed {
		got, err := Transition(tt.from, tt.ev)
		require.NoError(t, err)
		assert.Equal(t, tt.to, got)
	}

	rejected := []struct {
		from types.PositionStatus
		ev   Event
	}{
		{types.PositionOngoing, EventClaimed},
		{types.PositionLost, EventClaimed},
		{types.PositionWon, EventExited},
		{types.PositionSold, EventResolvedWon},
		{types.PositionClaimed, EventClaimed},
		{types.PositionWon, EventResolvedLost},
	}

	for _, tt := range rejected {
		got, err := Transition(tt.from, tt.ev)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, tt.from, got)
	}
}

func TestROI(t *testing.T) {
	assert.Nil(t, ROI(10, 0))

	roi := ROI(25, 100)
	require.NotNil(t, roi)
	assert.InDelta(t, 0.25, *roi, 1e-9)

	roi = ROI(-50, 100)
	require.NotNil(t, roi)
	assert.InDelta(t, -0.5, *roi, 1e-9)
}

func TestNormalize(t *testing.T) {
	p := types.Position{Value: 120, Profit: 20}
	Normalize(&p)

	require.NotNil(t, p.Invested)
	assert.InDelta(t, 100, *p.Invested, 1e-9)
	require.NotNil(t, p.ROI)
	assert.InDelta(t, 0.2, *p.ROI, 1e-9)
	assert.Equal(t, types.PositionOngoing, p.Status)

	zero := types.Position{Value: 5, Profit: 5, Status: types.PositionWon}
	Normalize(&zero)
	assert.Nil(t, zero.ROI)
	assert.Equal(t, types.PositionWon, zero.Status)

	given := types.Position{Value: 10, Profit: 1, Invested: f64(4), ROI: f64(9)}
	Normalize(&given)
	assert.InDelta(t, 4, *given.Invested, 1e-9)
	assert.InDelta(t, 9, *given.ROI, 1e-9)
}

func TestBook_Lifecycle(t *testing.T) {
	b := NewBook()

	require.NoError(t, b.Apply(types.MarketEvent{Action: types.TradeActionBuy, MarketID: 1, OutcomeID: 0, NetworkID: 2741, Shares: 100, Value: 40}))
	require.NoError(t, b.Apply(types.MarketEvent{Action: types.TradeActionBuy, MarketID: 1, OutcomeID: 1, NetworkID: 2741, Shares: 50, Value: 30}))
	require.NoError(t, b.Apply(types.MarketEvent{Action: types.TradeActionBuy, MarketID: 2, OutcomeID: 0, NetworkID: 2741, Shares: 10, Value: 5}))
	require.NoError(t, b.Apply(types.MarketEvent{Action: types.TradeActionAddLiquidity, MarketID: 3, NetworkID: 2741, Value: 100}))

	// Full exit before resolution.
	require.NoError(t, b.Apply(types.MarketEvent{Action: types.TradeActionSell, MarketID: 2, OutcomeID: 0, NetworkID: 2741, Shares: 10, Value: 8}))

	require.NoError(t, b.Resolve(1, 2741, 0))
	require.NoError(t, b.Apply(types.MarketEvent{Action: types.TradeActionClaimWinnings, MarketID: 1, OutcomeID: 0, NetworkID: 2741, Value: 100}))

	positions := b.Positions(false)
	require.Len(t, positions, 3)

	assert.Equal(t, types.PositionClaimed, positions[0].Status)
	assert.True(t, positions[0].WinningsClaimed)
	assert.False(t, positions[0].WinningsToClaim)
	assert.InDelta(t, 0.4, positions[0].Price, 1e-9)

	assert.Equal(t, types.PositionLost, positions[1].Status)
	assert.False(t, positions[1].WinningsToClaim)

	assert.Equal(t, types.PositionSold, positions[2].Status)
	assert.Zero(t, positions[2].Shares)
	assert.InDelta(t, 3, positions[2].Profit, 1e-9)
	assert.InDelta(t, 0, *positions[2].Invested, 1e-9)

	err := b.Apply(types.MarketEvent{Action: types.TradeActionBuy, MarketID: 2, OutcomeID: 0, NetworkID: 2741, Shares: 1, Value: 1})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBook_PartialSellKeepsOngoing(t *testing.T) {
	b := NewBook()

	require.NoError(t, b.Apply(types.MarketEvent{Action: types.TradeActionBuy, MarketID: 5, Shares: 100, Value: 50}))
	require.NoError(t, b.Apply(types.MarketEvent{Action: types.TradeActionSell, MarketID: 5, Shares: 40, Value: 30}))

	p := b.Positions(true)[0]
	assert.Equal(t, types.PositionOngoing, p.Status)
	assert.InDelta(t, 60, p.Shares, 1e-9)
	assert.InDelta(t, 30, *p.Invested, 1e-9)
	assert.InDelta(t, 10, p.Profit, 1e-9)
}

func TestBook_SellUnknownPosition(t *testing.T) {
	b := NewBook()
	assert.Error(t, b.Apply(types.MarketEvent{Action: types.TradeActionSell, MarketID: 9, Shares: 1}))
}

type pagedPortfolio struct {
	pages   [][]types.Position
	queries []types.PortfolioQuery
	err     error
}

func (p *pagedPortfolio) FetchPortfolio(_ context.Context, _ string, q *types.PortfolioQuery) (*types.PortfolioResponse, error) {
	p.queries = append(p.queries, *q)
	if p.err != nil {
		return nil, p.err
	}

	data := p.pages[q.Page-1]
	return &types.PortfolioResponse{
		Data: data,
		Pagination: types.Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			TotalPages: len(p.pages),
			HasNext:    q.Page < len(p.pages),
		},
	}, nil
}

func TestService_FetchAll(t *testing.T) {
	src := &pagedPortfolio{pages: [][]types.Position{
		{{MarketID: 1, Value: 10, Profit: 2}, {MarketID: 2, Value: 5, Profit: -1}},
		{{MarketID: 3, Value: 0, Profit: 0, Status: types.PositionLost}},
	}}

	svc, err := NewService(src, 2, 0, zap.NewNop())
	require.NoError(t, err)

	positions, err := svc.FetchAll(context.Background(), "0xabc", types.PortfolioQuery{NetworkID: 2741})
	require.NoError(t, err)
	require.Len(t, positions, 3)

	require.Len(t, src.queries, 2)
	assert.Equal(t, 1, src.queries[0].Page)
	assert.Equal(t, 2, src.queries[1].Page)
	assert.Equal(t, 2, src.queries[0].Limit)
	assert.Equal(t, 2741, src.queries[1].NetworkID)

	for _, p := range positions {
		assert.NotNil(t, p.Invested)
	}
	assert.Nil(t, positions[2].ROI)
}

func TestService_FetchAllError(t *testing.T) {
	svc, err := NewService(&pagedPortfolio{err: errors.New("boom")}, 10, 0, zap.NewNop())
	require.NoError(t, err)

	_, err = svc.FetchAll(context.Background(), "0xabc", types.PortfolioQuery{})
	assert.Error(t, err)
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(nil, 10, 0, zap.NewNop())
	assert.Error(t, err)

	_, err = NewService(&pagedPortfolio{}, 10, 0, nil)
	assert.Error(t, err)

	_, err = NewService(&pagedPortfolio{}, 0, 0, zap.NewNop())
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	positions := []types.Position{
		{Value: 120, Profit: 20, Invested: f64(100), Status: types.PositionWon, WinningsToClaim: true},
		{Value: 0, Profit: -50, Invested: f64(50), Status: types.PositionLost},
		{Value: 30, Profit: 10, Status: types.PositionOngoing},
	}

	sum := Summarize(positions)

	assert.Equal(t, 3, sum.Positions)
	assert.InDelta(t, 150, sum.Value, 1e-9)
	assert.InDelta(t, 170, sum.Invested, 1e-9)
	assert.InDelta(t, -20, sum.Profit, 1e-9)
	require.NotNil(t, sum.ROI)
	assert.InDelta(t, -20.0/170.0, *sum.ROI, 1e-9)
	assert.Equal(t, 1, sum.Claimable)
	assert.Equal(t, 1, sum.ByStatus[types.PositionWon])
	assert.Equal(t, 1, sum.ByStatus[types.PositionLost])
	assert.Equal(t, 1, sum.ByStatus[types.PositionOngoing])

	empty := Summarize(nil)
	assert.Nil(t, empty.ROI)
	assert.Zero(t, empty.Positions)
}

func TestService_Holdings(t *testing.T) {
	src := &pagedPortfolio{pages: [][]types.Position{
		{{MarketID: 1, Value: 120, Profit: 20, WinningsToClaim: true}},
	}}

	svc, err := NewService(src, 50, 0, zap.NewNop())
	require.NoError(t, err)

	h, err := svc.Holdings(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, 1, h.Positions)
	assert.Equal(t, 1, h.Claimable)
	assert.InDelta(t, 100, h.Invested, 1e-9)
}

func TestService_HoldingsScopedToNetwork(t *testing.T) {
	src := &pagedPortfolio{pages: [][]types.Position{
		{{MarketID: 1, Value: 10, Profit: 1}},
	}}

	svc, err := NewService(src, 50, 2741, zap.NewNop())
	require.NoError(t, err)

	_, err = svc.Holdings(context.Background(), "0xabc")
	require.NoError(t, err)

	require.Len(t, src.queries, 1)
	assert.Equal(t, 2741, src.queries[0].NetworkID)
	assert.Equal(t, 50, src.queries[0].Limit)
}
