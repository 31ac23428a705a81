package portfolio

import "github.com/mselser95/gasfutures/pkg/types"

// ROI returns profit / invested, or nil when there is no cost basis.
func ROI(profit, invested float64) *float64 {
	if invested == 0 {
		return nil
	}
	roi := profit / invested
	return &roi
}

// Normalize fills the derived fields of a position returned by the API:
// Invested defaults to value - profit, and ROI is computed when absent.
func Normalize(p *types.Position) {
	if p.Invested == nil {
		invested := p.Value - p.Profit
		p.Invested = &invested
	}

	if p.ROI == nil {
		p.ROI = ROI(p.Profit, *p.Invested)
	}

	if p.Status == "" {
		p.Status = types.PositionOngoing
	}
}
