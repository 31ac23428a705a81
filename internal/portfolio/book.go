package portfolio

import (
	"fmt"
	"sort"

	"github.com/mselser95/gasfutures/pkg/types"
)

// dustShares is the share balance below which a position counts as fully
// exited.
const dustShares = 1e-9

// Book rebuilds positions from a user's event feed. A position is created by
// its first buy and is never removed, only moved to a terminal status.
type Book struct {
	positions map[types.PositionKey]*types.Position
	order     []types.PositionKey
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{positions: make(map[types.PositionKey]*types.Position)}
}

// Apply folds one event into the book. Liquidity and fee events do not touch
// outcome positions and are ignored.
func (b *Book) Apply(ev types.MarketEvent) error {
	key := types.PositionKey{MarketID: ev.MarketID, OutcomeID: ev.OutcomeID, NetworkID: ev.NetworkID}
	pos, ok := b.positions[key]

	switch ev.Action {
	case types.TradeActionBuy:
		if !ok {
			invested := 0.0
			pos = &types.Position{
				MarketID:     ev.MarketID,
				OutcomeID:    ev.OutcomeID,
				NetworkID:    ev.NetworkID,
				MarketTitle:  ev.MarketTitle,
				MarketSlug:   ev.MarketSlug,
				OutcomeTitle: ev.OutcomeTitle,
				TokenAddress: ev.Token,
				Invested:     &invested,
				Status:       types.PositionOngoing,
			}
			b.positions[key] = pos
			b.order = append(b.order, key)
		}

		if pos.Status != types.PositionOngoing {
			return fmt.Errorf("%w: buy on %s position", ErrInvalidTransition, pos.Status)
		}

		pos.Shares += ev.Shares
		*pos.Invested += ev.Value
		if pos.Shares > 0 {
			pos.Price = *pos.Invested / pos.Shares
		}
		pos.Value = pos.Shares * pos.Price

	case types.TradeActionSell:
		if !ok {
			return fmt.Errorf("sell on unknown position %d/%d", ev.MarketID, ev.OutcomeID)
		}

		if pos.Status != types.PositionOngoing {
			return fmt.Errorf("%w: sell on %s position", ErrInvalidTransition, pos.Status)
		}

		basis := 0.0
		if pos.Shares > 0 {
			// Cost basis leaves pro rata to the shares sold.
			sold := ev.Shares / pos.Shares
			if sold > 1 {
				sold = 1
			}
			basis = *pos.Invested * sold
			*pos.Invested -= basis
		}
		pos.Shares -= ev.Shares
		pos.Profit += ev.Value - basis

		pos.Value = pos.Shares * pos.Price

		if pos.Shares <= dustShares {
			pos.Shares = 0
			pos.Value = 0
			next, err := Transition(pos.Status, EventExited)
			if err != nil {
				return err
			}
			pos.Status = next
		}

	case types.TradeActionClaimWinnings:
		if !ok {
			return fmt.Errorf("claim on unknown position %d/%d", ev.MarketID, ev.OutcomeID)
		}

		if pos.Status == types.PositionOngoing {
			if _, err := b.resolve(pos, true); err != nil {
				return err
			}
		}

		next, err := Transition(pos.Status, EventClaimed)
		if err != nil {
			return err
		}
		pos.Status = next
		pos.WinningsToClaim = false
		pos.WinningsClaimed = true
	}

	return nil
}

// Resolve settles every ongoing position of a market: the winning outcome
// becomes won with winnings to claim, every other outcome becomes lost.
func (b *Book) Resolve(marketID int64, networkID int, winningOutcome int) error {
	for _, key := range b.order {
		if key.MarketID != marketID || key.NetworkID != networkID {
			continue
		}

		pos := b.positions[key]
		if pos.Status != types.PositionOngoing {
			continue
		}

		if _, err := b.resolve(pos, key.OutcomeID == winningOutcome); err != nil {
			return err
		}
	}

	return nil
}

func (b *Book) resolve(pos *types.Position, won bool) (types.PositionStatus, error) {
	ev := EventResolvedLost
	if won {
		ev = EventResolvedWon
	}

	next, err := Transition(pos.Status, ev)
	if err != nil {
		return pos.Status, err
	}

	pos.Status = next
	pos.WinningsToClaim = won && pos.Shares > 0
	return next, nil
}

// Positions returns the positions in creation order, or sorted by market id
// when byMarket is set.
func (b *Book) Positions(byMarket bool) []types.Position {
	out := make([]types.Position, 0, len(b.order))
	for _, key := range b.order {
		p := *b.positions[key]
		if p.Invested != nil {
			invested := *p.Invested
			p.Invested = &invested
		}
		out = append(out, p)
	}

	if byMarket {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].MarketID < out[j].MarketID
		})
	}

	return out
}
