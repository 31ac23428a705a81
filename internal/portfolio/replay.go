package portfolio

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/mselser95/gasfutures/pkg/types"
	"go.uber.org/zap"
)

// EventSource serves a user's event feed and market details. *myriad.Client
// satisfies it.
type EventSource interface {
	FetchUserEvents(ctx context.Context, address string, q *types.UserEventsQuery) (*types.UserEventsResponse, error)
	FetchMarket(ctx context.Context, idOrSlug string) (*types.Market, error)
}

// ReplayResult holds the positions rebuilt from an event feed.
type ReplayResult struct {
	Positions []types.Position
	Events    int
	// Skipped counts events the book rejected, typically a sell whose buy
	// predates the feed.
	Skipped int
}

// Replay pages through the whole event feed of address, folds it oldest
// first through a Book, then settles every position whose market has
// resolved since. Positions come back sorted by market and normalized.
func (s *Service) Replay(ctx context.Context, src EventSource, address string, marketID int64) (*ReplayResult, error) {
	events, err := s.fetchEvents(ctx, src, address, marketID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})

	book := NewBook()
	res := &ReplayResult{Events: len(events)}

	for i := range events {
		if err := book.Apply(events[i]); err != nil {
			res.Skipped++
			s.logger.Debug("replay-event-skipped",
				zap.String("action", string(events[i].Action)),
				zap.Int64("market-id", events[i].MarketID),
				zap.Int("outcome-id", events[i].OutcomeID),
				zap.Error(err))
		}
	}

	if err := s.settle(ctx, src, book); err != nil {
		return nil, err
	}

	res.Positions = book.Positions(true)
	for i := range res.Positions {
		Normalize(&res.Positions[i])
	}

	return res, nil
}

func (s *Service) fetchEvents(ctx context.Context, src EventSource, address string, marketID int64) ([]types.MarketEvent, error) {
	var events []types.MarketEvent

	q := types.UserEventsQuery{Limit: s.pageSize, MarketID: marketID, NetworkID: s.networkID}
	for page := 1; page <= maxPages; page++ {
		q.Page = page

		resp, err := src.FetchUserEvents(ctx, address, &q)
		if err != nil {
			return nil, fmt.Errorf("fetch events page %d: %w", page, err)
		}

		events = append(events, resp.Data...)

		if !resp.Pagination.HasNext || len(resp.Data) == 0 {
			return events, nil
		}
	}

	return nil, fmt.Errorf("event feed exceeds %d pages", maxPages)
}

// settle looks up each market that still has an ongoing position and
// resolves the book against it once the market reports a winner.
func (s *Service) settle(ctx context.Context, src EventSource, book *Book) error {
	seen := make(map[types.PositionKey]bool)

	for _, p := range book.Positions(false) {
		if p.Status != types.PositionOngoing {
			continue
		}

		key := types.PositionKey{MarketID: p.MarketID, NetworkID: p.NetworkID}
		if seen[key] {
			continue
		}
		seen[key] = true

		m, err := src.FetchMarket(ctx, strconv.FormatInt(p.MarketID, 10))
		if err != nil {
			return fmt.Errorf("fetch market %d: %w", p.MarketID, err)
		}

		if m.State != types.MarketStateResolved || m.ResolvedOutcomeID == nil {
			continue
		}

		if err := book.Resolve(p.MarketID, p.NetworkID, *m.ResolvedOutcomeID); err != nil {
			return fmt.Errorf("resolve market %d: %w", p.MarketID, err)
		}
	}

	return nil
}
