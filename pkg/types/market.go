package types

import (
	"strings"
	"time"
)

// MarketState is the lifecycle state of a market as reported by the API.
type MarketState string

const (
	MarketStateOpen     MarketState = "open"
	MarketStateClosed   MarketState = "closed"
	MarketStateResolved MarketState = "resolved"
)

// ParseMarketState parses a state name, case-insensitively.
func ParseMarketState(s string) (MarketState, bool) {
	state := MarketState(strings.ToLower(strings.TrimSpace(s)))
	switch state {
	case MarketStateOpen, MarketStateClosed, MarketStateResolved:
		return state, true
	default:
		return "", false
	}
}

// Outcome is one tradable outcome of a market.
type Outcome struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Price       float64      `json:"price"`
	Shares      float64      `json:"shares"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	PriceCharts []PriceChart `json:"priceCharts,omitempty"`
}

// PriceChart is a price series for one outcome over a timeframe ("24h", "7d", ...).
type PriceChart struct {
	Timeframe string       `json:"timeframe"`
	Prices    []PricePoint `json:"prices"`
}

// PricePoint is a single sample of a price chart.
type PricePoint struct {
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
}

// MarketSummary is the list-endpoint shape of a market. It is an immutable
// snapshot: refreshed wholesale on each fetch, never patched in place.
type MarketSummary struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Slug         string      `json:"slug"`
	ImageURL     string      `json:"imageUrl,omitempty"`
	TokenAddress string      `json:"tokenAddress"`
	NetworkID    int         `json:"networkId"`
	Topics       []string    `json:"topics"`
	State        MarketState `json:"state"`
	ExpiresAt    *time.Time  `json:"expiresAt,omitempty"`
	PublishedAt  *time.Time  `json:"publishedAt,omitempty"`
	Volume       float64     `json:"volume"`
	Volume24h    float64     `json:"volume24h"`
	Liquidity    float64     `json:"liquidity"`
	Outcomes     []Outcome   `json:"outcomes"`
}

// Market is the detail-endpoint shape. The API returns it directly, without
// a data wrapper.
type Market struct {
	MarketSummary
	Description       string     `json:"description"`
	ResolutionSource  string     `json:"resolutionSource,omitempty"`
	ResolutionTitle   string     `json:"resolutionTitle,omitempty"`
	ResolvedOutcomeID *int       `json:"resolvedOutcomeId,omitempty"`
	VotingEndsAt      *time.Time `json:"votingEndsAt,omitempty"`
	Fee               float64    `json:"fee"`
	TreasuryFee       float64    `json:"treasuryFee"`
}

// GetOutcome returns the outcome with the given id, or nil.
func (m *MarketSummary) GetOutcome(id int) *Outcome {
	for i := range m.Outcomes {
		if m.Outcomes[i].ID == id {
			return &m.Outcomes[i]
		}
	}
	return nil
}

// TradeAction is the kind of a user market event.
type TradeAction string

const (
	TradeActionBuy             TradeAction = "buy"
	TradeActionSell            TradeAction = "sell"
	TradeActionAddLiquidity    TradeAction = "add_liquidity"
	TradeActionRemoveLiquidity TradeAction = "remove_liquidity"
	TradeActionClaimWinnings   TradeAction = "claim_winnings"
	TradeActionClaimLiquidity  TradeAction = "claim_liquidity"
	TradeActionClaimFees       TradeAction = "claim_fees"
	TradeActionClaimVoided     TradeAction = "claim_voided"
)

// MarketEvent is one entry of a user's activity feed.
type MarketEvent struct {
	User         string      `json:"user"`
	Action       TradeAction `json:"action"`
	MarketID     int64       `json:"marketId"`
	MarketTitle  string      `json:"marketTitle,omitempty"`
	MarketSlug   string      `json:"marketSlug,omitempty"`
	OutcomeID    int         `json:"outcomeId"`
	OutcomeTitle string      `json:"outcomeTitle,omitempty"`
	NetworkID    int         `json:"networkId"`
	Shares       float64     `json:"shares"`
	Value        float64     `json:"value"`
	Token        string      `json:"token,omitempty"`
	ImageURL     string      `json:"imageUrl,omitempty"`
	Timestamp    int64       `json:"timestamp"`
}
