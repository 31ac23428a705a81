package types

// PositionStatus is the lifecycle state of a position.
//
//	ongoing -> won | lost -> claimed (won only)
//	ongoing -> sold
type PositionStatus string

const (
	PositionOngoing PositionStatus = "ongoing"
	PositionWon     PositionStatus = "won"
	PositionLost    PositionStatus = "lost"
	PositionClaimed PositionStatus = "claimed"
	PositionSold    PositionStatus = "sold"
)

// Terminal reports whether no further transitions are possible.
func (s PositionStatus) Terminal() bool {
	return s == PositionClaimed || s == PositionLost || s == PositionSold
}

// Position is a user's stake in one (market, outcome, network) tuple.
type Position struct {
	MarketID  int64   `json:"marketId"`
	OutcomeID int     `json:"outcomeId"`
	NetworkID int     `json:"networkId"`
	ImageURL  *string `json:"imageUrl,omitempty"`

	MarketTitle  string      `json:"marketTitle,omitempty"`
	MarketSlug   string      `json:"marketSlug,omitempty"`
	OutcomeTitle string      `json:"outcomeTitle,omitempty"`
	MarketState  MarketState `json:"marketState,omitempty"`
	TokenAddress string      `json:"tokenAddress,omitempty"`
	ExpiresAt    string      `json:"expiresAt,omitempty"`

	Shares   float64  `json:"shares"`
	Price    float64  `json:"price"`
	Value    float64  `json:"value"`
	Invested *float64 `json:"invested,omitempty"`
	Profit   float64  `json:"profit"`
	ROI      *float64 `json:"roi"`

	WinningsToClaim bool           `json:"winningsToClaim"`
	WinningsClaimed bool           `json:"winningsClaimed"`
	Status          PositionStatus `json:"status"`
}

// PositionKey identifies a position.
type PositionKey struct {
	MarketID  int64
	OutcomeID int
	NetworkID int
}

// Key returns the identity tuple of the position.
func (p *Position) Key() PositionKey {
	return PositionKey{MarketID: p.MarketID, OutcomeID: p.OutcomeID, NetworkID: p.NetworkID}
}
