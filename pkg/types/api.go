package types

import (
	"net/url"
	"strconv"
)

// MaxPageLimit is the largest page size the list endpoints accept.
const MaxPageLimit = 100

// Pagination is the metadata returned by every list endpoint.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Consistent reports whether hasNext agrees with page < totalPages.
func (p Pagination) Consistent() bool {
	return p.HasNext == (p.Page < p.TotalPages)
}

// Page is the pagination envelope of a list endpoint.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// MarketsResponse is the response of GET /markets.
type MarketsResponse = Page[MarketSummary]

// UserEventsResponse is the response of GET /users/:address/events.
type UserEventsResponse = Page[MarketEvent]

// PortfolioResponse is the response of GET /users/:address/portfolio.
type PortfolioResponse = Page[Position]

// SortKey is a sort field accepted by GET /markets.
type SortKey string

const (
	SortVolume      SortKey = "volume"
	SortVolume24h   SortKey = "volume_24h"
	SortLiquidity   SortKey = "liquidity"
	SortExpiresAt   SortKey = "expires_at"
	SortPublishedAt SortKey = "published_at"
)

// ParseSortKey validates a sort field name.
func ParseSortKey(s string) (SortKey, bool) {
	switch key := SortKey(s); key {
	case SortVolume, SortVolume24h, SortLiquidity, SortExpiresAt, SortPublishedAt:
		return key, true
	default:
		return "", false
	}
}

// MarketsQuery holds the query parameters of GET /markets.
// Zero values are omitted from the request.
type MarketsQuery struct {
	Page         int
	Limit        int
	Sort         SortKey
	Order        string // "asc" or "desc"
	NetworkID    int
	State        MarketState
	TokenAddress string
	Topics       string // comma-separated, case-sensitive ("Crypto", not "crypto")
	Keyword      string
}

// Values encodes the query, clamping limit to MaxPageLimit.
func (q *MarketsQuery) Values() url.Values {
	v := url.Values{}
	setPaging(v, q.Page, q.Limit)
	if q.Sort != "" {
		v.Set("sort", string(q.Sort))
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.NetworkID != 0 {
		v.Set("networkId", strconv.Itoa(q.NetworkID))
	}
	if q.State != "" {
		v.Set("state", string(q.State))
	}
	if q.TokenAddress != "" {
		v.Set("tokenAddress", q.TokenAddress)
	}
	if q.Topics != "" {
		v.Set("topics", q.Topics)
	}
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	return v
}

// UserEventsQuery holds the query parameters of GET /users/:address/events.
type UserEventsQuery struct {
	Page      int
	Limit     int
	MarketID  int64
	NetworkID int
	Since     int64
	Until     int64
}

// Values encodes the query.
func (q *UserEventsQuery) Values() url.Values {
	v := url.Values{}
	setPaging(v, q.Page, q.Limit)
	if q.MarketID != 0 {
		v.Set("marketId", strconv.FormatInt(q.MarketID, 10))
	}
	if q.NetworkID != 0 {
		v.Set("networkId", strconv.Itoa(q.NetworkID))
	}
	if q.Since != 0 {
		v.Set("since", strconv.FormatInt(q.Since, 10))
	}
	if q.Until != 0 {
		v.Set("until", strconv.FormatInt(q.Until, 10))
	}
	return v
}

// PortfolioQuery holds the query parameters of GET /users/:address/portfolio.
type PortfolioQuery struct {
	Page         int
	Limit        int
	MarketSlug   string
	MarketID     int64
	NetworkID    int
	TokenAddress string
}

// Values encodes the query.
func (q *PortfolioQuery) Values() url.Values {
	v := url.Values{}
	setPaging(v, q.Page, q.Limit)
	if q.MarketSlug != "" {
		v.Set("marketSlug", q.MarketSlug)
	}
	if q.MarketID != 0 {
		v.Set("marketId", strconv.FormatInt(q.MarketID, 10))
	}
	if q.NetworkID != 0 {
		v.Set("networkId", strconv.Itoa(q.NetworkID))
	}
	if q.TokenAddress != "" {
		v.Set("tokenAddress", q.TokenAddress)
	}
	return v
}

func setPaging(v url.Values, page, limit int) {
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
}
