package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarketsQuery_Values(t *testing.T) {
	t.Run("omits-zero-values", func(t *testing.T) {
		q := &MarketsQuery{Page: 1, Limit: 12}
		v := q.Values()

		assert.Equal(t, "1", v.Get("page"))
		assert.Equal(t, "12", v.Get("limit"))
		assert.False(t, v.Has("topics"))
		assert.False(t, v.Has("keyword"))
		assert.False(t, v.Has("networkId"))
	})

	t.Run("clamps-limit", func(t *testing.T) {
		q := &MarketsQuery{Page: 2, Limit: 500}
		assert.Equal(t, "100", q.Values().Get("limit"))
	})

	t.Run("all-fields", func(t *testing.T) {
		q := &MarketsQuery{
			Page:         3,
			Limit:        12,
			Sort:         SortVolume24h,
			Order:        "desc",
			NetworkID:    2741,
			State:        MarketStateOpen,
			TokenAddress: "0xabc",
			Topics:       "Crypto",
			Keyword:      "gas",
		}
		v := q.Values()

		assert.Equal(t, "volume_24h", v.Get("sort"))
		assert.Equal(t, "desc", v.Get("order"))
		assert.Equal(t, "2741", v.Get("networkId"))
		assert.Equal(t, "open", v.Get("state"))
		assert.Equal(t, "0xabc", v.Get("tokenAddress"))
		assert.Equal(t, "Crypto", v.Get("topics"))
		assert.Equal(t, "gas", v.Get("keyword"))
	})
}

func TestPagination_Consistent(t *testing.T) {
	assert.True(t, Pagination{Page: 1, TotalPages: 2, HasNext: true}.Consistent())
	assert.True(t, Pagination{Page: 2, TotalPages: 2, HasNext: false}.Consistent())
	assert.False(t, Pagination{Page: 2, TotalPages: 2, HasNext: true}.Consistent())
}

func TestParseSortKey(t *testing.T) {
	for _, s := range []string{"volume", "volume_24h", "liquidity", "expires_at", "published_at"} {
		_, ok := ParseSortKey(s)
		assert.True(t, ok, s)
	}

	_, ok := ParseSortKey("volume24hr")
	assert.False(t, ok)
}

func TestParseMarketState(t *testing.T) {
	state, ok := ParseMarketState(" Resolved ")
	assert.True(t, ok)
	assert.Equal(t, MarketStateResolved, state)

	_, ok = ParseMarketState("pending")
	assert.False(t, ok)
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 404, Message: "Market not found", Code: "Not Found"}
	assert.Equal(t, "api error 404: Market not found (Not Found)", err.Error())
	assert.False(t, err.Retryable())

	assert.True(t, (&APIError{StatusCode: 503}).Retryable())
	assert.True(t, (&APIError{StatusCode: 429}).Retryable())
}

func TestPositionStatus_Terminal(t *testing.T) {
	assert.False(t, PositionOngoing.Terminal())
	assert.False(t, PositionWon.Terminal())
	assert.True(t, PositionLost.Terminal())
	assert.True(t, PositionClaimed.Terminal())
	assert.True(t, PositionSold.Terminal())
}
