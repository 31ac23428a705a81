// Package filters holds the market list filter: keyword, topic, sort key and
// market state. A Filter is a value; every setter returns a new Filter, and
// Key serializes the full tuple so consumers can detect change by key.
package filters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mselser95/gasfutures/pkg/types"
)

// TopicAll selects every category and sends no topics parameter.
const TopicAll = "all"

// Category is a selectable market topic.
type Category struct {
	ID    string // lower-case identifier used by callers
	Label string // case-sensitive topic name the API expects
}

// Categories lists the selectable topics in display order.
//
//nolint:gochecknoglobals // fixed lookup table
var Categories = []Category{
	{ID: TopicAll, Label: "All"},
	{ID: "crypto", Label: "Crypto"},
	{ID: "sports", Label: "Sports"},
	{ID: "politics", Label: "Politics"},
	{ID: "economy", Label: "Economy"},
	{ID: "gaming", Label: "Gaming"},
	{ID: "culture", Label: "Culture"},
	{ID: "sentiment", Label: "Sentiment"},
}

// SortOption is a named sort preset.
type SortOption struct {
	Key   types.SortKey
	Label string
}

// SortOptions lists the sort presets offered to users.
//
//nolint:gochecknoglobals // fixed lookup table
var SortOptions = []SortOption{
	{Key: types.SortVolume24h, Label: "Trending"},
	{Key: types.SortVolume, Label: "Popular"},
	{Key: types.SortPublishedAt, Label: "New"},
}

// DefaultOrder is the sort direction used for every list request.
const DefaultOrder = "desc"

// Filter is an immutable market list filter.
type Filter struct {
	keyword string
	topic   string
	sort    types.SortKey
	state   types.MarketState
}

// Default returns the initial filter: trending, open markets, all topics.
func Default() Filter {
	return Filter{
		topic: TopicAll,
		sort:  types.SortVolume24h,
		state: types.MarketStateOpen,
	}
}

// New builds a filter from raw values, validating each of them. Empty topic,
// sort and state fall back to the defaults.
func New(keyword string, topic string, sort string, state string) (Filter, error) {
	f := Default().WithKeyword(keyword)

	if topic != "" {
		next, err := f.WithTopic(topic)
		if err != nil {
			return Filter{}, err
		}
		f = next
	}

	if sort != "" {
		key, ok := types.ParseSortKey(sort)
		if !ok {
			return Filter{}, fmt.Errorf("unknown sort %q", sort)
		}
		f = f.WithSort(key)
	}

	if state != "" {
		s, ok := types.ParseMarketState(state)
		if !ok {
			return Filter{}, fmt.Errorf("unknown market state %q", state)
		}
		f = f.WithState(s)
	}

	return f, nil
}

// WithKeyword returns a copy with the keyword replaced. Surrounding whitespace
// is dropped; an empty keyword clears the search.
func (f Filter) WithKeyword(keyword string) Filter {
	f.keyword = strings.TrimSpace(keyword)
	return f
}

// WithTopic returns a copy with the topic replaced. Topic ids are matched
// case-insensitively against Categories.
func (f Filter) WithTopic(topic string) (Filter, error) {
	id := strings.ToLower(strings.TrimSpace(topic))
	if id == "" {
		id = TopicAll
	}

	if _, ok := lookupCategory(id); !ok {
		return f, fmt.Errorf("unknown topic %q", topic)
	}

	f.topic = id
	return f, nil
}

// WithSort returns a copy with the sort key replaced.
func (f Filter) WithSort(sort types.SortKey) Filter {
	f.sort = sort
	return f
}

// WithState returns a copy with the market state replaced.
func (f Filter) WithState(state types.MarketState) Filter {
	f.state = state
	return f
}

func (f Filter) Keyword() string          { return f.keyword }
func (f Filter) Topic() string            { return f.topic }
func (f Filter) Sort() types.SortKey      { return f.sort }
func (f Filter) State() types.MarketState { return f.state }

// APITopic returns the case-sensitive topic name sent to the API, or "" for
// TopicAll.
func (f Filter) APITopic() string {
	if f.topic == "" || f.topic == TopicAll {
		return ""
	}

	c, _ := lookupCategory(f.topic)
	return c.Label
}

// Key serializes the whole tuple. Two filters select the same result set iff
// their keys are equal.
func (f Filter) Key() string {
	var b strings.Builder
	b.WriteString("kw=")
	b.WriteString(strconv.Quote(f.keyword))
	b.WriteString("|topic=")
	b.WriteString(f.topic)
	b.WriteString("|sort=")
	b.WriteString(string(f.sort))
	b.WriteString("|state=")
	b.WriteString(string(f.state))
	return b.String()
}

// Query builds the list request for one page of this filter.
func (f Filter) Query(networkID int, limit int, page int) *types.MarketsQuery {
	return &types.MarketsQuery{
		Page:      page,
		Limit:     limit,
		Sort:      f.sort,
		Order:     DefaultOrder,
		NetworkID: networkID,
		State:     f.state,
		Topics:    f.APITopic(),
		Keyword:   f.keyword,
	}
}

func lookupCategory(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
