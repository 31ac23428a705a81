package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mselser95/gasfutures/internal/filters"
	"github.com/mselser95/gasfutures/internal/pager"
	"github.com/mselser95/gasfutures/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// pagedFetcher serves totalPages pages of two markets each. The second
// market of every page is already expired.
type pagedFetcher struct {
	now        time.Time
	totalPages int
	failPage   int

	mu    sync.Mutex
	calls []int
}

func (f *pagedFetcher) FetchMarkets(ctx context.Context, q *types.MarketsQuery) (*types.MarketsResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q.Page)
	fail := q.Page == f.failPage
	if fail {
		f.failPage = 0
	}
	f.mu.Unlock()

	if fail {
		return nil, errors.New("upstream unavailable")
	}

	live := f.now.Add(48 * time.Hour)
	expired := f.now.Add(-time.Hour)

	return &types.MarketsResponse{
		Data: []types.MarketSummary{
			{ID: int64(q.Page*10 + 1), Title: "live market", ExpiresAt: &live},
			{ID: int64(q.Page*10 + 2), Title: "expired market", ExpiresAt: &expired},
		},
		Pagination: types.Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      2 * f.totalPages,
			TotalPages: f.totalPages,
			HasNext:    q.Page < f.totalPages,
		},
	}, nil
}

func runTestBrowser(t *testing.T, fetcher *pagedFetcher, input string) (string, *pager.Controller) {
	t.Helper()
	withNow(t, fetcher.now)

	ctrl, err := pager.New(&pager.Config{
		Fetcher: fetcher,
		Limit:   2,
		Filter:  filters.Default(),
		Logger:  zap.NewNop(),
	})
	require.NoError(t, err)

	var out bytes.Buffer
	b := &browser{ctrl: ctrl, out: &out}

	trigger := pager.NewTrigger(ctrl, b.onLoad, zap.NewNop())
	defer trigger.Close()

	_, err = ctrl.FetchNext(context.Background())
	require.NoError(t, err)
	b.onLoad(true, nil)

	err = b.loop(context.Background(), strings.NewReader(input), trigger)
	require.NoError(t, err)

	return out.String(), ctrl
}

func TestBrowse_LoadsPageOnEnter(t *testing.T) {
	fetcher := &pagedFetcher{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), totalPages: 3}

	out, ctrl := runTestBrowser(t, fetcher, "\nq\n")

	assert.Equal(t, []int{1, 2}, fetcher.calls)
	assert.Equal(t, 2, ctrl.Snapshot().Pages)

	assert.Contains(t, out, "page 1: 1 live of 2 new markets (6 total)")
	assert.Contains(t, out, "page 2: 1 live of 2 new markets")
	assert.NotContains(t, out, "expired market")
	assert.Equal(t, 2, strings.Count(out, "live market"))
}

func TestBrowse_StopsAtEndOfList(t *testing.T) {
	fetcher := &pagedFetcher{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), totalPages: 2}

	out, _ := runTestBrowser(t, fetcher, "\n\n\n")

	assert.Equal(t, []int{1, 2}, fetcher.calls)
	assert.Contains(t, out, "End of list")
}

func TestBrowse_RetriesFailedPage(t *testing.T) {
	fetcher := &pagedFetcher{
		now:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		totalPages: 2,
		failPage:   2,
	}

	out, ctrl := runTestBrowser(t, fetcher, "\n\n")

	assert.Equal(t, []int{1, 2, 2}, fetcher.calls)
	assert.Equal(t, 2, ctrl.Snapshot().Pages)
	assert.Contains(t, out, "Failed to load page")
	assert.Contains(t, out, "End of list")
}

func TestBrowse_EOFStops(t *testing.T) {
	fetcher := &pagedFetcher{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), totalPages: 5}

	_, ctrl := runTestBrowser(t, fetcher, "")

	assert.Equal(t, 1, ctrl.Snapshot().Pages)
}
