package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mselser95/gasfutures/internal/filters"
	"github.com/mselser95/gasfutures/internal/view"
	"github.com/mselser95/gasfutures/pkg/config"
	"github.com/mselser95/gasfutures/pkg/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideLabel(t *testing.T) {
	tests := []struct {
		sign int
		want string
	}{
		{sign: 1, want: "long"},
		{sign: -1, want: "short"},
		{sign: 0, want: "-"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sideLabel(tt.sign))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short", in: "gas", n: 10, want: "gas"},
		{name: "exact", in: "0123456789", n: 10, want: "0123456789"},
		{name: "long", in: "0123456789ab", n: 10, want: "0123456..."},
		{name: "multibyte", in: "ééééééééééé", n: 6, want: "ééé..."},
		{name: "no-room-for-ellipsis", in: "gasfutures", n: 2, want: "ga"},
		{name: "width-three", in: "gasfutures", n: 3, want: "gas"},
		{name: "zero", in: "gasfutures", n: 0, want: ""},
		{name: "negative", in: "gasfutures", n: -1, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.n))
		})
	}
}

func TestFormatROI(t *testing.T) {
	roi := 0.25
	loss := -0.5

	assert.Equal(t, "-", formatROI(nil))
	assert.Equal(t, "+25.0%", formatROI(&roi))
	assert.Equal(t, "-50.0%", formatROI(&loss))
}

func TestLiveChainRows(t *testing.T) {
	rows := []view.ChainRow{
		{ID: 0, Expired: true},
		{ID: 1},
		{ID: 2, Expired: true},
		{ID: 3},
	}

	live := liveChainRows(rows)

	require.Len(t, live, 2)
	assert.Equal(t, uint64(1), live[0].ID)
	assert.Equal(t, uint64(3), live[1].ID)
}

func TestPrintChainRows(t *testing.T) {
	var buf bytes.Buffer

	printChainRows(&buf, []view.ChainRow{
		{
			ID:            7,
			TargetGwei:    "30",
			TimeRemaining: "1d 2h",
			TotalLong:     "5",
			TotalShort:    "2.5",
			UserLong:      "1",
			UserShort:     "0",
			PositionSign:  1,
			Outcome:       "-",
		},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "TARGET (GWEI)")
	assert.Equal(t, []string{"7", "30", "1d", "2h", "5", "2.5", "1", "0", "long", "-"}, strings.Fields(lines[1]))
}

func TestPrintMarketRows_Verbose(t *testing.T) {
	var buf bytes.Buffer

	rows := []view.MarketRow{
		{
			MarketSummary: types.MarketSummary{
				ID:     42,
				Title:  "Will gas be above 30 gwei?",
				State:  types.MarketStateOpen,
				Topics: []string{"Crypto", "Economy"},
				Outcomes: []types.Outcome{
					{Title: "Yes", Price: 0.6},
					{Title: "No", Price: 0.4},
				},
			},
			TimeRemaining: "3h 0m",
		},
	}

	printMarketRows(&buf, rows, true)

	out := buf.String()
	assert.Contains(t, out, "Will gas be above 30 gwei?")
	assert.Contains(t, out, "0.600")
	assert.Contains(t, out, "topics: Crypto, Economy")

	buf.Reset()
	printMarketRows(&buf, rows, false)
	assert.NotContains(t, buf.String(), "topics:")
}

func TestFilterFromFlags(t *testing.T) {
	cfg := &config.Config{
		PageSize:     12,
		DefaultSort:  types.SortVolume24h,
		DefaultState: types.MarketStateOpen,
	}

	t.Run("defaults-from-config", func(t *testing.T) {
		cmd := &cobra.Command{}
		addFilterFlags(cmd)

		f, limit, err := filterFromFlags(cmd, cfg)
		require.NoError(t, err)

		assert.Equal(t, 12, limit)
		assert.Equal(t, filters.TopicAll, f.Topic())
		assert.Equal(t, types.SortVolume24h, f.Sort())
		assert.Equal(t, types.MarketStateOpen, f.State())
	})

	t.Run("flags-override", func(t *testing.T) {
		cmd := &cobra.Command{}
		addFilterFlags(cmd)
		require.NoError(t, cmd.Flags().Parse([]string{
			"--keyword", "gas", "--sort", "liquidity", "--state", "resolved", "--limit", "5",
		}))

		f, limit, err := filterFromFlags(cmd, cfg)
		require.NoError(t, err)

		assert.Equal(t, 5, limit)
		assert.Equal(t, "gas", f.Keyword())
		assert.Equal(t, types.SortLiquidity, f.Sort())
		assert.Equal(t, types.MarketStateResolved, f.State())
	})

	t.Run("invalid-sort", func(t *testing.T) {
		cmd := &cobra.Command{}
		addFilterFlags(cmd)
		require.NoError(t, cmd.Flags().Parse([]string{"--sort", "hot"}))

		_, _, err := filterFromFlags(cmd, cfg)
		require.Error(t, err)
	})
}

func withNow(t *testing.T, now time.Time) {
	t.Helper()

	prev := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = prev })
}
