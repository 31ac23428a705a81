package trade

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGwei(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0.5", 500_000_000},
		{"7", 7_000_000_000},
		{" 30 ", 30_000_000_000},
		{"0.000000001", 1},
		{"1.25", 1_250_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGwei(tt.in)
			require.NoError(t, err)
			assert.Equal(t, big.NewInt(tt.want), got)
		})
	}

	for _, bad := range []string{"0", "0.0", "-0.5", "", "1e", "0.0000000005"} {
		_, err := ParseGwei(bad)
		assert.ErrorIs(t, err, ErrInvalidTargetFee, bad)
	}
}

func TestParseDays(t *testing.T) {
	got, err := ParseDays("7")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), got)

	for _, bad := range []string{"0", "-1", "1.5", "", "x"} {
		_, err := ParseDays(bad)
		assert.ErrorIs(t, err, ErrInvalidDays, bad)
	}
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount("100")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100_000_000), got)

	_, err = ParseAmount("1.0000001")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestParseMarketID(t *testing.T) {
	id, err := ParseMarketID("0")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	_, err = ParseMarketID("-1")
	assert.ErrorIs(t, err, ErrInvalidMarket)
}
