package wallet

import (
	"context"
	"errors"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

type fakeHoldings struct {
	holdings *Holdings
	err      error
	calls    int
}

func (f *fakeHoldings) Holdings(context.Context, string) (*Holdings, error) {
	f.calls++
	return f.holdings, f.err
}

func newTestClient(t *testing.T, backend *fakeBackend) *Client {
	t.Helper()

	client, err := NewClient(backend, testToken, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}
	return client
}

func TestNew(t *testing.T) {
	logger := zap.NewNop()
	client := newTestClient(t, &fakeBackend{})
	session := NewSession()

	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name: "valid_config",
			cfg: &Config{
				Client:       client,
				Session:      session,
				PollInterval: 1 * time.Minute,
				Logger:       logger,
			},
			wantErr: false,
		},
		{
			name:    "nil_config",
			cfg:     nil,
			wantErr: true,
		},
		{
			name: "nil_logger",
			cfg: &Config{
				Client:       client,
				Session:      session,
				PollInterval: 1 * time.Minute,
			},
			wantErr: true,
		},
		{
			name: "nil_client",
			cfg: &Config{
				Session:      session,
				PollInterval: 1 * time.Minute,
				Logger:       logger,
			},
			wantErr: true,
		},
		{
			name: "nil_session",
			cfg: &Config{
				Client:       client,
				PollInterval: 1 * time.Minute,
				Logger:       logger,
			},
			wantErr: true,
		},
		{
			name: "zero_poll_interval",
			cfg: &Config{
				Client:  client,
				Session: session,
				Logger:  logger,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && tracker == nil {
				t.Error("New() returned nil tracker")
			}
		})
	}
}

func TestTracker_pollNotConnected(t *testing.T) {
	holdings := &fakeHoldings{}
	tracker, err := New(&Config{
		Client:       newTestClient(t, &fakeBackend{}),
		Session:      NewSession(),
		Holdings:     holdings,
		PollInterval: time.Minute,
		Logger:       zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	err = tracker.poll(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("poll() error = %v, want ErrNotConnected", err)
	}
	if holdings.calls != 0 {
		t.Errorf("holdings fetched %d times while disconnected", holdings.calls)
	}
}

func TestTracker_pollUpdatesMetrics(t *testing.T) {
	session := NewSession()
	if err := session.Connect("0x1234567890123456789012345678901234567890"); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}

	backend := &fakeBackend{
		native: new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18)),
		stable: big.NewInt(250_500_000),
	}
	holdings := &fakeHoldings{holdings: &Holdings{
		Positions: 3,
		Value:     120,
		Invested:  100,
		Profit:    20,
		Claimable: 1,
	}}

	tracker, err := New(&Config{
		Client:       newTestClient(t, backend),
		Session:      session,
		Holdings:     holdings,
		PollInterval: time.Minute,
		Logger:       zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := tracker.poll(context.Background()); err != nil {
		t.Fatalf("poll() failed: %v", err)
	}

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"native", testutil.ToFloat64(NativeBalance), 2},
		{"stable", testutil.ToFloat64(StableBalance), 250.5},
		{"positions", testutil.ToFloat64(ActivePositions), 3},
		{"claimable", testutil.ToFloat64(ClaimablePositions), 1},
		{"value", testutil.ToFloat64(TotalPositionValue), 120},
		{"cost", testutil.ToFloat64(TotalPositionCost), 100},
		{"pnl", testutil.ToFloat64(UnrealizedPnL), 20},
		{"pnl_pct", testutil.ToFloat64(UnrealizedPnLPercent), 20},
		{"portfolio", testutil.ToFloat64(PortfolioValue), 370.5},
	}

	for _, c := range checks {
		if math.Abs(c.got-c.want) > 0.0001 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestTracker_updateMetrics_ZeroDivision(t *testing.T) {
	tracker := &Tracker{logger: zap.NewNop()}

	tracker.updateMetrics(&Balances{Native: big.NewInt(0), Stable: big.NewInt(0)}, &Holdings{Profit: 5})

	if got := testutil.ToFloat64(UnrealizedPnLPercent); got != 0 {
		t.Errorf("UnrealizedPnLPercent = %v, want 0", got)
	}
}

func TestTracker_Run_ImmediateCancellation(t *testing.T) {
	tracker, err := New(&Config{
		Client:       newTestClient(t, &fakeBackend{}),
		Session:      NewSession(),
		PollInterval: 1 * time.Minute,
		Logger:       zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- tracker.Run(ctx)
	}()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not exit after context cancellation")
	}
}
