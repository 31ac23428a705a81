package httpserver

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/mselser95/gasfutures/internal/chain"
	"go.uber.org/zap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialChain(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chain"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	return conn
}

func readPush(t *testing.T, conn *websocket.Conn) PushMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg PushMessage
	require.NoError(t, json.Unmarshal(data, &msg))

	return msg
}

func TestHub_SnapshotOnConnectThenUpdates(t *testing.T) {
	src := newFakeChain(chainSnapshot(30))
	s := newTestServer(t, &Config{Chain: src})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.RunPush(ctx) }()

	select {
	case <-src.subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not subscribe")
	}

	ts := httptest.NewServer(s.server.Handler)
	defer ts.Close()

	conn := dialChain(t, ts)
	defer conn.Close()

	first := readPush(t, conn)
	assert.Equal(t, MessageTypeChainMarkets, first.Type)
	require.Len(t, first.Data.Markets, 2)
	assert.Equal(t, "30", first.Data.Markets[0].TargetGwei)

	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	src.publish(chainSnapshot(45))

	second := readPush(t, conn)
	assert.Equal(t, "45", second.Data.Markets[0].TargetGwei)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RunPush did not return after cancel")
	}

	assert.Equal(t, 0, s.hub.ClientCount())
}

func TestHub_NoSnapshotYet(t *testing.T) {
	src := newFakeChain(nil)
	s := newTestServer(t, &Config{Chain: src})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = s.RunPush(ctx) }()

	select {
	case <-src.subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not subscribe")
	}

	ts := httptest.NewServer(s.server.Handler)
	defer ts.Close()

	conn := dialChain(t, ts)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	src.publish(chainSnapshot(20))

	msg := readPush(t, conn)
	assert.Equal(t, "20", msg.Data.Markets[0].TargetGwei)
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	src := newFakeChain(chainSnapshot(30))
	s := newTestServer(t, &Config{Chain: src})

	ts := httptest.NewServer(s.server.Handler)
	defer ts.Close()

	conn := dialChain(t, ts)
	_ = readPush(t, conn)
	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return s.hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsAfterClose(t *testing.T) {
	src := newFakeChain(nil)
	s := newTestServer(t, &Config{Chain: src})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.RunPush(ctx))

	ts := httptest.NewServer(s.server.Handler)
	defer ts.Close()

	conn := dialChain(t, ts)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, s.hub.ClientCount())
}

// racingChain publishes a newer snapshot while the hub is reading the current
// one for a connecting client.
type racingChain struct {
	*fakeChain
	current *chain.Snapshot
	newer   *chain.Snapshot
	once    sync.Once
}

func (r *racingChain) Snapshot() *chain.Snapshot {
	r.once.Do(func() { r.fakeChain.publish(r.newer) })
	return r.current
}

func TestHub_PollDuringConnectIsDeliveredLast(t *testing.T) {
	current := chainSnapshot(30)
	newer := chainSnapshot(45)
	newer.PolledAt = testNow.Add(time.Second)

	src := &racingChain{fakeChain: newFakeChain(current), current: current, newer: newer}
	s := newTestServer(t, &Config{Chain: src})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = s.RunPush(ctx) }()

	select {
	case <-src.subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not subscribe")
	}

	ts := httptest.NewServer(s.server.Handler)
	defer ts.Close()

	conn := dialChain(t, ts)
	defer conn.Close()

	first := readPush(t, conn)
	second := readPush(t, conn)

	assert.Equal(t, testNow, first.Data.PolledAt.UTC())
	assert.Equal(t, "30", first.Data.Markets[0].TargetGwei)
	assert.Equal(t, testNow.Add(time.Second), second.Data.PolledAt.UTC())
	assert.Equal(t, "45", second.Data.Markets[0].TargetGwei)
}

func TestClient_TrySendSkipsOlderFrames(t *testing.T) {
	h := NewHub(newFakeChain(nil), nil, zap.NewNop())
	c := &client{hub: h, send: make(chan []byte, 4)}

	c.trySend([]byte("b"), testNow.Add(time.Second))
	c.trySend([]byte("a"), testNow)
	c.trySend([]byte("b-again"), testNow.Add(time.Second))
	c.trySend([]byte("c"), testNow.Add(2*time.Second))

	require.Len(t, c.send, 3)
	assert.Equal(t, "b", string(<-c.send))
	assert.Equal(t, "b-again", string(<-c.send))
	assert.Equal(t, "c", string(<-c.send))
	assert.Equal(t, testNow.Add(2*time.Second), c.last)
}
