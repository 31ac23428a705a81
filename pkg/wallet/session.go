package wallet

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNotConnected is returned when an operation needs a connected address.
var ErrNotConnected = errors.New("wallet not connected")

// Session is the process-wide wallet connection. It is read by many
// components and written only by Connect and Disconnect.
type Session struct {
	mu        sync.RWMutex
	address   common.Address
	connected bool

	subMu     sync.Mutex
	subs      map[int]chan struct{}
	nextSubID int
}

// NewSession creates a disconnected session.
func NewSession() *Session {
	return &Session{subs: make(map[int]chan struct{})}
}

// Connect sets the connected address. Connecting the address that is already
// connected does not notify subscribers.
func (s *Session) Connect(address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid address %q", address)
	}

	addr := common.HexToAddress(address)

	s.mu.Lock()
	changed := !s.connected || s.address != addr
	s.address = addr
	s.connected = true
	s.mu.Unlock()

	if changed {
		ConnectedGauge.Set(1)
		s.notify()
	}

	return nil
}

// Disconnect clears the connected address.
func (s *Session) Disconnect() {
	s.mu.Lock()
	changed := s.connected
	s.address = common.Address{}
	s.connected = false
	s.mu.Unlock()

	if changed {
		ConnectedGauge.Set(0)
		s.notify()
	}
}

// Address returns the connected address and whether one is connected.
func (s *Session) Address() (common.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address, s.connected
}

// RequireAddress returns the connected address or ErrNotConnected.
func (s *Session) RequireAddress() (common.Address, error) {
	addr, ok := s.Address()
	if !ok {
		return common.Address{}, ErrNotConnected
	}
	return addr, nil
}

// Subscribe returns a channel that receives after every connection change.
// Changes are coalesced for slow readers.
func (s *Session) Subscribe() (<-chan struct{}, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++

	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

func (s *Session) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
