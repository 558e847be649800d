package memory

import (
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/Layr-Labs/l2qq-cli/pkg/persistence"
	"github.com/Layr-Labs/l2qq-cli/pkg/util"
	"go.uber.org/zap"
)

// MemoryPersistence is an in-memory implementation of INonceStore.
//
// Nonces are lost when the process exits, so it only suits tests and
// one-shot signing where the caller supplies every nonce.
type MemoryPersistence struct {
	mu       sync.RWMutex
	channels map[string]*persistence.ChannelState
	closed   bool
}

var _ persistence.INonceStore = (*MemoryPersistence)(nil)

// NewMemoryPersistence warns through the logger since nothing survives a restart
func NewMemoryPersistence(logger *zap.Logger) *MemoryPersistence {
	logger.Sugar().Warnw("Using in-memory nonce store, nonces will be lost on exit",
		"hint", "set L2QQ_PERSISTENCE_TYPE=badger to keep them")

	return &MemoryPersistence{
		channels: make(map[string]*persistence.ChannelState),
	}
}

func (m *MemoryPersistence) SaveNonce(channel persistence.ChannelKey, nonce *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	key := channel.String()
	if err := persistence.CheckNonceAdvance(m.channels[key], nonce); err != nil {
		return err
	}
	m.channels[key] = persistence.NewChannelState(channel, nonce)
	return nil
}

func (m *MemoryPersistence) LoadChannelState(channel persistence.ChannelKey) (*persistence.ChannelState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	state, exists := m.channels[channel.String()]
	if !exists {
		return nil, nil
	}
	// copy to prevent external mutation
	cp := *state
	return &cp, nil
}

func (m *MemoryPersistence) ListChannelStates() ([]*persistence.ChannelState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	keys := make([]string, 0, len(m.channels))
	for k := range m.channels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return util.Map(keys, func(k string, _ uint64) *persistence.ChannelState {
		cp := *m.channels[k]
		return &cp
	}), nil
}

func (m *MemoryPersistence) DeleteChannelState(channel persistence.ChannelKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	delete(m.channels, channel.String())
	return nil
}

func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.channels = nil
	return nil
}

func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("memory nonce store: %w", persistence.ErrClosed)
	}
	return nil
}
