package badger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"path/filepath"
	"sync"
	"time"

	"github.com/Layr-Labs/l2qq-cli/pkg/persistence"
	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

// Key prefixes for namespacing
const (
	keyPrefixChannel     = "channel:"
	keySchemaVersion     = "metadata:schema_version"
	currentSchemaVersion = "v1"

	gcInterval     = 5 * time.Minute
	gcDiscardRatio = 0.5
)

// BadgerPersistence is the default nonce store: a local on-disk database
// that survives restarts of the CLI.
type BadgerPersistence struct {
	db       *badgerdb.DB
	logger   *zap.Logger
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

var _ persistence.INonceStore = (*BadgerPersistence)(nil)

// NewBadgerPersistence opens (or creates) the database at dataPath with
// SyncWrites enabled and starts value log GC in the background.
func NewBadgerPersistence(dataPath string, logger *zap.Logger) (*BadgerPersistence, error) {
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	opts := badgerdb.DefaultOptions(absPath)
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.SyncWrites = true
	opts.CompactL0OnClose = true
	opts.NumVersionsToKeep = 1

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", absPath, err)
	}

	bp := &BadgerPersistence{
		db:     db,
		logger: logger,
	}

	if err := bp.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bp.gcCancel = cancel
	bp.gcWg.Add(1)
	go bp.runGC(ctx)

	logger.Sugar().Debugw("Badger nonce store initialized", "path", absPath)

	return bp, nil
}

func (b *BadgerPersistence) initSchema() error {
	return b.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keySchemaVersion))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return txn.Set([]byte(keySchemaVersion), []byte(currentSchemaVersion))
		}
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		var existingVersion string
		err = item.Value(func(val []byte) error {
			existingVersion = string(val)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to read schema version value: %w", err)
		}

		if existingVersion != currentSchemaVersion {
			return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
		}
		return nil
	})
}

func (b *BadgerPersistence) runGC(ctx context.Context) {
	defer b.gcWg.Done()

	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := b.db.RunValueLogGC(gcDiscardRatio)
			if err != nil && !errors.Is(err, badgerdb.ErrNoRewrite) {
				b.logger.Sugar().Warnw("Badger GC error", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func channelKey(channel persistence.ChannelKey) []byte {
	return []byte(keyPrefixChannel + channel.String())
}

func readChannelState(txn *badgerdb.Txn, key []byte) (*persistence.ChannelState, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var data []byte
	if err := item.Value(func(val []byte) error {
		data = append([]byte{}, val...)
		return nil
	}); err != nil {
		return nil, err
	}
	return persistence.UnmarshalChannelState(data)
}

// SaveNonce checks and writes inside one transaction, so a concurrent writer
// of the same channel makes one of the two fail with a conflict.
func (b *BadgerPersistence) SaveNonce(channel persistence.ChannelKey, nonce *big.Int) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	key := channelKey(channel)
	err := b.db.Update(func(txn *badgerdb.Txn) error {
		existing, err := readChannelState(txn, key)
		if err != nil {
			return fmt.Errorf("failed to load ChannelState: %w", err)
		}
		if err := persistence.CheckNonceAdvance(existing, nonce); err != nil {
			return err
		}

		data, err := persistence.MarshalChannelState(persistence.NewChannelState(channel, nonce))
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	b.logger.Sugar().Debugw("Saved channel nonce", "channel", channel.String(), "nonce", nonce.String())
	return nil
}

func (b *BadgerPersistence) LoadChannelState(channel persistence.ChannelKey) (*persistence.ChannelState, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, persistence.ErrClosed
	}

	var state *persistence.ChannelState
	err := b.db.View(func(txn *badgerdb.Txn) error {
		var err error
		state, err = readChannelState(txn, channelKey(channel))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load ChannelState: %w", err)
	}
	return state, nil
}

// ListChannelStates relies on badger iterating keys in byte order
func (b *BadgerPersistence) ListChannelStates() ([]*persistence.ChannelState, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, persistence.ErrClosed
	}

	states := make([]*persistence.ChannelState, 0)
	err := b.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefixChannel)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			var data []byte
			err := item.Value(func(val []byte) error {
				data = append([]byte{}, val...)
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to read value: %w", err)
			}

			state, err := persistence.UnmarshalChannelState(data)
			if err != nil {
				b.logger.Sugar().Warnw("Failed to unmarshal ChannelState, skipping",
					"key", string(item.Key()), "error", err)
				continue
			}
			states = append(states, state)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list ChannelStates: %w", err)
	}
	return states, nil
}

func (b *BadgerPersistence) DeleteChannelState(channel persistence.ChannelKey) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(channelKey(channel))
	})
}

func (b *BadgerPersistence) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if b.gcCancel != nil {
		b.gcCancel()
	}
	b.gcWg.Wait()

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}

	b.logger.Sugar().Debug("Badger nonce store closed")
	return nil
}

func (b *BadgerPersistence) HealthCheck() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	return b.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(keySchemaVersion))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return fmt.Errorf("schema version not found - database may be corrupted")
		}
		return err
	})
}
