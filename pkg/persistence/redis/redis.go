package redis

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/Layr-Labs/l2qq-cli/pkg/persistence"
	"github.com/Layr-Labs/l2qq-cli/pkg/util"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key prefixes for namespacing in Redis
const (
	keyPrefixChannel     = "l2qq:channel:"
	keySchemaVersion     = "l2qq:metadata:schema_version"
	currentSchemaVersion = "v1"

	// Redis has no prefix iteration, so channel keys are also kept in a set
	keySetChannels = "l2qq:channels:index"

	opTimeout       = 5 * time.Second
	maxSaveAttempts = 5
)

// RedisPersistence shares nonces between several hosts signing for the same channels
type RedisPersistence struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
	mu        sync.RWMutex
	closed    bool
}

var _ persistence.INonceStore = (*RedisPersistence)(nil)

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address  string
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// KeyPrefix is prepended to every key, e.g. "desk1:" gives "desk1:l2qq:channel:..."
	KeyPrefix string
}

func NewRedisPersistence(cfg *RedisConfig, logger *zap.Logger) (*RedisPersistence, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	rp := &RedisPersistence{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rp.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Debugw("Redis nonce store initialized", "address", cfg.Address, "db", cfg.DB, "key_prefix", cfg.KeyPrefix)

	return rp, nil
}

func (r *RedisPersistence) prefixKey(key string) string {
	if r.keyPrefix == "" {
		return key
	}
	return r.keyPrefix + key
}

func (r *RedisPersistence) channelKey(channel persistence.ChannelKey) string {
	return r.prefixKey(keyPrefixChannel + channel.String())
}

func (r *RedisPersistence) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	existingVersion, err := r.client.Get(ctx, schemaKey).Result()
	if errors.Is(err, redis.Nil) {
		return r.client.Set(ctx, schemaKey, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if existingVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
	}
	return nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getChannelState(ctx context.Context, c getter, key string) (*persistence.ChannelState, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return persistence.UnmarshalChannelState(data)
}

// SaveNonce uses WATCH/MULTI so two hosts cannot both advance a channel past
// the same stored nonce.
func (r *RedisPersistence) SaveNonce(channel persistence.ChannelKey, nonce *big.Int) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	key := r.channelKey(channel)
	indexKey := r.prefixKey(keySetChannels)

	txf := func(tx *redis.Tx) error {
		existing, err := getChannelState(ctx, tx, key)
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
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, indexKey, channel.String())
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			r.logger.Sugar().Debugw("Channel changed during save, retrying", "channel", channel.String(), "attempt", attempt)
			continue
		}
		if err != nil {
			return err
		}
		r.logger.Sugar().Debugw("Saved channel nonce", "channel", channel.String(), "nonce", nonce.String())
		return nil
	}
	return fmt.Errorf("failed to save nonce after %d attempts: %w", maxSaveAttempts, redis.TxFailedErr)
}

func (r *RedisPersistence) LoadChannelState(channel persistence.ChannelKey) (*persistence.ChannelState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	state, err := getChannelState(ctx, r.client, r.channelKey(channel))
	if err != nil {
		return nil, fmt.Errorf("failed to load ChannelState: %w", err)
	}
	return state, nil
}

func (r *RedisPersistence) ListChannelStates() ([]*persistence.ChannelState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	indexKey := r.prefixKey(keySetChannels)

	members, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	if len(members) == 0 {
		return []*persistence.ChannelState{}, nil
	}
	sort.Strings(members)

	keys := util.Map(members, func(member string, _ uint64) string {
		return r.prefixKey(keyPrefixChannel + member)
	})

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ChannelStates: %w", err)
	}

	states := make([]*persistence.ChannelState, 0, len(values))
	for i, val := range values {
		if val == nil {
			// in the index but deleted, clean up
			r.client.SRem(ctx, indexKey, members[i])
			continue
		}

		data, ok := val.(string)
		if !ok {
			r.logger.Sugar().Warnw("Unexpected value type for ChannelState", "key", keys[i])
			continue
		}

		state, err := persistence.UnmarshalChannelState([]byte(data))
		if err != nil {
			r.logger.Sugar().Warnw("Failed to unmarshal ChannelState, skipping",
				"key", keys[i], "error", err)
			continue
		}
		states = append(states, state)
	}
	return states, nil
}

func (r *RedisPersistence) DeleteChannelState(channel persistence.ChannelKey) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.channelKey(channel))
	pipe.SRem(ctx, r.prefixKey(keySetChannels), channel.String())

	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisPersistence) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	r.logger.Sugar().Debug("Redis nonce store closed")
	return nil
}

func (r *RedisPersistence) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	_, err := r.client.Get(ctx, r.prefixKey(keySchemaVersion)).Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("schema version not found - database may not be properly initialized")
	}
	if err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}
	return nil
}
