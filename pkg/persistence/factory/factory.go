package factory

import (
	"fmt"

	"github.com/Layr-Labs/l2qq-cli/pkg/config"
	"github.com/Layr-Labs/l2qq-cli/pkg/persistence"
	"github.com/Layr-Labs/l2qq-cli/pkg/persistence/badger"
	"github.com/Layr-Labs/l2qq-cli/pkg/persistence/memory"
	"github.com/Layr-Labs/l2qq-cli/pkg/persistence/redis"
	"go.uber.org/zap"
)

// NewNonceStore opens the nonce store backend selected by cfg
func NewNonceStore(cfg *config.PersistenceConfig, logger *zap.Logger) (persistence.INonceStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("persistence config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid persistence config: %w", err)
	}

	switch cfg.Type {
	case config.PersistenceTypeMemory:
		return memory.NewMemoryPersistence(logger), nil
	case config.PersistenceTypeBadger:
		store, err := badger.NewBadgerPersistence(cfg.DataPath, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.PersistenceTypeRedis:
		store, err := redis.NewRedisPersistence(&redis.RedisConfig{
			Address:   cfg.RedisAddress,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s", cfg.Type)
	}
}
