package localKeyGenerator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Layr-Labs/l2qq-cli/internal/keyGenerator"
	"github.com/Layr-Labs/l2qq-cli/pkg/config"
	"github.com/Layr-Labs/l2qq-cli/pkg/crypto"
	"github.com/Layr-Labs/l2qq-cli/pkg/signer"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrKeyNotFound      = errors.New("key not found")
	ErrKeyAlreadyExists = errors.New("key already exists")
)

type keyEntry struct {
	privateKey []byte
	key        *keyGenerator.GeneratedKey
}

// LocalKeyGenerator keeps generated keys in process memory only
type LocalKeyGenerator struct {
	logger   *zap.Logger
	keyStore map[string]*keyEntry // keyId -> keyEntry
	mu       sync.RWMutex
}

var _ keyGenerator.IKeyGenerator = (*LocalKeyGenerator)(nil)

func NewLocalKeyGenerator(logger *zap.Logger) *LocalKeyGenerator {
	return &LocalKeyGenerator{
		logger:   logger,
		keyStore: make(map[string]*keyEntry),
	}
}

func newKeyId() string {
	return fmt.Sprintf("local-key-%s", uuid.New().String())
}

func (l *LocalKeyGenerator) GenerateKey(ctx context.Context, name string) (*keyGenerator.GeneratedKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	privateKey, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate secp256k1 key: %w", err)
	}

	keyId := newKeyId()
	if err := l.LoadPrivateKey(keyId, ethcrypto.FromECDSA(privateKey), name); err != nil {
		return nil, err
	}
	return l.GetKeyById(ctx, keyId)
}

func (l *LocalKeyGenerator) GetKeyById(ctx context.Context, keyId string) (*keyGenerator.GeneratedKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, err := l.getEntry(keyId)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("Retrieved key by ID",
		zap.String("keyId", keyId),
		zap.String("address", entry.key.EthereumAddress.Hex()),
	)
	out := *entry.key
	return &out, nil
}

func (l *LocalKeyGenerator) SignMessage(ctx context.Context, keyId string, serializedMessageHex string, convention config.ChainConvention) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	entry, err := l.getEntry(keyId)
	if err != nil {
		return "", err
	}

	packed, err := signer.SignSerializedMessage(serializedMessageHex, entry.privateKey, convention)
	if err != nil {
		return "", fmt.Errorf("failed to sign message with key %s: %w", keyId, err)
	}

	l.logger.Debug("Signed message with local key",
		zap.String("keyId", keyId),
		zap.String("convention", convention.String()),
		zap.String("signer", entry.key.SignerAddress(convention).Hex()),
	)
	return packed, nil
}

func (l *LocalKeyGenerator) getEntry(keyId string) (*keyEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, exists := l.keyStore[keyId]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, keyId)
	}
	return entry, nil
}

// LoadPrivateKey places an existing 32-byte key in the store under keyId
func (l *LocalKeyGenerator) LoadPrivateKey(keyId string, privateKey []byte, name string) error {
	key, err := describeKey(keyId, name, privateKey)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.keyStore[keyId]; exists {
		return fmt.Errorf("%w: %s", ErrKeyAlreadyExists, keyId)
	}
	l.keyStore[keyId] = &keyEntry{
		privateKey: bytes.Clone(privateKey),
		key:        key,
	}

	l.logger.Info("Loaded key into store",
		zap.String("keyId", keyId),
		zap.String("name", name),
		zap.String("ethereumAddress", key.EthereumAddress.Hex()),
		zap.String("qtumTestnetAddress", key.QtumTestnetAddress),
	)
	return nil
}

func describeKey(keyId string, name string, privateKey []byte) (*keyGenerator.GeneratedKey, error) {
	compressed, err := crypto.DerivePublicKey(privateKey, true)
	if err != nil {
		return nil, err
	}
	uncompressed, err := crypto.DerivePublicKey(privateKey, false)
	if err != nil {
		return nil, err
	}
	ethAddress, err := crypto.EthereumAddressFromPublicKey(uncompressed)
	if err != nil {
		return nil, err
	}
	qtumAddress, err := crypto.QtumStyleAddressFromPublicKey(compressed)
	if err != nil {
		return nil, err
	}

	key := &keyGenerator.GeneratedKey{
		KeyId:                 keyId,
		Name:                  name,
		CompressedPublicKey:   compressed,
		UncompressedPublicKey: uncompressed,
		EthereumAddress:       ethAddress,
		QtumStyleAddress:      qtumAddress,
	}

	if key.QtumTestnetAddress, err = crypto.QtumAddressFromHash160(qtumAddress.Bytes(), config.QtumAddressVersionTestnet); err != nil {
		return nil, err
	}
	if key.QtumMainnetAddress, err = crypto.QtumAddressFromHash160(qtumAddress.Bytes(), config.QtumAddressVersionMainnet); err != nil {
		return nil, err
	}
	if key.WIFTestnet, err = crypto.EncodeWIF(privateKey, config.WIFVersionTestnet, true); err != nil {
		return nil, err
	}
	if key.WIFMainnet, err = crypto.EncodeWIF(privateKey, config.WIFVersionMainnet, true); err != nil {
		return nil, err
	}
	return key, nil
}
