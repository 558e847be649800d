package inMemorySigner

import (
	"bytes"
	"fmt"

	"github.com/Layr-Labs/l2qq-cli/pkg/config"
	"github.com/Layr-Labs/l2qq-cli/pkg/crypto"
	"github.com/Layr-Labs/l2qq-cli/pkg/messenger"
	"github.com/Layr-Labs/l2qq-cli/pkg/signer"
	"github.com/Layr-Labs/l2qq-cli/pkg/util"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

type InMemorySigner struct {
	logger     *zap.Logger
	privateKey []byte
	convention config.ChainConvention
	address    common.Address
}

var _ signer.IMessageSigner = (*InMemorySigner)(nil)

func NewInMemorySigner(
	privateKey []byte,
	convention config.ChainConvention,
	logger *zap.Logger,
) (*InMemorySigner, error) {
	if _, err := crypto.ParsePrivateKey(privateKey); err != nil {
		return nil, fmt.Errorf("error loading private key: %w", err)
	}
	addr, err := signer.SignerAddress(privateKey, convention)
	if err != nil {
		return nil, err
	}

	return &InMemorySigner{
		logger:     logger,
		privateKey: bytes.Clone(privateKey),
		convention: convention,
		address:    addr,
	}, nil
}

// NewInMemorySignerFromString accepts the 64 character key form used on the command line
func NewInMemorySignerFromString(
	privateKey string,
	convention config.ChainConvention,
	logger *zap.Logger,
) (*InMemorySigner, error) {
	key, err := util.PrivateKeyStringToBytes(privateKey)
	if err != nil {
		return nil, err
	}
	return NewInMemorySigner(key, convention, logger)
}

func (s *InMemorySigner) Address() common.Address {
	return s.address
}

func (s *InMemorySigner) Convention() config.ChainConvention {
	return s.convention
}

func (s *InMemorySigner) SignSerializedMessage(serializedMessageHex string) (string, error) {
	packed, err := signer.SignSerializedMessage(serializedMessageHex, s.privateKey, s.convention)
	if err != nil {
		return "", err
	}
	s.logger.Debug("Signed message",
		zap.String("signer", s.address.Hex()),
		zap.String("convention", s.convention.String()),
		zap.Int("messageLength", len(serializedMessageHex)/2),
	)
	return packed, nil
}

func (s *InMemorySigner) SignChannelUpdate(update *messenger.ChannelUpdate) (string, error) {
	serialized, err := messenger.SerializeChannelUpdate(update)
	if err != nil {
		return "", fmt.Errorf("failed to serialize channel update: %w", err)
	}
	packed, err := signer.SignMessage(serialized, s.privateKey, s.convention)
	if err != nil {
		return "", fmt.Errorf("failed to sign channel update: %w", err)
	}
	s.logger.Info("Signed channel update",
		zap.String("signer", s.address.Hex()),
		zap.String("channelOwner", update.ChannelOwner.Hex()),
		zap.String("token", update.TokenOrZero().Hex()),
		zap.String("nonce", update.Nonce.String()),
	)
	return util.EncodeHex(packed), nil
}
