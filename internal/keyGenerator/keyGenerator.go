package keyGenerator

import (
	"context"

	"github.com/Layr-Labs/l2qq-cli/pkg/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// GeneratedKey describes a secp256k1 key in every form the exchange client
// needs. It never carries the raw private key; WIFs are the export format.
type GeneratedKey struct {
	KeyId string
	Name  string

	// CompressedPublicKey is 33 bytes, UncompressedPublicKey 65 bytes
	CompressedPublicKey   []byte
	UncompressedPublicKey []byte

	EthereumAddress  common.Address
	QtumStyleAddress common.Address

	QtumTestnetAddress string
	QtumMainnetAddress string

	WIFTestnet string
	WIFMainnet string
}

func (k *GeneratedKey) GetPublicKeyHex() string {
	return hexutil.Encode(k.CompressedPublicKey)
}

// SignerAddress returns the address the node will recover for the convention
func (k *GeneratedKey) SignerAddress(convention config.ChainConvention) common.Address {
	if convention == config.ChainConventionUTXO {
		return k.QtumStyleAddress
	}
	return k.EthereumAddress
}

type IKeyGenerator interface {
	GenerateKey(ctx context.Context, name string) (*GeneratedKey, error)

	GetKeyById(ctx context.Context, keyId string) (*GeneratedKey, error)

	// SignMessage signs a hex serialized message with the key and returns
	// the packed message hex.
	SignMessage(ctx context.Context, keyId string, serializedMessageHex string, convention config.ChainConvention) (string, error)
}
