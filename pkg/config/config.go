package config

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for the l2qq client
const (
	EnvL2QQPrivateKey      = "L2QQ_PRIVATE_KEY"
	EnvL2QQConvention      = "L2QQ_CONVENTION"
	EnvL2QQNetwork         = "L2QQ_NETWORK"
	EnvL2QQPersistenceType = "L2QQ_PERSISTENCE_TYPE"
	EnvL2QQDataPath        = "L2QQ_DATA_PATH"
	EnvL2QQRedisAddress    = "L2QQ_REDIS_ADDRESS"
	EnvL2QQRedisPassword   = "L2QQ_REDIS_PASSWORD"
	EnvL2QQRedisDB         = "L2QQ_REDIS_DB"
	EnvL2QQRedisKeyPrefix  = "L2QQ_REDIS_KEY_PREFIX"
	EnvL2QQVerbose         = "L2QQ_VERBOSE"
)

// ChainConvention selects how a signer address is derived from a key.
// The two conventions produce different addresses for the same key.
type ChainConvention string

func (c ChainConvention) String() string {
	return string(c)
}

const (
	// ChainConventionEVM: keccak256(uncompressed pubkey without prefix)[12:]
	ChainConventionEVM ChainConvention = "evm"
	// ChainConventionUTXO: ripemd160(sha256(compressed pubkey)), qtum style
	ChainConventionUTXO ChainConvention = "utxo"
)

func ParseChainConvention(s string) (ChainConvention, error) {
	switch ChainConvention(strings.ToLower(strings.TrimSpace(s))) {
	case ChainConventionEVM, "eth", "ethereum":
		return ChainConventionEVM, nil
	case ChainConventionUTXO, "qtum":
		return ChainConventionUTXO, nil
	default:
		return "", fmt.Errorf("unsupported chain convention: %q", s)
	}
}

type Network string

func (n Network) String() string {
	return string(n)
}

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// Version bytes used for WIF private keys and qtum pay-to-pubkey-hash addresses
const (
	WIFVersionMainnet byte = 128
	WIFVersionTestnet byte = 239

	QtumAddressVersionMainnet byte = 58
	QtumAddressVersionTestnet byte = 120
)

// DefaultWIFVersion matches the version byte the exchange expects for exported keys.
const DefaultWIFVersion = WIFVersionTestnet

var NetworkToWIFVersion = map[Network]byte{
	NetworkMainnet: WIFVersionMainnet,
	NetworkTestnet: WIFVersionTestnet,
}

var NetworkToQtumAddressVersion = map[Network]byte{
	NetworkMainnet: QtumAddressVersionMainnet,
	NetworkTestnet: QtumAddressVersionTestnet,
}

func ParseNetwork(s string) (Network, error) {
	n := Network(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := NetworkToWIFVersion[n]; !ok {
		return "", fmt.Errorf("unsupported network: %q", s)
	}
	return n, nil
}

// WIFVersion returns the WIF version byte for the network
func (n Network) WIFVersion() (byte, error) {
	v, ok := NetworkToWIFVersion[n]
	if !ok {
		return 0, fmt.Errorf("unsupported network: %q", n)
	}
	return v, nil
}

// QtumAddressVersion returns the base58check version byte of qtum addresses on the network
func (n Network) QtumAddressVersion() (byte, error) {
	v, ok := NetworkToQtumAddressVersion[n]
	if !ok {
		return 0, fmt.Errorf("unsupported network: %q", n)
	}
	return v, nil
}

type PersistenceType string

const (
	PersistenceTypeMemory PersistenceType = "memory"
	PersistenceTypeBadger PersistenceType = "badger"
	PersistenceTypeRedis  PersistenceType = "redis"
)

const DefaultDataPath = "./l2qq-data"

// PersistenceConfig selects and configures the nonce store backend
type PersistenceConfig struct {
	Type PersistenceType `json:"type" yaml:"type"`

	// Badger
	DataPath string `json:"dataPath" yaml:"dataPath"`

	// Redis
	RedisAddress   string `json:"redisAddress" yaml:"redisAddress"`
	RedisPassword  string `json:"redisPassword" yaml:"redisPassword"`
	RedisDB        int    `json:"redisDb" yaml:"redisDb"`
	RedisKeyPrefix string `json:"redisKeyPrefix" yaml:"redisKeyPrefix"`
}

func (pc *PersistenceConfig) Validate() error {
	var allErrors field.ErrorList
	allErrors = append(allErrors, pc.validate(field.NewPath("persistence"))...)
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func (pc *PersistenceConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	switch pc.Type {
	case PersistenceTypeMemory:
	case PersistenceTypeBadger:
		if pc.DataPath == "" {
			allErrors = append(allErrors, field.Required(path.Child("dataPath"), "dataPath is required for badger persistence"))
		}
	case PersistenceTypeRedis:
		if pc.RedisAddress == "" {
			allErrors = append(allErrors, field.Required(path.Child("redisAddress"), "redisAddress is required for redis persistence"))
		}
		if pc.RedisDB < 0 || pc.RedisDB > 15 {
			allErrors = append(allErrors, field.Invalid(path.Child("redisDb"), pc.RedisDB, "must be between 0 and 15"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(path.Child("type"), pc.Type,
			[]string{string(PersistenceTypeMemory), string(PersistenceTypeBadger), string(PersistenceTypeRedis)}))
	}
	return allErrors
}

// ClientConfig is the resolved configuration of one CLI invocation
type ClientConfig struct {
	Convention  ChainConvention    `json:"convention"`
	Network     Network            `json:"network"`
	Persistence *PersistenceConfig `json:"persistence,omitempty"`
	Verbose     bool               `json:"verbose"`
}

func (c *ClientConfig) Validate() error {
	var allErrors field.ErrorList
	switch c.Convention {
	case ChainConventionEVM, ChainConventionUTXO:
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("convention"), c.Convention,
			[]string{ChainConventionEVM.String(), ChainConventionUTXO.String()}))
	}
	if _, ok := NetworkToWIFVersion[c.Network]; !ok {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("network"), c.Network,
			[]string{NetworkMainnet.String(), NetworkTestnet.String()}))
	}
	if c.Persistence != nil {
		allErrors = append(allErrors, c.Persistence.validate(field.NewPath("persistence"))...)
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}
