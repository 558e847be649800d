package main

import (
	"encoding/json"
	"fmt"

	"github.com/Layr-Labs/l2qq-cli/internal/keyGenerator/localKeyGenerator"
	"github.com/Layr-Labs/l2qq-cli/pkg/address"
	"github.com/Layr-Labs/l2qq-cli/pkg/config"
	"github.com/Layr-Labs/l2qq-cli/pkg/crypto"
	"github.com/Layr-Labs/l2qq-cli/pkg/logger"
	"github.com/Layr-Labs/l2qq-cli/pkg/messenger"
	"github.com/Layr-Labs/l2qq-cli/pkg/numeric"
	"github.com/Layr-Labs/l2qq-cli/pkg/persistence"
	"github.com/Layr-Labs/l2qq-cli/pkg/persistence/factory"
	"github.com/Layr-Labs/l2qq-cli/pkg/signer"
	"github.com/Layr-Labs/l2qq-cli/pkg/signer/inMemorySigner"
	"github.com/Layr-Labs/l2qq-cli/pkg/util"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// loadClientConfig resolves the global flags and creates the logger
func loadClientConfig(c *cli.Context) (*config.ClientConfig, *zap.Logger, error) {
	convention, err := config.ParseChainConvention(c.String("convention"))
	if err != nil {
		return nil, nil, err
	}
	network, err := config.ParseNetwork(c.String("network"))
	if err != nil {
		return nil, nil, err
	}

	cfg := &config.ClientConfig{
		Convention: convention,
		Network:    network,
		Persistence: &config.PersistenceConfig{
			Type:           config.PersistenceType(c.String("persistence-type")),
			DataPath:       c.String("data-path"),
			RedisAddress:   c.String("redis-address"),
			RedisPassword:  c.String("redis-password"),
			RedisDB:        c.Int("redis-db"),
			RedisKeyPrefix: c.String("redis-key-prefix"),
		},
		Verbose: c.Bool("verbose"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Verbose})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	l.Debug("Loaded configuration",
		zap.String("convention", cfg.Convention.String()),
		zap.String("network", cfg.Network.String()),
		zap.String("persistence", string(cfg.Persistence.Type)),
	)
	return cfg, l, nil
}

func writeJSON(c *cli.Context, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}

func writeLine(c *cli.Context, s string) error {
	_, err := fmt.Fprintln(c.App.Writer, s)
	return err
}

func channelFromFlags(c *cli.Context) (persistence.ChannelKey, error) {
	// nonce and change are placeholders; only the addresses are used
	params := &messenger.ChannelUpdateParams{
		ChannelOwner: c.String("owner"),
		Token:        c.String("token"),
		Change:       "0",
		Nonce:        "0",
	}
	update, err := params.ToChannelUpdate()
	if err != nil {
		return persistence.ChannelKey{}, err
	}
	return persistence.NewChannelKey(update.ChannelOwner, update.Token), nil
}

func signCommand(c *cli.Context) error {
	cfg, l, err := loadClientConfig(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	s, err := inMemorySigner.NewInMemorySignerFromString(c.String("key"), cfg.Convention, l)
	if err != nil {
		return err
	}
	packed, err := s.SignSerializedMessage(c.String("message"))
	if err != nil {
		return err
	}
	return writeLine(c, packed)
}

func channelUpdateCommand(c *cli.Context) error {
	cfg, l, err := loadClientConfig(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	noSign := c.Bool("no-sign")
	if !noSign && c.String("key") == "" {
		return fmt.Errorf("--key is required unless --no-sign is set")
	}

	params := &messenger.ChannelUpdateParams{
		ChannelOwner: c.String("owner"),
		Token:        c.String("token"),
		Change:       c.String("change"),
		Nonce:        c.String("nonce"),
		Apply:        c.Bool("apply"),
		Free:         c.String("free"),
	}

	var store persistence.INonceStore
	if params.Nonce == "" || !noSign {
		store, err = factory.NewNonceStore(cfg.Persistence, l)
		if err != nil {
			return fmt.Errorf("failed to open nonce store: %w", err)
		}
		defer func() { _ = store.Close() }()
	}

	if params.Nonce == "" {
		channel, err := channelFromFlags(c)
		if err != nil {
			return err
		}
		next, err := persistence.NextNonce(store, channel)
		if err != nil {
			return fmt.Errorf("failed to read nonce for %s: %w", channel, err)
		}
		params.Nonce = next.String()
		l.Debug("Using next nonce from store", zap.String("channel", channel.String()), zap.String("nonce", params.Nonce))
	}

	update, err := params.ToChannelUpdate()
	if err != nil {
		return err
	}

	if noSign {
		serialized, err := messenger.SerializeChannelUpdate(update)
		if err != nil {
			return err
		}
		return writeLine(c, util.EncodeHex(serialized))
	}

	channel := persistence.NewChannelKey(update.ChannelOwner, update.Token)
	existing, err := store.LoadChannelState(channel)
	if err != nil {
		return err
	}
	if err := persistence.CheckNonceAdvance(existing, update.Nonce); err != nil {
		return err
	}

	s, err := inMemorySigner.NewInMemorySignerFromString(c.String("key"), cfg.Convention, l)
	if err != nil {
		return err
	}
	packed, err := s.SignChannelUpdate(update)
	if err != nil {
		return err
	}

	// another host may have used the nonce since it was read
	if err := store.SaveNonce(channel, update.Nonce); err != nil {
		return fmt.Errorf("signed update was not released: %w", err)
	}
	return writeLine(c, packed)
}

type verifyOutput struct {
	Signer        string                         `json:"signer"`
	Convention    string                         `json:"convention"`
	Message       string                         `json:"message"`
	V             uint8                          `json:"v"`
	R             string                         `json:"r"`
	S             string                         `json:"s"`
	ChannelUpdate *messenger.ChannelUpdateParams `json:"channelUpdate,omitempty"`
}

func verifyCommand(c *cli.Context) error {
	cfg, l, err := loadClientConfig(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	signed, err := signer.VerifyPackedMessage(c.String("packed"), cfg.Convention)
	if err != nil {
		return err
	}

	out := &verifyOutput{
		Signer:     signed.Signer.Hex(),
		Convention: cfg.Convention.String(),
		Message:    util.EncodeHex(signed.Message),
		V:          signed.Signature.V,
		R:          util.EncodeHex(signed.Signature.R),
		S:          util.EncodeHex(signed.Signature.S),
	}
	if messenger.IsChannelUpdate(signed.Message) {
		update, err := messenger.DeserializeChannelUpdate(signed.Message)
		if err != nil {
			return err
		}
		out.ChannelUpdate = messenger.ChannelUpdateToParams(update)
	}
	l.Info("Verified signed message", zap.String("signer", out.Signer))
	return writeJSON(c, out)
}

type addressOutput struct {
	EthereumAddress  string `json:"ethereumAddress"`
	QtumStyleAddress string `json:"qtumStyleAddress"`
	QtumAddress      string `json:"qtumAddress"`
	Network          string `json:"network"`
	SignerAddress    string `json:"signerAddress"`
}

func addressCommand(c *cli.Context) error {
	cfg, l, err := loadClientConfig(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	key, err := util.PrivateKeyStringToBytes(c.String("key"))
	if err != nil {
		return err
	}
	ethAddress, err := crypto.EthereumAddress(key)
	if err != nil {
		return err
	}
	qtumStyle, err := crypto.QtumStyleAddress(key)
	if err != nil {
		return err
	}
	version, err := cfg.Network.QtumAddressVersion()
	if err != nil {
		return err
	}
	qtumAddress, err := crypto.QtumAddressFromHash160(qtumStyle.Bytes(), version)
	if err != nil {
		return err
	}
	signerAddress, err := signer.SignerAddress(key, cfg.Convention)
	if err != nil {
		return err
	}

	return writeJSON(c, &addressOutput{
		EthereumAddress:  ethAddress.Hex(),
		QtumStyleAddress: util.EncodeHex(qtumStyle.Bytes()),
		QtumAddress:      qtumAddress,
		Network:          cfg.Network.String(),
		SignerAddress:    util.EncodeHex(signerAddress.Bytes()),
	})
}

func wifEncodeCommand(c *cli.Context) error {
	cfg, l, err := loadClientConfig(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	key, err := util.PrivateKeyStringToBytes(c.String("key"))
	if err != nil {
		return err
	}
	version, err := cfg.Network.WIFVersion()
	if err != nil {
		return err
	}
	wif, err := crypto.EncodeWIF(key, version, !c.Bool("uncompressed"))
	if err != nil {
		return err
	}
	return writeLine(c, wif)
}

type wifOutput struct {
	PrivateKey  string `json:"privateKey"`
	Version     uint8  `json:"version"`
	Network     string `json:"network,omitempty"`
	Compressed  bool   `json:"compressed"`
	QtumAddress string `json:"qtumAddress,omitempty"`
}

func wifDecodeCommand(c *cli.Context) error {
	_, l, err := loadClientConfig(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	wif := c.String("wif")
	key, err := crypto.DecodeWIF(wif)
	if err != nil {
		return err
	}
	out := &wifOutput{
		PrivateKey: util.EncodeHex(key.PrivateKey),
		Version:    key.Version,
		Compressed: key.Compressed,
	}
	for network, version := range config.NetworkToWIFVersion {
		if version != key.Version {
			continue
		}
		out.Network = network.String()
		addressVersion, err := network.QtumAddressVersion()
		if err != nil {
			return err
		}
		if out.QtumAddress, err = crypto.QtumAddressFromWIF(wif, addressVersion); err != nil {
			return err
		}
	}
	if out.Network == "" {
		l.Warn("WIF version does not match a known network", zap.Uint8("version", key.Version))
	}
	return writeJSON(c, out)
}

func toDecimalCommand(c *cli.Context) error {
	out, err := numeric.CurrencyAtomicToDecimal(c.String("amount"), c.Int("decimals"))
	if err != nil {
		return err
	}
	return writeLine(c, out)
}

func toAtomicCommand(c *cli.Context) error {
	out, err := numeric.CurrencyDecimalToAtomic(c.String("amount"), c.Int("decimals"))
	if err != nil {
		return err
	}
	return writeLine(c, out.String())
}

type keygenOutput struct {
	KeyId              string `json:"keyId"`
	Name               string `json:"name"`
	PublicKey          string `json:"publicKey"`
	EthereumAddress    string `json:"ethereumAddress"`
	QtumStyleAddress   string `json:"qtumStyleAddress"`
	QtumTestnetAddress string `json:"qtumTestnetAddress"`
	QtumMainnetAddress string `json:"qtumMainnetAddress"`
	WIFTestnet         string `json:"wifTestnet"`
	WIFMainnet         string `json:"wifMainnet"`
	SignedMessage      string `json:"signedMessage,omitempty"`
}

func keygenCommand(c *cli.Context) error {
	cfg, l, err := loadClientConfig(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	generator := localKeyGenerator.NewLocalKeyGenerator(l)
	key, err := generator.GenerateKey(c.Context, c.String("name"))
	if err != nil {
		return err
	}

	// the key lives only in this process, so sign now or never
	var signed string
	if c.IsSet("sign-message") {
		signed, err = generator.SignMessage(c.Context, key.KeyId, c.String("sign-message"), cfg.Convention)
		if err != nil {
			return err
		}
	}
	return writeJSON(c, &keygenOutput{
		KeyId:              key.KeyId,
		Name:               key.Name,
		PublicKey:          key.GetPublicKeyHex(),
		EthereumAddress:    key.EthereumAddress.Hex(),
		QtumStyleAddress:   util.EncodeHex(key.QtumStyleAddress.Bytes()),
		QtumTestnetAddress: key.QtumTestnetAddress,
		QtumMainnetAddress: key.QtumMainnetAddress,
		WIFTestnet:         key.WIFTestnet,
		WIFMainnet:         key.WIFMainnet,
		SignedMessage:      signed,
	})
}

func withNonceStore(c *cli.Context, fn func(store persistence.INonceStore, l *zap.Logger) error) error {
	cfg, l, err := loadClientConfig(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	store, err := factory.NewNonceStore(cfg.Persistence, l)
	if err != nil {
		return fmt.Errorf("failed to open nonce store: %w", err)
	}
	defer func() { _ = store.Close() }()
	return fn(store, l)
}

func nonceShowCommand(c *cli.Context) error {
	return withNonceStore(c, func(store persistence.INonceStore, _ *zap.Logger) error {
		channel, err := channelFromFlags(c)
		if err != nil {
			return err
		}
		state, err := store.LoadChannelState(channel)
		if err != nil {
			return err
		}
		if state == nil {
			return writeLine(c, fmt.Sprintf("no nonce recorded for %s", channel))
		}
		return writeJSON(c, state)
	})
}

func nonceListCommand(c *cli.Context) error {
	return withNonceStore(c, func(store persistence.INonceStore, _ *zap.Logger) error {
		states, err := store.ListChannelStates()
		if err != nil {
			return err
		}
		if owner := c.String("owner"); owner != "" {
			ownerAddress, err := address.ToAddress(owner)
			if err != nil {
				return err
			}
			states = util.Filter(states, func(s *persistence.ChannelState) bool {
				return address.Equal(s.Owner, ownerAddress.Hex())
			})
		}
		if states == nil {
			states = []*persistence.ChannelState{}
		}
		return writeJSON(c, states)
	})
}

func nonceResetCommand(c *cli.Context) error {
	return withNonceStore(c, func(store persistence.INonceStore, l *zap.Logger) error {
		channel, err := channelFromFlags(c)
		if err != nil {
			return err
		}
		if err := store.DeleteChannelState(channel); err != nil {
			return err
		}
		l.Info("Reset channel nonce", zap.String("channel", channel.String()))
		return writeLine(c, fmt.Sprintf("reset %s", channel))
	})
}
