package main

import (
	"io"
	"log"
	"os"

	"github.com/Layr-Labs/l2qq-cli/pkg/config"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func keyFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "key",
		Usage:    "Private key, 64 hex characters with optional 0x prefix",
		EnvVars:  []string{config.EnvL2QQPrivateKey},
		Required: required,
	}
}

func ownerFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "owner",
		Usage:    "Channel owner address (0x hex)",
		Required: true,
	}
}

func tokenFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "token",
		Usage: "Token address (0x hex); empty for the native currency",
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "l2qq",
		Usage: "Sign messages for the l2qq exchange node",
		Description: `Builds and signs the binary messages accepted by the exchange's L2 node.

Signed messages are packed as message | signer(20) | v(1) | r(32) | s(32) and
printed as lowercase hex without a 0x prefix.`,
		Version: "1.0.0",
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "convention",
				Usage:   "Signer address convention: evm or utxo",
				EnvVars: []string{config.EnvL2QQConvention},
				Value:   config.ChainConventionEVM.String(),
			},
			&cli.StringFlag{
				Name:    "network",
				Usage:   "Network for WIF and base58 addresses: mainnet or testnet",
				EnvVars: []string{config.EnvL2QQNetwork},
				Value:   config.NetworkTestnet.String(),
			},
			&cli.StringFlag{
				Name:    "persistence-type",
				Usage:   "Nonce store backend: memory, badger or redis",
				EnvVars: []string{config.EnvL2QQPersistenceType},
				Value:   string(config.PersistenceTypeBadger),
			},
			&cli.StringFlag{
				Name:    "data-path",
				Usage:   "Badger data directory",
				EnvVars: []string{config.EnvL2QQDataPath},
				Value:   config.DefaultDataPath,
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Redis host:port",
				EnvVars: []string{config.EnvL2QQRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				EnvVars: []string{config.EnvL2QQRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				EnvVars: []string{config.EnvL2QQRedisDB},
			},
			&cli.StringFlag{
				Name:    "redis-key-prefix",
				Usage:   "Prefix for every redis key, for sharing one server between desks",
				EnvVars: []string{config.EnvL2QQRedisKeyPrefix},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable debug logging",
				EnvVars: []string{config.EnvL2QQVerbose},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "sign",
				Usage: "Sign a hex serialized message",
				Flags: []cli.Flag{
					keyFlag(true),
					&cli.StringFlag{
						Name:     "message",
						Usage:    "Serialized message as hex; may be empty",
						Required: true,
					},
				},
				Action: signCommand,
			},
			{
				Name:  "channel-update",
				Usage: "Build and sign a payment channel update",
				Flags: []cli.Flag{
					keyFlag(false),
					ownerFlag(),
					tokenFlag(),
					&cli.StringFlag{
						Name:     "change",
						Usage:    "Signed balance change in atomic units",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "nonce",
						Usage: "Nonce; taken from the nonce store when omitted",
					},
					&cli.BoolFlag{
						Name:  "apply",
						Usage: "Apply flag, only honoured for the contract owner",
					},
					&cli.StringFlag{
						Name:  "free",
						Usage: "Free amount, only honoured for the contract owner",
					},
					&cli.BoolFlag{
						Name:  "no-sign",
						Usage: "Print the 137-byte serialized update without signing",
					},
				},
				Action: channelUpdateCommand,
			},
			{
				Name:  "verify",
				Usage: "Check that a packed message was signed by its embedded signer",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "packed",
						Usage:    "Packed signed message as hex",
						Required: true,
					},
				},
				Action: verifyCommand,
			},
			{
				Name:   "address",
				Usage:  "Print the addresses of a private key",
				Flags:  []cli.Flag{keyFlag(true)},
				Action: addressCommand,
			},
			{
				Name:  "wif",
				Usage: "Wallet import format helpers",
				Subcommands: []*cli.Command{
					{
						Name:  "encode",
						Usage: "Encode a private key as WIF",
						Flags: []cli.Flag{
							keyFlag(true),
							&cli.BoolFlag{
								Name:  "uncompressed",
								Usage: "Mark the key for an uncompressed public key",
							},
						},
						Action: wifEncodeCommand,
					},
					{
						Name:  "decode",
						Usage: "Decode a WIF private key",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "wif",
								Required: true,
							},
						},
						Action: wifDecodeCommand,
					},
				},
			},
			{
				Name:  "convert",
				Usage: "Convert between atomic units and decimal amounts",
				Subcommands: []*cli.Command{
					{
						Name:   "to-decimal",
						Usage:  "Atomic units to a decimal amount",
						Flags:  convertFlags(),
						Action: toDecimalCommand,
					},
					{
						Name:   "to-atomic",
						Usage:  "Decimal amount to atomic units, truncating extra digits",
						Flags:  convertFlags(),
						Action: toAtomicCommand,
					},
				},
			},
			{
				Name:  "keygen",
				Usage: "Generate a new secp256k1 key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Label for the key",
						Value: "default",
					},
					&cli.StringFlag{
						Name:  "sign-message",
						Usage: "Serialized message as hex to sign with the new key",
					},
				},
				Action: keygenCommand,
			},
			{
				Name:  "nonce",
				Usage: "Inspect the nonce store",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Show the last nonce of a channel",
						Flags:  []cli.Flag{ownerFlag(), tokenFlag()},
						Action: nonceShowCommand,
					},
					{
						Name:  "list",
						Usage: "List tracked channels",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "owner",
								Usage: "Only list channels of this owner",
							},
						},
						Action: nonceListCommand,
					},
					{
						Name:   "reset",
						Usage:  "Forget the nonce of a channel",
						Flags:  []cli.Flag{ownerFlag(), tokenFlag()},
						Action: nonceResetCommand,
					},
				},
			},
		},
	}
}

func convertFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "amount",
			Required: true,
		},
		&cli.IntFlag{
			Name:     "decimals",
			Usage:    "Currency decimals, 0 to 30",
			Required: true,
		},
	}
}
