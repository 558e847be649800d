package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/pkg/errors"
)

var ErrInvalidWIF = errors.New("invalid WIF")

// WIFKey is a decoded wallet import format string
type WIFKey struct {
	PrivateKey []byte
	Version    byte
	Compressed bool
}

// EncodeWIF encodes a private key for wallet import under the given version byte
func EncodeWIF(privateKey []byte, version byte, compressed bool) (string, error) {
	if _, err := ParsePrivateKey(privateKey); err != nil {
		return "", err
	}
	priv, _ := btcec.PrivKeyFromBytes(privateKey)

	// only the version byte of the params is used by the encoder
	params := &chaincfg.Params{PrivateKeyID: version}
	wif, err := btcutil.NewWIF(priv, params, compressed)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode WIF")
	}
	return wif.String(), nil
}

// DecodeWIF decodes a WIF string of any version
func DecodeWIF(s string) (*WIFKey, error) {
	wif, err := btcutil.DecodeWIF(s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidWIF, "%v", err)
	}
	key := wif.PrivKey.Serialize()
	if _, err := ParsePrivateKey(key); err != nil {
		return nil, errors.Wrapf(ErrInvalidWIF, "%v", err)
	}
	// btcutil keeps the version private; it is the first decoded byte
	raw := base58.Decode(s)
	return &WIFKey{
		PrivateKey: key,
		Version:    raw[0],
		Compressed: wif.CompressPubKey,
	}, nil
}
