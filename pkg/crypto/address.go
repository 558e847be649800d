package crypto

import (
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// EthereumAddress derives the EVM address of a private key: the last 20
// bytes of keccak256 over the uncompressed public key without its prefix.
func EthereumAddress(privateKey []byte) (common.Address, error) {
	pub, err := DerivePublicKey(privateKey, false)
	if err != nil {
		return common.Address{}, err
	}
	return EthereumAddressFromPublicKey(pub)
}

// EthereumAddressFromPublicKey accepts a 65-byte uncompressed key or its
// 64-byte form without the 0x04 prefix.
func EthereumAddressFromPublicKey(publicKey []byte) (common.Address, error) {
	var raw []byte
	switch len(publicKey) {
	case UncompressedPublicKeyLength:
		raw = publicKey[1:]
	case RawPublicKeyLength:
		raw = publicKey
	default:
		return common.Address{}, errors.Wrapf(ErrInvalidPublicKey, "expected %d or %d bytes, got %d",
			RawPublicKeyLength, UncompressedPublicKeyLength, len(publicKey))
	}
	return common.BytesToAddress(Keccak256(raw)[12:]), nil
}

// QtumStyleAddress derives the UTXO-style address of a private key:
// ripemd160(sha256(compressed public key)).
func QtumStyleAddress(privateKey []byte) (common.Address, error) {
	pub, err := DerivePublicKey(privateKey, true)
	if err != nil {
		return common.Address{}, err
	}
	return QtumStyleAddressFromPublicKey(pub)
}

// QtumStyleAddressFromPublicKey accepts a compressed key, or an uncompressed
// one (64 or 65 bytes) which is compressed first.
func QtumStyleAddressFromPublicKey(publicKey []byte) (common.Address, error) {
	compressed, err := compressRawPublicKey(publicKey)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(Hash160(compressed)), nil
}

func compressRawPublicKey(publicKey []byte) ([]byte, error) {
	var x []byte
	var yParity byte
	switch len(publicKey) {
	case CompressedPublicKeyLength:
		if publicKey[0] != 0x02 && publicKey[0] != 0x03 {
			return nil, errors.Wrapf(ErrInvalidPublicKey, "bad compressed prefix 0x%02x", publicKey[0])
		}
		return publicKey, nil
	case RawPublicKeyLength:
		x, yParity = publicKey[:32], publicKey[63]&1
	case UncompressedPublicKeyLength:
		if publicKey[0] != 0x04 {
			return nil, errors.Wrapf(ErrInvalidPublicKey, "bad uncompressed prefix 0x%02x", publicKey[0])
		}
		x, yParity = publicKey[1:33], publicKey[64]&1
	default:
		return nil, errors.Wrapf(ErrInvalidPublicKey, "unexpected length %d", len(publicKey))
	}

	out := make([]byte, 0, CompressedPublicKeyLength)
	out = append(out, 0x02+yParity)
	return append(out, x...), nil
}

// QtumAddressFromHash160 base58check-encodes a 20-byte hash under a version byte
func QtumAddressFromHash160(hash []byte, version byte) (string, error) {
	if len(hash) != Ripemd160Length {
		return "", errors.Wrapf(ErrInvalidInput, "hash160 must be %d bytes, got %d", Ripemd160Length, len(hash))
	}
	return base58.CheckEncode(hash, version), nil
}

// QtumAddressFromWIF derives the base58 address for the key in a WIF string
func QtumAddressFromWIF(wif string, addressVersion byte) (string, error) {
	key, err := DecodeWIF(wif)
	if err != nil {
		return "", err
	}
	addr, err := QtumStyleAddress(key.PrivateKey)
	if err != nil {
		return "", err
	}
	return QtumAddressFromHash160(addr.Bytes(), addressVersion)
}

// QtumAddressToEthereumAddress returns the 20-byte hash carried by a base58
// address. It is the same hash the node expects in the signer field.
func QtumAddressToEthereumAddress(qtumAddress string) (common.Address, byte, error) {
	payload, version, err := base58.CheckDecode(qtumAddress)
	if err != nil {
		return common.Address{}, 0, errors.Wrapf(ErrInvalidInput, "bad base58 address %q: %v", qtumAddress, err)
	}
	if len(payload) != common.AddressLength {
		return common.Address{}, 0, errors.Wrapf(ErrInvalidInput, "address payload must be %d bytes, got %d", common.AddressLength, len(payload))
	}
	return common.BytesToAddress(payload), version, nil
}
