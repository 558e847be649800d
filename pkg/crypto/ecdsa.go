package crypto

import (
	"bytes"
	"crypto/ecdsa"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrRecoveryFailed    = errors.New("public key recovery failed")
)

const (
	PrivateKeyLength = 32

	CompressedPublicKeyLength   = 33
	RawPublicKeyLength          = 64 // uncompressed without the 0x04 prefix
	UncompressedPublicKeyLength = 65

	SignatureComponentLength = 32

	// RecoveryIDOffset is added to the recovery id to form v
	RecoveryIDOffset = 27
	MinV             = RecoveryIDOffset
	MaxV             = RecoveryIDOffset + 3
)

// Signature is a recoverable secp256k1 signature. V is the recovery id + 27.
type Signature struct {
	V byte   `json:"v"`
	R []byte `json:"r"`
	S []byte `json:"s"`
}

// Validate checks the shape of the signature: v in [27,30], 32-byte r and s
func (s *Signature) Validate() error {
	if s == nil {
		return errors.Wrap(ErrInvalidSignature, "signature is nil")
	}
	if s.V < MinV || s.V > MaxV {
		return errors.Wrapf(ErrInvalidSignature, "v must be in [%d, %d], got %d", MinV, MaxV, s.V)
	}
	if len(s.R) != SignatureComponentLength {
		return errors.Wrapf(ErrInvalidSignature, "r must be %d bytes, got %d", SignatureComponentLength, len(s.R))
	}
	if len(s.S) != SignatureComponentLength {
		return errors.Wrapf(ErrInvalidSignature, "s must be %d bytes, got %d", SignatureComponentLength, len(s.S))
	}
	return nil
}

// RecoveryID returns v - 27
func (s *Signature) RecoveryID() byte {
	return s.V - RecoveryIDOffset
}

// Equal compares all three components
func (s *Signature) Equal(other *Signature) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.V == other.V && bytes.Equal(s.R, other.R) && bytes.Equal(s.S, other.S)
}

// MessageSignature is the signature of a message together with the digest that was signed
type MessageSignature struct {
	Signature
	DataHash []byte `json:"dataHash"`
}

// ParsePrivateKey validates a raw private key. Besides the length it rejects
// zero and scalars not below the curve order.
func ParsePrivateKey(privateKey []byte) (*ecdsa.PrivateKey, error) {
	if len(privateKey) != PrivateKeyLength {
		return nil, errors.Wrapf(ErrInvalidPrivateKey, "expected %d bytes, got %d", PrivateKeyLength, len(privateKey))
	}
	key, err := ethcrypto.ToECDSA(privateKey)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPrivateKey, "%v", err)
	}
	return key, nil
}

// DerivePublicKey returns the 33-byte compressed or 65-byte uncompressed public key
func DerivePublicKey(privateKey []byte, compressed bool) ([]byte, error) {
	key, err := ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return serializePublicKey(&key.PublicKey, compressed), nil
}

func serializePublicKey(pub *ecdsa.PublicKey, compressed bool) []byte {
	if compressed {
		return ethcrypto.CompressPubkey(pub)
	}
	return ethcrypto.FromECDSAPub(pub)
}

// SignHash signs a 32-byte digest. Nonces are derived deterministically
// (RFC 6979) and s is normalized to the lower half of the curve order.
func SignHash(hash []byte, privateKey []byte) (*Signature, error) {
	if len(hash) != HashLength {
		return nil, errors.Wrapf(ErrInvalidInput, "hash must be %d bytes, got %d", HashLength, len(hash))
	}
	key, err := ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}

	// [R || S || recovery id]
	sig, err := ethcrypto.Sign(hash, key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign hash")
	}
	return &Signature{
		V: sig[64] + RecoveryIDOffset,
		R: sig[:32],
		S: sig[32:64],
	}, nil
}

// SignMessage signs keccak256(message)
func SignMessage(message []byte, privateKey []byte) (*MessageSignature, error) {
	dataHash := Keccak256(message)
	sig, err := SignHash(dataHash, privateKey)
	if err != nil {
		return nil, err
	}
	return &MessageSignature{
		Signature: *sig,
		DataHash:  dataHash,
	}, nil
}

// RecoverPublicKey recovers the signer's public key from a digest and signature
func RecoverPublicKey(hash []byte, v byte, r, s []byte, compressed bool) ([]byte, error) {
	if len(hash) != HashLength {
		return nil, errors.Wrapf(ErrInvalidInput, "hash must be %d bytes, got %d", HashLength, len(hash))
	}
	sig := &Signature{V: v, R: r, S: s}
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	raw := make([]byte, 0, 65)
	raw = append(raw, r...)
	raw = append(raw, s...)
	raw = append(raw, sig.RecoveryID())

	pub, err := ethcrypto.SigToPub(hash, raw)
	if err != nil {
		return nil, errors.Wrapf(ErrRecoveryFailed, "%v", err)
	}
	return serializePublicKey(pub, compressed), nil
}

// RecoverPublicKeyFromData is RecoverPublicKey over keccak256(data)
func RecoverPublicKeyFromData(data []byte, v byte, r, s []byte, compressed bool) ([]byte, error) {
	return RecoverPublicKey(Keccak256(data), v, r, s, compressed)
}
