package crypto

import (
	"crypto/sha256"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required for qtum-style address derivation
)

// HashLength is the size of SHA-256 and Keccak-256 digests
const HashLength = 32

// Ripemd160Length is the size of a RIPEMD-160 digest
const Ripemd160Length = 20

func Sha256(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// Keccak256 is the pre-standard SHA-3 variant used by EVM chains
func Keccak256(data []byte) []byte {
	return ethcrypto.Keccak256(data)
}

func Ripemd160(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data)
	return h.Sum(nil)
}

// Hash160 is RIPEMD-160(SHA-256(data))
func Hash160(data []byte) []byte {
	return Ripemd160(Sha256(data))
}
