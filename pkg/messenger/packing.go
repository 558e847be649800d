package messenger

import (
	"bytes"
	"fmt"

	"github.com/Layr-Labs/l2qq-cli/pkg/address"
	"github.com/Layr-Labs/l2qq-cli/pkg/crypto"
	"github.com/ethereum/go-ethereum/common"
)

// SignedSuffixLength is signer(20) | v(1) | r(32) | s(32)
const SignedSuffixLength = address.Length + 1 + 2*crypto.SignatureComponentLength

// SignedMessage is a message together with who signed it and how
type SignedMessage struct {
	Message   []byte
	Signer    common.Address
	Signature crypto.Signature
}

// PackSignedMessage concatenates message | signer | v | r | s
func PackSignedMessage(message []byte, signer []byte, signature *crypto.Signature) ([]byte, error) {
	if !address.IsValidBytes(signer) {
		return nil, fmt.Errorf("%w: signer must be %d bytes, got %d", ErrValidation, address.Length, len(signer))
	}
	if err := signature.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	out := make([]byte, 0, len(message)+SignedSuffixLength)
	out = append(out, message...)
	out = append(out, signer...)
	out = append(out, signature.V)
	out = append(out, signature.R...)
	out = append(out, signature.S...)
	return out, nil
}

// UnpackSignedMessage splits a packed message. Everything before the trailing
// 85 bytes is the message, which may be empty. The returned slices are copies.
func UnpackSignedMessage(packed []byte) (*SignedMessage, error) {
	if len(packed) < SignedSuffixLength {
		return nil, fmt.Errorf("%w: packed message must be at least %d bytes, got %d", ErrInvalidLength, SignedSuffixLength, len(packed))
	}
	n := len(packed) - SignedSuffixLength
	signerEnd := n + address.Length
	rEnd := signerEnd + 1 + crypto.SignatureComponentLength

	return &SignedMessage{
		Message: bytes.Clone(packed[:n:n]),
		Signer:  common.BytesToAddress(packed[n:signerEnd]),
		Signature: crypto.Signature{
			V: packed[signerEnd],
			R: bytes.Clone(packed[signerEnd+1 : rEnd]),
			S: bytes.Clone(packed[rEnd:]),
		},
	}, nil
}

// Pack is PackSignedMessage on an unpacked value
func (m *SignedMessage) Pack() ([]byte, error) {
	return PackSignedMessage(m.Message, m.Signer.Bytes(), &m.Signature)
}
