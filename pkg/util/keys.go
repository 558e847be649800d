package util

import (
	"errors"
	"fmt"
	"regexp"
)

var ErrInvalidPrivateKeyString = errors.New("invalid private key string")

// privateKeyPattern is the shape the CLI accepts for a private key before decoding
var privateKeyPattern = regexp.MustCompile(`^[0-9A-Za-z]{64}$`)

func ValidatePrivateKeyString(s string) error {
	if !privateKeyPattern.MatchString(Strip0x(s)) {
		return fmt.Errorf("%w: expected 64 alphanumeric characters", ErrInvalidPrivateKeyString)
	}
	return nil
}

// PrivateKeyStringToBytes validates and hex-decodes a private key string
func PrivateKeyStringToBytes(s string) ([]byte, error) {
	if err := ValidatePrivateKeyString(s); err != nil {
		return nil, err
	}
	b, err := DecodeHex(Strip0x(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrivateKeyString, err)
	}
	return b, nil
}
