package util

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

var ErrInvalidHex = errors.New("invalid hex string")

// DecodeHex decodes a hex string with or without a 0x prefix. The empty
// string decodes to an empty slice.
func DecodeHex(s string) ([]byte, error) {
	if !has0xPrefix(s) {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHex, err)
	}
	return b, nil
}

// EncodeHex is lowercase hex without a prefix
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Strip0x removes a leading 0x or 0X
func Strip0x(s string) string {
	if has0xPrefix(s) {
		return s[2:]
	}
	return s
}

// NormalizeHex lowercases and strips the prefix
func NormalizeHex(s string) string {
	return strings.ToLower(Strip0x(s))
}
