package address

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Layr-Labs/l2qq-cli/pkg/util"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var ErrInvalidAddress = errors.New("invalid address")

// Length is the size of an address in bytes
const Length = common.AddressLength

// Zero is the all-zero address. It also stands for "no token" in channel updates.
var Zero = common.Address{}

var hexAddressPattern = regexp.MustCompile(`^0[xX][A-Fa-f0-9]{40}$`)

// Value is either a raw 20-byte address or its 0x-prefixed hex form
type Value interface {
	string | []byte
}

// IsValidBytes reports whether b is exactly 20 bytes
func IsValidBytes(b []byte) bool {
	return len(b) == Length
}

// IsValidString reports whether s is 0x followed by 40 hex digits, any case
func IsValidString(s string) bool {
	return hexAddressPattern.MatchString(s)
}

func IsValid[T Value](v T) bool {
	switch a := any(v).(type) {
	case string:
		return IsValidString(a)
	case []byte:
		return IsValidBytes(a)
	}
	return false
}

// ToBytes normalizes either representation to a fresh 20-byte slice
func ToBytes[T Value](v T) ([]byte, error) {
	switch a := any(v).(type) {
	case string:
		if !IsValidString(a) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, a)
		}
		return hexutil.MustDecode("0x" + util.NormalizeHex(a)), nil
	case []byte:
		if !IsValidBytes(a) {
			return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, Length, len(a))
		}
		return bytes.Clone(a), nil
	}
	return nil, ErrInvalidAddress
}

// ToAddress is ToBytes returning a common.Address
func ToAddress[T Value](v T) (common.Address, error) {
	b, err := ToBytes(v)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(b), nil
}

// IsEmpty reports whether v is "no address": an empty value or the zero address
func IsEmpty[T Value](v T) bool {
	switch a := any(v).(type) {
	case string:
		return a == "" || (IsValidString(a) && strings.TrimLeft(a[2:], "0") == "")
	case []byte:
		return len(a) == 0 || (IsValidBytes(a) && bytes.Equal(a, Zero.Bytes()))
	}
	return false
}

// Equal compares two addresses in any combination of representations.
// Two empty addresses are equal; an empty and a non-empty address never are;
// an invalid non-empty value is never equal to anything.
func Equal[A Value, B Value](a A, b B) bool {
	emptyA, emptyB := IsEmpty(a), IsEmpty(b)
	if emptyA || emptyB {
		return emptyA && emptyB
	}
	ab, err := ToBytes(a)
	if err != nil {
		return false
	}
	bb, err := ToBytes(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// ToChecksum returns the EIP-55 mixed-case hex form of a valid address
func ToChecksum[T Value](v T) (string, error) {
	addr, err := ToAddress(v)
	if err != nil {
		return "", err
	}
	return addr.Hex(), nil
}
