package numeric

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strings"

	"github.com/holiman/uint256"
)

var (
	ErrInvalidNumericInput = errors.New("invalid numeric input")
	ErrOutOfRange          = errors.New("value out of range")
	ErrUnsupportedDecimals = errors.New("unsupported decimals")
)

// Int256Size is the width of every encoded int256/uint256 value
const Int256Size = 32

var (
	big1 = big.NewInt(1)

	// MinInt256 is -2^255
	MinInt256 = new(big.Int).Neg(new(big.Int).Lsh(big1, 255))
	// MaxInt256 is 2^255 - 1
	MaxInt256 = new(big.Int).Sub(new(big.Int).Lsh(big1, 255), big1)
	// MaxUint256 is 2^256 - 1
	MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big1, 256), big1)

	twoTo256 = new(big.Int).Lsh(big1, 256)
)

var (
	decimalIntegralPattern = regexp.MustCompile(`^-?[0-9]*$`)
	hexIntegralPattern     = regexp.MustCompile(`^-?0[xX][0-9a-fA-F]*$`)
	bareHexPattern         = regexp.MustCompile(`^-?[0-9a-fA-F]*$`)
)

// IsDecimalIntegral reports whether s is an optionally negative run of decimal digits
func IsDecimalIntegral(s string) bool {
	return decimalIntegralPattern.MatchString(s)
}

// IsHexIntegral reports whether s is an optionally negative 0x-prefixed hex integer
func IsHexIntegral(s string) bool {
	return hexIntegralPattern.MatchString(s)
}

// ToBigInt converts value into a new big.Int. Supported inputs are decimal
// strings, 0x/-0x hex strings, big-endian byte slices, *big.Int, *uint256.Int,
// Go integer types and integral float64 values.
// Strings without any digit ("", "-", "0x") are rejected.
func ToBigInt(value any) (*big.Int, error) {
	switch v := value.(type) {
	case string:
		return parseIntegerString(v)
	case []byte:
		return new(big.Int).SetBytes(v), nil
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("%w: nil big.Int", ErrInvalidNumericInput)
		}
		return new(big.Int).Set(v), nil
	case *uint256.Int:
		if v == nil {
			return nil, fmt.Errorf("%w: nil uint256", ErrInvalidNumericInput)
		}
		return v.ToBig(), nil
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return nil, fmt.Errorf("%w: %v is not an integer", ErrInvalidNumericInput, v)
		}
		i, _ := new(big.Float).SetFloat64(v).Int(nil)
		return i, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidNumericInput, value)
	}
}

func parseIntegerString(s string) (*big.Int, error) {
	var (
		digits string
		base   int
	)
	switch {
	case IsHexIntegral(s):
		digits, base = s, 16
		if strings.HasPrefix(digits, "-") {
			digits = "-" + digits[3:]
		} else {
			digits = digits[2:]
		}
	case IsDecimalIntegral(s):
		digits, base = s, 10
	default:
		return nil, fmt.Errorf("%w: %q is neither a decimal nor a hex integer", ErrInvalidNumericInput, s)
	}

	if strings.TrimPrefix(digits, "-") == "" {
		return nil, fmt.Errorf("%w: %q has no digits", ErrInvalidNumericInput, s)
	}
	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("%w: failed to parse %q", ErrInvalidNumericInput, s)
	}
	return v, nil
}

// IsInt256 reports whether v lies in [-2^255, 2^255-1]
func IsInt256(v *big.Int) bool {
	return v != nil && v.Cmp(MinInt256) >= 0 && v.Cmp(MaxInt256) <= 0
}

// IsUint256 reports whether v lies in [0, 2^256-1]
func IsUint256(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(MaxUint256) <= 0
}

// Int256FromDecimalOrBig maps a signed integer onto the unsigned 256-bit
// encoding space: negative values become 2^256 + value.
func Int256FromDecimalOrBig(value any) (*big.Int, error) {
	v, err := ToBigInt(value)
	if err != nil {
		return nil, err
	}
	if !IsInt256(v) {
		return nil, fmt.Errorf("%w: %s is outside the int256 range", ErrOutOfRange, v)
	}
	if v.Sign() < 0 {
		return v.Add(v, twoTo256), nil
	}
	return v, nil
}

// Int256FromHex is Int256FromDecimalOrBig for a bare hex string with an
// optional leading minus and no 0x prefix, e.g. "-ff".
func Int256FromHex(s string) (*big.Int, error) {
	if len(s) > 2*Int256Size+1 || !bareHexPattern.MatchString(s) {
		return nil, fmt.Errorf("%w: %q is not a bare hex integer", ErrInvalidNumericInput, s)
	}
	if strings.HasPrefix(s, "-") {
		return Int256FromDecimalOrBig("-0x" + s[1:])
	}
	return Int256FromDecimalOrBig("0x" + s)
}

// Int256ToBytes encodes an unsigned 256-bit value as exactly 32 big-endian bytes
func Int256ToBytes(v *big.Int) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil value", ErrInvalidNumericInput)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s is negative", ErrOutOfRange, v)
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("%w: %s exceeds 2^256-1", ErrOutOfRange, v)
	}
	b := u.Bytes32()
	return b[:], nil
}

// Int256ToHex is Int256ToBytes rendered as 64 lowercase hex characters
func Int256ToHex(v *big.Int) (string, error) {
	b, err := Int256ToBytes(v)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Uint256FromBytes decodes 32 big-endian bytes as an unsigned value
func Uint256FromBytes(b []byte) (*big.Int, error) {
	if len(b) != Int256Size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidNumericInput, Int256Size, len(b))
	}
	return new(uint256.Int).SetBytes32(b).ToBig(), nil
}

// Int256FromBytes decodes 32 big-endian bytes as a two's complement signed value
func Int256FromBytes(b []byte) (*big.Int, error) {
	u, err := Uint256FromBytes(b)
	if err != nil {
		return nil, err
	}
	if u.Cmp(MaxInt256) > 0 {
		return u.Sub(u, twoTo256), nil
	}
	return u, nil
}
