package messenger

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Layr-Labs/l2qq-cli/pkg/address"
	"github.com/Layr-Labs/l2qq-cli/pkg/numeric"
	"github.com/ethereum/go-ethereum/common"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrInvalidLength = errors.New("invalid length")
)

// Channel update wire layout
const (
	ChannelUpdateLength = 137

	ownerOffset  = 0
	tokenOffset  = ownerOffset + address.Length
	changeOffset = tokenOffset + address.Length
	nonceOffset  = changeOffset + numeric.Int256Size
	applyOffset  = nonceOffset + numeric.Int256Size
	freeOffset   = applyOffset + 1
)

// ChannelUpdate changes the balance of a payment channel identified by its
// owner and token. A nil Token means the chain's native currency and is
// serialized as the zero address.
type ChannelUpdate struct {
	ChannelOwner common.Address
	Token        *common.Address
	// Change is signed
	Change *big.Int
	Nonce  *big.Int
	// Apply and Free are only meaningful when the contract owner signs
	Apply bool
	Free  *big.Int
}

// TokenOrZero returns the token as it appears on the wire
func (u *ChannelUpdate) TokenOrZero() common.Address {
	if u.Token == nil {
		return address.Zero
	}
	return *u.Token
}

// Equal compares two updates as they would be serialized, so a nil token
// equals the zero address token.
func (u *ChannelUpdate) Equal(other *ChannelUpdate) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.ChannelOwner == other.ChannelOwner &&
		u.TokenOrZero() == other.TokenOrZero() &&
		bigEqual(u.Change, other.Change) &&
		bigEqual(u.Nonce, other.Nonce) &&
		u.Apply == other.Apply &&
		bigEqual(u.freeOrZero(), other.freeOrZero())
}

func (u *ChannelUpdate) freeOrZero() *big.Int {
	if u.Free == nil {
		return new(big.Int)
	}
	return u.Free
}

func bigEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

// Validate checks the integer fields of the update and reports every failure
// in wire order. The typed owner and token cannot be malformed here; string
// addresses are checked by ChannelUpdateParams.Validate.
func (u *ChannelUpdate) Validate() error {
	return asValidationError(u.validate())
}

func (u *ChannelUpdate) validate() field.ErrorList {
	var allErrs field.ErrorList

	if u.Change == nil {
		allErrs = append(allErrs, field.Required(field.NewPath("change"), "change is required"))
	} else if !numeric.IsInt256(u.Change) {
		allErrs = append(allErrs, field.Invalid(field.NewPath("change"), u.Change.String(), "must be a signed 256-bit integer"))
	}

	if u.Nonce == nil {
		allErrs = append(allErrs, field.Required(field.NewPath("nonce"), "nonce is required"))
	} else if !numeric.IsUint256(u.Nonce) {
		allErrs = append(allErrs, field.Invalid(field.NewPath("nonce"), u.Nonce.String(), "must be an unsigned 256-bit integer"))
	}

	if u.Free != nil && !numeric.IsUint256(u.Free) {
		allErrs = append(allErrs, field.Invalid(field.NewPath("free"), u.Free.String(), "must be an unsigned 256-bit integer"))
	}
	return allErrs
}

func asValidationError(allErrs field.ErrorList) error {
	if len(allErrs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, allErrs.ToAggregate())
}

// SerializeChannelUpdate produces the 137-byte message
// owner(20) | token(20) | change(32) | nonce(32) | apply(1) | free(32).
// Nothing is produced unless every field is valid.
func SerializeChannelUpdate(u *ChannelUpdate) ([]byte, error) {
	if u == nil {
		return nil, fmt.Errorf("%w: channel update is nil", ErrValidation)
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	encodedChange, err := numeric.Int256FromDecimalOrBig(u.Change)
	if err != nil {
		return nil, fmt.Errorf("%w: change: %w", ErrValidation, err)
	}
	change, err := numeric.Int256ToBytes(encodedChange)
	if err != nil {
		return nil, fmt.Errorf("%w: change: %w", ErrValidation, err)
	}
	nonce, err := numeric.Int256ToBytes(u.Nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %w", ErrValidation, err)
	}
	free, err := numeric.Int256ToBytes(u.freeOrZero())
	if err != nil {
		return nil, fmt.Errorf("%w: free: %w", ErrValidation, err)
	}

	token := u.TokenOrZero()
	var apply byte
	if u.Apply {
		apply = 1
	}

	out := make([]byte, 0, ChannelUpdateLength)
	out = append(out, u.ChannelOwner.Bytes()...)
	out = append(out, token.Bytes()...)
	out = append(out, change...)
	out = append(out, nonce...)
	out = append(out, apply)
	out = append(out, free...)
	return out, nil
}

// DeserializeChannelUpdate is the inverse of SerializeChannelUpdate. The
// token is always set; a zero token cannot be told apart from no token.
func DeserializeChannelUpdate(b []byte) (*ChannelUpdate, error) {
	if len(b) != ChannelUpdateLength {
		return nil, fmt.Errorf("%w: channel update must be %d bytes, got %d", ErrInvalidLength, ChannelUpdateLength, len(b))
	}

	change, err := numeric.Int256FromBytes(b[changeOffset:nonceOffset])
	if err != nil {
		return nil, err
	}
	nonce, err := numeric.Uint256FromBytes(b[nonceOffset:applyOffset])
	if err != nil {
		return nil, err
	}
	free, err := numeric.Uint256FromBytes(b[freeOffset:ChannelUpdateLength])
	if err != nil {
		return nil, err
	}

	token := common.BytesToAddress(b[tokenOffset:changeOffset])
	return &ChannelUpdate{
		ChannelOwner: common.BytesToAddress(b[ownerOffset:tokenOffset]),
		Token:        &token,
		Change:       change,
		Nonce:        nonce,
		Apply:        b[applyOffset] != 0,
		Free:         free,
	}, nil
}

// IsChannelUpdate reports whether a message has the channel update length
func IsChannelUpdate(message []byte) bool {
	return len(message) == ChannelUpdateLength
}

