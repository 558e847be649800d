package persistence

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Layr-Labs/l2qq-cli/pkg/address"
	"github.com/Layr-Labs/l2qq-cli/pkg/numeric"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrClosed             = errors.New("persistence layer is closed")
	ErrNonceNotIncreasing = errors.New("nonce must be greater than the last saved nonce")
	ErrInvalidNonce       = errors.New("nonce must be an unsigned 256-bit integer")
)

// ChannelKey identifies a payment channel. The zero token is the native currency.
type ChannelKey struct {
	Owner common.Address
	Token common.Address
}

func NewChannelKey(owner common.Address, token *common.Address) ChannelKey {
	key := ChannelKey{Owner: owner}
	if token != nil {
		key.Token = *token
	}
	return key
}

// String is the storage key: lowercase owner and token joined by a colon
func (k ChannelKey) String() string {
	return strings.ToLower(k.Owner.Hex()) + ":" + strings.ToLower(k.Token.Hex())
}

// ParseChannelKey is the inverse of ChannelKey.String
func ParseChannelKey(s string) (ChannelKey, error) {
	owner, token, ok := strings.Cut(s, ":")
	if !ok {
		return ChannelKey{}, fmt.Errorf("malformed channel key %q", s)
	}
	o, err := address.ToAddress(owner)
	if err != nil {
		return ChannelKey{}, fmt.Errorf("malformed channel owner: %w", err)
	}
	tk, err := address.ToAddress(token)
	if err != nil {
		return ChannelKey{}, fmt.Errorf("malformed channel token: %w", err)
	}
	return ChannelKey{Owner: o, Token: tk}, nil
}

// ChannelState is the stored record of a channel
type ChannelState struct {
	Owner string `json:"owner"`
	Token string `json:"token"`
	// Nonce is a decimal string since it may exceed 64 bits
	Nonce     string `json:"nonce"`
	UpdatedAt int64  `json:"updatedAt"`
}

func NewChannelState(channel ChannelKey, nonce *big.Int) *ChannelState {
	return &ChannelState{
		Owner:     strings.ToLower(channel.Owner.Hex()),
		Token:     strings.ToLower(channel.Token.Hex()),
		Nonce:     nonce.String(),
		UpdatedAt: time.Now().Unix(),
	}
}

func (s *ChannelState) Key() (ChannelKey, error) {
	return ParseChannelKey(s.Owner + ":" + s.Token)
}

func (s *ChannelState) NonceValue() (*big.Int, error) {
	n, ok := new(big.Int).SetString(s.Nonce, 10)
	if !ok {
		return nil, fmt.Errorf("malformed stored nonce %q", s.Nonce)
	}
	return n, nil
}

// ValidateNonce checks that nonce fits the channel update nonce field
func ValidateNonce(nonce *big.Int) error {
	if nonce == nil || !numeric.IsUint256(nonce) {
		return ErrInvalidNonce
	}
	return nil
}

// CheckNonceAdvance fails unless nonce is greater than the one in existing.
// A nil existing state accepts any valid nonce.
func CheckNonceAdvance(existing *ChannelState, nonce *big.Int) error {
	if err := ValidateNonce(nonce); err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	last, err := existing.NonceValue()
	if err != nil {
		return err
	}
	if nonce.Cmp(last) <= 0 {
		return fmt.Errorf("%w: last %s, got %s", ErrNonceNotIncreasing, last, nonce)
	}
	return nil
}
