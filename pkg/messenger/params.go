package messenger

import (
	"fmt"
	"math/big"

	"github.com/Layr-Labs/l2qq-cli/pkg/address"
	"github.com/Layr-Labs/l2qq-cli/pkg/numeric"
	"github.com/ethereum/go-ethereum/common"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// ChannelUpdateParams is a channel update as entered by a user. Addresses are
// 0x hex, integers are decimal or 0x hex. An empty Token means no token and an
// empty Free means zero.
type ChannelUpdateParams struct {
	ChannelOwner string `json:"channelOwner"`
	Token        string `json:"token,omitempty"`
	Change       string `json:"change"`
	Nonce        string `json:"nonce"`
	Apply        bool   `json:"apply,omitempty"`
	Free         string `json:"free,omitempty"`
}

// Validate reports every invalid field, in wire order
func (p *ChannelUpdateParams) Validate() error {
	_, allErrs := p.parse()
	return asValidationError(allErrs)
}

// ToChannelUpdate validates and converts the params
func (p *ChannelUpdateParams) ToChannelUpdate() (*ChannelUpdate, error) {
	u, allErrs := p.parse()
	if err := asValidationError(allErrs); err != nil {
		return nil, err
	}
	return u, nil
}

func (p *ChannelUpdateParams) parse() (*ChannelUpdate, field.ErrorList) {
	var allErrs field.ErrorList
	u := &ChannelUpdate{Apply: p.Apply}

	ownerPath := field.NewPath("channelOwner")
	if p.ChannelOwner == "" {
		allErrs = append(allErrs, field.Required(ownerPath, "channel owner is required"))
	} else if owner, err := address.ToAddress(p.ChannelOwner); err != nil {
		allErrs = append(allErrs, field.Invalid(ownerPath, p.ChannelOwner, "must be a 0x-prefixed 20-byte hex address"))
	} else {
		u.ChannelOwner = owner
	}

	if p.Token != "" {
		token, err := address.ToAddress(p.Token)
		if err != nil {
			allErrs = append(allErrs, field.Invalid(field.NewPath("token"), p.Token, "must be empty or a 0x-prefixed 20-byte hex address"))
		} else {
			u.Token = &token
		}
	}

	var errs field.ErrorList
	u.Change, errs = parseInteger(field.NewPath("change"), p.Change, true, numeric.IsInt256, "must be a signed 256-bit integer")
	allErrs = append(allErrs, errs...)

	u.Nonce, errs = parseInteger(field.NewPath("nonce"), p.Nonce, true, numeric.IsUint256, "must be an unsigned 256-bit integer")
	allErrs = append(allErrs, errs...)

	u.Free, errs = parseInteger(field.NewPath("free"), p.Free, false, numeric.IsUint256, "must be an unsigned 256-bit integer")
	allErrs = append(allErrs, errs...)
	if u.Free == nil {
		u.Free = new(big.Int)
	}

	return u, allErrs
}

func parseInteger(path *field.Path, value string, required bool, inRange func(*big.Int) bool, rangeMsg string) (*big.Int, field.ErrorList) {
	if value == "" {
		if required {
			return nil, field.ErrorList{field.Required(path, fmt.Sprintf("%s is required", path.String()))}
		}
		return nil, nil
	}
	v, err := numeric.ToBigInt(value)
	if err != nil {
		return nil, field.ErrorList{field.Invalid(path, value, "must be a decimal or 0x-prefixed hex integer")}
	}
	if !inRange(v) {
		return nil, field.ErrorList{field.Invalid(path, value, rangeMsg)}
	}
	return v, nil
}

// SerializeChannelUpdateParams validates and serializes in one call
func SerializeChannelUpdateParams(p *ChannelUpdateParams) ([]byte, error) {
	u, err := p.ToChannelUpdate()
	if err != nil {
		return nil, err
	}
	return SerializeChannelUpdate(u)
}

// ChannelUpdateToParams renders an update back into user-facing strings
func ChannelUpdateToParams(u *ChannelUpdate) *ChannelUpdateParams {
	p := &ChannelUpdateParams{
		ChannelOwner: u.ChannelOwner.Hex(),
		Apply:        u.Apply,
	}
	if token := u.TokenOrZero(); token != (common.Address{}) {
		p.Token = token.Hex()
	}
	if u.Change != nil {
		p.Change = u.Change.String()
	}
	if u.Nonce != nil {
		p.Nonce = u.Nonce.String()
	}
	p.Free = u.freeOrZero().String()
	return p
}
