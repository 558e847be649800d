package signer

import (
	"bytes"

	"github.com/Layr-Labs/l2qq-cli/pkg/config"
	"github.com/Layr-Labs/l2qq-cli/pkg/crypto"
	"github.com/Layr-Labs/l2qq-cli/pkg/messenger"
	"github.com/Layr-Labs/l2qq-cli/pkg/util"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	ErrInvalidHexInput = errors.New("invalid hex input")
	ErrSignerMismatch  = errors.New("recovered signer does not match packed signer")
)

// IMessageSigner signs messages for the L2 node with a single key
type IMessageSigner interface {
	// Address is the signer field written into every packed message
	Address() common.Address
	Convention() config.ChainConvention
	// SignSerializedMessage takes and returns hex without a 0x prefix
	SignSerializedMessage(serializedMessageHex string) (string, error)
	SignChannelUpdate(update *messenger.ChannelUpdate) (string, error)
}

// SignerAddress derives the address the node expects for a key under a convention
func SignerAddress(privateKey []byte, convention config.ChainConvention) (common.Address, error) {
	switch convention {
	case config.ChainConventionEVM:
		return crypto.EthereumAddress(privateKey)
	case config.ChainConventionUTXO:
		return crypto.QtumStyleAddress(privateKey)
	}
	return common.Address{}, errors.Errorf("unsupported chain convention %q", convention)
}

func addressFromRecoveredKey(hash []byte, sig *crypto.Signature, convention config.ChainConvention) (common.Address, error) {
	switch convention {
	case config.ChainConventionEVM:
		pub, err := crypto.RecoverPublicKey(hash, sig.V, sig.R, sig.S, false)
		if err != nil {
			return common.Address{}, err
		}
		return crypto.EthereumAddressFromPublicKey(pub)
	case config.ChainConventionUTXO:
		pub, err := crypto.RecoverPublicKey(hash, sig.V, sig.R, sig.S, true)
		if err != nil {
			return common.Address{}, err
		}
		return crypto.QtumStyleAddressFromPublicKey(pub)
	}
	return common.Address{}, errors.Errorf("unsupported chain convention %q", convention)
}

// SignMessage signs raw message bytes and returns message | signer | v | r | s
func SignMessage(message []byte, privateKey []byte, convention config.ChainConvention) ([]byte, error) {
	signerAddress, err := SignerAddress(privateKey, convention)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.SignMessage(message, privateKey)
	if err != nil {
		return nil, err
	}
	return messenger.PackSignedMessage(message, signerAddress.Bytes(), &sig.Signature)
}

// SignSerializedMessage decodes a hex message, signs it with the key and
// returns the packed result as lowercase hex.
func SignSerializedMessage(serializedMessageHex string, privateKey []byte, convention config.ChainConvention) (string, error) {
	message, err := util.DecodeHex(serializedMessageHex)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidHexInput, "%v", err)
	}
	packed, err := SignMessage(message, privateKey, convention)
	if err != nil {
		return "", err
	}
	return util.EncodeHex(packed), nil
}

// VerifyPacked unpacks a signed message and checks that the signature
// recovers to the packed signer under the convention.
func VerifyPacked(packed []byte, convention config.ChainConvention) (*messenger.SignedMessage, error) {
	signed, err := messenger.UnpackSignedMessage(packed)
	if err != nil {
		return nil, err
	}
	recovered, err := addressFromRecoveredKey(crypto.Keccak256(signed.Message), &signed.Signature, convention)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(recovered.Bytes(), signed.Signer.Bytes()) {
		return nil, errors.Wrapf(ErrSignerMismatch, "packed %s, recovered %s", signed.Signer.Hex(), recovered.Hex())
	}
	return signed, nil
}

// VerifyPackedMessage is VerifyPacked on hex input
func VerifyPackedMessage(packedHex string, convention config.ChainConvention) (*messenger.SignedMessage, error) {
	packed, err := util.DecodeHex(packedHex)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidHexInput, "%v", err)
	}
	return VerifyPacked(packed, convention)
}
