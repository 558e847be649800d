package persistence

import "math/big"

// LoadNonce returns the last saved nonce, or nil for an unseen channel
func LoadNonce(store INonceStore, channel ChannelKey) (*big.Int, error) {
	state, err := store.LoadChannelState(channel)
	if err != nil || state == nil {
		return nil, err
	}
	return state.NonceValue()
}

// NextNonce returns the last saved nonce plus one, or 1 for an unseen channel.
// It does not reserve the nonce; call SaveNonce once the update is signed.
func NextNonce(store INonceStore, channel ChannelKey) (*big.Int, error) {
	last, err := LoadNonce(store, channel)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return big.NewInt(1), nil
	}
	next := new(big.Int).Add(last, big.NewInt(1))
	if err := ValidateNonce(next); err != nil {
		return nil, err
	}
	return next, nil
}
