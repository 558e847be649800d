package persistence

import "math/big"

// INonceStore remembers the last nonce signed for each payment channel so
// consecutive channel updates never reuse one.
// All implementations must be safe for concurrent use.
type INonceStore interface {
	// SaveNonce records nonce as the last one used for the channel.
	// Fails with ErrNonceNotIncreasing unless nonce is greater than the stored one.
	SaveNonce(channel ChannelKey, nonce *big.Int) error

	// LoadChannelState returns nil if the channel has never been saved.
	LoadChannelState(channel ChannelKey) (*ChannelState, error)

	// ListChannelStates returns all channels sorted by key.
	ListChannelStates() ([]*ChannelState, error)

	// DeleteChannelState forgets a channel. Idempotent.
	DeleteChannelState(channel ChannelKey) error

	// Close is idempotent. Every other operation fails with ErrClosed afterwards.
	Close() error

	HealthCheck() error
}
