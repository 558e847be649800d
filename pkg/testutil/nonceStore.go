package testutil

import (
	"math/big"
	"sync"
	"testing"

	"github.com/Layr-Labs/l2qq-cli/pkg/numeric"
	"github.com/Layr-Labs/l2qq-cli/pkg/persistence"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testOwner = common.HexToAddress("0x1a642f0e3c3af545e7acbd38b07251b3990914f1")
	testToken = common.HexToAddress("0x9d8a62f656a8d1615c1294fd71e9cfb3e4855a4f")
)

// RunNonceStoreTests runs the behaviour every INonceStore backend must share.
// newStore must return a fresh, empty store; the suite closes it.
func RunNonceStoreTests(t *testing.T, newStore func(t *testing.T) persistence.INonceStore) {
	native := persistence.NewChannelKey(testOwner, nil)
	token := persistence.NewChannelKey(testOwner, &testToken)

	t.Run("unseen channel", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		state, err := store.LoadChannelState(native)
		require.NoError(t, err)
		assert.Nil(t, state)

		next, err := persistence.NextNonce(store, native)
		require.NoError(t, err)
		assert.Equal(t, int64(1), next.Int64())
	})

	t.Run("save and load", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.SaveNonce(native, big.NewInt(5)))

		state, err := store.LoadChannelState(native)
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Equal(t, "5", state.Nonce)
		assert.Equal(t, "0x1a642f0e3c3af545e7acbd38b07251b3990914f1", state.Owner)
		assert.Equal(t, "0x0000000000000000000000000000000000000000", state.Token)
		assert.NotZero(t, state.UpdatedAt)

		key, err := state.Key()
		require.NoError(t, err)
		assert.Equal(t, native, key)

		last, err := persistence.LoadNonce(store, native)
		require.NoError(t, err)
		assert.Equal(t, int64(5), last.Int64())

		next, err := persistence.NextNonce(store, native)
		require.NoError(t, err)
		assert.Equal(t, int64(6), next.Int64())
	})

	t.Run("nonce must increase", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.SaveNonce(native, big.NewInt(10)))
		require.ErrorIs(t, store.SaveNonce(native, big.NewInt(10)), persistence.ErrNonceNotIncreasing)
		require.ErrorIs(t, store.SaveNonce(native, big.NewInt(3)), persistence.ErrNonceNotIncreasing)
		require.NoError(t, store.SaveNonce(native, big.NewInt(11)))

		last, err := persistence.LoadNonce(store, native)
		require.NoError(t, err)
		assert.Equal(t, int64(11), last.Int64())
	})

	t.Run("nonce range", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		require.ErrorIs(t, store.SaveNonce(native, big.NewInt(-1)), persistence.ErrInvalidNonce)
		require.ErrorIs(t, store.SaveNonce(native, nil), persistence.ErrInvalidNonce)
		tooLarge := new(big.Int).Add(numeric.MaxUint256, big.NewInt(1))
		require.ErrorIs(t, store.SaveNonce(native, tooLarge), persistence.ErrInvalidNonce)

		require.NoError(t, store.SaveNonce(native, numeric.MaxUint256))
		_, err := persistence.NextNonce(store, native)
		require.ErrorIs(t, err, persistence.ErrInvalidNonce)
	})

	t.Run("channels are independent", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.SaveNonce(native, big.NewInt(7)))
		require.NoError(t, store.SaveNonce(token, big.NewInt(2)))

		states, err := store.ListChannelStates()
		require.NoError(t, err)
		require.Len(t, states, 2)
		assert.Equal(t, "7", states[0].Nonce, "zero token sorts first")
		assert.Equal(t, "2", states[1].Nonce)
		assert.Equal(t, "0x9d8a62f656a8d1615c1294fd71e9cfb3e4855a4f", states[1].Token)
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.SaveNonce(native, big.NewInt(9)))
		require.NoError(t, store.DeleteChannelState(native))
		require.NoError(t, store.DeleteChannelState(native))

		state, err := store.LoadChannelState(native)
		require.NoError(t, err)
		assert.Nil(t, state)

		states, err := store.ListChannelStates()
		require.NoError(t, err)
		assert.Empty(t, states)

		require.NoError(t, store.SaveNonce(native, big.NewInt(1)))
	})

	t.Run("concurrent saves", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		const writers = 20
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			highest int64
		)
		for i := 1; i <= writers; i++ {
			wg.Add(1)
			go func(n int64) {
				defer wg.Done()
				if err := store.SaveNonce(native, big.NewInt(n)); err == nil {
					mu.Lock()
					if n > highest {
						highest = n
					}
					mu.Unlock()
				}
			}(int64(i))
		}
		wg.Wait()

		require.Positive(t, highest)
		last, err := persistence.LoadNonce(store, native)
		require.NoError(t, err)
		assert.Equal(t, highest, last.Int64())
	})

	t.Run("health and close", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.HealthCheck())

		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		require.Error(t, store.HealthCheck())
		require.ErrorIs(t, store.SaveNonce(native, big.NewInt(1)), persistence.ErrClosed)
		_, err := store.LoadChannelState(native)
		require.ErrorIs(t, err, persistence.ErrClosed)
		_, err = store.ListChannelStates()
		require.ErrorIs(t, err, persistence.ErrClosed)
		require.ErrorIs(t, store.DeleteChannelState(native), persistence.ErrClosed)
	})
}
