package persistence_test

import (
	"math/big"
	"testing"

	"github.com/Layr-Labs/l2qq-cli/pkg/persistence"
	"github.com/Layr-Labs/l2qq-cli/pkg/persistence/memory"
	"github.com/Layr-Labs/l2qq-cli/pkg/testutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextNonce(t *testing.T) {
	store := memory.NewMemoryPersistence(testutil.NewTestLogger(t))
	defer func() { _ = store.Close() }()

	channel := persistence.NewChannelKey(common.HexToAddress(testutil.TestEthAddress), nil)

	last, err := persistence.LoadNonce(store, channel)
	require.NoError(t, err)
	assert.Nil(t, last)

	for want := int64(1); want <= 3; want++ {
		next, err := persistence.NextNonce(store, channel)
		require.NoError(t, err)
		assert.Equal(t, want, next.Int64())
		require.NoError(t, store.SaveNonce(channel, next))
	}

	// callers may skip ahead
	require.NoError(t, store.SaveNonce(channel, big.NewInt(100)))
	next, err := persistence.NextNonce(store, channel)
	require.NoError(t, err)
	assert.Equal(t, int64(101), next.Int64())
}
