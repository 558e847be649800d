package util

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/Layr-Labs/l2qq-cli/pkg/crypto"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func FuzzValidatePrivateKeyString(f *testing.F) {
	f.Add("")
	f.Add("0x")
	f.Add("0101010101010101010101010101010101010101010101010101010101010101")

	f.Fuzz(func(t *testing.T, s string) {
		err := ValidatePrivateKeyString(s)
		if err != nil {
			require.ErrorIs(t, err, ErrInvalidPrivateKeyString)
			return
		}
		require.Len(t, Strip0x(s), 64)
	})
}

func FuzzPrivateKeyStringToAddress(f *testing.F) {
	f.Add(make([]byte, 32), false)
	f.Add([]byte("seed"), true)

	f.Fuzz(func(t *testing.T, seed []byte, prefixed bool) {
		keyHex := hex.EncodeToString(ethcrypto.Keccak256(seed))
		if prefixed {
			keyHex = "0x" + strings.ToUpper(keyHex)
		}

		key, err := PrivateKeyStringToBytes(keyHex)
		require.NoError(t, err)
		require.Len(t, key, 32)

		addr, err := crypto.EthereumAddress(key)
		if err != nil {
			require.ErrorIs(t, err, crypto.ErrInvalidPrivateKey)
			return
		}
		priv, err := ethcrypto.ToECDSA(key)
		require.NoError(t, err)
		require.Equal(t, ethcrypto.PubkeyToAddress(priv.PublicKey), addr)
	})
}

func FuzzMapFilterBasics(f *testing.F) {
	f.Add([]byte{1, 2, 3, 4, 5})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		// Keep sizes small.
		if len(data) > 256 {
			data = data[:256]
		}

		// Map: byte -> int (and ensure output doesn't alias input).
		mapped := Map(data, func(b byte, idx uint64) int {
			return int(b) + int(idx%7)
		})
		require.Len(t, mapped, len(data))
		if len(mapped) > 0 {
			orig := data[0]
			mapped[0]++
			require.Equal(t, orig, data[0], "Map output must not alias input")
		}

		// Filter: keep even ints.
		evens := Filter(mapped, func(v int) bool { return v%2 == 0 })
		for _, v := range evens {
			require.Equal(t, 0, v%2)
		}
	})
}
