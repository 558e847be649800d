package crypto

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrivateKey(t *testing.T) {
	_, err := ParsePrivateKey(testKey())
	require.NoError(t, err)

	nMinusOne := new(big.Int).Sub(new(big.Int).SetBytes(curveOrder), big.NewInt(1))
	_, err = ParsePrivateKey(nMinusOne.FillBytes(make([]byte, 32)))
	require.NoError(t, err)

	for name, key := range map[string][]byte{
		"zero":     zeroKey,
		"order":    curveOrder,
		"short":    testKey()[:31],
		"long":     append(testKey(), 0x01),
		"nil":      nil,
		"all ones": mustHex("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePrivateKey(key)
			require.ErrorIs(t, err, ErrInvalidPrivateKey)
		})
	}
}

func TestDerivePublicKey(t *testing.T) {
	pub, err := DerivePublicKey(testKey(), true)
	require.NoError(t, err)
	assert.Equal(t, testCompressedPub, hex.EncodeToString(pub))

	pub, err = DerivePublicKey(testKey(), false)
	require.NoError(t, err)
	assert.Equal(t, testUncompressed, hex.EncodeToString(pub))

	_, err = DerivePublicKey(zeroKey, true)
	require.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestSignMessage(t *testing.T) {
	sig, err := SignMessage([]byte("test"), testKey())
	require.NoError(t, err)
	require.NoError(t, sig.Validate())

	assert.Equal(t, "9c22ff5f21f0b81b113e63f7db6da94fedef11b2119b4088b89664fb9a3cb658", hex.EncodeToString(sig.DataHash))
	assert.Equal(t, testSigR, hex.EncodeToString(sig.R))
	assert.Equal(t, testSigS, hex.EncodeToString(sig.S))
	assert.Equal(t, testSigV, sig.V)

	again, err := SignMessage([]byte("test"), testKey())
	require.NoError(t, err)
	assert.True(t, sig.Signature.Equal(&again.Signature), "signing must be deterministic")
}

func TestSignHash(t *testing.T) {
	_, err := SignHash(make([]byte, 31), testKey())
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = SignHash(Keccak256([]byte("x")), zeroKey)
	require.ErrorIs(t, err, ErrInvalidPrivateKey)

	halfOrder := new(big.Int).Rsh(new(big.Int).SetBytes(curveOrder), 1)
	for i := 0; i < 16; i++ {
		sig, err := SignHash(Keccak256([]byte{byte(i)}), otherKey())
		require.NoError(t, err)
		assert.LessOrEqual(t, new(big.Int).SetBytes(sig.S).Cmp(halfOrder), 0, "s must be low")
	}
}

func TestRecoverPublicKey(t *testing.T) {
	message := []byte("recover me")

	for _, key := range [][]byte{testKey(), otherKey()} {
		sig, err := SignMessage(message, key)
		require.NoError(t, err)

		for _, compressed := range []bool{true, false} {
			want, err := DerivePublicKey(key, compressed)
			require.NoError(t, err)

			got, err := RecoverPublicKey(sig.DataHash, sig.V, sig.R, sig.S, compressed)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			got, err = RecoverPublicKeyFromData(message, sig.V, sig.R, sig.S, compressed)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}
}

func TestRecoverPublicKey_PinnedSignature(t *testing.T) {
	pub, err := RecoverPublicKeyFromData([]byte("test"), testSigV, mustHex(testSigR), mustHex(testSigS), true)
	require.NoError(t, err)
	assert.Equal(t, testCompressedPub, hex.EncodeToString(pub))
}

func TestRecoverPublicKey_Invalid(t *testing.T) {
	sig, err := SignMessage([]byte("test"), testKey())
	require.NoError(t, err)

	tests := []struct {
		name    string
		hash    []byte
		v       byte
		r, s    []byte
		wantErr error
	}{
		{name: "v too small", hash: sig.DataHash, v: 26, r: sig.R, s: sig.S, wantErr: ErrInvalidSignature},
		{name: "v too large", hash: sig.DataHash, v: 31, r: sig.R, s: sig.S, wantErr: ErrInvalidSignature},
		{name: "short r", hash: sig.DataHash, v: sig.V, r: sig.R[:31], s: sig.S, wantErr: ErrInvalidSignature},
		{name: "short s", hash: sig.DataHash, v: sig.V, r: sig.R, s: nil, wantErr: ErrInvalidSignature},
		{name: "short hash", hash: sig.DataHash[:20], v: sig.V, r: sig.R, s: sig.S, wantErr: ErrInvalidInput},
		{name: "zero r", hash: sig.DataHash, v: sig.V, r: make([]byte, 32), s: sig.S, wantErr: ErrRecoveryFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RecoverPublicKey(tt.hash, tt.v, tt.r, tt.s, true)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRecoverPublicKey_TamperedData(t *testing.T) {
	sig, err := SignMessage([]byte("original"), testKey())
	require.NoError(t, err)

	want, err := DerivePublicKey(testKey(), true)
	require.NoError(t, err)

	got, err := RecoverPublicKeyFromData([]byte("tampered"), sig.V, sig.R, sig.S, true)
	if err == nil {
		assert.NotEqual(t, want, got)
	}
}

func FuzzSignRecoverRoundTrip(f *testing.F) {
	f.Add([]byte("test"), []byte{1})
	f.Add([]byte{}, []byte{0x46})
	f.Add([]byte{0xff, 0x00}, []byte("seed"))

	f.Fuzz(func(t *testing.T, message []byte, seed []byte) {
		key := Keccak256(seed)
		if _, err := ParsePrivateKey(key); err != nil {
			t.Skip()
		}
		sig, err := SignMessage(message, key)
		require.NoError(t, err)

		want, err := DerivePublicKey(key, false)
		require.NoError(t, err)
		got, err := RecoverPublicKeyFromData(message, sig.V, sig.R, sig.S, false)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})
}
