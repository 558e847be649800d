package signer

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/Layr-Labs/l2qq-cli/pkg/config"
	"github.com/Layr-Labs/l2qq-cli/pkg/crypto"
	"github.com/Layr-Labs/l2qq-cli/pkg/messenger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKeyHex = "0101010101010101010101010101010101010101010101010101010101010101"

	// channel update: owner 0x1a64..f1, no token, change -1000, nonce 7
	testUpdateHex = "1a642f0e3c3af545e7acbd38b07251b3990914f1" +
		"0000000000000000000000000000000000000000" +
		"fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffc18" +
		"0000000000000000000000000000000000000000000000000000000000000007" +
		"00" +
		"0000000000000000000000000000000000000000000000000000000000000000"

	testSignatureHex = "1c" +
		"1a55ca2640dc3974c3297dcb518585fa7bc7b163f6cad33b71a07b1ea8dd7427" +
		"39625bcf8790f78b2734198a4617c1a0c8409d6af4c587c043b0e770e9b92af6"

	evmSigner  = "1a642f0e3c3af545e7acbd38b07251b3990914f1"
	utxoSigner = "79b000887626b294a914501a4cd226b58b235983"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	b, err := hex.DecodeString(testKeyHex)
	require.NoError(t, err)
	return b
}

func TestSignSerializedMessage(t *testing.T) {
	tests := []struct {
		name       string
		convention config.ChainConvention
		want       string
	}{
		{name: "evm", convention: config.ChainConventionEVM, want: testUpdateHex + evmSigner + testSignatureHex},
		{name: "utxo", convention: config.ChainConventionUTXO, want: testUpdateHex + utxoSigner + testSignatureHex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SignSerializedMessage(testUpdateHex, testKey(t), tt.convention)
			require.NoError(t, err)
			assert.Len(t, got, 444)
			assert.Equal(t, tt.want, got)

			// a 0x prefix and upper case input produce the same output
			again, err := SignSerializedMessage("0x"+strings.ToUpper(testUpdateHex), testKey(t), tt.convention)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestSignSerializedMessage_EmptyMessage(t *testing.T) {
	got, err := SignSerializedMessage("", testKey(t), config.ChainConventionEVM)
	require.NoError(t, err)
	assert.Len(t, got, 2*messenger.SignedSuffixLength)
	assert.True(t, strings.HasPrefix(got, evmSigner))
}

func TestSignSerializedMessage_Errors(t *testing.T) {
	_, err := SignSerializedMessage("abc", testKey(t), config.ChainConventionEVM)
	require.ErrorIs(t, err, ErrInvalidHexInput)

	_, err = SignSerializedMessage("zz", testKey(t), config.ChainConventionEVM)
	require.ErrorIs(t, err, ErrInvalidHexInput)

	_, err = SignSerializedMessage(testUpdateHex, make([]byte, 32), config.ChainConventionEVM)
	require.ErrorIs(t, err, crypto.ErrInvalidPrivateKey)

	_, err = SignSerializedMessage(testUpdateHex, testKey(t)[:16], config.ChainConventionUTXO)
	require.ErrorIs(t, err, crypto.ErrInvalidPrivateKey)

	_, err = SignSerializedMessage(testUpdateHex, testKey(t), config.ChainConvention("solana"))
	require.Error(t, err)
}

func TestSignerAddress(t *testing.T) {
	evm, err := SignerAddress(testKey(t), config.ChainConventionEVM)
	require.NoError(t, err)
	assert.Equal(t, evmSigner, hex.EncodeToString(evm.Bytes()))

	utxo, err := SignerAddress(testKey(t), config.ChainConventionUTXO)
	require.NoError(t, err)
	assert.Equal(t, utxoSigner, hex.EncodeToString(utxo.Bytes()))

	assert.NotEqual(t, evm, utxo)
}

func TestVerifyPackedMessage(t *testing.T) {
	for _, convention := range []config.ChainConvention{config.ChainConventionEVM, config.ChainConventionUTXO} {
		t.Run(convention.String(), func(t *testing.T) {
			packed, err := SignSerializedMessage(testUpdateHex, testKey(t), convention)
			require.NoError(t, err)

			signed, err := VerifyPackedMessage(packed, convention)
			require.NoError(t, err)
			assert.Equal(t, testUpdateHex, hex.EncodeToString(signed.Message))

			update, err := messenger.DeserializeChannelUpdate(signed.Message)
			require.NoError(t, err)
			assert.Equal(t, int64(-1000), update.Change.Int64())
			assert.Equal(t, int64(7), update.Nonce.Int64())
		})
	}
}

func TestVerifyPackedMessage_WrongConvention(t *testing.T) {
	packed, err := SignSerializedMessage(testUpdateHex, testKey(t), config.ChainConventionEVM)
	require.NoError(t, err)

	_, err = VerifyPackedMessage(packed, config.ChainConventionUTXO)
	require.ErrorIs(t, err, ErrSignerMismatch)
}

func TestVerifyPackedMessage_Tampered(t *testing.T) {
	packed, err := SignSerializedMessage(testUpdateHex, testKey(t), config.ChainConventionEVM)
	require.NoError(t, err)

	// flip the nonce from 7 to 8
	nonceEnd := 2 * 104
	tampered := packed[:nonceEnd-1] + "8" + packed[nonceEnd:]
	require.NotEqual(t, packed, tampered)

	_, err = VerifyPackedMessage(tampered, config.ChainConventionEVM)
	require.ErrorIs(t, err, ErrSignerMismatch)
}

func TestVerifyPackedMessage_Malformed(t *testing.T) {
	_, err := VerifyPackedMessage("not hex", config.ChainConventionEVM)
	require.ErrorIs(t, err, ErrInvalidHexInput)

	_, err = VerifyPackedMessage(strings.Repeat("00", messenger.SignedSuffixLength-1), config.ChainConventionEVM)
	require.ErrorIs(t, err, messenger.ErrInvalidLength)

	// v of zero is outside [27,30]
	_, err = VerifyPackedMessage(strings.Repeat("00", messenger.SignedSuffixLength), config.ChainConventionEVM)
	require.ErrorIs(t, err, crypto.ErrInvalidSignature)
}
