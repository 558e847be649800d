package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Layr-Labs/l2qq-cli/pkg/persistence"
	"github.com/Layr-Labs/l2qq-cli/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOwner = "0x1a642f0e3c3af545e7acbd38b07251b3990914f1"

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

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"l2qq"}, args...))
	return strings.TrimSpace(out.String()), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err)
	return out
}

func TestSignCommand(t *testing.T) {
	tests := []struct {
		name       string
		convention string
		want       string
	}{
		{name: "evm", convention: "evm", want: testUpdateHex + evmSigner + testSignatureHex},
		{name: "utxo", convention: "utxo", want: testUpdateHex + utxoSigner + testSignatureHex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustRun(t, "--convention", tt.convention, "sign", "--key", testutil.TestPrivateKeyHex, "--message", testUpdateHex)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSignCommand_Errors(t *testing.T) {
	_, err := run(t, "sign", "--key", "short", "--message", testUpdateHex)
	require.Error(t, err)

	_, err = run(t, "sign", "--key", testutil.TestPrivateKeyHex, "--message", "abc")
	require.Error(t, err)

	_, err = run(t, "--convention", "bitcoin", "sign", "--key", testutil.TestPrivateKeyHex, "--message", "")
	require.Error(t, err)
}

func TestChannelUpdateCommand(t *testing.T) {
	dataPath := t.TempDir()
	base := []string{"--persistence-type", "badger", "--data-path", dataPath}
	update := func(extra ...string) []string {
		args := append(append([]string{}, base...), "channel-update",
			"--key", testutil.TestPrivateKeyHex,
			"--owner", testOwner,
			"--change=-1000",
		)
		return append(args, extra...)
	}

	out := mustRun(t, update("--nonce", "7")...)
	assert.Equal(t, testUpdateHex+evmSigner+testSignatureHex, out)

	// the stored nonce only moves forward
	_, err := run(t, update("--nonce", "7")...)
	require.ErrorIs(t, err, persistence.ErrNonceNotIncreasing)

	out = mustRun(t, update()...)
	verified := mustRun(t, "verify", "--packed", out)
	var decoded verifyOutput
	require.NoError(t, json.Unmarshal([]byte(verified), &decoded))
	require.NotNil(t, decoded.ChannelUpdate)
	assert.Equal(t, "8", decoded.ChannelUpdate.Nonce)
	assert.Equal(t, "-1000", decoded.ChannelUpdate.Change)
	assert.Equal(t, testutil.TestEthAddress, decoded.Signer)

	shown := mustRun(t, append(append([]string{}, base...), "nonce", "show", "--owner", testOwner)...)
	var state persistence.ChannelState
	require.NoError(t, json.Unmarshal([]byte(shown), &state))
	assert.Equal(t, "8", state.Nonce)

	listed := mustRun(t, append(append([]string{}, base...), "nonce", "list")...)
	var states []persistence.ChannelState
	require.NoError(t, json.Unmarshal([]byte(listed), &states))
	assert.Len(t, states, 1)

	mustRun(t, append(append([]string{}, base...), "nonce", "reset", "--owner", testOwner)...)
	out = mustRun(t, update()...)
	verified = mustRun(t, "verify", "--packed", out)
	require.NoError(t, json.Unmarshal([]byte(verified), &decoded))
	assert.Equal(t, "1", decoded.ChannelUpdate.Nonce)
}

func TestChannelUpdateCommand_NoSign(t *testing.T) {
	out := mustRun(t, "--persistence-type", "memory", "channel-update",
		"--owner", testOwner, "--change=-1000", "--nonce", "7", "--no-sign")
	assert.Equal(t, testUpdateHex, out)

	_, err := run(t, "--persistence-type", "memory", "channel-update",
		"--owner", testOwner, "--change=-1000", "--nonce", "7")
	require.Error(t, err)

	_, err = run(t, "--persistence-type", "memory", "channel-update",
		"--owner", "0x1234", "--change", "1", "--nonce", "1", "--no-sign")
	require.Error(t, err)
}

func TestVerifyCommand(t *testing.T) {
	out := mustRun(t, "verify", "--packed", testUpdateHex+evmSigner+testSignatureHex)
	var decoded verifyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, uint8(0x1c), decoded.V)
	assert.Equal(t, testUpdateHex, decoded.Message)

	// the evm signer does not verify under the utxo convention
	_, err := run(t, "--convention", "utxo", "verify", "--packed", testUpdateHex+evmSigner+testSignatureHex)
	require.Error(t, err)
}

func TestAddressCommand(t *testing.T) {
	out := mustRun(t, "address", "--key", testutil.TestPrivateKeyHex)
	var decoded addressOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, testutil.TestEthAddress, decoded.EthereumAddress)
	assert.Equal(t, testutil.TestQtumHash160, decoded.QtumStyleAddress)
	assert.Equal(t, "qUeom5hbH8u3m4Mj9vkA5dW4r3ku94Tcve", decoded.QtumAddress)
	assert.Equal(t, evmSigner, decoded.SignerAddress)

	out = mustRun(t, "--convention", "utxo", "--network", "mainnet", "address", "--key", "0x"+testutil.TestPrivateKeyHex)
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "QXhQiMDjFxAj4BiMdv6Q1rdHpmnR2ytQB3", decoded.QtumAddress)
	assert.Equal(t, utxoSigner, decoded.SignerAddress)
}

func TestWIFCommands(t *testing.T) {
	wif := mustRun(t, "wif", "encode", "--key", testutil.TestPrivateKeyHex)
	assert.Equal(t, "cMceqPhHedrhbcR9eXgzmfWy7kRqLyAxMYwFT6ABDWsiwUp9Nsq9", wif)

	wif = mustRun(t, "--network", "mainnet", "wif", "encode", "--key", testutil.TestPrivateKeyHex)
	assert.Equal(t, "KwFfNUhSDaASSAwtG7ssQM1uVX8RgX5GHWnnLfhfiQDigjioWXHH", wif)

	out := mustRun(t, "wif", "decode", "--wif", "cMceqPhHedrhbcR9eXgzmfWy7kRqLyAxMYwFT6ABDWsiwUp9Nsq9")
	var decoded wifOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, testutil.TestPrivateKeyHex, decoded.PrivateKey)
	assert.Equal(t, uint8(239), decoded.Version)
	assert.Equal(t, "testnet", decoded.Network)
	assert.True(t, decoded.Compressed)
	assert.Equal(t, "qUeom5hbH8u3m4Mj9vkA5dW4r3ku94Tcve", decoded.QtumAddress)

	_, err := run(t, "wif", "decode", "--wif", "not-a-wif")
	require.Error(t, err)
}

func TestConvertCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "to decimal", args: []string{"convert", "to-decimal", "--amount", "1500000", "--decimals", "6"}, want: "1.5"},
		{name: "to atomic", args: []string{"convert", "to-atomic", "--amount", "1.5", "--decimals", "6"}, want: "1500000"},
		{name: "to atomic truncates", args: []string{"convert", "to-atomic", "--amount", "0.1234567", "--decimals", "6"}, want: "123456"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustRun(t, tt.args...))
		})
	}

	_, err := run(t, "convert", "to-decimal", "--amount", "1", "--decimals", "31")
	require.Error(t, err)
}

func TestKeygenCommand(t *testing.T) {
	out := mustRun(t, "keygen", "--name", "desk")
	var decoded keygenOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.True(t, strings.HasPrefix(decoded.KeyId, "local-key-"))
	assert.Equal(t, "desk", decoded.Name)

	// the exported WIF round-trips to the reported address
	wif := mustRun(t, "wif", "decode", "--wif", decoded.WIFTestnet)
	var key wifOutput
	require.NoError(t, json.Unmarshal([]byte(wif), &key))
	addr := mustRun(t, "address", "--key", key.PrivateKey)
	var addresses addressOutput
	require.NoError(t, json.Unmarshal([]byte(addr), &addresses))
	assert.Equal(t, decoded.EthereumAddress, addresses.EthereumAddress)
	assert.Equal(t, decoded.QtumTestnetAddress, addresses.QtumAddress)
}

func TestKeygenCommand_SignMessage(t *testing.T) {
	for _, convention := range []string{"evm", "utxo"} {
		t.Run(convention, func(t *testing.T) {
			out := mustRun(t, "--convention", convention, "keygen", "--sign-message", testUpdateHex)
			var decoded keygenOutput
			require.NoError(t, json.Unmarshal([]byte(out), &decoded))
			require.True(t, strings.HasPrefix(decoded.SignedMessage, testUpdateHex))

			verified := mustRun(t, "--convention", convention, "verify", "--packed", decoded.SignedMessage)
			var msg verifyOutput
			require.NoError(t, json.Unmarshal([]byte(verified), &msg))
			require.NotNil(t, msg.ChannelUpdate)
			assert.Equal(t, "7", msg.ChannelUpdate.Nonce)
			if convention == "evm" {
				assert.Equal(t, decoded.EthereumAddress, msg.Signer)
			} else {
				assert.Equal(t, "0x"+decoded.QtumStyleAddress, strings.ToLower(msg.Signer))
			}
		})
	}

	out := mustRun(t, "keygen")
	assert.NotContains(t, out, "signedMessage")

	_, err := run(t, "keygen", "--sign-message", "abc")
	require.Error(t, err)
}
