package testutil

import (
	"encoding/hex"
	"testing"

	"github.com/Layr-Labs/l2qq-cli/pkg/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Well-known secp256k1 keys used across package tests
const (
	TestPrivateKeyHex  = "0101010101010101010101010101010101010101010101010101010101010101"
	OtherPrivateKeyHex = "4646464646464646464646464646464646464646464646464646464646464646"

	TestEthAddress  = "0x1a642f0E3c3aF545E7AcBD38b07251B3990914F1"
	TestQtumHash160 = "79b000887626b294a914501a4cd226b58b235983"
)

func NewTestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.NoError(t, err)
	return l
}

func MustDecodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}
