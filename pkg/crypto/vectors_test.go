package crypto

import (
	"bytes"
	"encoding/hex"
)

// secp256k1 key 0x0101...01 and values derived from it
const (
	testPrivateKeyHex  = "0101010101010101010101010101010101010101010101010101010101010101"
	testUncompressed   = "041b84c5567b126440995d3ed5aaba0565d71e1834604819ff9c17f5e9d5dd078f70beaf8f588b541507fed6a642c5ab42dfdf8120a7f639de5122d47a69a8e8d1"
	testCompressedPub  = "031b84c5567b126440995d3ed5aaba0565d71e1834604819ff9c17f5e9d5dd078f"
	testEthAddress     = "0x1a642f0e3c3af545e7acbd38b07251b3990914f1"
	testQtumHash160    = "79b000887626b294a914501a4cd226b58b235983"
	testQtumTestnet    = "qUeom5hbH8u3m4Mj9vkA5dW4r3ku94Tcve"
	testQtumMainnet    = "QXhQiMDjFxAj4BiMdv6Q1rdHpmnR2ytQB3"
	testWIFTestnet     = "cMceqPhHedrhbcR9eXgzmfWy7kRqLyAxMYwFT6ABDWsiwUp9Nsq9"
	testWIFUncompTest  = "91bMom7Qi9oc2VsLBKHK5EFwrZVjfxmrFAxLb1GDjiCwpGS6u85"
	testWIFMainnet     = "KwFfNUhSDaASSAwtG7ssQM1uVX8RgX5GHWnnLfhfiQDigjioWXHH"
	testSigR           = "134f98a8e5184d5963a288695eb0ef6494b6871d2f8f07573e54fc12c260b3a9"
	testSigS           = "5651758978481f6dbdb5e477514bf74c0aab3adc37b8da900cb5502e21583e39"
)

const testSigV byte = 27

// key 0x4646...46
const (
	otherPrivateKeyHex = "4646464646464646464646464646464646464646464646464646464646464646"
	otherEthAddress    = "0x9d8a62f656a8d1615c1294fd71e9cfb3e4855a4f"
	otherQtumHash160   = "bd92088bb7e82d611a9b94fbb74a0908152b784f"
	otherQtumTestnet   = "qaqjos6Uytdcx7jMihNWtMZUcd2NmsMJYJ"
	otherWIFTestnet    = "cPwJhzJHSNXeJ9jnGW9fMK3o26tsPqQmFEd3rCc5svm8Pbp5ujKd"
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func testKey() []byte  { return mustHex(testPrivateKeyHex) }
func otherKey() []byte { return mustHex(otherPrivateKeyHex) }

// curve order n
var curveOrder = mustHex("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")

var zeroKey = bytes.Repeat([]byte{0}, 32)
