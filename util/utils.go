package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// RandomBytes generates a random byte slice of length n.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

// RandomHex generates a random hex string of length n.
func RandomHex(n int) string {
	return fmt.Sprintf("%x", RandomBytes(n))
}

// RandomNonce generates a unique nonce string for attestation messages. It
// combines the current unix time in milliseconds with random hex, so nonces
// sort roughly by issue time.
func RandomNonce() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), RandomHex(8))
}

// RandomInt generates a random integer between min and max.
func RandomInt(min, max int) int {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(max-min)))
	if err != nil {
		panic(err)
	}
	return int(num.Int64()) + min
}

// TrimHex trims the '0x' prefix from a hex string.
func TrimHex(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// bn254ScalarField is the scalar field of the BN254 curve, the field the
// registry tree keys and the circuit witness values live in.
var bn254ScalarField, _ = new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

// BigToFF returns the finite field representation of the big.Int provided,
// reducing it modulo the BN254 scalar field when it falls outside.
func BigToFF(iv *big.Int) *big.Int {
	z := big.NewInt(0)
	if c := iv.Cmp(bn254ScalarField); c == 0 {
		return z
	} else if c != 1 && iv.Cmp(z) != -1 {
		return iv
	}
	return z.Mod(iv, bn254ScalarField)
}
