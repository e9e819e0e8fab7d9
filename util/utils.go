package util

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// RandomBytes returns n bytes read from the system random source.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// RandomInt returns a random integer in [min, max). It returns min if the
// range is empty.
func RandomInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + int(RandomBigInt(big.NewInt(int64(max-min))).Int64())
}

// RandomBigInt returns a uniform random integer in [0, max).
func RandomBigInt(max *big.Int) *big.Int {
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		panic(err)
	}
	return n
}

// TrimHex removes the 0x prefix of a hex string, if any.
func TrimHex(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}
