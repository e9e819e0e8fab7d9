// Package field converts byte strings into BN254 scalar field elements and
// back, the way the passport circuits expect them.
package field

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/vocdoni/arbo"
)

// DefaultGroupSize is the number of bytes packed into each field element.
// 31 bytes always fit below the BN254 scalar field modulus.
const DefaultGroupSize = 31

// ErrLengthMismatch is returned when a byte string or a list of field
// elements does not fit the requested layout.
var ErrLengthMismatch = fmt.Errorf("length mismatch")

var modulus = ecc.BN254.ScalarField()

// Modulus returns a copy of the BN254 scalar field modulus.
func Modulus() *big.Int {
	return new(big.Int).Set(modulus)
}

// InField reports whether x is a canonical element of the scalar field.
func InField(x *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.Cmp(modulus) < 0
}

// Pack splits b into groups of groupSize bytes and encodes each group as a
// little-endian integer. The last group is zero padded, which has no effect
// on its numeric value.
func Pack(b []byte, groupSize int) ([]*big.Int, error) {
	if groupSize < 1 || groupSize > DefaultGroupSize {
		return nil, fmt.Errorf("%w: invalid group size %d", ErrLengthMismatch, groupSize)
	}
	n := (len(b) + groupSize - 1) / groupSize
	fields := make([]*big.Int, 0, n)
	for start := 0; start < len(b); start += groupSize {
		end := min(start+groupSize, len(b))
		fields = append(fields, arbo.BytesToBigInt(b[start:end]))
	}
	return fields, nil
}

// PackN behaves like Pack but always returns n elements, padding with zeros.
// It fails if b needs more than n elements.
func PackN(b []byte, groupSize, n int) ([]*big.Int, error) {
	fields, err := Pack(b, groupSize)
	if err != nil {
		return nil, err
	}
	if len(fields) > n {
		return nil, fmt.Errorf("%w: %d bytes need %d elements, only %d allowed",
			ErrLengthMismatch, len(b), len(fields), n)
	}
	for len(fields) < n {
		fields = append(fields, big.NewInt(0))
	}
	return fields, nil
}

// Unpack reverses Pack, returning the first length bytes.
func Unpack(fields []*big.Int, groupSize, length int) ([]byte, error) {
	if groupSize < 1 || groupSize > DefaultGroupSize {
		return nil, fmt.Errorf("%w: invalid group size %d", ErrLengthMismatch, groupSize)
	}
	if length < 0 || length > len(fields)*groupSize || length <= (len(fields)-1)*groupSize {
		return nil, fmt.Errorf("%w: %d elements cannot hold %d bytes",
			ErrLengthMismatch, len(fields), length)
	}
	out := make([]byte, 0, len(fields)*groupSize)
	for i, f := range fields {
		if f == nil || f.Sign() < 0 || f.BitLen() > groupSize*8 {
			return nil, fmt.Errorf("%w: element %d does not fit in %d bytes",
				ErrLengthMismatch, i, groupSize)
		}
		out = append(out, arbo.BigIntToBytes(groupSize, f)...)
	}
	return out[:length], nil
}

// SplitToWords decomposes x into numWords little-endian limbs of wordBits
// bits each, the representation used for RSA moduli and signatures.
func SplitToWords(x *big.Int, wordBits, numWords int) ([]*big.Int, error) {
	if x == nil || x.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative or nil value", ErrLengthMismatch)
	}
	if wordBits < 1 || x.BitLen() > wordBits*numWords {
		return nil, fmt.Errorf("%w: %d bits do not fit in %d words of %d bits",
			ErrLengthMismatch, x.BitLen(), numWords, wordBits)
	}
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(wordBits)), big.NewInt(1))
	rest := new(big.Int).Set(x)
	words := make([]*big.Int, numWords)
	for i := range words {
		words[i] = new(big.Int).And(rest, mask)
		rest.Rsh(rest, uint(wordBits))
	}
	return words, nil
}
