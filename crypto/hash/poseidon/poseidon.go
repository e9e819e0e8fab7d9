package poseidon

import (
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
)

// MaxInputs is the maximum number of inputs of a single Poseidon permutation.
const MaxInputs = 16

// Hash returns the Poseidon hash of up to MaxInputs field elements. It fails
// if any input is nil or does not belong to the BN254 scalar field.
func Hash(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) == 0 || len(inputs) > MaxInputs {
		return nil, fmt.Errorf("invalid number of inputs: %d", len(inputs))
	}
	for i, in := range inputs {
		if in == nil {
			return nil, fmt.Errorf("input %d is nil", i)
		}
	}
	return poseidon.Hash(inputs)
}

// HashPair hashes two field elements. It is the node hash of the
// commitment tree.
func HashPair(left, right *big.Int) (*big.Int, error) {
	return Hash(left, right)
}
