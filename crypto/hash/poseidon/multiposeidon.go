package poseidon

import (
	"fmt"
	"math/big"
)

// MultiPoseidon hashes up to MaxInputs*MaxInputs inputs. Inputs are split
// in chunks of MaxInputs elements, each chunk is hashed and the chunk
// hashes are hashed together. With a single chunk its hash is the result.
func MultiPoseidon(inputs ...*big.Int) (*big.Int, error) {
	switch {
	case len(inputs) == 0:
		return nil, fmt.Errorf("no inputs provided")
	case len(inputs) > MaxInputs*MaxInputs:
		return nil, fmt.Errorf("too many inputs: %d > %d", len(inputs), MaxInputs*MaxInputs)
	case len(inputs) <= MaxInputs:
		return Hash(inputs...)
	}
	chunks := make([]*big.Int, 0, (len(inputs)+MaxInputs-1)/MaxInputs)
	for len(inputs) > 0 {
		n := min(MaxInputs, len(inputs))
		h, err := Hash(inputs[:n]...)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, h)
		inputs = inputs[n:]
	}
	return Hash(chunks...)
}
