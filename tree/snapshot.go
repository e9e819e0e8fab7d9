package tree

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/vocdoni/passport-z-sandbox/types"
)

// ImportSnapshot imports a serialized tree. Two encodings are accepted:
// a JSON array of decimal leaves (["1","2"]), or the full list of levels
// ([["1","2"],["<root>"]]), in which case the last level is taken as the
// stated root and validated against the rebuilt tree.
func (t *Tree) ImportSnapshot(data []byte) error {
	leaves, root, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	return t.Import(leaves, root)
}

// DecodeSnapshot parses a serialized tree returning its leaves and, for the
// levels encoding, the stated root.
func DecodeSnapshot(data []byte) ([]*big.Int, *big.Int, error) {
	var flat []*types.BigInt
	if err := json.Unmarshal(data, &flat); err == nil {
		if flat == nil {
			return nil, nil, fmt.Errorf("%w: null snapshot", ErrTreeImportFailed)
		}
		return toMathBigInts(flat), nil, nil
	}
	var levels [][]*types.BigInt
	if err := json.Unmarshal(data, &levels); err != nil {
		return nil, nil, fmt.Errorf("%w: cannot decode snapshot: %v", ErrTreeImportFailed, err)
	}
	if len(levels) == 0 {
		return nil, nil, nil
	}
	top := levels[len(levels)-1]
	switch {
	case len(levels) == 1 && len(top) == 0:
		return nil, nil, nil
	case len(top) != 1 || top[0] == nil:
		return nil, nil, fmt.Errorf("%w: last level must hold only the root", ErrTreeImportFailed)
	}
	for _, l := range levels[0] {
		if l == nil {
			return nil, nil, fmt.Errorf("%w: null leaf", ErrTreeImportFailed)
		}
	}
	return toMathBigInts(levels[0]), top[0].MathBigInt(), nil
}

// Export serializes the leaves as a JSON array of decimal strings.
func (t *Tree) Export() ([]byte, error) {
	leaves := t.Leaves()
	out := make([]*types.BigInt, len(leaves))
	for i, l := range leaves {
		out[i] = (*types.BigInt)(l)
	}
	return json.Marshal(out)
}

func toMathBigInts(in []*types.BigInt) []*big.Int {
	out := make([]*big.Int, len(in))
	for i, v := range in {
		if v != nil {
			out[i] = v.MathBigInt()
		}
	}
	return out
}
