package tree

import (
	"fmt"
	"math/big"
)

// Proof is a membership witness of a leaf. Siblings and PathIndices only
// include the levels where the node has a sibling. PathIndices[i] is 1 when
// the running node is the right child at that level, i.e. the sibling is on
// the left.
type Proof struct {
	Leaf        *big.Int
	Index       uint64
	Root        *big.Int
	Siblings    []*big.Int
	PathIndices []uint8
}

// Witness returns the membership proof of the leaf at index.
func (t *Tree) Witness(index uint64) (*Proof, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.witness(index)
}

// WitnessOf returns the membership proof of the first occurrence of leaf.
func (t *Tree) WitnessOf(leaf *big.Int) (*Proof, error) {
	if leaf == nil {
		return nil, fmt.Errorf("%w: nil leaf", ErrCommitmentNotFound)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	index, ok := t.index[leaf.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCommitmentNotFound, leaf)
	}
	return t.witness(index)
}

func (t *Tree) witness(index uint64) (*Proof, error) {
	if index >= uint64(len(t.nodes[0])) {
		return nil, fmt.Errorf("%w: index %d out of range", ErrCommitmentNotFound, index)
	}
	proof := &Proof{
		Leaf:  new(big.Int).Set(t.nodes[0][index]),
		Index: index,
		Root:  new(big.Int).Set(rootOf(t.nodes)),
	}
	i := index
	for level := 0; level < len(t.nodes)-1; level++ {
		isRight := i & 1
		sibling := i ^ 1
		if sibling < uint64(len(t.nodes[level])) {
			proof.Siblings = append(proof.Siblings, new(big.Int).Set(t.nodes[level][sibling]))
			proof.PathIndices = append(proof.PathIndices, uint8(isRight))
		}
		i >>= 1
	}
	return proof, nil
}

// Depth returns the number of siblings of the proof.
func (p *Proof) Depth() int {
	return len(p.Siblings)
}

// ComputeRoot replays the proof with the given hash function and returns
// the resulting root.
func (p *Proof) ComputeRoot(hash HashFunc) (*big.Int, error) {
	if len(p.Siblings) != len(p.PathIndices) {
		return nil, fmt.Errorf("siblings and path indices length mismatch")
	}
	node := p.Leaf
	for i, sibling := range p.Siblings {
		var err error
		if p.PathIndices[i] == 1 {
			node, err = hash(sibling, node)
		} else {
			node, err = hash(node, sibling)
		}
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

// Verify reports whether the proof reconstructs its root.
func (p *Proof) Verify(hash HashFunc) bool {
	root, err := p.ComputeRoot(hash)
	return err == nil && p.Root != nil && root.Cmp(p.Root) == 0
}

// Padded returns the siblings and path indices zero padded to maxDepth
// entries, the fixed size arrays circuits expect.
func (p *Proof) Padded(maxDepth int) ([]*big.Int, []*big.Int, error) {
	if len(p.Siblings) > maxDepth {
		return nil, nil, fmt.Errorf("proof depth %d exceeds maximum %d", len(p.Siblings), maxDepth)
	}
	siblings := make([]*big.Int, maxDepth)
	indices := make([]*big.Int, maxDepth)
	for i := range maxDepth {
		if i < len(p.Siblings) {
			siblings[i] = new(big.Int).Set(p.Siblings[i])
			indices[i] = big.NewInt(int64(p.PathIndices[i]))
			continue
		}
		siblings[i] = big.NewInt(0)
		indices[i] = big.NewInt(0)
	}
	return siblings, indices, nil
}
