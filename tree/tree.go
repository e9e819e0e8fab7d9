// Package tree implements the incremental Merkle tree (LeanIMT) holding the
// registered identity commitments. A node without a right sibling is
// promoted to the next level unchanged, so the depth grows only when the
// number of leaves crosses a power of two.
package tree

import (
	"fmt"
	"math/big"
	"math/bits"
	"sync"

	"github.com/vocdoni/passport-z-sandbox/crypto/field"
	"github.com/vocdoni/passport-z-sandbox/crypto/hash/poseidon"
	"github.com/vocdoni/passport-z-sandbox/log"
)

var (
	// ErrTreeImportFailed is returned when a snapshot cannot be decoded or
	// its root does not match the expected one.
	ErrTreeImportFailed = fmt.Errorf("tree import failed")
	// ErrCommitmentNotFound is returned when a leaf is not in the tree.
	ErrCommitmentNotFound = fmt.Errorf("commitment not found")
)

// HashFunc combines two child nodes into their parent.
type HashFunc func(left, right *big.Int) (*big.Int, error)

// Tree is a LeanIMT safe for concurrent use. Readers (Root, Witness) run in
// parallel, writers (Import, Insert, Reset) are exclusive.
type Tree struct {
	mu    sync.RWMutex
	hash  HashFunc
	nodes [][]*big.Int // nodes[0] are the leaves, nodes[depth] the root
	index map[string]uint64
}

// New returns an empty tree. A nil hash function defaults to Poseidon.
func New(hash HashFunc) *Tree {
	if hash == nil {
		hash = poseidon.HashPair
	}
	return &Tree{
		hash:  hash,
		nodes: [][]*big.Int{{}},
		index: make(map[string]uint64),
	}
}

// depthFor returns the number of levels above the leaves for size leaves.
func depthFor(size int) int {
	if size <= 1 {
		return 0
	}
	return bits.Len64(uint64(size - 1))
}

// build computes every level from the leaves.
func build(hash HashFunc, leaves []*big.Int) ([][]*big.Int, error) {
	nodes := [][]*big.Int{leaves}
	for level := nodes[0]; len(level) > 1; {
		next := make([]*big.Int, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			parent, err := hash(level[i], level[i+1])
			if err != nil {
				return nil, err
			}
			next = append(next, parent)
		}
		nodes = append(nodes, next)
		level = next
	}
	return nodes, nil
}

func indexLeaves(leaves []*big.Int) map[string]uint64 {
	index := make(map[string]uint64, len(leaves))
	for i, l := range leaves {
		key := l.String()
		if _, ok := index[key]; !ok {
			index[key] = uint64(i)
		}
	}
	return index
}

// Import replaces the tree content with the given leaves. The new state is
// built off-lock and, if expectedRoot is not nil, checked against it. On
// any failure the current state is left untouched.
func (t *Tree) Import(leaves []*big.Int, expectedRoot *big.Int) error {
	staged := make([]*big.Int, len(leaves))
	for i, l := range leaves {
		if !field.InField(l) {
			return fmt.Errorf("%w: leaf %d is not a field element", ErrTreeImportFailed, i)
		}
		staged[i] = new(big.Int).Set(l)
	}
	nodes, err := build(t.hash, staged)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTreeImportFailed, err)
	}
	if expectedRoot != nil {
		root := rootOf(nodes)
		if root == nil || root.Cmp(expectedRoot) != 0 {
			return fmt.Errorf("%w: computed root %v does not match expected %s",
				ErrTreeImportFailed, root, expectedRoot)
		}
	}
	index := indexLeaves(staged)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodes = nodes
	t.index = index
	log.Debugw("commitment tree imported", "size", len(leaves), "root", rootOf(nodes))
	return nil
}

// Insert appends a leaf, updating only the nodes on its path to the root.
// It returns the index of the new leaf.
func (t *Tree) Insert(leaf *big.Int) (uint64, error) {
	if !field.InField(leaf) {
		return 0, fmt.Errorf("leaf is not a field element")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	size := len(t.nodes[0])
	depth := depthFor(size + 1)
	// compute the new path before mutating anything
	path := make([]*big.Int, depth+1)
	node := new(big.Int).Set(leaf)
	index := size
	for level := 0; level < depth; level++ {
		path[level] = node
		if index&1 == 1 {
			parent, err := t.hash(t.nodes[level][index-1], node)
			if err != nil {
				return 0, err
			}
			node = parent
		}
		index >>= 1
	}
	path[depth] = node

	for len(t.nodes) < depth+1 {
		t.nodes = append(t.nodes, []*big.Int{})
	}
	index = size
	for level := 0; level <= depth; level++ {
		if index < len(t.nodes[level]) {
			t.nodes[level][index] = path[level]
		} else {
			t.nodes[level] = append(t.nodes[level], path[level])
		}
		index >>= 1
	}
	if _, ok := t.index[leaf.String()]; !ok {
		t.index[leaf.String()] = uint64(size)
	}
	return uint64(size), nil
}

// Reset empties the tree.
func (t *Tree) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodes = [][]*big.Int{{}}
	t.index = make(map[string]uint64)
}

func rootOf(nodes [][]*big.Int) *big.Int {
	top := nodes[len(nodes)-1]
	if len(top) == 0 {
		return nil
	}
	return top[0]
}

// Root returns the current root, or nil if the tree is empty. For a single
// leaf the root is the leaf itself.
func (t *Tree) Root() *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	root := rootOf(t.nodes)
	if root == nil {
		return nil
	}
	return new(big.Int).Set(root)
}

// Size returns the number of leaves.
func (t *Tree) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes[0])
}

// Depth returns the number of levels above the leaves.
func (t *Tree) Depth() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes) - 1
}

// Leaves returns a copy of the leaves in insertion order.
func (t *Tree) Leaves() []*big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	leaves := make([]*big.Int, len(t.nodes[0]))
	for i, l := range t.nodes[0] {
		leaves[i] = new(big.Int).Set(l)
	}
	return leaves
}

// IndexOf returns the index of the first occurrence of leaf.
func (t *Tree) IndexOf(leaf *big.Int) (uint64, bool) {
	if leaf == nil {
		return 0, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[leaf.String()]
	return i, ok
}
