package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/passport-z-sandbox/crypto/hash/poseidon"
)

// concatHash makes the tree shape visible in the resulting numbers:
// H(a, b) = a*1000 + b.
func concatHash(a, b *big.Int) (*big.Int, error) {
	r := new(big.Int).Mul(a, big.NewInt(1000))
	return r.Add(r, b), nil
}

func leaves(n int) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = big.NewInt(int64(i + 1))
	}
	return out
}

func TestRootShape(t *testing.T) {
	c := qt.New(t)
	tr := New(concatHash)
	c.Assert(tr.Root(), qt.IsNil)
	c.Assert(tr.Size(), qt.Equals, 0)

	h := func(a, b *big.Int) *big.Int {
		r, _ := concatHash(a, b)
		return r
	}
	n := big.NewInt
	h12, h34 := h(n(1), n(2)), h(n(3), n(4))
	expected := []*big.Int{
		n(1),                          // single leaf is the root
		h12,                           // H(1,2)
		h(h12, n(3)),                  // 3 is promoted
		h(h12, h34),                   // full tree
		h(h(h12, h34), n(5)),          // 5 is promoted twice
		h(h(h12, h34), h(n(5), n(6))), // H(5,6) is promoted
		h(h(h12, h34), h(h(n(5), n(6)), n(7))),
	}
	for i, l := range leaves(len(expected)) {
		idx, err := tr.Insert(l)
		c.Assert(err, qt.IsNil)
		c.Assert(idx, qt.Equals, uint64(i))
		c.Assert(tr.Root().Cmp(expected[i]), qt.Equals, 0, qt.Commentf("size %d", i+1))
	}
	c.Assert(tr.Depth(), qt.Equals, 3)
}

func TestInsertMatchesImport(t *testing.T) {
	c := qt.New(t)
	for n := 1; n <= 33; n++ {
		incremental := New(nil)
		for _, l := range leaves(n) {
			_, err := incremental.Insert(l)
			c.Assert(err, qt.IsNil)
		}
		bulk := New(nil)
		c.Assert(bulk.Import(leaves(n), nil), qt.IsNil)
		c.Assert(incremental.Root().Cmp(bulk.Root()), qt.Equals, 0, qt.Commentf("size %d", n))
		c.Assert(incremental.Depth(), qt.Equals, bulk.Depth())
	}
}

func TestPoseidonRoot(t *testing.T) {
	c := qt.New(t)
	tr := New(nil)
	c.Assert(tr.Import(leaves(3), nil), qt.IsNil)
	h12, err := poseidon.HashPair(big.NewInt(1), big.NewInt(2))
	c.Assert(err, qt.IsNil)
	expected, err := poseidon.HashPair(h12, big.NewInt(3))
	c.Assert(err, qt.IsNil)
	c.Assert(tr.Root().Cmp(expected), qt.Equals, 0)
}

func TestWitness(t *testing.T) {
	c := qt.New(t)
	tr := New(concatHash)
	c.Assert(tr.Import(leaves(3), nil), qt.IsNil)

	// the last leaf has no sibling at level 0, that level is skipped
	proof, err := tr.Witness(2)
	c.Assert(err, qt.IsNil)
	c.Assert(proof.Siblings, qt.HasLen, 1)
	c.Assert(proof.Siblings[0].String(), qt.Equals, "1002")
	c.Assert(proof.PathIndices, qt.DeepEquals, []uint8{1})
	c.Assert(proof.Verify(concatHash), qt.IsTrue)

	proof, err = tr.WitnessOf(big.NewInt(2))
	c.Assert(err, qt.IsNil)
	c.Assert(proof.Index, qt.Equals, uint64(1))
	c.Assert(proof.PathIndices, qt.DeepEquals, []uint8{1, 0})
	c.Assert(proof.Siblings[0].String(), qt.Equals, "1")
	c.Assert(proof.Siblings[1].String(), qt.Equals, "3")

	_, err = tr.WitnessOf(big.NewInt(99))
	c.Assert(errors.Is(err, ErrCommitmentNotFound), qt.IsTrue)
	_, err = tr.Witness(3)
	c.Assert(errors.Is(err, ErrCommitmentNotFound), qt.IsTrue)

	// every leaf of a poseidon tree verifies
	ptr := New(nil)
	c.Assert(ptr.Import(leaves(21), nil), qt.IsNil)
	for i := range 21 {
		proof, err := ptr.Witness(uint64(i))
		c.Assert(err, qt.IsNil)
		c.Assert(proof.Verify(poseidon.HashPair), qt.IsTrue)
		c.Assert(proof.Root.Cmp(ptr.Root()), qt.Equals, 0)

		// a wrong leaf does not verify
		proof.Leaf = big.NewInt(1000)
		c.Assert(proof.Verify(poseidon.HashPair), qt.IsFalse)
	}
}

func TestPadded(t *testing.T) {
	c := qt.New(t)
	tr := New(nil)
	c.Assert(tr.Import(leaves(5), nil), qt.IsNil)
	proof, err := tr.Witness(4)
	c.Assert(err, qt.IsNil)
	c.Assert(proof.Depth(), qt.Equals, 1)

	siblings, indices, err := proof.Padded(16)
	c.Assert(err, qt.IsNil)
	c.Assert(siblings, qt.HasLen, 16)
	c.Assert(indices, qt.HasLen, 16)
	c.Assert(siblings[0].Cmp(proof.Siblings[0]), qt.Equals, 0)
	c.Assert(indices[0].Int64(), qt.Equals, int64(1))
	for i := 1; i < 16; i++ {
		c.Assert(siblings[i].Sign(), qt.Equals, 0)
		c.Assert(indices[i].Sign(), qt.Equals, 0)
	}
	_, _, err = proof.Padded(0)
	c.Assert(err, qt.IsNotNil)
}

func TestImportIsAtomic(t *testing.T) {
	c := qt.New(t)
	tr := New(nil)
	c.Assert(tr.Import(leaves(4), nil), qt.IsNil)
	root := tr.Root()

	// wrong expected root keeps the previous state
	err := tr.Import(leaves(8), big.NewInt(1))
	c.Assert(errors.Is(err, ErrTreeImportFailed), qt.IsTrue)
	c.Assert(tr.Root().Cmp(root), qt.Equals, 0)
	c.Assert(tr.Size(), qt.Equals, 4)

	// invalid leaves too
	err = tr.Import([]*big.Int{big.NewInt(1), big.NewInt(-1)}, nil)
	c.Assert(errors.Is(err, ErrTreeImportFailed), qt.IsTrue)
	c.Assert(tr.Size(), qt.Equals, 4)

	// the right expected root is accepted
	other := New(nil)
	c.Assert(other.Import(leaves(8), nil), qt.IsNil)
	c.Assert(tr.Import(leaves(8), other.Root()), qt.IsNil)
	c.Assert(tr.Root().Cmp(other.Root()), qt.Equals, 0)

	// and the imported tree keeps growing as a fresh one would
	_, err = tr.Insert(big.NewInt(9))
	c.Assert(err, qt.IsNil)
	fresh := New(nil)
	c.Assert(fresh.Import(leaves(9), nil), qt.IsNil)
	c.Assert(tr.Root().Cmp(fresh.Root()), qt.Equals, 0)

	tr.Reset()
	c.Assert(tr.Root(), qt.IsNil)
	_, ok := tr.IndexOf(big.NewInt(1))
	c.Assert(ok, qt.IsFalse)
}

func TestSnapshot(t *testing.T) {
	c := qt.New(t)
	src := New(nil)
	c.Assert(src.Import(leaves(6), nil), qt.IsNil)

	data, err := src.Export()
	c.Assert(err, qt.IsNil)
	dst := New(nil)
	c.Assert(dst.ImportSnapshot(data), qt.IsNil)
	c.Assert(dst.Root().Cmp(src.Root()), qt.Equals, 0)
	c.Assert(dst.Leaves(), qt.HasLen, 6)

	// levels encoding with a stated root
	levels := [][]string{}
	for _, l := range leaves(6) {
		if len(levels) == 0 {
			levels = append(levels, []string{})
		}
		levels[0] = append(levels[0], l.String())
	}
	levels = append(levels, []string{src.Root().String()})
	data, err = json.Marshal(levels)
	c.Assert(err, qt.IsNil)
	dst = New(nil)
	c.Assert(dst.ImportSnapshot(data), qt.IsNil)
	c.Assert(dst.Root().Cmp(src.Root()), qt.Equals, 0)

	// a stated root which does not match is rejected
	levels[len(levels)-1] = []string{"12345"}
	data, err = json.Marshal(levels)
	c.Assert(err, qt.IsNil)
	err = dst.ImportSnapshot(data)
	c.Assert(errors.Is(err, ErrTreeImportFailed), qt.IsTrue)
	c.Assert(dst.Root().Cmp(src.Root()), qt.Equals, 0)

	for _, bad := range []string{`{`, `{"a":1}`, `["x"]`, `[null]`, `null`, ` null `, `[["1"],["2","3"]]`} {
		err = dst.ImportSnapshot([]byte(bad))
		c.Assert(errors.Is(err, ErrTreeImportFailed), qt.IsTrue, qt.Commentf("snapshot %s", bad))
	}

	c.Assert(dst.Root().Cmp(src.Root()), qt.Equals, 0)

	// empty snapshots produce an empty tree
	c.Assert(dst.ImportSnapshot([]byte(`[]`)), qt.IsNil)
	c.Assert(dst.Root(), qt.IsNil)
}

func TestConcurrentAccess(t *testing.T) {
	c := qt.New(t)
	tr := New(nil)
	c.Assert(tr.Import(leaves(4), nil), qt.IsNil)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := tr.Insert(big.NewInt(int64(100 + i))); err != nil {
				panic(err)
			}
		}()
		go func() {
			defer wg.Done()
			proof, err := tr.Witness(0)
			if err != nil {
				panic(err)
			}
			// a witness is always consistent with its own root
			if !proof.Verify(poseidon.HashPair) {
				panic(fmt.Sprintf("inconsistent witness against root %s", proof.Root))
			}
		}()
	}
	wg.Wait()
	c.Assert(tr.Size(), qt.Equals, 12)
}
