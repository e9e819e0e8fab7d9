package client

import (
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/go-chi/chi/v5"
	"github.com/vocdoni/arbo/memdb"
	"github.com/vocdoni/passport-z-sandbox/api"
	"github.com/vocdoni/passport-z-sandbox/crypto/hash/poseidon"
	"github.com/vocdoni/passport-z-sandbox/storage"
	"github.com/vocdoni/passport-z-sandbox/tree"
)

func TestClient(t *testing.T) {
	c := qt.New(t)
	a, err := api.New(&api.APIConfig{Storage: storage.New(memdb.New()), DisableServer: true})
	c.Assert(err, qt.IsNil)
	srv := httptest.NewServer(a.Router())
	defer srv.Close()

	cli, err := New(srv.URL)
	c.Assert(err, qt.IsNil)

	local := tree.New(nil)
	c.Assert(cli.FetchTree(local), qt.IsNil)
	c.Assert(local.Size(), qt.Equals, 0)

	for i := range 4 {
		resp, err := cli.AddCommitment(big.NewInt(int64(10 + i)))
		c.Assert(err, qt.IsNil)
		c.Assert(resp.Index, qt.Equals, uint64(i))
	}
	_, err = cli.AddCommitment(big.NewInt(10))
	c.Assert(err, qt.ErrorMatches, ".*409.*")

	c.Assert(cli.FetchTree(local), qt.IsNil)
	c.Assert(local.Size(), qt.Equals, 4)
	root, err := cli.Root()
	c.Assert(err, qt.IsNil)
	c.Assert(root.Root.MathBigInt().Cmp(local.Root()), qt.Equals, 0)

	proof, err := cli.Proof(big.NewInt(12))
	c.Assert(err, qt.IsNil)
	c.Assert(proof.Verify(poseidon.HashPair), qt.IsTrue)
	localProof, err := local.WitnessOf(big.NewInt(12))
	c.Assert(err, qt.IsNil)
	c.Assert(proof.PathIndices, qt.DeepEquals, localProof.PathIndices)

	_, err = cli.Proof(big.NewInt(99))
	c.Assert(errors.Is(err, tree.ErrCommitmentNotFound), qt.IsTrue)
}

func TestClientUnreachable(t *testing.T) {
	c := qt.New(t)
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	_, err := New(url)
	c.Assert(err, qt.IsNotNil)
}

// fakeTracker serves a fixed snapshot and root.
func fakeTracker(snapshot, root string) *httptest.Server {
	r := chi.NewRouter()
	r.Get(api.PingEndpoint, func(w http.ResponseWriter, _ *http.Request) {})
	r.Get(api.CommitmentsEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(snapshot))
	})
	r.Get(api.CommitmentsRootEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(root))
	})
	return httptest.NewServer(r)
}

func TestFetchTreeRootMismatch(t *testing.T) {
	c := qt.New(t)
	local := tree.New(nil)
	c.Assert(local.Import([]*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}, nil), qt.IsNil)
	before := local.Root()

	srv := fakeTracker(`["7","8"]`, `{"root":"12345","size":2}`)
	defer srv.Close()
	cli, err := New(srv.URL)
	c.Assert(err, qt.IsNil)

	err = cli.FetchTree(local)
	c.Assert(errors.Is(err, tree.ErrTreeImportFailed), qt.IsTrue)
	c.Assert(local.Size(), qt.Equals, 3)
	c.Assert(local.Root().Cmp(before), qt.Equals, 0)
}

func TestFetchTreeBadSnapshot(t *testing.T) {
	c := qt.New(t)
	local := tree.New(nil)
	c.Assert(local.Import([]*big.Int{big.NewInt(1), big.NewInt(2)}, nil), qt.IsNil)

	for _, tc := range []struct{ snapshot, root string }{
		{`null`, `{"root":null,"size":0}`},
		{`["7","8"]`, `{"root":null,"size":2}`},
	} {
		srv := fakeTracker(tc.snapshot, tc.root)
		cli, err := New(srv.URL)
		c.Assert(err, qt.IsNil)
		err = cli.FetchTree(local)
		srv.Close()
		c.Assert(errors.Is(err, tree.ErrTreeImportFailed), qt.IsTrue, qt.Commentf("snapshot %s", tc.snapshot))
		c.Assert(local.Size(), qt.Equals, 2)
	}
}
