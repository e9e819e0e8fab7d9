package tests

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/vocdoni/passport-z-sandbox/api"
	"github.com/vocdoni/passport-z-sandbox/api/client"
	"github.com/vocdoni/passport-z-sandbox/crypto/field"
	"github.com/vocdoni/passport-z-sandbox/identity"
	"github.com/vocdoni/passport-z-sandbox/storage"
	"github.com/vocdoni/passport-z-sandbox/types"
	"github.com/vocdoni/passport-z-sandbox/util"
	"go.vocdoni.io/dvote/db/metadb"
)

// SetupAPI creates and starts a new tracker API server on a random port
// backed by a temporary database. It returns a client connected to it.
func SetupAPI(tb testing.TB) (*api.API, *client.HTTPclient, error) {
	port := util.RandomInt(40000, 60000)
	stg := storage.New(metadb.NewTest(tb))

	a, err := api.New(&api.APIConfig{
		Host:    "127.0.0.1",
		Port:    port,
		Storage: stg,
	})
	if err != nil {
		return nil, nil, err
	}
	tb.Cleanup(func() {
		if err := a.Close(context.Background()); err != nil {
			tb.Logf("cannot close the API server: %v", err)
		}
	})

	// Wait for the HTTP server to start
	var cli *client.HTTPclient
	for range 10 {
		time.Sleep(100 * time.Millisecond)
		if cli, err = client.New(fmt.Sprintf("http://127.0.0.1:%d", port)); err == nil {
			return a, cli, nil
		}
	}
	return nil, nil, fmt.Errorf("API server not reachable: %w", err)
}

// RandomCommitments returns n commitments of random holders.
func RandomCommitments(n int) ([]*big.Int, error) {
	commitments := make([]*big.Int, n)
	for i := range commitments {
		secret, err := identity.NewSecret()
		if err != nil {
			return nil, err
		}
		packed := make([]*big.Int, types.MRZPackedFields)
		for j := range packed {
			packed[j] = util.RandomBigInt(field.Modulus())
		}
		if commitments[i], err = identity.Commitment(secret, packed); err != nil {
			return nil, err
		}
	}
	return commitments, nil
}
