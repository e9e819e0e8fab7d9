package client

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/vocdoni/passport-z-sandbox/api"
	"github.com/vocdoni/passport-z-sandbox/tree"
	"github.com/vocdoni/passport-z-sandbox/types"
)

// apiError decodes the error returned by the API, if any.
func apiError(data []byte, status int) error {
	if status == http.StatusOK {
		return nil
	}
	var e struct {
		Err  string `json:"error"`
		Code int    `json:"code"`
	}
	if err := json.Unmarshal(data, &e); err != nil || e.Err == "" {
		return fmt.Errorf("%s: %d (%s)", errCodeNot200, status, strings.TrimSpace(string(data)))
	}
	return fmt.Errorf("%s: %d code %d (%s)", errCodeNot200, status, e.Code, e.Err)
}

// FetchSnapshot returns the serialized commitment tree, a JSON array with
// the leaves ordered by index, ready for tree.ImportSnapshot.
func (c *HTTPclient) FetchSnapshot() ([]byte, error) {
	data, status, err := c.Request(HTTPGET, nil, nil, api.CommitmentsEndpoint)
	if err != nil {
		return nil, err
	}
	if err := apiError(data, status); err != nil {
		return nil, err
	}
	return data, nil
}

// FetchTree downloads the snapshot and imports it into the given tree. When
// the snapshot has the size reported by the tracker, its root must match
// before the tree is replaced. On any error the tree is left untouched.
func (c *HTTPclient) FetchTree(t *tree.Tree) error {
	root, err := c.Root()
	if err != nil {
		return err
	}
	snapshot, err := c.FetchSnapshot()
	if err != nil {
		return err
	}
	leaves, stated, err := tree.DecodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	if len(leaves) != root.Size {
		// the tracker grew in between, the snapshot is still consistent
		return t.Import(leaves, stated)
	}
	if root.Root == nil {
		if len(leaves) != 0 {
			return fmt.Errorf("%w: tracker reports no root for %d leaves",
				tree.ErrTreeImportFailed, len(leaves))
		}
		return t.Import(leaves, nil)
	}
	if err := t.Import(leaves, root.Root.MathBigInt()); err != nil {
		return fmt.Errorf("tracker root mismatch: %w", err)
	}
	return nil
}

// AddCommitment registers a commitment and returns its leaf index and the
// new tree root.
func (c *HTTPclient) AddCommitment(commitment *big.Int) (*api.CommitmentResponse, error) {
	req := &api.CommitmentRequest{Commitment: types.BigIntConverter(commitment)}
	data, status, err := c.Request(HTTPPOST, req, nil, api.CommitmentsEndpoint)
	if err != nil {
		return nil, err
	}
	if err := apiError(data, status); err != nil {
		return nil, err
	}
	resp := &api.CommitmentResponse{}
	if err := json.Unmarshal(data, resp); err != nil {
		return nil, fmt.Errorf("could not decode response: %w", err)
	}
	return resp, nil
}

// Root returns the current root and size of the tracker tree.
func (c *HTTPclient) Root() (*api.TreeRoot, error) {
	data, status, err := c.Request(HTTPGET, nil, nil, api.CommitmentsRootEndpoint)
	if err != nil {
		return nil, err
	}
	if err := apiError(data, status); err != nil {
		return nil, err
	}
	resp := &api.TreeRoot{}
	if err := json.Unmarshal(data, resp); err != nil {
		return nil, fmt.Errorf("could not decode response: %w", err)
	}
	return resp, nil
}

// Proof returns the tracker inclusion proof of a commitment.
func (c *HTTPclient) Proof(commitment *big.Int) (*tree.Proof, error) {
	data, status, err := c.Request(HTTPGET, nil, nil, "commitments", commitment.String(), "proof")
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", tree.ErrCommitmentNotFound, commitment)
	}
	if err := apiError(data, status); err != nil {
		return nil, err
	}
	resp := &api.CommitmentProof{}
	if err := json.Unmarshal(data, resp); err != nil {
		return nil, fmt.Errorf("could not decode response: %w", err)
	}
	proof := &tree.Proof{
		Leaf:        resp.Commitment.MathBigInt(),
		Index:       resp.Index,
		Root:        resp.Root.MathBigInt(),
		Siblings:    make([]*big.Int, len(resp.Siblings)),
		PathIndices: make([]uint8, len(resp.PathIndices)),
	}
	for i, s := range resp.Siblings {
		proof.Siblings[i] = s.MathBigInt()
	}
	for i, p := range resp.PathIndices {
		proof.PathIndices[i] = uint8(p)
	}
	return proof, nil
}
