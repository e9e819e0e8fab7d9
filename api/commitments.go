package api

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vocdoni/passport-z-sandbox/crypto/field"
	"github.com/vocdoni/passport-z-sandbox/log"
	stg "github.com/vocdoni/passport-z-sandbox/storage"
	"github.com/vocdoni/passport-z-sandbox/tree"
	"github.com/vocdoni/passport-z-sandbox/types"
)

// commitments returns the tree snapshot, the registered commitments as a
// JSON array of decimal strings ordered by leaf index.
// GET /commitments
func (a *API) commitments(w http.ResponseWriter, r *http.Request) {
	leaves := a.tree.Leaves()
	out := make([]*types.BigInt, len(leaves))
	for i, l := range leaves {
		out[i] = types.BigIntConverter(l)
	}
	httpWriteJSON(w, out)
}

// addCommitment registers a new identity commitment as the next leaf.
// POST /commitments
func (a *API) addCommitment(w http.ResponseWriter, r *http.Request) {
	req := &CommitmentRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.Commitment == nil || !field.InField(req.Commitment.MathBigInt()) {
		ErrMalformedCommitment.With("not a field element").Write(w)
		return
	}
	commitment := new(big.Int).Set(req.Commitment.MathBigInt())

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.tree.IndexOf(commitment); ok {
		ErrCommitmentAlreadyExists.Write(w)
		return
	}
	index, err := a.tree.Insert(commitment)
	if err != nil {
		ErrGenericInternalServerError.Withf("could not insert commitment: %v", err).Write(w)
		return
	}
	root := a.tree.Root()
	if _, err := a.storage.AddCommitment(commitment, root); err != nil {
		// drop the leaf that could not be persisted
		if lerr := a.loadTree(); lerr != nil {
			log.Errorw(lerr, "cannot restore the commitment tree")
		}
		if errors.Is(err, stg.ErrAlreadyExists) {
			ErrCommitmentAlreadyExists.Write(w)
			return
		}
		ErrGenericInternalServerError.Withf("could not store commitment: %v", err).Write(w)
		return
	}
	log.Infow("new commitment", "index", index, "commitment", commitment.String(), "root", root.String())
	httpWriteJSON(w, &CommitmentResponse{
		Index: index,
		Root:  types.BigIntConverter(root),
	})
}

// root returns the current root and size of the commitment tree.
// GET /commitments/root
func (a *API) root(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	resp := &TreeRoot{
		Root: types.BigIntConverter(a.tree.Root()),
		Size: a.tree.Size(),
	}
	a.mu.Unlock()
	httpWriteJSON(w, resp)
}

// proof returns the inclusion proof of a registered commitment.
// GET /commitments/{commitment}/proof
func (a *API) proof(w http.ResponseWriter, r *http.Request) {
	commitment, ok := new(big.Int).SetString(chi.URLParam(r, CommitmentURLParam), 10)
	if !ok || !field.InField(commitment) {
		ErrMalformedCommitment.With("expected a decimal field element").Write(w)
		return
	}
	proof, err := a.tree.WitnessOf(commitment)
	if err != nil {
		if errors.Is(err, tree.ErrCommitmentNotFound) {
			ErrCommitmentNotFound.Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	resp := &CommitmentProof{
		Commitment:  types.BigIntConverter(proof.Leaf),
		Index:       proof.Index,
		Root:        types.BigIntConverter(proof.Root),
		Siblings:    make([]*types.BigInt, len(proof.Siblings)),
		PathIndices: make([]int, len(proof.PathIndices)),
	}
	for i, s := range proof.Siblings {
		resp.Siblings[i] = types.BigIntConverter(s)
		resp.PathIndices[i] = int(proof.PathIndices[i])
	}
	httpWriteJSON(w, resp)
}
