package api

import "github.com/vocdoni/passport-z-sandbox/types"

// CommitmentRequest is the body of a commitment registration.
type CommitmentRequest struct {
	Commitment *types.BigInt `json:"commitment"`
}

// CommitmentResponse is returned after registering a commitment.
type CommitmentResponse struct {
	Index uint64        `json:"index"`
	Root  *types.BigInt `json:"root"`
}

// TreeRoot is the current state of the commitment tree. Root is null while
// the tree is empty.
type TreeRoot struct {
	Root *types.BigInt `json:"root"`
	Size int           `json:"size"`
}

// CommitmentProof is the inclusion proof of a commitment. PathIndices[i]
// is 1 when the running node is the right child at level i.
type CommitmentProof struct {
	Commitment  *types.BigInt   `json:"commitment"`
	Index       uint64          `json:"index"`
	Root        *types.BigInt   `json:"root"`
	Siblings    []*types.BigInt `json:"siblings"`
	PathIndices []int           `json:"pathIndices"`
}
