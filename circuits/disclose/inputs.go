// Package disclose builds the inputs of the passport disclose circuit, which
// proves a commitment belongs to the commitment tree and reveals the MRZ
// positions selected by a disclosure policy.
package disclose

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/passport-z-sandbox/circuits"
	"github.com/vocdoni/passport-z-sandbox/crypto/field"
	"github.com/vocdoni/passport-z-sandbox/disclosure"
	"github.com/vocdoni/passport-z-sandbox/identity"
	"github.com/vocdoni/passport-z-sandbox/passport"
	"github.com/vocdoni/passport-z-sandbox/tree"
	"github.com/vocdoni/passport-z-sandbox/types"
)

// DateLayout is the YYMMDD layout of the current date signal.
const DateLayout = "060102"

// Request contains everything needed to build the disclose inputs. All the
// parameters are explicit, including the current date.
type Request struct {
	Secret *big.Int
	MRZ    string
	// Tree is the local replica of the commitment tree.
	Tree         *tree.Tree
	Policy       disclosure.Policy
	Scope        *big.Int
	BoundAddress common.Address
	MinimumAge   int
	CurrentDate  time.Time
}

// Inputs are the disclose circuit inputs. Commitment and Nullifier are not
// circuit inputs but the values the circuit is expected to compute.
type Inputs struct {
	Secret         *big.Int
	AttestationID  *big.Int
	MRZ            []byte
	MerkleRoot     *big.Int
	MerkleTreeSize int
	Path           []*big.Int
	Siblings       []*big.Int
	Bitmap         disclosure.Bitmap
	Scope          *big.Int
	CurrentDate    [6]byte
	MinimumAge     [2]byte
	UserIdentifier *big.Int

	Commitment *big.Int
	Nullifier  *big.Int
}

// BuildInputs derives the holder commitment, looks it up in the tree and
// assembles the disclose circuit inputs.
func BuildInputs(req *Request) (*Inputs, error) {
	if req == nil || req.Tree == nil {
		return nil, fmt.Errorf("missing commitment tree")
	}
	if !field.InField(req.Secret) {
		return nil, fmt.Errorf("secret is not a field element")
	}
	if !field.InField(req.Scope) {
		return nil, fmt.Errorf("scope is not a field element")
	}
	if req.CurrentDate.IsZero() {
		return nil, fmt.Errorf("missing current date")
	}
	minimumAge, err := disclosure.MinimumAgeDigits(req.MinimumAge)
	if err != nil {
		return nil, err
	}

	mrz, err := passport.FormatMRZ(req.MRZ)
	if err != nil {
		return nil, err
	}
	packed, err := field.PackN(mrz, field.DefaultGroupSize, types.MRZPackedFields)
	if err != nil {
		return nil, err
	}
	commitment, err := identity.Commitment(req.Secret, packed)
	if err != nil {
		return nil, err
	}
	proof, err := req.Tree.WitnessOf(commitment)
	if err != nil {
		return nil, err
	}
	siblings, path, err := proof.Padded(circuits.CommitmentTreeMaxLevels)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", field.ErrLengthMismatch, err)
	}
	nullifier, err := identity.Nullifier(req.Secret, req.Scope)
	if err != nil {
		return nil, err
	}

	return &Inputs{
		Secret:         new(big.Int).Set(req.Secret),
		AttestationID:  identity.AttestationID(),
		MRZ:            mrz,
		MerkleRoot:     proof.Root,
		MerkleTreeSize: proof.Depth(),
		Path:           path,
		Siblings:       siblings,
		Bitmap:         disclosure.Compile(req.Policy),
		Scope:          new(big.Int).Set(req.Scope),
		CurrentDate:    dateDigits(req.CurrentDate),
		MinimumAge:     minimumAge,
		UserIdentifier: new(big.Int).SetBytes(req.BoundAddress.Bytes()),
		Commitment:     commitment,
		Nullifier:      nullifier,
	}, nil
}

// dateDigits returns the YYMMDD digits of t in UTC as numbers.
func dateDigits(t time.Time) [6]byte {
	var digits [6]byte
	for i, r := range t.UTC().Format(DateLayout) {
		digits[i] = byte(r - '0')
	}
	return digits
}

// CircuitID implements circuits.Inputs.
func (di *Inputs) CircuitID() circuits.CircuitID {
	return circuits.Disclose
}

// CircomInputs implements circuits.Inputs.
func (di *Inputs) CircomInputs() map[string]any {
	return map[string]any{
		"secret":          di.Secret.String(),
		"attestation_id":  di.AttestationID.String(),
		"mrz":             circuits.BytesToStrings(di.MRZ),
		"merkle_root":     di.MerkleRoot.String(),
		"merkletree_size": fmt.Sprint(di.MerkleTreeSize),
		"path":            circuits.BigIntsToStrings(di.Path, circuits.CommitmentTreeMaxLevels),
		"siblings":        circuits.BigIntsToStrings(di.Siblings, circuits.CommitmentTreeMaxLevels),
		"bitmap":          circuits.BigIntsToStrings(di.Bitmap.BigInts(), types.RevealBitmapLen),
		"scope":           di.Scope.String(),
		"current_date":    circuits.BytesToStrings(di.CurrentDate[:]),
		"majority":        circuits.BytesToStrings(di.MinimumAge[:]),
		"user_identifier": di.UserIdentifier.String(),
	}
}
