// Package register builds the inputs of the passport register circuit,
// which proves a document is signed by a known document signer key and
// outputs the holder identity commitment.
package register

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/passport-z-sandbox/circuits"
	"github.com/vocdoni/passport-z-sandbox/crypto"
	"github.com/vocdoni/passport-z-sandbox/crypto/field"
	"github.com/vocdoni/passport-z-sandbox/identity"
	"github.com/vocdoni/passport-z-sandbox/passport"
	"github.com/vocdoni/passport-z-sandbox/tree"
	"github.com/vocdoni/passport-z-sandbox/types"
)

// Request contains everything needed to build the register inputs.
type Request struct {
	Secret   *big.Int
	Document *passport.Document
	// PublicKeyTree holds the accepted document signer keys. If nil, a tree
	// with only the document key is used.
	PublicKeyTree *tree.Tree
}

// Inputs are the register circuit inputs. Commitment and PublicKeyLeaf are
// not circuit inputs but the values the circuit is expected to compute.
type Inputs struct {
	Secret                   *big.Int
	AttestationID            *big.Int
	MRZ                      []byte
	DataGroupHashes          []byte
	DataGroupHashesPaddedLen int
	SignedAttributes         []byte
	Signature                []*big.Int
	PublicKey                []*big.Int
	PublicKeyRoot            *big.Int
	PublicKeyPath            []*big.Int
	PublicKeySiblings        []*big.Int

	Commitment    *big.Int
	PublicKeyLeaf *big.Int
}

// BuildInputs checks the document binding and signature and assembles the
// register circuit inputs.
func BuildInputs(req *Request) (*Inputs, error) {
	if req == nil || req.Document == nil {
		return nil, fmt.Errorf("missing document")
	}
	doc := req.Document
	if !field.InField(req.Secret) {
		return nil, fmt.Errorf("secret is not a field element")
	}
	if doc.SignatureAlgorithm != passport.SHA256WithRSAEncryption {
		return nil, fmt.Errorf("%w: register circuit only supports %s, got %q",
			passport.ErrUnsupportedAlgorithm, passport.SHA256WithRSAEncryption, doc.SignatureAlgorithm)
	}
	if err := doc.CheckBinding(); err != nil {
		return nil, err
	}
	if err := doc.VerifySignature(); err != nil {
		return nil, err
	}

	mrz, err := passport.FormatMRZ(doc.MRZ)
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

	dgHashes, paddedLen, err := crypto.PadSHA256(doc.DataGroupHashes, types.DataGroupHashesMaxLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", field.ErrLengthMismatch, err)
	}
	signature, err := field.SplitToWords(new(big.Int).SetBytes(doc.Signature), types.RSAWordBits, types.RSAWords)
	if err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}
	if doc.PublicKey.Modulus == nil {
		return nil, fmt.Errorf("missing public key modulus")
	}
	pubKey, err := field.SplitToWords(doc.PublicKey.Modulus.MathBigInt(), types.RSAWordBits, types.RSAWords)
	if err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}

	leaf, err := identity.PublicKeyLeaf(&doc.PublicKey, doc.SignatureAlgorithm)
	if err != nil {
		return nil, err
	}
	keys := req.PublicKeyTree
	if keys == nil {
		keys = tree.New(nil)
		if _, err := keys.Insert(leaf); err != nil {
			return nil, err
		}
	}
	proof, err := keys.WitnessOf(leaf)
	if err != nil {
		return nil, fmt.Errorf("document signer key: %w", err)
	}
	siblings, path, err := proof.Padded(circuits.PublicKeyTreeMaxLevels)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", field.ErrLengthMismatch, err)
	}

	return &Inputs{
		Secret:                   new(big.Int).Set(req.Secret),
		AttestationID:            identity.AttestationID(),
		MRZ:                      mrz,
		DataGroupHashes:          dgHashes,
		DataGroupHashesPaddedLen: paddedLen,
		SignedAttributes:         append([]byte(nil), doc.SignedContent...),
		Signature:                signature,
		PublicKey:                pubKey,
		PublicKeyRoot:            proof.Root,
		PublicKeyPath:            path,
		PublicKeySiblings:        siblings,
		Commitment:               commitment,
		PublicKeyLeaf:            leaf,
	}, nil
}

// CircuitID implements circuits.Inputs.
func (ri *Inputs) CircuitID() circuits.CircuitID {
	return circuits.RegisterSHA256WithRSA65537
}

// CircomInputs implements circuits.Inputs.
func (ri *Inputs) CircomInputs() map[string]any {
	return map[string]any{
		"secret":                   ri.Secret.String(),
		"attestation_id":           ri.AttestationID.String(),
		"mrz":                      circuits.BytesToStrings(ri.MRZ),
		"econtent":                 circuits.BytesToStrings(ri.DataGroupHashes),
		"datahashes_padded_length": fmt.Sprint(ri.DataGroupHashesPaddedLen),
		"signed_attributes":        circuits.BytesToStrings(ri.SignedAttributes),
		"signature":                circuits.BigIntsToStrings(ri.Signature, types.RSAWords),
		"pubkey":                   circuits.BigIntsToStrings(ri.PublicKey, types.RSAWords),
		"merkle_root":              ri.PublicKeyRoot.String(),
		"path":                     circuits.BigIntsToStrings(ri.PublicKeyPath, circuits.PublicKeyTreeMaxLevels),
		"siblings":                 circuits.BigIntsToStrings(ri.PublicKeySiblings, circuits.PublicKeyTreeMaxLevels),
	}
}
