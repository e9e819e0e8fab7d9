// Package identity derives the field elements that tie a passport holder to
// the commitment tree: the commitment itself, the attestation identifier,
// the nullifier and the document signer key leaf.
package identity

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/vocdoni/passport-z-sandbox/crypto/field"
	"github.com/vocdoni/passport-z-sandbox/crypto/hash/poseidon"
	"github.com/vocdoni/passport-z-sandbox/passport"
	"github.com/vocdoni/passport-z-sandbox/types"
)

// AttestationName is the name of the passport attestation. The attestation
// identifier is derived from its first six bytes.
const AttestationName = "E-PASSPORT"

const (
	// pubKeyLeafWordBits and pubKeyLeafWords split an RSA-2048 modulus into
	// eleven 192 bit chunks.
	pubKeyLeafWordBits = 192
	pubKeyLeafWords    = 11
)

// PackMRZ formats the raw MRZ and packs it into three field elements.
func PackMRZ(mrz string) ([]*big.Int, error) {
	formatted, err := passport.FormatMRZ(mrz)
	if err != nil {
		return nil, err
	}
	return field.PackN(formatted, field.DefaultGroupSize, types.MRZPackedFields)
}

// Commitment returns Poseidon(secret, mrz[0], mrz[1], mrz[2]) where mrz is
// the packed formatted MRZ.
func Commitment(secret *big.Int, packedMRZ []*big.Int) (*big.Int, error) {
	if len(packedMRZ) != types.MRZPackedFields {
		return nil, fmt.Errorf("%w: expected %d packed MRZ elements, got %d",
			field.ErrLengthMismatch, types.MRZPackedFields, len(packedMRZ))
	}
	if !field.InField(secret) {
		return nil, fmt.Errorf("secret is not a field element")
	}
	return poseidon.Hash(secret, packedMRZ[0], packedMRZ[1], packedMRZ[2])
}

// CommitmentFromMRZ packs the raw MRZ and derives the commitment.
func CommitmentFromMRZ(secret *big.Int, mrz string) (*big.Int, error) {
	packed, err := PackMRZ(mrz)
	if err != nil {
		return nil, err
	}
	return Commitment(secret, packed)
}

// AttestationID returns the identifier of the passport attestation.
func AttestationID() *big.Int {
	id, err := poseidon.Hash(new(big.Int).SetBytes([]byte(AttestationName)[:6]))
	if err != nil {
		panic(err)
	}
	return id
}

// Nullifier returns Poseidon(secret, scope), the value a disclose proof
// exposes to prevent a holder from proving twice for the same scope.
func Nullifier(secret, scope *big.Int) (*big.Int, error) {
	return poseidon.Hash(secret, scope)
}

// NewSecret returns a random field element to be used as holder secret.
func NewSecret() (*big.Int, error) {
	return rand.Int(rand.Reader, field.Modulus())
}

// ScopeFromString maps an arbitrary label (an application name, a domain)
// to a field element usable as disclose scope.
func ScopeFromString(label string) (*big.Int, error) {
	if label == "" {
		return nil, fmt.Errorf("empty scope label")
	}
	packed, err := field.Pack([]byte(label), field.DefaultGroupSize)
	if err != nil {
		return nil, err
	}
	return poseidon.MultiPoseidon(packed...)
}

// PublicKeyLeaf returns the leaf of the document signer key tree:
// Poseidon(algorithmIndex, modulus chunks...).
func PublicKeyLeaf(pub *passport.PublicKey, alg passport.SignatureAlgorithm) (*big.Int, error) {
	index, err := alg.Index()
	if err != nil {
		return nil, err
	}
	if pub.Modulus == nil {
		return nil, fmt.Errorf("missing public key modulus")
	}
	words, err := field.SplitToWords(pub.Modulus.MathBigInt(), pubKeyLeafWordBits, pubKeyLeafWords)
	if err != nil {
		return nil, err
	}
	return poseidon.MultiPoseidon(append([]*big.Int{index}, words...)...)
}
