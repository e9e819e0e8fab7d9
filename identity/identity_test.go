package identity

import (
	"errors"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	iden3 "github.com/iden3/go-iden3-crypto/poseidon"
	"github.com/vocdoni/passport-z-sandbox/crypto/field"
	"github.com/vocdoni/passport-z-sandbox/passport"
	"github.com/vocdoni/passport-z-sandbox/types"
)

const sampleMRZ = "P<FRADUPONT<<ALPHONSE<HUGUES<ALBERT<<<<<<<<<24HB818324FRA0402111M3111115<<<<<<<<<<<<<<02"

// packLE mirrors the circuit packing: byte j of group i is shifted j*8 bits.
func packLE(b []byte) []*big.Int {
	packed := []*big.Int{big.NewInt(0), big.NewInt(0), big.NewInt(0)}
	for i := range b {
		v := new(big.Int).Lsh(big.NewInt(int64(b[i])), uint(i%31)*8)
		packed[i/31].Or(packed[i/31], v)
	}
	return packed
}

func TestCommitment(t *testing.T) {
	c := qt.New(t)

	secret := big.NewInt(1234)
	formatted, err := passport.FormatMRZ(sampleMRZ)
	c.Assert(err, qt.IsNil)
	expectedPacked := packLE(formatted)

	packed, err := PackMRZ(sampleMRZ)
	c.Assert(err, qt.IsNil)
	c.Assert(packed, qt.HasLen, types.MRZPackedFields)
	for i := range packed {
		c.Assert(packed[i].Cmp(expectedPacked[i]), qt.Equals, 0)
	}

	commitment, err := Commitment(secret, packed)
	c.Assert(err, qt.IsNil)
	expected, err := iden3.Hash([]*big.Int{secret, expectedPacked[0], expectedPacked[1], expectedPacked[2]})
	c.Assert(err, qt.IsNil)
	c.Assert(commitment.Cmp(expected), qt.Equals, 0)

	// deterministic
	again, err := CommitmentFromMRZ(secret, sampleMRZ)
	c.Assert(err, qt.IsNil)
	c.Assert(again.Cmp(commitment), qt.Equals, 0)

	// a single MRZ character changes the commitment
	changed, err := CommitmentFromMRZ(secret, sampleMRZ[:87]+"3")
	c.Assert(err, qt.IsNil)
	c.Assert(changed.Cmp(commitment), qt.Not(qt.Equals), 0)

	// and so does the secret
	otherSecret, err := CommitmentFromMRZ(big.NewInt(1235), sampleMRZ)
	c.Assert(err, qt.IsNil)
	c.Assert(otherSecret.Cmp(commitment), qt.Not(qt.Equals), 0)

	_, err = Commitment(secret, packed[:2])
	c.Assert(errors.Is(err, field.ErrLengthMismatch), qt.IsTrue)
	_, err = Commitment(field.Modulus(), packed)
	c.Assert(err, qt.IsNotNil)
	_, err = CommitmentFromMRZ(secret, "P<FRA")
	c.Assert(errors.Is(err, passport.ErrMalformedMrz), qt.IsTrue)
}

func TestAttestationID(t *testing.T) {
	c := qt.New(t)
	// "E-PASS" read as a big-endian integer
	expected, err := iden3.Hash([]*big.Int{big.NewInt(0x452D50415353)})
	c.Assert(err, qt.IsNil)
	c.Assert(AttestationID().Cmp(expected), qt.Equals, 0)
}

func TestNullifier(t *testing.T) {
	c := qt.New(t)
	secret, err := NewSecret()
	c.Assert(err, qt.IsNil)
	c.Assert(field.InField(secret), qt.IsTrue)

	n1, err := Nullifier(secret, big.NewInt(1))
	c.Assert(err, qt.IsNil)
	n2, err := Nullifier(secret, big.NewInt(2))
	c.Assert(err, qt.IsNil)
	c.Assert(n1.Cmp(n2), qt.Not(qt.Equals), 0)

	expected, err := iden3.Hash([]*big.Int{secret, big.NewInt(1)})
	c.Assert(err, qt.IsNil)
	c.Assert(n1.Cmp(expected), qt.Equals, 0)
}

func TestScopeFromString(t *testing.T) {
	c := qt.New(t)
	s1, err := ScopeFromString("voting.example.org")
	c.Assert(err, qt.IsNil)
	s2, err := ScopeFromString("voting.example.org")
	c.Assert(err, qt.IsNil)
	c.Assert(s1.Cmp(s2), qt.Equals, 0)
	s3, err := ScopeFromString("airdrop.example.org")
	c.Assert(err, qt.IsNil)
	c.Assert(s1.Cmp(s3), qt.Not(qt.Equals), 0)
	c.Assert(field.InField(s1), qt.IsTrue)

	_, err = ScopeFromString("")
	c.Assert(err, qt.IsNotNil)
}

func TestPublicKeyLeaf(t *testing.T) {
	c := qt.New(t)

	modulus := new(big.Int).Lsh(big.NewInt(1), 2047)
	modulus.Add(modulus, big.NewInt(12345))
	pub := &passport.PublicKey{
		Modulus:  types.BigIntConverter(modulus),
		Exponent: types.NewInt(65537),
	}
	leaf, err := PublicKeyLeaf(pub, passport.SHA256WithRSAEncryption)
	c.Assert(err, qt.IsNil)

	words, err := field.SplitToWords(modulus, 192, 11)
	c.Assert(err, qt.IsNil)
	expected, err := iden3.Hash(append([]*big.Int{big.NewInt(1)}, words...))
	c.Assert(err, qt.IsNil)
	c.Assert(leaf.Cmp(expected), qt.Equals, 0)

	_, err = PublicKeyLeaf(pub, "sha1WithRSAEncryption")
	c.Assert(errors.Is(err, passport.ErrUnsupportedAlgorithm), qt.IsTrue)
}
