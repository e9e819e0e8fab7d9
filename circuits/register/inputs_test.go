package register

import (
	"errors"
	"math/big"
	"sort"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
	passporttest "github.com/vocdoni/passport-z-sandbox/circuits/test/passport"
	"github.com/vocdoni/passport-z-sandbox/identity"
	"github.com/vocdoni/passport-z-sandbox/passport"
	"github.com/vocdoni/passport-z-sandbox/tree"
	"github.com/vocdoni/passport-z-sandbox/types"
)

var (
	mockOnce sync.Once
	mockDoc  *passport.Document
	mockErr  error
)

func testDocument(c *qt.C) *passport.Document {
	mockOnce.Do(func() {
		mockDoc, _, mockErr = passporttest.GenMockDocumentForTest()
	})
	c.Assert(mockErr, qt.IsNil)
	cp := *mockDoc
	cp.DataGroupHashes = append(passport.ByteArray(nil), mockDoc.DataGroupHashes...)
	cp.SignedContent = append(passport.ByteArray(nil), mockDoc.SignedContent...)
	cp.Signature = append(passport.ByteArray(nil), mockDoc.Signature...)
	return &cp
}

func TestBuildInputs(t *testing.T) {
	c := qt.New(t)
	doc := testDocument(c)
	secret := big.NewInt(424242)

	inputs, err := BuildInputs(&Request{Secret: secret, Document: doc})
	c.Assert(err, qt.IsNil)

	expectedCommitment, err := identity.CommitmentFromMRZ(secret, doc.MRZ)
	c.Assert(err, qt.IsNil)
	c.Assert(inputs.Commitment.Cmp(expectedCommitment), qt.Equals, 0)
	c.Assert(inputs.AttestationID.Cmp(identity.AttestationID()), qt.Equals, 0)

	// with no key tree the root is the key leaf itself
	c.Assert(inputs.PublicKeyRoot.Cmp(inputs.PublicKeyLeaf), qt.Equals, 0)

	// the limbs recompose the signature
	sig := new(big.Int)
	for i := len(inputs.Signature) - 1; i >= 0; i-- {
		sig.Lsh(sig, types.RSAWordBits).Or(sig, inputs.Signature[i])
	}
	c.Assert(sig.Cmp(new(big.Int).SetBytes(doc.Signature)), qt.Equals, 0)

	circom := inputs.CircomInputs()
	keys := make([]string, 0, len(circom))
	for k := range circom {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	c.Assert(keys, qt.DeepEquals, []string{
		"attestation_id", "datahashes_padded_length", "econtent", "merkle_root", "mrz",
		"path", "pubkey", "secret", "siblings", "signature", "signed_attributes",
	})
	c.Assert(circom["secret"], qt.Equals, "424242")
	c.Assert(circom["mrz"], qt.HasLen, types.FormattedMRZLength)
	c.Assert(circom["mrz"].([]string)[:5], qt.DeepEquals, []string{"97", "91", "95", "31", "88"})
	c.Assert(circom["econtent"], qt.HasLen, types.DataGroupHashesMaxLen)
	c.Assert(circom["datahashes_padded_length"], qt.Equals, "320")
	c.Assert(circom["signed_attributes"], qt.HasLen, types.SignedAttributesLen)
	c.Assert(circom["signature"], qt.HasLen, types.RSAWords)
	c.Assert(circom["pubkey"], qt.HasLen, types.RSAWords)
	c.Assert(circom["path"], qt.HasLen, 16)
	c.Assert(circom["siblings"], qt.HasLen, 16)
	c.Assert(string(inputs.CircuitID()), qt.Equals, "register_sha256WithRSAEncryption_65537")
}

func TestBuildInputsWithKeyTree(t *testing.T) {
	c := qt.New(t)
	doc := testDocument(c)

	leaf, err := identity.PublicKeyLeaf(&doc.PublicKey, doc.SignatureAlgorithm)
	c.Assert(err, qt.IsNil)
	keys := tree.New(nil)
	for i := range 5 {
		_, err := keys.Insert(big.NewInt(int64(1000 + i)))
		c.Assert(err, qt.IsNil)
	}
	_, err = keys.Insert(leaf)
	c.Assert(err, qt.IsNil)

	inputs, err := BuildInputs(&Request{Secret: big.NewInt(1), Document: doc, PublicKeyTree: keys})
	c.Assert(err, qt.IsNil)
	c.Assert(inputs.PublicKeyRoot.Cmp(keys.Root()), qt.Equals, 0)

	// a tree without the document key is rejected
	other := tree.New(nil)
	_, err = other.Insert(big.NewInt(7))
	c.Assert(err, qt.IsNil)
	_, err = BuildInputs(&Request{Secret: big.NewInt(1), Document: doc, PublicKeyTree: other})
	c.Assert(errors.Is(err, tree.ErrCommitmentNotFound), qt.IsTrue)
}

func TestBuildInputsErrors(t *testing.T) {
	c := qt.New(t)

	doc := testDocument(c)
	doc.MRZ = passporttest.SampleMRZ[:87] + "3"
	_, err := BuildInputs(&Request{Secret: big.NewInt(1), Document: doc})
	c.Assert(errors.Is(err, passport.ErrSignatureBindingMismatch), qt.IsTrue)

	doc = testDocument(c)
	doc.Signature[5] ^= 0xff
	_, err = BuildInputs(&Request{Secret: big.NewInt(1), Document: doc})
	c.Assert(errors.Is(err, passport.ErrSignatureVerificationFailed), qt.IsTrue)

	doc = testDocument(c)
	doc.SignatureAlgorithm = "ecdsa-with-SHA256"
	_, err = BuildInputs(&Request{Secret: big.NewInt(1), Document: doc})
	c.Assert(errors.Is(err, passport.ErrUnsupportedAlgorithm), qt.IsTrue)

	doc = testDocument(c)
	doc.MRZ = "P<FRA"
	_, err = BuildInputs(&Request{Secret: big.NewInt(1), Document: doc})
	c.Assert(errors.Is(err, passport.ErrMalformedMrz), qt.IsTrue)

	_, err = BuildInputs(&Request{Secret: big.NewInt(-1), Document: testDocument(c)})
	c.Assert(err, qt.IsNotNil)
	_, err = BuildInputs(&Request{Secret: big.NewInt(1)})
	c.Assert(err, qt.IsNotNil)
}
