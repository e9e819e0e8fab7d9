package passport

import (
	"bytes"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/vocdoni/passport-z-sandbox/types"
)

// Document holds the signed data read from an ePassport chip.
type Document struct {
	MRZ                string             `json:"mrz"`
	SignatureAlgorithm SignatureAlgorithm `json:"signatureAlgorithm"`
	PublicKey          PublicKey          `json:"pubKey"`
	DataGroupHashes    ByteArray          `json:"dataGroupHashes"`
	SignedContent      ByteArray          `json:"eContent"`
	Signature          ByteArray          `json:"encryptedDigest"`
}

// PublicKey is the document signer public key.
type PublicKey struct {
	Modulus  *types.BigInt `json:"modulus"`
	Exponent *types.BigInt `json:"exponent"`
}

// RSA returns the key as an *rsa.PublicKey.
func (pk *PublicKey) RSA() (*rsa.PublicKey, error) {
	if pk.Modulus == nil || pk.Exponent == nil {
		return nil, fmt.Errorf("incomplete RSA public key")
	}
	e := pk.Exponent.MathBigInt()
	if !e.IsInt64() || e.Int64() < 3 || e.Int64() > 1<<31-1 {
		return nil, fmt.Errorf("invalid RSA exponent %s", e)
	}
	return &rsa.PublicKey{
		N: new(big.Int).Set(pk.Modulus.MathBigInt()),
		E: int(e.Int64()),
	}, nil
}

// NewRSAPublicKey wraps an *rsa.PublicKey.
func NewRSAPublicKey(key *rsa.PublicKey) PublicKey {
	return PublicKey{
		Modulus:  types.BigIntConverter(key.N),
		Exponent: types.NewInt(int64(key.E)),
	}
}

// ByteArray is a byte slice encoded in JSON as an array of numbers. Signed
// bytes (-128..127) are accepted when decoding.
type ByteArray []byte

func (b ByteArray) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

func (b *ByteArray) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < -128 || v > 255 {
			return fmt.Errorf("value %d at position %d is not a byte", v, i)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// MRZHash returns the digest of the formatted MRZ, the DG1 digest.
func (d *Document) MRZHash() ([]byte, error) {
	formatted, err := FormatMRZ(d.MRZ)
	if err != nil {
		return nil, err
	}
	return Hash(d.SignatureAlgorithm, formatted)
}

// CheckBinding checks the chain that ties the MRZ to the signed content: the
// MRZ digest must be stored at MRZHashOffset of the data group hashes, and
// the message digest of the signed content must be the digest of the data
// group hashes.
func (d *Document) CheckBinding() error {
	mrzHash, err := d.MRZHash()
	if err != nil {
		return err
	}
	slot, ok := MRZHashSlot(d.DataGroupHashes, len(mrzHash))
	if !ok || !bytes.Equal(slot, mrzHash) {
		return fmt.Errorf("%w: MRZ digest not found in data group hashes", ErrSignatureBindingMismatch)
	}
	dgDigest, err := Hash(d.SignatureAlgorithm, d.DataGroupHashes)
	if err != nil {
		return err
	}
	if len(d.SignedContent) != types.SignedAttributesLen ||
		!bytes.Equal(d.SignedContent[SignedContentDigestOffset:], dgDigest) {
		return fmt.Errorf("%w: signed content does not commit to the data group hashes",
			ErrSignatureBindingMismatch)
	}
	return nil
}

// VerifySignature checks the document signature over the signed content.
func (d *Document) VerifySignature() error {
	alg, err := lookup(d.SignatureAlgorithm)
	if err != nil {
		return err
	}
	digest, err := Hash(d.SignatureAlgorithm, d.SignedContent)
	if err != nil {
		return err
	}
	if err := alg.verify(&d.PublicKey, digest, d.Signature); err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureVerificationFailed, err)
	}
	return nil
}

// Verify checks both the binding and the signature of the document.
func (d *Document) Verify() error {
	if err := d.CheckBinding(); err != nil {
		return err
	}
	return d.VerifySignature()
}
