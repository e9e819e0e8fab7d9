package passporttest

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	"github.com/vocdoni/passport-z-sandbox/passport"
)

// MockRSABits and MockRSAExponent define the document signer key of the
// mock documents.
const (
	MockRSABits     = 2048
	MockRSAExponent = 65537
)

// SampleMRZ is the MRZ of the mock document holder.
const SampleMRZ = "P<FRADUPONT<<ALPHONSE<HUGUES<ALBERT<<<<<<<<<24HB818324FRA0402111M3111115<<<<<<<<<<<<<<02"

// SampleDataGroupHashes are fixed SHA-256 digests of the data groups 2, 3,
// 11, 12, 13 and 14 of the mock document.
var SampleDataGroupHashes = []passport.DataGroupHash{
	{Number: 2, Digest: signedBytes(-66, 82, -76, -21, -34, 33, 79, 50, -104, -120, -114, 35, 116, -32, 6, -14, -100, -115, -128, -8, 10, 61, 98, 86, -8, 45, -49, -46, 90, -24, -81, 38)},
	{Number: 3, Digest: signedBytes(0, -62, 104, 108, -19, -10, 97, -26, 116, -58, 69, 110, 26, 87, 17, 89, 110, -57, 108, -6, 36, 21, 39, 87, 110, 102, -6, -43, -82, -125, -85, -82)},
	{Number: 11, Digest: signedBytes(-120, -101, 87, -112, 111, 15, -104, 127, 85, 25, -102, 81, 20, 58, 51, 75, -63, 116, -22, 0, 60, 30, 29, 30, -73, -115, 72, -9, -1, -53, 100, 124)},
	{Number: 12, Digest: signedBytes(41, -22, 106, 78, 31, 11, 114, -119, -19, 17, 92, 71, -122, 47, 62, 78, -67, -23, -55, -42, 53, 4, 47, -67, -55, -123, 6, 121, 34, -125, 64, -114)},
	{Number: 13, Digest: signedBytes(91, -34, -46, -63, 62, -34, 104, 82, 36, 41, -118, -3, 70, 15, -108, -48, -100, 45, 105, -85, -15, -61, -71, 43, -39, -94, -110, -55, -34, 89, -18, 38)},
	{Number: 14, Digest: signedBytes(76, 123, -40, 13, 51, -29, 72, -11, 59, -63, -18, -90, 103, 49, 23, -92, -85, -68, -62, -59, -100, -69, -7, 28, -58, 95, 69, 15, -74, 56, 54, 38)},
}

func signedBytes(values ...int) []byte {
	out := make([]byte, len(values))
	for i, v := range values {
		out[i] = byte(v)
	}
	return out
}

// GenMockDocumentForTest generates a document for the sample holder signed
// with a fresh RSA-2048 key. The private key is returned too.
func GenMockDocumentForTest() (*passport.Document, *rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, MockRSABits)
	if err != nil {
		return nil, nil, fmt.Errorf("generate RSA key: %w", err)
	}
	doc, err := GenMockDocumentWithKeyForTest(SampleMRZ, key)
	if err != nil {
		return nil, nil, err
	}
	return doc, key, nil
}

// GenMockDocumentWithKeyForTest generates a document for the MRZ provided
// signed with the given key.
func GenMockDocumentWithKeyForTest(mrz string, key *rsa.PrivateKey) (*passport.Document, error) {
	alg := passport.SHA256WithRSAEncryption
	formatted, err := passport.FormatMRZ(mrz)
	if err != nil {
		return nil, err
	}
	mrzHash, err := passport.Hash(alg, formatted)
	if err != nil {
		return nil, err
	}
	dgHashes, err := passport.ConcatenateDataGroupHashes(mrzHash, SampleDataGroupHashes)
	if err != nil {
		return nil, err
	}
	dgDigest, err := passport.Hash(alg, dgHashes)
	if err != nil {
		return nil, err
	}
	content, err := passport.AssembleSignedContent(dgDigest)
	if err != nil {
		return nil, err
	}
	contentDigest := sha256.Sum256(content)
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, contentDigest[:])
	if err != nil {
		return nil, fmt.Errorf("sign content: %w", err)
	}
	return &passport.Document{
		MRZ:                mrz,
		SignatureAlgorithm: alg,
		PublicKey:          passport.NewRSAPublicKey(&key.PublicKey),
		DataGroupHashes:    dgHashes,
		SignedContent:      content,
		Signature:          signature,
	}, nil
}

// VerifyMockDocumentForTest recomputes the MRZ digest, checks it at its
// fixed position in the data group hashes, checks the message digest of the
// signed content and verifies the RSA signature.
func VerifyMockDocumentForTest(doc *passport.Document) bool {
	formatted, err := passport.FormatMRZ(doc.MRZ)
	if err != nil {
		return false
	}
	mrzHash := sha256.Sum256(formatted)
	if len(doc.DataGroupHashes) < passport.MRZHashOffset+sha256.Size ||
		!bytes.Equal(doc.DataGroupHashes[passport.MRZHashOffset:passport.MRZHashOffset+sha256.Size], mrzHash[:]) {
		return false
	}
	dgDigest := sha256.Sum256(doc.DataGroupHashes)
	if len(doc.SignedContent) < sha256.Size ||
		!bytes.Equal(doc.SignedContent[len(doc.SignedContent)-sha256.Size:], dgDigest[:]) {
		return false
	}
	pub, err := doc.PublicKey.RSA()
	if err != nil {
		return false
	}
	contentDigest := sha256.Sum256(doc.SignedContent)
	return rsa.VerifyPKCS1v15(pub, crypto.SHA256, contentDigest[:], doc.Signature) == nil
}
