package passport

import (
	"crypto/sha256"
	"fmt"

	"github.com/vocdoni/passport-z-sandbox/crypto/field"
	"github.com/vocdoni/passport-z-sandbox/types"
)

// SignedContentDigestOffset is the position of the message digest inside
// the signed attributes.
const SignedContentDigestOffset = types.SignedAttributesLen - sha256.Size

// MockSigningTime is the UTCTime stored in the signing time attribute.
const MockSigningTime = "191216172238Z"

var (
	// SET OF, 102 bytes
	signedAttributesHeader = []byte{0x31, 0x66}
	// contentType (1.2.840.113549.1.9.3) = ldsSecurityObject (2.23.136.1.1.1)
	contentTypeAttribute = []byte{
		0x30, 0x15, 0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x09, 0x03,
		0x31, 0x08, 0x06, 0x06, 0x67, 0x81, 0x08, 0x01, 0x01, 0x01,
	}
	// signingTime (1.2.840.113549.1.9.5)
	signingTimeAttribute = append([]byte{
		0x30, 0x1C, 0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x09, 0x05,
		0x31, 0x0F, 0x17, 0x0D,
	}, MockSigningTime...)
	// messageDigest (1.2.840.113549.1.9.4), the OCTET STRING header of the
	// digest is included
	messageDigestAttribute = []byte{
		0x30, 0x2F, 0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x09, 0x04,
		0x31, 0x22, 0x04, 0x20,
	}
)

// AssembleSignedContent builds the signed attributes (eContent) embedding
// the digest of the data group hashes. The signature of the document is
// computed over these bytes.
func AssembleSignedContent(digest []byte) ([]byte, error) {
	if len(digest) != sha256.Size {
		return nil, fmt.Errorf("%w: digest has %d bytes, expected %d",
			field.ErrLengthMismatch, len(digest), sha256.Size)
	}
	out := make([]byte, 0, types.SignedAttributesLen)
	out = append(out, signedAttributesHeader...)
	out = append(out, contentTypeAttribute...)
	out = append(out, signingTimeAttribute...)
	out = append(out, messageDigestAttribute...)
	return append(out, digest...), nil
}
