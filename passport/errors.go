package passport

import "fmt"

var (
	// ErrMalformedMrz is returned when the MRZ does not have the expected
	// width or charset.
	ErrMalformedMrz = fmt.Errorf("malformed MRZ")
	// ErrUnsupportedAlgorithm is returned for signature algorithms without a
	// registered hash and verifier.
	ErrUnsupportedAlgorithm = fmt.Errorf("unsupported signature algorithm")
	// ErrMalformedDataGroups is returned when the data group digests cannot
	// be encoded into a security object.
	ErrMalformedDataGroups = fmt.Errorf("malformed data group hashes")
	// ErrSignatureBindingMismatch is returned when the MRZ digest is not
	// found in the data group hashes or the signed content does not commit
	// to them.
	ErrSignatureBindingMismatch = fmt.Errorf("signature binding mismatch")
	// ErrSignatureVerificationFailed is returned when the document signature
	// does not verify under its public key.
	ErrSignatureVerificationFailed = fmt.Errorf("signature verification failed")
)
