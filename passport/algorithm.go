package passport

import (
	"crypto"
	"crypto/rsa"
	_ "crypto/sha256"
	"fmt"
	"math/big"
)

// SignatureAlgorithm identifies the hash and signature scheme of a document.
type SignatureAlgorithm string

const (
	SHA256WithRSAEncryption SignatureAlgorithm = "sha256WithRSAEncryption"
)

type algorithm struct {
	// index identifies the algorithm inside the public key tree leaves.
	index  int64
	hash   crypto.Hash
	verify func(pub *PublicKey, digest, signature []byte) error
}

var algorithms = map[SignatureAlgorithm]algorithm{
	SHA256WithRSAEncryption: {
		index:  1,
		hash:   crypto.SHA256,
		verify: verifyRSAPKCS1v15(crypto.SHA256),
	},
}

func lookup(alg SignatureAlgorithm) (algorithm, error) {
	a, ok := algorithms[alg]
	if !ok {
		return algorithm{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
	return a, nil
}

// Supported reports whether alg has a registered hash and verifier.
func (alg SignatureAlgorithm) Supported() bool {
	_, ok := algorithms[alg]
	return ok
}

// Index returns the identifier of the algorithm used in public key leaves.
func (alg SignatureAlgorithm) Index() (*big.Int, error) {
	a, err := lookup(alg)
	if err != nil {
		return nil, err
	}
	return big.NewInt(a.index), nil
}

// Hash digests b with the hash function of the signature algorithm.
func Hash(alg SignatureAlgorithm, b []byte) ([]byte, error) {
	a, err := lookup(alg)
	if err != nil {
		return nil, err
	}
	h := a.hash.New()
	h.Write(b)
	return h.Sum(nil), nil
}

func verifyRSAPKCS1v15(h crypto.Hash) func(*PublicKey, []byte, []byte) error {
	return func(pub *PublicKey, digest, signature []byte) error {
		key, err := pub.RSA()
		if err != nil {
			return err
		}
		return rsa.VerifyPKCS1v15(key, h, digest, signature)
	}
}
