package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/arbo"
	"github.com/vocdoni/passport-z-sandbox/crypto"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// Artifact encoding/decoding
func encodeArtifact(a any) ([]byte, error) {
	encOpts := cbor.CoreDetEncOptions()
	em, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return em.Marshal(a)
}

func decodeArtifact(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

// get returns the raw value stored under prefix+key, or ErrNotFound.
func (s *Storage) get(prefix, key []byte) ([]byte, error) {
	data, err := prefixeddb.NewPrefixedReader(s.db, prefix).Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// getArtifact decodes the value stored under prefix+key into out. It
// returns ErrNotFound if the key does not exist.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	data, err := s.get(prefix, key)
	if err != nil {
		return err
	}
	return decodeArtifact(data, out)
}

// indexKey encodes a leaf index as a big endian key, so the natural key
// order is the insertion order.
func indexKey(index uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, index)
	return key
}

// leafBytes encodes a commitment as a fixed width little endian field
// element.
func leafBytes(leaf *big.Int) []byte {
	return arbo.BigIntToBytes(crypto.SerializedFieldSize, leaf)
}

func leafFromBytes(b []byte) *big.Int {
	return arbo.BytesToBigInt(b)
}
