package storage

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/passport-z-sandbox/log"
	"github.com/vocdoni/passport-z-sandbox/types"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// AddCommitment appends a commitment as the next leaf and records the tree
// root after the insertion. It returns the leaf index assigned, or
// ErrAlreadyExists if the commitment is already stored.
func (s *Storage) AddCommitment(commitment, root *big.Int) (uint64, error) {
	if commitment == nil {
		return 0, fmt.Errorf("nil commitment")
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if _, err := s.commitmentIndex(commitment); err == nil {
		return 0, ErrAlreadyExists
	} else if err != ErrNotFound {
		return 0, err
	}
	md, err := s.TreeMetadata()
	if err != nil {
		return 0, fmt.Errorf("read tree metadata: %w", err)
	}
	index := md.Size
	md.Size++
	md.Root = types.BigIntConverter(root)
	mdBytes, err := encodeArtifact(md)
	if err != nil {
		return 0, err
	}

	leaf := leafBytes(commitment)
	wTx := s.db.WriteTx()
	if err := prefixeddb.NewPrefixedWriteTx(wTx, commitmentPrefix).Set(indexKey(index), leaf); err != nil {
		wTx.Discard()
		return 0, err
	}
	if err := prefixeddb.NewPrefixedWriteTx(wTx, indexPrefix).Set(leaf, indexKey(index)); err != nil {
		wTx.Discard()
		return 0, err
	}
	if err := prefixeddb.NewPrefixedWriteTx(wTx, metadataPrefix).Set(treeMetadataKey, mdBytes); err != nil {
		wTx.Discard()
		return 0, err
	}
	if err := wTx.Commit(); err != nil {
		return 0, err
	}
	log.Debugw("commitment stored", "index", index, "commitment", commitment.String())
	return index, nil
}

// Commitment returns the commitment stored at the given leaf index.
func (s *Storage) Commitment(index uint64) (*big.Int, error) {
	data, err := s.get(commitmentPrefix, indexKey(index))
	if err != nil {
		return nil, err
	}
	return leafFromBytes(data), nil
}

// CommitmentIndex returns the leaf index of a stored commitment.
func (s *Storage) CommitmentIndex(commitment *big.Int) (uint64, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	return s.commitmentIndex(commitment)
}

func (s *Storage) commitmentIndex(commitment *big.Int) (uint64, error) {
	data, err := s.get(indexPrefix, leafBytes(commitment))
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupted index entry for %s", commitment)
	}
	return new(big.Int).SetBytes(data).Uint64(), nil
}

// Commitments returns every stored commitment ordered by leaf index.
func (s *Storage) Commitments() ([]*big.Int, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	md, err := s.TreeMetadata()
	if err != nil {
		return nil, err
	}
	leaves := make([]*big.Int, 0, md.Size)
	for i := range md.Size {
		leaf, err := s.Commitment(i)
		if err != nil {
			return nil, fmt.Errorf("read commitment %d: %w", i, err)
		}
		leaves = append(leaves, leaf)
	}
	return leaves, nil
}
