// storage package persists the state of the commitment tracker on a
// key-value database. The following prefixes are used:
//   - 'm/' for metadata (the tree size and root)
//   - 'c/' for commitments, keyed by their big endian leaf index
//   - 'i/' for the reverse index, commitment to leaf index
//
// Commitments are append only: a leaf index is never reused nor removed.
package storage

import (
	"fmt"
	"sync"

	"github.com/vocdoni/passport-z-sandbox/log"
	"github.com/vocdoni/passport-z-sandbox/types"
	"go.vocdoni.io/dvote/db"
)

var (
	// Prefixes for the keys in the database.
	metadataPrefix   = []byte("m/")
	commitmentPrefix = []byte("c/")
	indexPrefix      = []byte("i/")

	treeMetadataKey = []byte("tree")
)

var (
	// ErrNotFound is returned when the requested artifact is not stored.
	ErrNotFound = fmt.Errorf("not found")
	// ErrAlreadyExists is returned when a commitment is stored twice.
	ErrAlreadyExists = fmt.Errorf("already exists")
)

// TreeMetadata describes the stored commitment tree.
type TreeMetadata struct {
	Size uint64        `cbor:"0,keyasint"`
	Root *types.BigInt `cbor:"1,keyasint,omitempty"`
}

// Storage wraps the database with the tracker operations.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex
}

// New creates a new Storage instance.
func New(db db.Database) *Storage {
	return &Storage{db: db}
}

// Close closes the storage.
func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		log.Warnw("cannot close storage", "error", err.Error())
	}
}

// TreeMetadata returns the stored tree size and root. An empty storage
// returns zero size and a nil root.
func (s *Storage) TreeMetadata() (*TreeMetadata, error) {
	md := &TreeMetadata{}
	if err := s.getArtifact(metadataPrefix, treeMetadataKey, md); err != nil {
		if err == ErrNotFound {
			return &TreeMetadata{}, nil
		}
		return nil, err
	}
	return md, nil
}
