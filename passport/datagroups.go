package passport

import (
	"crypto/sha256"
	"fmt"
	"sort"
)

// MRZHashOffset is the position of the DG1 digest inside the encoded data
// group hashes.
const MRZHashOffset = 31

// DataGroupHash is the digest of a single data group.
type DataGroupHash struct {
	Number int
	Digest []byte
}

// sha256AlgorithmIdentifier is the DER AlgorithmIdentifier of SHA-256
// (2.16.840.1.101.3.4.2.1).
var sha256AlgorithmIdentifier = []byte{
	0x30, 0x0B, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x01,
}

// ldsVersion is the version field of the security object (INTEGER 0).
var ldsVersion = []byte{0x02, 0x01, 0x00}

// dataGroupEntryLen is the encoded size of one DataGroupHash:
// SEQUENCE { INTEGER number, OCTET STRING digest }.
const dataGroupEntryLen = 2 + 3 + 2 + sha256.Size

// ConcatenateDataGroupHashes encodes the LDS security object carrying the
// MRZ digest (DG1) first, followed by the rest of data groups in ascending
// order. Lengths are always encoded in the two byte long form so the DG1
// digest is found at MRZHashOffset.
func ConcatenateDataGroupHashes(mrzHash []byte, others []DataGroupHash) ([]byte, error) {
	if len(mrzHash) != sha256.Size {
		return nil, fmt.Errorf("%w: MRZ digest has %d bytes", ErrMalformedDataGroups, len(mrzHash))
	}
	groups := make([]DataGroupHash, 0, len(others)+1)
	groups = append(groups, DataGroupHash{Number: 1, Digest: mrzHash})
	seen := map[int]bool{1: true}
	sorted := append([]DataGroupHash(nil), others...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })
	for _, dg := range sorted {
		if dg.Number < 1 || dg.Number > 0x7F {
			return nil, fmt.Errorf("%w: invalid data group number %d", ErrMalformedDataGroups, dg.Number)
		}
		if seen[dg.Number] {
			return nil, fmt.Errorf("%w: duplicated data group %d", ErrMalformedDataGroups, dg.Number)
		}
		if len(dg.Digest) != sha256.Size {
			return nil, fmt.Errorf("%w: data group %d digest has %d bytes",
				ErrMalformedDataGroups, dg.Number, len(dg.Digest))
		}
		seen[dg.Number] = true
		groups = append(groups, dg)
	}

	innerLen := len(groups) * dataGroupEntryLen
	outerLen := len(ldsVersion) + len(sha256AlgorithmIdentifier) + 4 + innerLen
	if outerLen > 0xFFFF {
		return nil, fmt.Errorf("%w: too many data groups", ErrMalformedDataGroups)
	}

	out := make([]byte, 0, 4+outerLen)
	out = append(out, 0x30, 0x82, byte(outerLen>>8), byte(outerLen))
	out = append(out, ldsVersion...)
	out = append(out, sha256AlgorithmIdentifier...)
	out = append(out, 0x30, 0x82, byte(innerLen>>8), byte(innerLen))
	for _, dg := range groups {
		out = append(out, 0x30, dataGroupEntryLen-2, 0x02, 0x01, byte(dg.Number), 0x04, sha256.Size)
		out = append(out, dg.Digest...)
	}
	return out, nil
}

// MRZHashSlot returns the DG1 digest stored in the encoded data group hashes.
func MRZHashSlot(dataGroupHashes []byte, hashLen int) ([]byte, bool) {
	if len(dataGroupHashes) < MRZHashOffset+hashLen {
		return nil, false
	}
	return dataGroupHashes[MRZHashOffset : MRZHashOffset+hashLen], true
}
