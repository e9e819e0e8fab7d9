package passport

import (
	"fmt"
	"strings"

	"github.com/vocdoni/passport-z-sandbox/types"
)

// MRZFiller is the filler character of the machine readable zone.
const MRZFiller = '<'

// dg1Header is the DG1 tag (0x61) with its length, followed by the MRZ
// data element tag (0x5F1F) and the TD3 MRZ length.
var dg1Header = []byte{0x61, 0x5B, 0x5F, 0x1F, 0x58}

// NormalizeMRZ removes line separators, upper-cases letters and replaces
// spaces with fillers. The result must be a TD3 MRZ of exactly 88
// characters in the [A-Z0-9<] charset.
func NormalizeMRZ(raw string) (string, error) {
	var sb strings.Builder
	sb.Grow(types.MRZLength)
	for _, r := range raw {
		switch {
		case r == '\n' || r == '\r':
			continue
		case r == ' ':
			r = MRZFiller
		case r >= 'a' && r <= 'z':
			r -= 'a' - 'A'
		}
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') && r != MRZFiller {
			return "", fmt.Errorf("%w: invalid character %q", ErrMalformedMrz, r)
		}
		sb.WriteRune(r)
	}
	if sb.Len() != types.MRZLength {
		return "", fmt.Errorf("%w: expected %d characters, got %d",
			ErrMalformedMrz, types.MRZLength, sb.Len())
	}
	return sb.String(), nil
}

// FormatMRZ normalizes the raw MRZ and wraps it in the DG1 structure, the
// exact byte string whose digest is stored in the security object.
func FormatMRZ(raw string) ([]byte, error) {
	mrz, err := NormalizeMRZ(raw)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, types.FormattedMRZLength)
	out = append(out, dg1Header...)
	return append(out, mrz...), nil
}
