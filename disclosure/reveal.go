package disclosure

import (
	"fmt"
	"strings"

	"github.com/vocdoni/passport-z-sandbox/passport"
	"github.com/vocdoni/passport-z-sandbox/types"
)

// ErrInvalidMinimumAge is returned for minimum ages which cannot be encoded
// in two decimal digits.
var ErrInvalidMinimumAge = fmt.Errorf("invalid minimum age")

// MinimumAgeDigits encodes the minimum age as two ASCII digits, zero padded.
func MinimumAgeDigits(age int) ([2]byte, error) {
	if age < 0 || age > 99 {
		return [2]byte{}, fmt.Errorf("%w: %d", ErrInvalidMinimumAge, age)
	}
	return [2]byte{byte('0' + age/10), byte('0' + age%10)}, nil
}

// Reveal returns the attribute values a verifier learns from a disclose
// proof built with bitmap. Only fully revealed attributes are returned and
// MRZ fillers are replaced by spaces.
func Reveal(mrz string, bitmap Bitmap, minimumAge int) (map[Attribute]string, error) {
	normalized, err := passport.NormalizeMRZ(mrz)
	if err != nil {
		return nil, err
	}
	digits, err := MinimumAgeDigits(minimumAge)
	if err != nil {
		return nil, err
	}
	source := append([]byte(normalized), digits[:]...)
	if len(source) != types.RevealBitmapLen {
		return nil, fmt.Errorf("unexpected reveal source length %d", len(source))
	}

	revealed := make(map[Attribute]string)
	for _, attr := range bitmap.Revealed() {
		r := Ranges[attr]
		value := strings.ReplaceAll(string(source[r.Start:r.End+1]), string(passport.MRZFiller), " ")
		revealed[attr] = strings.TrimSpace(value)
	}
	return revealed, nil
}
