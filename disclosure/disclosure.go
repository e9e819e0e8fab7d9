// Package disclosure compiles a selective disclosure policy into the reveal
// bitmap of the disclose circuit.
package disclosure

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/vocdoni/passport-z-sandbox/types"
)

var (
	// ErrUnknownAttribute is returned when parsing a policy with an
	// attribute not in the closed set.
	ErrUnknownAttribute = fmt.Errorf("unknown attribute")
	// ErrUnknownMode is returned when parsing a policy with an invalid mode.
	ErrUnknownMode = fmt.Errorf("unknown revelation mode")
)

// Attribute is a disclosable passport attribute.
type Attribute string

const (
	IssuingState   Attribute = "issuing_state"
	Name           Attribute = "name"
	PassportNumber Attribute = "passport_number"
	Nationality    Attribute = "nationality"
	DateOfBirth    Attribute = "date_of_birth"
	Gender         Attribute = "gender"
	ExpiryDate     Attribute = "expiry_date"
	OlderThan      Attribute = "older_than"
)

// Mode is how an attribute is revealed. The zero value hides it.
type Mode int

const (
	Hidden Mode = iota
	Optional
	Required
)

var modeNames = map[Mode]string{
	Hidden:   "hidden",
	Optional: "optional",
	Required: "required",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Range is an inclusive range of bitmap positions. Positions below
// types.MRZLength are raw MRZ character offsets, the last two are the
// minimum age digits.
type Range struct {
	Start int
	End   int
}

// Ranges maps every attribute to its bitmap positions.
var Ranges = map[Attribute]Range{
	IssuingState:   {2, 4},
	Name:           {5, 43},
	PassportNumber: {44, 52},
	Nationality:    {54, 56},
	DateOfBirth:    {57, 62},
	Gender:         {64, 64},
	ExpiryDate:     {65, 70},
	OlderThan:      {88, 89},
}

// Attributes returns the disclosable attributes in bitmap order.
func Attributes() []Attribute {
	attrs := make([]Attribute, 0, len(Ranges))
	for a := range Ranges {
		attrs = append(attrs, a)
	}
	sort.Slice(attrs, func(i, j int) bool { return Ranges[attrs[i]].Start < Ranges[attrs[j]].Start })
	return attrs
}

// Policy maps attributes to their revelation mode. Missing attributes are
// hidden.
type Policy map[Attribute]Mode

// Bitmap is the reveal bitmap, one entry per position.
type Bitmap [types.RevealBitmapLen]uint8

// Compile sets the positions of every required or optional attribute. The
// result always has the full bitmap length.
func Compile(policy Policy) Bitmap {
	var bitmap Bitmap
	for attr, mode := range policy {
		if mode != Required && mode != Optional {
			continue
		}
		r, ok := Ranges[attr]
		if !ok {
			continue
		}
		for i := r.Start; i <= r.End; i++ {
			bitmap[i] = 1
		}
	}
	return bitmap
}

// ParsePolicy builds a policy from attribute names and mode names
// ("required", "optional", "hidden" or empty).
func ParsePolicy(raw map[string]string) (Policy, error) {
	policy := make(Policy, len(raw))
	for name, modeName := range raw {
		attr := Attribute(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := Ranges[attr]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
		}
		switch strings.ToLower(strings.TrimSpace(modeName)) {
		case "required":
			policy[attr] = Required
		case "optional":
			policy[attr] = Optional
		case "hidden", "":
			policy[attr] = Hidden
		default:
			return nil, fmt.Errorf("%w: %q for attribute %q", ErrUnknownMode, modeName, name)
		}
	}
	return policy, nil
}

// BigInts returns the bitmap as field elements.
func (b Bitmap) BigInts() []*big.Int {
	out := make([]*big.Int, len(b))
	for i, v := range b {
		out[i] = big.NewInt(int64(v))
	}
	return out
}

// Revealed returns the attributes whose positions are fully set.
func (b Bitmap) Revealed() []Attribute {
	var out []Attribute
	for _, attr := range Attributes() {
		r := Ranges[attr]
		all := true
		for i := r.Start; i <= r.End; i++ {
			if b[i] != 1 {
				all = false
				break
			}
		}
		if all {
			out = append(out, attr)
		}
	}
	return out
}
