package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// BigInt is a big.Int wrapper which marshals to and from decimal strings in
// JSON and CBOR, the representation circom and the tracker API expect.
type BigInt big.Int

// NewInt returns a new BigInt set to x.
func NewInt(x int64) *BigInt {
	return (*BigInt)(big.NewInt(x))
}

// BigIntConverter converts a *big.Int into a *BigInt.
func BigIntConverter(x *big.Int) *BigInt {
	if x == nil {
		return nil
	}
	return (*BigInt)(new(big.Int).Set(x))
}

// MathBigInt returns the underlying *big.Int.
func (i *BigInt) MathBigInt() *big.Int {
	return (*big.Int)(i)
}

// String returns the decimal representation.
func (i *BigInt) String() string {
	return (*big.Int)(i).String()
}

// SetString sets the value from a decimal string.
func (i *BigInt) SetString(s string) (*BigInt, error) {
	if _, ok := (*big.Int)(i).SetString(s, 10); !ok {
		return nil, fmt.Errorf("invalid decimal number %q", s)
	}
	return i, nil
}

// Bytes returns the big-endian absolute value.
func (i *BigInt) Bytes() []byte {
	return (*big.Int)(i).Bytes()
}

// SetBytes sets the value from big-endian bytes.
func (i *BigInt) SetBytes(b []byte) *BigInt {
	(*big.Int)(i).SetBytes(b)
	return i
}

// Equal reports whether both values are the same number.
func (i *BigInt) Equal(j *BigInt) bool {
	if i == nil || j == nil {
		return i == j
	}
	return (*big.Int)(i).Cmp((*big.Int)(j)) == 0
}

func (i *BigInt) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *BigInt) UnmarshalText(data []byte) error {
	_, err := i.SetString(string(data))
	return err
}

func (i BigInt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + i.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted and unquoted decimal numbers.
func (i *BigInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return fmt.Errorf("empty number")
	}
	_, err := i.SetString(s)
	return err
}

func (i BigInt) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(i.String())
}

func (i *BigInt) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	_, err := i.SetString(s)
	return err
}
