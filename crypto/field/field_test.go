package field

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/passport-z-sandbox/util"
)

func TestPackLittleEndian(t *testing.T) {
	c := qt.New(t)

	fields, err := Pack([]byte{0x01, 0x02}, DefaultGroupSize)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.HasLen, 1)
	c.Assert(fields[0].Int64(), qt.Equals, int64(513))

	// 62 bytes need exactly two groups, 63 need three
	fields, err = Pack(make([]byte, 62), DefaultGroupSize)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.HasLen, 2)
	fields, err = Pack(make([]byte, 63), DefaultGroupSize)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.HasLen, 3)

	// the largest 31 byte group is still a field element
	fields, err = Pack(bytes.Repeat([]byte{0xff}, 31), DefaultGroupSize)
	c.Assert(err, qt.IsNil)
	c.Assert(InField(fields[0]), qt.IsTrue)

	_, err = Pack([]byte{1}, 32)
	c.Assert(errors.Is(err, ErrLengthMismatch), qt.IsTrue)
	_, err = Pack([]byte{1}, 0)
	c.Assert(errors.Is(err, ErrLengthMismatch), qt.IsTrue)
}

func TestPackUnpackRoundTrip(t *testing.T) {
	c := qt.New(t)
	for _, size := range []int{1, 30, 31, 93, 100, 297} {
		for _, group := range []int{1, 8, 31} {
			b := util.RandomBytes(size)
			fields, err := Pack(b, group)
			c.Assert(err, qt.IsNil)
			for _, f := range fields {
				c.Assert(InField(f), qt.IsTrue)
			}
			unpacked, err := Unpack(fields, group, len(b))
			c.Assert(err, qt.IsNil)
			c.Assert(unpacked, qt.DeepEquals, b)
		}
	}
}

func TestPackN(t *testing.T) {
	c := qt.New(t)

	fields, err := PackN(make([]byte, 93), DefaultGroupSize, 3)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.HasLen, 3)

	fields, err = PackN([]byte{7}, DefaultGroupSize, 3)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.HasLen, 3)
	c.Assert(fields[2].Sign(), qt.Equals, 0)

	_, err = PackN(make([]byte, 94), DefaultGroupSize, 3)
	c.Assert(errors.Is(err, ErrLengthMismatch), qt.IsTrue)
}

func TestUnpackErrors(t *testing.T) {
	c := qt.New(t)

	// too many bytes requested
	_, err := Unpack([]*big.Int{big.NewInt(1)}, DefaultGroupSize, 32)
	c.Assert(errors.Is(err, ErrLengthMismatch), qt.IsTrue)
	// a whole element would be unused
	_, err = Unpack([]*big.Int{big.NewInt(1), big.NewInt(1)}, DefaultGroupSize, 31)
	c.Assert(errors.Is(err, ErrLengthMismatch), qt.IsTrue)
	// element larger than the group
	_, err = Unpack([]*big.Int{big.NewInt(256)}, 1, 1)
	c.Assert(errors.Is(err, ErrLengthMismatch), qt.IsTrue)
	// empty input is fine
	b, err := Unpack(nil, DefaultGroupSize, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(b, qt.HasLen, 0)
}

func TestSplitToWords(t *testing.T) {
	c := qt.New(t)

	x, ok := new(big.Int).SetString("0102030405060708090a0b0c0d0e0f10", 16)
	c.Assert(ok, qt.IsTrue)
	words, err := SplitToWords(x, 64, 4)
	c.Assert(err, qt.IsNil)
	c.Assert(words, qt.HasLen, 4)
	c.Assert(words[0].Text(16), qt.Equals, "90a0b0c0d0e0f10")
	c.Assert(words[1].Text(16), qt.Equals, "102030405060708")
	c.Assert(words[2].Sign(), qt.Equals, 0)
	c.Assert(words[3].Sign(), qt.Equals, 0)

	// recombine
	acc := new(big.Int)
	for i := len(words) - 1; i >= 0; i-- {
		acc.Lsh(acc, 64).Or(acc, words[i])
	}
	c.Assert(acc.Cmp(x), qt.Equals, 0)

	_, err = SplitToWords(x, 64, 1)
	c.Assert(errors.Is(err, ErrLengthMismatch), qt.IsTrue)
	_, err = SplitToWords(big.NewInt(-1), 64, 1)
	c.Assert(errors.Is(err, ErrLengthMismatch), qt.IsTrue)
}

func TestModulus(t *testing.T) {
	c := qt.New(t)
	c.Assert(Modulus().String(), qt.Equals,
		"21888242871839275222246405745257275088548364400416034343698204186575808495617")
	c.Assert(InField(Modulus()), qt.IsFalse)
	c.Assert(InField(big.NewInt(-1)), qt.IsFalse)
	c.Assert(InField(big.NewInt(0)), qt.IsTrue)
}
