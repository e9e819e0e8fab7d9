package circuits

import (
	"math/big"
	"strconv"
)

// PadBigInts returns arr zero padded to n elements. Arrays of n or more
// elements are returned as they are.
func PadBigInts(arr []*big.Int, n int) []*big.Int {
	if len(arr) >= n {
		return arr
	}
	padded := make([]*big.Int, n)
	copy(padded, arr)
	for i := len(arr); i < n; i++ {
		padded[i] = big.NewInt(0)
	}
	return padded
}

// BigIntsToStrings renders arr, zero padded to n elements, as decimal
// strings, the circom signal array format.
func BigIntsToStrings(arr []*big.Int, n int) []string {
	padded := PadBigInts(arr, n)
	out := make([]string, len(padded))
	for i, b := range padded {
		out[i] = b.String()
	}
	return out
}

// BytesToStrings renders every byte as a decimal string.
func BytesToStrings(b []byte) []string {
	out := make([]string, len(b))
	for i, v := range b {
		out[i] = strconv.Itoa(int(v))
	}
	return out
}
