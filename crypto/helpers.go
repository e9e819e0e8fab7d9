package crypto

import (
	"encoding/binary"
	"fmt"
)

const SerializedFieldSize = 32 // bytes

// PadSHA256 applies the SHA-256 message padding (0x80, zeros and the 64 bit
// big-endian bit length) to msg and then fills it with zeros up to maxLen.
// It returns the padded buffer and the length of the SHA-256 padded message,
// which is what circuits hashing variable length inputs expect.
func PadSHA256(msg []byte, maxLen int) ([]byte, int, error) {
	paddedLen := len(msg) + 1 + 8
	if rem := paddedLen % 64; rem != 0 {
		paddedLen += 64 - rem
	}
	if paddedLen > maxLen {
		return nil, 0, fmt.Errorf("padded message length %d exceeds %d", paddedLen, maxLen)
	}
	padded := make([]byte, maxLen)
	copy(padded, msg)
	padded[len(msg)] = 0x80
	binary.BigEndian.PutUint64(padded[paddedLen-8:paddedLen], uint64(len(msg))*8)
	return padded, paddedLen, nil
}
