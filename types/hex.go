package types

import (
	"encoding/hex"
	"fmt"

	"github.com/vocdoni/passport-z-sandbox/util"
)

// HexBytes is a []byte which encodes as hexadecimal in JSON.
type HexBytes []byte

func (b HexBytes) String() string {
	return "0x" + hex.EncodeToString(b)
}

func (b HexBytes) MarshalJSON() ([]byte, error) {
	enc := make([]byte, hex.EncodedLen(len(b))+4)
	enc[0], enc[1], enc[2] = '"', '0', 'x'
	hex.Encode(enc[3:], b)
	enc[len(enc)-1] = '"'
	return enc, nil
}

// UnmarshalJSON decodes a quoted hex string, with or without the 0x prefix.
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid JSON string: %q", data)
	}
	decoded, err := hex.DecodeString(util.TrimHex(string(data[1 : len(data)-1])))
	if err != nil {
		return fmt.Errorf("invalid hex string: %w", err)
	}
	*b = decoded
	return nil
}

// HexStringToHexBytes decodes a hex string, with or without the 0x prefix.
// It returns nil if the string is not valid hex.
func HexStringToHexBytes(s string) HexBytes {
	b, err := hex.DecodeString(util.TrimHex(s))
	if err != nil {
		return nil
	}
	return b
}
