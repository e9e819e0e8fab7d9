package circuits

import "github.com/vocdoni/passport-z-sandbox/types"

// CircuitID identifies a circom circuit.
type CircuitID string

const (
	RegisterSHA256WithRSA65537 CircuitID = "register_sha256WithRSAEncryption_65537"
	Disclose                   CircuitID = "disclose"
)

// used across different circuits
const (
	CommitmentTreeMaxLevels = types.CommitmentTreeMaxLevels
	PublicKeyTreeMaxLevels  = 16
)
