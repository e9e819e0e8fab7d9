package circuits

import (
	"encoding/json"
)

// Inputs is implemented by the circuit inputs which can be rendered in the
// circom JSON input format: signal names mapped to decimal strings or
// arrays of decimal strings.
type Inputs interface {
	CircuitID() CircuitID
	CircomInputs() map[string]any
}

// MarshalInputs encodes the inputs as circom JSON.
func MarshalInputs(inputs Inputs) ([]byte, error) {
	return json.Marshal(inputs.CircomInputs())
}
