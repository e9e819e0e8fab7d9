package circuits

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/iden3/go-rapidsnark/prover"
	"github.com/iden3/go-rapidsnark/witness"
	"github.com/vocdoni/passport-z-sandbox/log"
)

// Proof is a Groth16 proof with its public signals, both as produced by
// rapidsnark (snarkjs JSON format).
type Proof struct {
	Proof         json.RawMessage `json:"proof"`
	PublicSignals json.RawMessage `json:"publicSignals"`
}

// Prover generates proofs for the passport circuits.
type Prover interface {
	Prove(ctx context.Context, inputs Inputs) (*Proof, error)
}

// CircomProver proves circom circuits with the rapidsnark witness
// calculator and Groth16 prover.
type CircomProver struct {
	mu        sync.Mutex
	artifacts map[CircuitID]*CircuitArtifacts
}

// NewCircomProver returns a prover for the circuits provided.
func NewCircomProver(artifacts map[CircuitID]*CircuitArtifacts) *CircomProver {
	return &CircomProver{artifacts: artifacts}
}

// Prove loads the artifacts of the circuit (downloading them if needed),
// calculates the witness and generates the proof.
func (p *CircomProver) Prove(ctx context.Context, inputs Inputs) (*Proof, error) {
	id := inputs.CircuitID()
	p.mu.Lock()
	ca, ok := p.artifacts[id]
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("no artifacts for circuit %s", id)
	}
	err := ca.LoadAll(ctx)
	p.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("load %s artifacts: %w", id, err)
	}

	bInputs, err := MarshalInputs(inputs)
	if err != nil {
		return nil, fmt.Errorf("encode inputs: %w", err)
	}
	return ProveCircom(ca.Wasm(), ca.ProvingKey(), bInputs)
}

// ProveCircom calculates the witness of the encoded inputs and proves it.
func ProveCircom(wasm, zkey, inputs []byte) (*Proof, error) {
	finalInputs, err := witness.ParseInputs(inputs)
	if err != nil {
		return nil, fmt.Errorf("circom inputs: %w", err)
	}
	calc, err := witness.NewCircom2WitnessCalculator(wasm, true)
	if err != nil {
		return nil, fmt.Errorf("instance witness calculator: %w", err)
	}
	w, err := calc.CalculateWTNSBin(finalInputs, true)
	if err != nil {
		return nil, fmt.Errorf("calculate witness: %w", err)
	}
	proofData, pubSignals, err := prover.Groth16ProverRaw(zkey, w)
	if err != nil {
		return nil, fmt.Errorf("generate proof: %w", err)
	}
	log.Debugw("circom proof generated", "publicSignals", pubSignals)
	return &Proof{
		Proof:         json.RawMessage(proofData),
		PublicSignals: json.RawMessage(pubSignals),
	}, nil
}
