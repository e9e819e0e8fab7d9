package circuits

import (
	"context"
	"fmt"

	"github.com/vocdoni/circom2gnark/parser"
)

// ErrInvalidProof is returned when a proof does not verify.
var ErrInvalidProof = fmt.Errorf("invalid proof")

// VerifyProof checks a Groth16 proof, as produced by rapidsnark, against a
// snarkjs verification key. The proof is converted and verified with gnark.
func VerifyProof(vkey []byte, proof *Proof) error {
	if proof == nil {
		return fmt.Errorf("%w: nil proof", ErrInvalidProof)
	}
	circomProof, err := parser.UnmarshalCircomProofJSON(proof.Proof)
	if err != nil {
		return fmt.Errorf("decode proof: %w", err)
	}
	pubSignals, err := parser.UnmarshalCircomPublicSignalsJSON(proof.PublicSignals)
	if err != nil {
		return fmt.Errorf("decode public signals: %w", err)
	}
	circomVKey, err := parser.UnmarshalCircomVerificationKeyJSON(vkey)
	if err != nil {
		return fmt.Errorf("decode verification key: %w", err)
	}
	gnarkProof, err := parser.ConvertCircomToGnark(circomProof, circomVKey, pubSignals)
	if err != nil {
		return fmt.Errorf("convert proof: %w", err)
	}
	ok, err := parser.VerifyProof(gnarkProof)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	if !ok {
		return ErrInvalidProof
	}
	return nil
}

// Verify checks a proof of the given circuit with its verification key,
// loading it if needed.
func (p *CircomProver) Verify(ctx context.Context, id CircuitID, proof *Proof) error {
	p.mu.Lock()
	ca, ok := p.artifacts[id]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("no artifacts for circuit %s", id)
	}
	var err error
	if ca.verificationKey == nil {
		err = fmt.Errorf("no verification key for circuit %s", id)
	} else {
		err = ca.verificationKey.LoadOrDownload(ctx)
	}
	p.mu.Unlock()
	if err != nil {
		return err
	}
	return VerifyProof(ca.VerificationKey(), proof)
}
