package circuits

import (
	"fmt"

	"github.com/vocdoni/circom2gnark/parser"
)

// VerifyCircomProof converts a snarkjs proof to the gnark format and verifies
// it against the verification key provided. The proof is the JSON document
// snarkjs produces, the public signals are already decoded. It returns true
// when the proof is valid for the given signals.
func VerifyCircomProof(vkey, proof []byte, pubSignals []string) (bool, error) {
	if len(pubSignals) != ThresholdProofNPubInputs {
		return false, fmt.Errorf("expected %d public signals, got %d", ThresholdProofNPubInputs, len(pubSignals))
	}
	proofData, err := parser.UnmarshalCircomProofJSON(proof)
	if err != nil {
		return false, fmt.Errorf("error parsing proof: %w", err)
	}
	gnarkVKeyData, err := parser.UnmarshalCircomVerificationKeyJSON(vkey)
	if err != nil {
		return false, err
	}
	gnarkProof, err := parser.ConvertCircomToGnark(gnarkVKeyData, proofData, pubSignals)
	if err != nil {
		return false, err
	}
	return parser.VerifyProof(gnarkProof)
}
