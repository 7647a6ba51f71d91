package prover

import (
	"context"
	"encoding/json"
	"fmt"

	snarkprover "github.com/iden3/go-rapidsnark/prover"
	rapidsnarktypes "github.com/iden3/go-rapidsnark/types"
	"github.com/iden3/go-rapidsnark/verifier"
	"github.com/iden3/go-rapidsnark/witness"
	"github.com/vocdoni/circom2gnark/parser"

	"github.com/zkaffinity/zkaffinity/circuits"
	"github.com/zkaffinity/zkaffinity/circuits/interestproof"
	"github.com/zkaffinity/zkaffinity/types"
)

// CircomBackend generates proofs with the circom witness calculator and the
// rapidsnark groth16 prover, over the published snarkjs artifacts. Proofs are
// the snarkjs JSON documents, so they can be verified by any snarkjs
// compatible verifier.
type CircomBackend struct {
	artifacts *circuits.CircuitArtifacts
}

// NewCircomBackend returns a backend over the published circom artifacts.
func NewCircomBackend() *CircomBackend {
	return &CircomBackend{artifacts: interestproof.Artifacts}
}

// Name returns the backend identifier.
func (b *CircomBackend) Name() string { return "circom" }

// Load fetches the wasm circuit, the proving key and the verification key
// from the local cache or the remote artifact endpoint.
func (b *CircomBackend) Load(ctx context.Context) error {
	if err := b.artifacts.LoadAll(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrCircuitFilesNotFound, err)
	}
	return nil
}

// Prove calculates the circuit witness for the given input and generates a
// groth16 proof with rapidsnark. The fresh proof is checked against the
// verification key before it is returned.
func (b *CircomBackend) Prove(_ context.Context, input *types.CircuitInput) (types.HexBytes, []string, error) {
	inputs, err := interestproof.EncodeCircomInputs(input)
	if err != nil {
		return nil, nil, err
	}
	parsedInputs, err := witness.ParseInputs(inputs)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing circuit inputs: %w", err)
	}
	// instance witness calculator
	calc, err := witness.NewCircom2WitnessCalculator(b.artifacts.CircuitDefinition(), true)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating witness calculator: %w", err)
	}
	// calculate witness
	wtns, err := calc.CalculateWTNSBin(parsedInputs, true)
	if err != nil {
		return nil, nil, fmt.Errorf("error calculating witness: %w", err)
	}
	// generate proof
	proofJSON, pubJSON, err := snarkprover.Groth16ProverRaw(b.artifacts.ProvingKey(), wtns)
	if err != nil {
		return nil, nil, fmt.Errorf("error generating proof: %w", err)
	}
	signals, err := parser.UnmarshalCircomPublicSignalsJSON([]byte(pubJSON))
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing public signals: %w", err)
	}
	proofData := &rapidsnarktypes.ProofData{}
	if err := json.Unmarshal([]byte(proofJSON), proofData); err != nil {
		return nil, nil, fmt.Errorf("error parsing proof: %w", err)
	}
	zkp := rapidsnarktypes.ZKProof{Proof: proofData, PubSignals: signals}
	if err := verifier.VerifyGroth16(zkp, b.artifacts.VerifyingKey()); err != nil {
		return nil, nil, fmt.Errorf("generated proof does not verify: %w", err)
	}
	return types.HexBytes(proofJSON), signals, nil
}

// Verify converts the circom proof to gnark format and verifies it against
// the given verification key, or the backend's own key when none is given.
func (b *CircomBackend) Verify(proof types.HexBytes, pubSignals []string, vkey types.HexBytes) (bool, error) {
	if len(vkey) == 0 {
		vkey = b.artifacts.VerifyingKey()
	}
	if len(vkey) == 0 {
		return false, fmt.Errorf("no verification key available")
	}
	return circuits.VerifyCircomProof(vkey, proof, pubSignals)
}
