package prover

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"

	"github.com/zkaffinity/zkaffinity/circuits"
	"github.com/zkaffinity/zkaffinity/circuits/threshold"
	"github.com/zkaffinity/zkaffinity/types"
)

// GnarkBackend generates proofs with the native gnark implementation of the
// threshold circuit. Proofs and keys use the gnark serialization format, so
// they are not interchangeable with the circom backend's snarkjs documents.
type GnarkBackend struct {
	artifacts *circuits.CircuitArtifacts

	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

// NewGnarkBackend returns a backend over the published gnark artifacts.
func NewGnarkBackend() *GnarkBackend {
	return &GnarkBackend{artifacts: threshold.Artifacts}
}

// NewLocalGnarkBackend compiles the circuit and runs the groth16 setup in
// process, instead of loading published artifacts. Intended for tests and
// local development, the resulting keys come from an untrusted setup.
func NewLocalGnarkBackend() (*GnarkBackend, error) {
	ccs, err := threshold.Compile()
	if err != nil {
		return nil, fmt.Errorf("error compiling circuit: %w", err)
	}
	pk, vk, err := threshold.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("error on groth16 setup: %w", err)
	}
	return &GnarkBackend{ccs: ccs, pk: pk, vk: vk}, nil
}

// Name returns the backend identifier.
func (b *GnarkBackend) Name() string { return "gnark" }

// Load fetches the circuit artifacts and deserializes the constraint system
// and the keys. It is a no-op when the backend was built with a local setup.
func (b *GnarkBackend) Load(ctx context.Context) error {
	if b.ccs != nil && b.pk != nil && b.vk != nil {
		return nil
	}
	if err := b.artifacts.LoadAll(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrCircuitFilesNotFound, err)
	}
	ccs, err := threshold.LoadConstraintSystem(b.artifacts.CircuitDefinition())
	if err != nil {
		return err
	}
	pk, err := threshold.LoadProvingKey(b.artifacts.ProvingKey())
	if err != nil {
		return err
	}
	vk, err := threshold.LoadVerifyingKey(b.artifacts.VerifyingKey())
	if err != nil {
		return err
	}
	b.ccs, b.pk, b.vk = ccs, pk, vk
	return nil
}

// Prove builds the witness assignment for the input and generates a groth16
// proof. The public signals are derived from the input in positional order.
func (b *GnarkBackend) Prove(_ context.Context, input *types.CircuitInput) (types.HexBytes, []string, error) {
	assignment, err := threshold.Assignment(input)
	if err != nil {
		return nil, nil, err
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("error building witness: %w", err)
	}
	proof, err := groth16.Prove(b.ccs, b.pk, w)
	if err != nil {
		return nil, nil, fmt.Errorf("error generating proof: %w", err)
	}
	buf := bytes.Buffer{}
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, nil, fmt.Errorf("error serializing proof: %w", err)
	}
	signals := make([]string, circuits.ThresholdProofNPubInputs)
	signals[circuits.PubSignalTagID] = new(big.Int).SetUint64(input.TargetTagID).String()
	signals[circuits.PubSignalThreshold] = big.NewInt(input.Threshold).String()
	signals[circuits.PubSignalQualifies] = circuits.BoolToBigInt(input.MeetsThreshold()).String()
	return buf.Bytes(), signals, nil
}

// Verify deserializes the proof and checks it against the public signals,
// with the given verification key or the backend's own key when none is
// given.
func (b *GnarkBackend) Verify(proofBytes types.HexBytes, pubSignals []string, vkeyBytes types.HexBytes) (bool, error) {
	vk := b.vk
	if len(vkeyBytes) > 0 {
		loaded, err := threshold.LoadVerifyingKey(vkeyBytes)
		if err != nil {
			return false, err
		}
		vk = loaded
	}
	if vk == nil {
		return false, fmt.Errorf("no verification key available")
	}
	proof, err := threshold.LoadProof(proofBytes)
	if err != nil {
		return false, err
	}
	signals := make([]*big.Int, len(pubSignals))
	for i, s := range pubSignals {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return false, fmt.Errorf("malformed public signal %q", s)
		}
		signals[i] = v
	}
	assignment, err := threshold.PublicAssignment(signals)
	if err != nil {
		return false, err
	}
	pubWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, fmt.Errorf("error building public witness: %w", err)
	}
	if err := groth16.Verify(proof, vk, pubWitness); err != nil {
		// groth16 reports an invalid proof as an error
		return false, nil
	}
	return true, nil
}
