// Package threshold implements the native gnark version of the interest
// threshold circuit. It proves that the sum of a wallet's attestation scores
// for a single tag reaches a public threshold, keeping the individual scores
// in the hidden witness.
package threshold

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/zkaffinity/zkaffinity/circuits"
	"github.com/zkaffinity/zkaffinity/types"
)

// Circuit proves the statement "the aggregate of my attestation scores for
// TagID is at least Threshold". The scores are secret, the tag id, the
// threshold and the qualification flag are the public signals, in the same
// order the circom version of the circuit exposes them.
type Circuit struct {
	// Scores are the attestation scores for the target tag, zero padded up
	// to ScoreSlots entries.
	Scores [circuits.ScoreSlots]frontend.Variable `gnark:",secret"`
	// TagID binds the statement to a single interest tag.
	TagID frontend.Variable `gnark:",public"`
	// Threshold is the minimum aggregate score being proven.
	Threshold frontend.Variable `gnark:",public"`
	// Qualifies is the validity flag, it must be 1 for the statement to be
	// provable.
	Qualifies frontend.Variable `gnark:",public"`
}

// Define declares the circuit constraints. Every score slot is range bound to
// MaxScore so a crafted witness cannot wrap the sum around the field modulus,
// and the aggregate sum must reach the public threshold.
func (c *Circuit) Define(api frontend.API) error {
	sum := frontend.Variable(0)
	for i := 0; i < circuits.ScoreSlots; i++ {
		api.AssertIsLessOrEqual(c.Scores[i], circuits.MaxScore)
		sum = api.Add(sum, c.Scores[i])
	}
	// tag ids from the dictionary are always positive
	api.AssertIsDifferent(c.TagID, 0)
	api.AssertIsLessOrEqual(c.Threshold, sum)
	api.AssertIsEqual(c.Qualifies, 1)
	return nil
}

// Assignment builds the full witness assignment for the circuit from a
// canonicalized circuit input. The qualification flag is derived from the
// input itself, so an assignment built from a non qualifying input will not
// produce a valid proof.
func Assignment(input *types.CircuitInput) (*Circuit, error) {
	if input == nil {
		return nil, fmt.Errorf("nil circuit input")
	}
	if len(input.Scores) != circuits.ScoreSlots {
		return nil, fmt.Errorf("expected %d score slots, got %d", circuits.ScoreSlots, len(input.Scores))
	}
	assignment := &Circuit{
		TagID:     input.TargetTagID,
		Threshold: input.Threshold,
		Qualifies: circuits.BoolToBigInt(input.MeetsThreshold()),
	}
	for i, s := range input.Scores {
		assignment.Scores[i] = s.MathBigInt()
	}
	return assignment, nil
}

// PublicAssignment builds an assignment carrying only the public signals, to
// be used as the public witness during verification. The signals are taken in
// the positional order of the public signal layout.
func PublicAssignment(pubSignals []*big.Int) (*Circuit, error) {
	if len(pubSignals) != circuits.ThresholdProofNPubInputs {
		return nil, fmt.Errorf("expected %d public signals, got %d",
			circuits.ThresholdProofNPubInputs, len(pubSignals))
	}
	assignment := &Circuit{
		TagID:     pubSignals[circuits.PubSignalTagID],
		Threshold: pubSignals[circuits.PubSignalThreshold],
		Qualifies: pubSignals[circuits.PubSignalQualifies],
	}
	for i := 0; i < circuits.ScoreSlots; i++ {
		assignment.Scores[i] = 0
	}
	return assignment, nil
}

// Compile compiles the circuit to an r1cs constraint system over BN254.
func Compile() (constraint.ConstraintSystem, error) {
	return frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &Circuit{})
}

// Setup runs the groth16 trusted setup over the compiled constraint system
// and returns the proving and verifying keys.
func Setup(ccs constraint.ConstraintSystem) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	return groth16.Setup(ccs)
}

// LoadConstraintSystem deserializes a compiled constraint system.
func LoadConstraintSystem(content []byte) (constraint.ConstraintSystem, error) {
	ccs := groth16.NewCS(ecc.BN254)
	if _, err := ccs.ReadFrom(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("error reading constraint system: %w", err)
	}
	return ccs, nil
}

// LoadProvingKey deserializes a groth16 proving key.
func LoadProvingKey(content []byte) (groth16.ProvingKey, error) {
	pk := groth16.NewProvingKey(ecc.BN254)
	if _, err := pk.ReadFrom(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("error reading proving key: %w", err)
	}
	return pk, nil
}

// LoadVerifyingKey deserializes a groth16 verifying key.
func LoadVerifyingKey(content []byte) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("error reading verifying key: %w", err)
	}
	return vk, nil
}

// LoadProof deserializes a groth16 proof.
func LoadProof(content []byte) (groth16.Proof, error) {
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("error reading proof: %w", err)
	}
	return proof, nil
}
