package circuits

import "github.com/zkaffinity/zkaffinity/types"

// used across the threshold proving pipeline
const (
	// ScoreSlots is the number of attestation score slots the threshold
	// circuit accepts. Circuit inputs with fewer attestations are
	// zero-padded up to this size and inputs with more are truncated.
	ScoreSlots = types.CircuitScoreSlots
	// MaxScore is the maximum value a single attestation score can take
	// inside the circuit. Every slot is constrained to this bound so a
	// crafted witness cannot overflow the aggregate sum.
	MaxScore = types.MaxAttestationScore
	// ThresholdProofNPubInputs is the number of public signals exposed by
	// the threshold circuit.
	ThresholdProofNPubInputs = 3
)

// Positions of the public signals of the threshold circuit. Verifiers parse
// the signals positionally, so this layout must never change.
const (
	PubSignalTagID = iota
	PubSignalThreshold
	PubSignalQualifies
)
