package prover

import "errors"

// Errors reported inside a ProofResult. API clients match on the exact
// message strings, so they are part of the package contract.
var (
	// ErrInvalidParameters is reported when the request itself is malformed:
	// a nil attestation collection, a tag outside the dictionary or a
	// negative threshold.
	ErrInvalidParameters = errors.New("Invalid parameters")
	// ErrNoValidAttestations is reported when no attestation survives
	// validation for the requested tag.
	ErrNoValidAttestations = errors.New("No valid attestations")
	// ErrInsufficientThreshold is reported when the aggregate score of the
	// valid attestations stays below the requested threshold.
	ErrInsufficientThreshold = errors.New("Insufficient attestations to meet threshold")
	// ErrCircuitFilesNotFound is reported when the circuit artifacts cannot
	// be loaded by the proving backend.
	ErrCircuitFilesNotFound = errors.New("circuit files not found")
	// ErrProofTimeout is reported when proof generation exceeds the
	// configured deadline.
	ErrProofTimeout = errors.New("proof generation timed out")
)
