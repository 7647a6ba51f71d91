// Package prover generates and verifies zero knowledge interest proofs. A
// Prover validates proof requests, canonicalizes attestations into circuit
// inputs and drives a ProvingBackend under a proving deadline. The Worker
// drains queued proof jobs from storage through a Prover in the background.
package prover

import (
	"context"

	"github.com/zkaffinity/zkaffinity/types"
)

// ProvingBackend abstracts the proving system behind the Prover. Two
// implementations exist: the circom/rapidsnark backend that matches the
// published snarkjs artifacts, and the native gnark backend.
type ProvingBackend interface {
	// Name identifies the backend in logs.
	Name() string
	// Load fetches and prepares the circuit artifacts. A failed load leaves
	// the backend unusable but may be retried.
	Load(ctx context.Context) error
	// Prove generates a proof for the given circuit input. It returns the
	// serialized proof and the public signals as decimal strings in
	// positional order.
	Prove(ctx context.Context, input *types.CircuitInput) (types.HexBytes, []string, error)
	// Verify checks a proof against its public signals. An empty vkey means
	// the backend's own verification key.
	Verify(proof types.HexBytes, pubSignals []string, vkey types.HexBytes) (bool, error)
}
