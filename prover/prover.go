package prover

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zkaffinity/zkaffinity/circuits"
	"github.com/zkaffinity/zkaffinity/circuits/interestproof"
	"github.com/zkaffinity/zkaffinity/log"
	"github.com/zkaffinity/zkaffinity/types"
)

// DefaultProofTimeout bounds a single proof generation when no deadline is
// configured.
const DefaultProofTimeout = 2 * time.Minute

// State is the lifecycle state of a Prover.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateGeneratingProof
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateGeneratingProof:
		return "generatingProof"
	default:
		return "unknown"
	}
}

// Prover validates proof requests, canonicalizes the attestations into a
// circuit input and drives a ProvingBackend. GenerateProof never returns a Go
// error, failures are reported inside the ProofResult so a queued job always
// produces an outcome.
type Prover struct {
	backend      ProvingBackend
	proofTimeout time.Duration

	initMu       sync.Mutex
	loaded       atomic.Bool
	initializing atomic.Bool
	inFlight     atomic.Int32
}

// New creates a Prover over the given backend. The backend artifacts are
// loaded lazily on the first proof request, so creating a Prover is cheap and
// cannot fail.
func New(backend ProvingBackend, proofTimeout time.Duration) *Prover {
	if proofTimeout <= 0 {
		proofTimeout = DefaultProofTimeout
	}
	return &Prover{backend: backend, proofTimeout: proofTimeout}
}

// Backend returns the proving backend.
func (p *Prover) Backend() ProvingBackend { return p.backend }

// State returns the current lifecycle state.
func (p *Prover) State() State {
	switch {
	case p.initializing.Load():
		return StateInitializing
	case !p.loaded.Load():
		return StateUninitialized
	case p.inFlight.Load() > 0:
		return StateGeneratingProof
	default:
		return StateReady
	}
}

// ensureReady loads the backend artifacts once. A failed load leaves the
// prover uninitialized and the next request retries it.
func (p *Prover) ensureReady(ctx context.Context) error {
	if p.loaded.Load() {
		return nil
	}
	p.initMu.Lock()
	defer p.initMu.Unlock()
	if p.loaded.Load() {
		return nil
	}
	p.initializing.Store(true)
	defer p.initializing.Store(false)
	startTime := time.Now()
	if err := p.backend.Load(ctx); err != nil {
		return err
	}
	log.Infow("proving backend initialized",
		"backend", p.backend.Name(),
		"took", time.Since(startTime).String())
	p.loaded.Store(true)
	return nil
}

// GenerateProof builds a threshold proof showing that the aggregate score of
// the wallet's valid attestations for targetTag reaches threshold. The
// attestation collection must be non nil, the tag must be part of the
// dictionary and the threshold non negative. Validation and proving failures
// are reported through the result's Success and Error fields, never as a Go
// error.
func (p *Prover) GenerateProof(ctx context.Context, attestations []*types.Attestation,
	targetTag string, threshold int64,
) *types.ProofResult {
	if attestations == nil || !types.ValidTag(targetTag) || threshold < 0 {
		return failedResult(ErrInvalidParameters, nil)
	}
	if err := p.ensureReady(ctx); err != nil {
		log.Warnw("proving backend initialization failed",
			"backend", p.backend.Name(),
			"error", err.Error())
		return failedResult(fmt.Errorf("Failed to initialize proving backend: %v", err), nil)
	}
	input := interestproof.PrepareCircuitInputs(attestations, targetTag, threshold)
	if input == nil || input.AttestationCount == 0 {
		return failedResult(ErrNoValidAttestations, nil)
	}
	meta := &types.ProofMetadata{
		Tag:              targetTag,
		Threshold:        threshold,
		TotalScore:       input.TotalScore,
		AttestationCount: input.AttestationCount,
		Timestamp:        time.Now().Unix(),
	}
	if !input.MeetsThreshold() {
		return failedResult(ErrInsufficientThreshold, meta)
	}
	p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	startTime := time.Now()
	proof, signals, err := p.prove(ctx, input)
	if err != nil {
		log.Warnw("proof generation failed",
			"backend", p.backend.Name(),
			"tag", targetTag,
			"error", err.Error())
		return failedResult(err, meta)
	}
	log.Debugw("proof generated",
		"backend", p.backend.Name(),
		"tag", targetTag,
		"totalScore", input.TotalScore,
		"attestations", input.AttestationCount,
		"took", time.Since(startTime).String())
	return &types.ProofResult{
		Proof:         proof,
		PublicSignals: signals,
		Success:       true,
		Metadata:      meta,
	}
}

// prove runs the backend under the configured deadline. Proof generation
// cannot be interrupted, on timeout the computation is abandoned and its
// eventual result discarded.
func (p *Prover) prove(ctx context.Context, input *types.CircuitInput) (types.HexBytes, []string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.proofTimeout)
	defer cancel()
	type proveOut struct {
		proof   types.HexBytes
		signals []string
		err     error
	}
	done := make(chan proveOut, 1)
	go func() {
		proof, signals, err := p.backend.Prove(ctx, input)
		done <- proveOut{proof, signals, err}
	}()
	select {
	case out := <-done:
		return out.proof, out.signals, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("%w after %s", ErrProofTimeout, p.proofTimeout)
		}
		return nil, nil, ctx.Err()
	}
}

// VerifyProof checks a proof against its public signals with the backend's
// verification key, or with vkey when given. It never fails: malformed input
// and internal verifier errors report as an invalid proof.
func (p *Prover) VerifyProof(proof types.HexBytes, pubSignals []string, vkey types.HexBytes) bool {
	if len(proof) == 0 || len(pubSignals) == 0 {
		return false
	}
	ok, err := p.backend.Verify(proof, pubSignals, vkey)
	if err != nil {
		log.Warnw("proof verification errored",
			"backend", p.backend.Name(),
			"error", err.Error())
		return false
	}
	return ok
}

// ExpectedPublicSignals returns the public signals a valid proof for the
// given tag and threshold must carry, in positional order.
func ExpectedPublicSignals(tag string, threshold int64) ([]string, error) {
	id, ok := types.TagID(tag)
	if !ok {
		return nil, fmt.Errorf("unknown tag %q", tag)
	}
	signals := make([]string, circuits.ThresholdProofNPubInputs)
	signals[circuits.PubSignalTagID] = new(big.Int).SetUint64(id).String()
	signals[circuits.PubSignalThreshold] = big.NewInt(threshold).String()
	signals[circuits.PubSignalQualifies] = "1"
	return signals, nil
}

func failedResult(err error, meta *types.ProofMetadata) *types.ProofResult {
	return &types.ProofResult{
		Success:  false,
		Error:    err.Error(),
		Metadata: meta,
	}
}
