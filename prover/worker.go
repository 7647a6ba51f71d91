package prover

import (
	"context"
	"fmt"
	"time"

	"github.com/zkaffinity/zkaffinity/circuits/interestproof"
	"github.com/zkaffinity/zkaffinity/log"
	"github.com/zkaffinity/zkaffinity/storage"
	"github.com/zkaffinity/zkaffinity/types"
)

// Worker drains the proof job queue in the background. Every job is pushed
// through the Prover and its outcome stored back, failed generations
// included, so a client polling a job id always reaches a terminal state.
type Worker struct {
	stg    *storage.Storage
	prover *Prover
	ctx    context.Context
	cancel context.CancelFunc
}

// NewWorker creates a worker over the given storage and prover.
func NewWorker(stg *storage.Storage, prover *Prover) *Worker {
	return &Worker{stg: stg, prover: prover}
}

// Start launches the background processing loop. It returns immediately, the
// loop runs until the context is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	ticker := time.NewTicker(time.Second)

	go func() {
		defer ticker.Stop()
		for {
			// Try to fetch the next queued job.
			job, key, err := w.stg.NextProofJob()
			if err != nil {
				// Log errors other than "no work".
				if err != storage.ErrNoMoreElements {
					log.Errorw(err, "failed to get next proof job")
				} else {
					// If no job is available, wait for the next tick or context cancellation.
					select {
					case <-ticker.C:
					case <-w.ctx.Done():
						return
					}
				}
				continue
			}

			log.Debugw("new proof job to process",
				"id", job.ID.String(),
				"wallet", job.Wallet.String(),
				"tag", job.Tag,
				"threshold", job.Threshold)
			startTime := time.Now()

			result := w.process(job)

			log.Debugw("proof job processed",
				"id", job.ID.String(),
				"success", result.Success,
				"took", time.Since(startTime).String())
			if err := w.stg.MarkProofJobDone(key, result); err != nil {
				log.Errorw(err, "failed to mark proof job done")
			}
		}
	}()
	return nil
}

// Stop cancels the processing loop.
func (w *Worker) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	return nil
}

// process generates the proof for a job. A storage failure reports as a
// failed result too, so the job still reaches a terminal state.
func (w *Worker) process(job *storage.ProofJob) *types.ProofResult {
	attestations, err := w.stg.Attestations(job.Wallet, job.Tag)
	if err != nil {
		log.Warnw("failed to read attestations for proof job",
			"id", job.ID.String(),
			"error", err.Error())
		return failedResult(fmt.Errorf("database error: %v", err), nil)
	}
	if attestations == nil {
		// an empty read is an empty collection, not a missing parameter
		attestations = []*types.Attestation{}
	}
	result := w.prover.GenerateProof(w.ctx, attestations, job.Tag, job.Threshold)
	if result.Success {
		used := interestproof.Select(attestations, job.Tag)
		ids := make([]types.HexBytes, 0, len(used))
		for _, a := range used {
			ids = append(ids, a.ID)
		}
		w.stg.MarkConsumed(ids...)
	}
	return result
}
