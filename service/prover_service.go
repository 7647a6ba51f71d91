package service

import (
	"context"

	"github.com/zkaffinity/zkaffinity/log"
	"github.com/zkaffinity/zkaffinity/prover"
	"github.com/zkaffinity/zkaffinity/storage"
)

// ProverService represents a service that handles background proof job
// processing.
type ProverService struct {
	worker *prover.Worker
}

// NewProver creates a new prover worker service. It drains the proof job
// queue, generating a threshold proof for each job and storing the outcome
// under the job id.
func NewProver(stg *storage.Storage, prv *prover.Prover) *ProverService {
	return &ProverService{
		worker: prover.NewWorker(stg, prv),
	}
}

// Start begins the proof job processing service.
func (ps *ProverService) Start(ctx context.Context) error {
	return ps.worker.Start(ctx)
}

// Stop halts the proof job processing service.
func (ps *ProverService) Stop() {
	if err := ps.worker.Stop(); err != nil {
		log.Warnw("prover service stopped", "error", err)
	}
}
