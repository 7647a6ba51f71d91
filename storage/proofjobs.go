package storage

import (
	"errors"
	"fmt"
	"time"

	"go.vocdoni.io/dvote/db/prefixeddb"

	"github.com/zkaffinity/zkaffinity/types"
)

// PushProofJob stores a new proof job into the pending queue.
func (s *Storage) PushProofJob(j *ProofJob) error {
	if len(j.ID) == 0 {
		return fmt.Errorf("proof job without id")
	}
	val, err := encodeArtifact(j)
	if err != nil {
		return fmt.Errorf("encode proof job: %w", err)
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), proofJobPrefix)
	defer wTx.Discard()
	if err := wTx.Set(j.ID, val); err != nil {
		return err
	}
	return wTx.Commit()
}

// NextProofJob returns the next non-reserved proof job, creates a reservation
// and returns it. If no jobs are available, returns ErrNoMoreElements. The
// key is used to mark the job as done after processing.
func (s *Storage) NextProofJob() (*ProofJob, []byte, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	pr := prefixeddb.NewPrefixedReader(s.db, proofJobPrefix)
	var chosenKey, chosenVal []byte
	if err := pr.Iterate(nil, func(k, v []byte) bool {
		// check if reserved
		if s.isReserved(jobReservationPrefix, k) {
			return true
		}
		chosenKey = append([]byte(nil), k...)
		chosenVal = append([]byte(nil), v...)
		return false
	}); err != nil {
		return nil, nil, fmt.Errorf("iterate proof jobs: %w", err)
	}
	if chosenVal == nil {
		return nil, nil, ErrNoMoreElements
	}

	var j ProofJob
	if err := decodeArtifact(chosenVal, &j); err != nil {
		return nil, nil, fmt.Errorf("decode proof job: %w", err)
	}

	// set reservation
	if err := s.setReservation(jobReservationPrefix, chosenKey); err != nil {
		return nil, nil, ErrNoMoreElements
	}

	return &j, chosenKey, nil
}

// MarkProofJobDone is called after a job has been processed. The job leaves
// the pending queue and its outcome becomes available under the same id.
func (s *Storage) MarkProofJobDone(k []byte, result *types.ProofResult) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	// remove reservation
	if err := s.deleteArtifact(jobReservationPrefix, k); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete reservation: %w", err)
	}

	// remove from pending queue
	if err := s.deleteArtifact(proofJobPrefix, k); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete pending job: %w", err)
	}

	// store the outcome
	jr := &ProofJobResult{
		JobID:      append(types.HexBytes(nil), k...),
		Result:     result,
		FinishedAt: time.Now().Unix(),
	}
	return s.setArtifact(proofResultPrefix, k, jr)
}

// ReleaseProofJob drops the reservation of a job so another worker can pick
// it up again. Used when processing fails for a retryable reason.
func (s *Storage) ReleaseProofJob(k []byte) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	if err := s.deleteArtifact(jobReservationPrefix, k); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}

// ProofJobResult returns the outcome of a finished job. Returns ErrNotFound
// if the job is unknown or has not finished yet.
func (s *Storage) ProofJobResult(jobID types.HexBytes) (*ProofJobResult, error) {
	jr := &ProofJobResult{}
	if err := s.getArtifact(proofResultPrefix, jobID, jr); err != nil {
		return nil, err
	}
	return jr, nil
}

// JobStatus reports the lifecycle state of a job id: JobStatusDone when an
// outcome is stored, JobStatusPending while the job sits in the queue.
// Unknown ids return ErrNotFound.
func (s *Storage) JobStatus(jobID types.HexBytes) (string, error) {
	if _, err := s.ProofJobResult(jobID); err == nil {
		return JobStatusDone, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	j := &ProofJob{}
	if err := s.getArtifact(proofJobPrefix, jobID, j); err != nil {
		return "", err
	}
	return JobStatusPending, nil
}

// PendingProofJobs returns the number of jobs waiting in the queue.
func (s *Storage) PendingProofJobs() int {
	keys, err := s.listArtifacts(proofJobPrefix)
	if err != nil {
		return 0
	}
	return len(keys)
}
