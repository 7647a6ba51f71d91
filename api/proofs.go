package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/zkaffinity/zkaffinity/log"
	"github.com/zkaffinity/zkaffinity/prover"
	"github.com/zkaffinity/zkaffinity/storage"
	"github.com/zkaffinity/zkaffinity/types"

	"github.com/go-chi/chi/v5"
)

// newProofJob enqueues a threshold proof generation job for the prover
// worker and returns its job id. The proof itself is generated
// asynchronously, poll the job endpoint for the result.
func (a *API) newProofJob(w http.ResponseWriter, r *http.Request) {
	req := &ProofRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Write(w)
		return
	}
	if len(req.Wallet) != types.AddressLength {
		ErrMalformedWallet.Withf("expected %d bytes, got %d", types.AddressLength, len(req.Wallet)).Write(w)
		return
	}
	if !types.ValidTag(req.Tag) {
		ErrUnknownTag.Withf("%q", req.Tag).Write(w)
		return
	}
	if req.Threshold < 0 {
		ErrInvalidThreshold.Withf("%d", req.Threshold).Write(w)
		return
	}
	jobID := uuid.New()
	job := &storage.ProofJob{
		ID:        jobID[:],
		Wallet:    req.Wallet,
		Tag:       req.Tag,
		Threshold: req.Threshold,
		CreatedAt: time.Now().Unix(),
	}
	if err := a.storage.PushProofJob(job); err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	log.Infow("proof job enqueued",
		"id", job.ID.String(),
		"wallet", req.Wallet.String(),
		"tag", req.Tag,
		"threshold", req.Threshold)
	httpWriteJSON(w, &ProofJobResponse{JobID: job.ID})
}

// proofJob returns the status of a proof job. Once the worker has processed
// the job the response carries the proof result, successful or not.
func (a *API) proofJob(w http.ResponseWriter, r *http.Request) {
	var jobID types.HexBytes
	if err := jobID.SetString(chi.URLParam(r, JobURLParam)); err != nil {
		ErrMalformedJobID.WithErr(err).Write(w)
		return
	}
	status, err := a.storage.JobStatus(jobID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ErrJobNotFound.Withf("%s", jobID.String()).Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	res := &ProofStatusResponse{JobID: jobID, Status: status}
	if status == storage.JobStatusDone {
		jobRes, err := a.storage.ProofJobResult(jobID)
		if err != nil {
			ErrGenericInternalServerError.WithErr(err).Write(w)
			return
		}
		res.Result = jobRes.Result
		res.FinishedAt = jobRes.FinishedAt
	}
	httpWriteJSON(w, res)
}

// verifyProof verifies a threshold proof against its public signals. When the
// request carries a tag and threshold, the public signals must additionally
// match the ones expected for that claim, so a valid proof for a different
// claim does not pass for this one. The response is always 200, the validity
// goes in the body.
func (a *API) verifyProof(w http.ResponseWriter, r *http.Request) {
	req := &VerifyProofRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Write(w)
		return
	}
	if req.Tag != "" && req.Threshold != nil {
		expected, err := prover.ExpectedPublicSignals(req.Tag, *req.Threshold)
		if err != nil {
			ErrUnknownTag.WithErr(err).Write(w)
			return
		}
		if !slices.Equal(req.PublicSignals, expected) {
			httpWriteJSON(w, &VerifyProofResponse{Valid: false})
			return
		}
	}
	valid := a.prover.VerifyProof(req.Proof, req.PublicSignals, req.VerificationKey)
	httpWriteJSON(w, &VerifyProofResponse{Valid: valid})
}
