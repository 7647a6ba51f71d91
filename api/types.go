package api

import (
	"github.com/zkaffinity/zkaffinity/types"
)

// AttestationRequest is the request to issue a signed attestation on behalf
// of a publisher domain.
type AttestationRequest struct {
	Publisher     string `json:"publisher"`
	SubjectWallet string `json:"subjectWallet"`
	Tag           string `json:"tag"`
	Score         int64  `json:"score"`
}

// AttestationStored is the response to a stored attestation.
type AttestationStored struct {
	ID types.HexBytes `json:"id"`
}

// AttestationList is the response to a wallet attestations query.
type AttestationList struct {
	Attestations []*types.Attestation `json:"attestations"`
	Count        int                  `json:"count"`
}

// VerifyAttestationResponse reports whether an attestation signature checks
// out against its declared signer.
type VerifyAttestationResponse struct {
	Valid bool `json:"valid"`
}

// TagsResponse is the interest tag dictionary.
type TagsResponse struct {
	Tags    map[string]uint64 `json:"tags"`
	Default uint64            `json:"default"`
}

// ProofRequest enqueues a threshold proof generation job.
type ProofRequest struct {
	Wallet    types.HexBytes `json:"wallet"`
	Tag       string         `json:"tag"`
	Threshold int64          `json:"threshold"`
}

// ProofJobResponse acknowledges an enqueued proof job.
type ProofJobResponse struct {
	JobID types.HexBytes `json:"jobId"`
}

// ProofStatusResponse is the status of a proof job, with its result once the
// job has been processed.
type ProofStatusResponse struct {
	JobID      types.HexBytes     `json:"jobId"`
	Status     string             `json:"status"`
	Result     *types.ProofResult `json:"result,omitempty"`
	FinishedAt int64              `json:"finishedAt,omitempty"`
}

// VerifyProofRequest verifies a threshold proof against its public signals.
// The verification key is optional, the server falls back to its own. Tag and
// Threshold are optional too: when given, the public signals must match the
// ones expected for that claim.
type VerifyProofRequest struct {
	Proof           types.HexBytes `json:"proof"`
	PublicSignals   []string       `json:"publicSignals"`
	VerificationKey types.HexBytes `json:"verificationKey,omitempty"`
	Tag             string         `json:"tag,omitempty"`
	Threshold       *int64         `json:"threshold,omitempty"`
}

// VerifyProofResponse reports the outcome of a proof verification.
type VerifyProofResponse struct {
	Valid bool `json:"valid"`
}

// RegistryRootResponse is the current publisher registry root.
type RegistryRootResponse struct {
	Root types.HexBytes `json:"root"`
	Size int            `json:"size"`
}

// RegistryEntryResponse is an enrolled publisher with its registry inclusion
// proof.
type RegistryEntryResponse struct {
	Publisher *types.Publisher     `json:"publisher"`
	Proof     *types.RegistryProof `json:"proof,omitempty"`
}
