package storage

import (
	"github.com/zkaffinity/zkaffinity/types"
)

// Proof job statuses reported by JobStatus.
const (
	JobStatusPending = "pending"
	JobStatusDone    = "done"
)

// ProofJob is a queued proof generation request, processed asynchronously by
// the prover worker.
type ProofJob struct {
	ID        types.HexBytes `json:"id"        cbor:"0,keyasint,omitempty"`
	Wallet    types.HexBytes `json:"wallet"    cbor:"1,keyasint,omitempty"`
	Tag       string         `json:"tag"       cbor:"2,keyasint,omitempty"`
	Threshold int64          `json:"threshold" cbor:"3,keyasint"`
	CreatedAt int64          `json:"createdAt" cbor:"4,keyasint,omitempty"`
}

// ProofJobResult couples a finished job with its outcome. Failed proof
// generations are results too, the Success flag inside the proof result
// tells them apart.
type ProofJobResult struct {
	JobID      types.HexBytes     `json:"jobId"            cbor:"0,keyasint,omitempty"`
	Result     *types.ProofResult `json:"result,omitempty" cbor:"1,keyasint,omitempty"`
	FinishedAt int64              `json:"finishedAt"       cbor:"2,keyasint,omitempty"`
}

// SignerKey holds the signing key material of a publisher domain.
type SignerKey struct {
	Publisher  string         `json:"publisher" cbor:"0,keyasint,omitempty"`
	PrivateKey types.HexBytes `json:"-"         cbor:"1,keyasint,omitempty"`
	Address    types.HexBytes `json:"address"   cbor:"2,keyasint,omitempty"`
}
