package types

import "encoding/json"

// CircuitInput is the fixed-shape assignment consumed by the threshold
// circuit. Scores always carries exactly CircuitScoreSlots entries, padded
// with zeros, in the stable order of the selected attestations. TotalScore
// and AttestationCount are derived bookkeeping and not part of the circuit
// assignment itself.
type CircuitInput struct {
	Scores           []*BigInt `json:"scores"`
	TargetTagID      uint64    `json:"targetTagId"`
	Threshold        int64     `json:"threshold"`
	TotalScore       int64     `json:"totalScore"`
	AttestationCount int       `json:"attestationCount"`
}

// MeetsThreshold reports whether the accumulated score satisfies the
// requested threshold. It must match the comparison performed inside the
// circuit bit for bit.
func (ci *CircuitInput) MeetsThreshold() bool {
	return ci.TotalScore >= ci.Threshold
}

// ProofMetadata summarizes the request a proof was generated for.
type ProofMetadata struct {
	Tag              string `json:"tag"                cbor:"0,keyasint,omitempty"`
	Threshold        int64  `json:"threshold"          cbor:"1,keyasint"`
	TotalScore       int64  `json:"totalScore"         cbor:"2,keyasint"`
	AttestationCount int    `json:"attestationCount"   cbor:"3,keyasint"`
	Timestamp        int64  `json:"timestamp"          cbor:"4,keyasint,omitempty"`
}

// ProofResult is the outcome of a proof generation request. PublicSignals is
// positional: target tag id, threshold and the validity bit, as decimal
// strings. On failure Proof and PublicSignals are empty, Success is false and
// Error carries the reason.
type ProofResult struct {
	Proof         HexBytes       `json:"proof,omitempty"         cbor:"0,keyasint,omitempty"`
	PublicSignals []string       `json:"publicSignals,omitempty" cbor:"1,keyasint,omitempty"`
	Success       bool           `json:"success"                 cbor:"2,keyasint"`
	Error         string         `json:"error,omitempty"         cbor:"3,keyasint,omitempty"`
	Metadata      *ProofMetadata `json:"metadata,omitempty"      cbor:"4,keyasint,omitempty"`
}

func (pr *ProofResult) String() string {
	data, err := json.Marshal(pr)
	if err != nil {
		return ""
	}
	return string(data)
}
