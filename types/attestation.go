package types

import (
	"encoding/json"
)

// Attestation is a publisher-signed statement binding a wallet address to an
// interest tag with a score. Timestamps are unix seconds. The nonce is
// globally unique and makes the signed message replay-proof.
type Attestation struct {
	ID            HexBytes `json:"id,omitempty"       cbor:"0,keyasint,omitempty"`
	Tag           string   `json:"tag"                cbor:"1,keyasint,omitempty"`
	Score         int64    `json:"score"              cbor:"2,keyasint"`
	Timestamp     int64    `json:"timestamp"          cbor:"3,keyasint,omitempty"`
	Nonce         string   `json:"nonce"              cbor:"4,keyasint,omitempty"`
	Signature     HexBytes `json:"signature"          cbor:"5,keyasint,omitempty"`
	Publisher     string   `json:"publisher"          cbor:"6,keyasint,omitempty"`
	SubjectWallet HexBytes `json:"subjectWallet"      cbor:"7,keyasint,omitempty"`
	SignerAddress HexBytes `json:"signerAddress"      cbor:"8,keyasint,omitempty"`
	Consumed      bool     `json:"consumed,omitempty" cbor:"9,keyasint,omitempty"`
}

// HasSignatureFields reports whether the fields covered by the publisher
// signature are all present.
func (a *Attestation) HasSignatureFields() bool {
	return a.Tag != "" && a.Nonce != "" && a.Publisher != "" &&
		len(a.SubjectWallet) == AddressLength && a.Timestamp > 0
}

func (a *Attestation) String() string {
	data, err := json.Marshal(a)
	if err != nil {
		return ""
	}
	return string(data)
}
