// Package attestation implements the publisher attestation protocol: building
// the canonical signing payload, issuing signed attestations and verifying
// them statelessly via signature recovery.
package attestation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zkaffinity/zkaffinity/crypto/ethereum"
	"github.com/zkaffinity/zkaffinity/types"
)

var (
	// ErrUnknownTag is returned when a tag is not part of the dictionary.
	ErrUnknownTag = errors.New("tag is not part of the supported set")
	// ErrMalformedWallet is returned when a subject wallet is not a well
	// formed 20 byte address.
	ErrMalformedWallet = errors.New("subject wallet is not a 20 byte address")
	// ErrMissingFields is returned when a record lacks one of the fields
	// covered by the signature.
	ErrMissingFields = errors.New("attestation missing signed fields")
	// ErrSignerMismatch is returned when the recovered signer does not match
	// the declared signer address.
	ErrSignerMismatch = errors.New("recovered signer does not match")
)

// Message builds the canonical signing payload of an attestation. The payload
// is a JSON object with the keys in lexicographic order, so signer and
// verifier always produce byte identical input. The publisher domain is part
// of the payload, which stops a signature issued for one publisher from being
// replayed under another. The score is not covered by the signature.
func Message(a *types.Attestation) ([]byte, error) {
	if !a.HasSignatureFields() {
		return nil, ErrMissingFields
	}
	// json.Marshal sorts map keys lexicographically
	return json.Marshal(map[string]any{
		"nonce":         a.Nonce,
		"publisher":     a.Publisher,
		"subjectWallet": a.SubjectWallet.String(),
		"tag":           a.Tag,
		"timestamp":     a.Timestamp,
	})
}

// Verify checks the signature of an attestation against its declared signer
// address. It never fails with an error; malformed records and recovery
// failures all report false.
func Verify(a *types.Attestation) bool {
	return VerifyReason(a) == nil
}

// VerifyReason is Verify with the failure reason. The canonical message is
// recomputed from the record fields, the signer is recovered from the
// signature and compared against the declared signer address.
func VerifyReason(a *types.Attestation) error {
	if a == nil {
		return ErrMissingFields
	}
	if len(a.Signature) != ethereum.SignatureLength || len(a.SignerAddress) != types.AddressLength {
		return ErrMissingFields
	}
	msg, err := Message(a)
	if err != nil {
		return err
	}
	addr, err := ethereum.AddrFromSignature(msg, a.Signature)
	if err != nil {
		return fmt.Errorf("cannot recover signer: %w", err)
	}
	// addresses are raw bytes here, so the comparison is case insensitive
	if !bytes.Equal(addr.Bytes(), a.SignerAddress) {
		return ErrSignerMismatch
	}
	return nil
}

// VerifyWithAddress checks the signature of an attestation and additionally
// requires the recovered signer to equal the expected address.
func VerifyWithAddress(a *types.Attestation, expected types.HexBytes) bool {
	if VerifyReason(a) != nil {
		return false
	}
	return bytes.Equal(a.SignerAddress, expected)
}
