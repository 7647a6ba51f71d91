package attestation

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/zkaffinity/zkaffinity/crypto/ethereum"
	"github.com/zkaffinity/zkaffinity/types"
	"github.com/zkaffinity/zkaffinity/util"
)

// ErrScoreOutOfRange is returned when a score is negative or above the
// circuit bound.
var ErrScoreOutOfRange = errors.New("score out of range")

// Signer issues attestations on behalf of a publisher domain.
type Signer struct {
	keys      *ethereum.SignKeys
	publisher string
}

// NewSigner creates a Signer for the given publisher domain.
func NewSigner(keys *ethereum.SignKeys, publisher string) *Signer {
	return &Signer{keys: keys, publisher: publisher}
}

// Publisher returns the publisher domain of the signer.
func (s *Signer) Publisher() string {
	return s.publisher
}

// Address returns the signer address attestations will carry.
func (s *Signer) Address() types.HexBytes {
	return s.keys.Address().Bytes()
}

// Sign issues a new attestation binding subjectWallet to tag with the given
// score. The tag must be part of the dictionary and the wallet a well formed
// 20 byte hex address. A fresh unpredictable nonce is generated on every
// call. The attestation is returned, not stored.
func (s *Signer) Sign(subjectWallet, tag string, score int64) (*types.Attestation, error) {
	if !types.ValidTag(tag) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	if !common.IsHexAddress(subjectWallet) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedWallet, subjectWallet)
	}
	if score < 0 || score > types.MaxAttestationScore {
		return nil, fmt.Errorf("%w: %d", ErrScoreOutOfRange, score)
	}
	a := &types.Attestation{
		Tag:           tag,
		Score:         score,
		Timestamp:     time.Now().Unix(),
		Nonce:         util.RandomNonce(),
		Publisher:     s.publisher,
		SubjectWallet: common.HexToAddress(subjectWallet).Bytes(),
	}
	msg, err := Message(a)
	if err != nil {
		return nil, err
	}
	sig, err := s.keys.SignEthereum(msg)
	if err != nil {
		return nil, fmt.Errorf("cannot sign attestation: %w", err)
	}
	a.Signature = sig
	a.SignerAddress = s.keys.Address().Bytes()
	return a, nil
}
