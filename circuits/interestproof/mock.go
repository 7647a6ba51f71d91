package interestproof

import (
	"github.com/zkaffinity/zkaffinity/attestation"
	"github.com/zkaffinity/zkaffinity/crypto/ethereum"
	"github.com/zkaffinity/zkaffinity/types"
)

// GenSignerForTest generates an attestation signer with a fresh key for the
// publisher domain provided.
func GenSignerForTest(publisher string) (*attestation.Signer, error) {
	keys := ethereum.NewSignKeys()
	if err := keys.Generate(); err != nil {
		return nil, err
	}
	return attestation.NewSigner(keys, publisher), nil
}

// GenAttestationsForTest signs one attestation per score for the given wallet
// and tag, returning them in signing order.
func GenAttestationsForTest(signer *attestation.Signer, wallet, tag string, scores []int64) ([]*types.Attestation, error) {
	attestations := make([]*types.Attestation, 0, len(scores))
	for _, score := range scores {
		a, err := signer.Sign(wallet, tag, score)
		if err != nil {
			return nil, err
		}
		attestations = append(attestations, a)
	}
	return attestations, nil
}

// MockAttestationSetForTest signs a mixed attestation set for the wallet
// provided: the given scores under the target tag plus a few extra records
// under other tags, so filters have something to discard.
func MockAttestationSetForTest(wallet, targetTag string, scores []int64) ([]*types.Attestation, error) {
	signer, err := GenSignerForTest("publisher.test")
	if err != nil {
		return nil, err
	}
	attestations, err := GenAttestationsForTest(signer, wallet, targetTag, scores)
	if err != nil {
		return nil, err
	}
	for _, other := range types.TagList() {
		if other == targetTag {
			continue
		}
		a, err := signer.Sign(wallet, other, 3)
		if err != nil {
			return nil, err
		}
		attestations = append(attestations, a)
	}
	return attestations, nil
}
