// Package interestproof canonicalizes a wallet's attestation collection into
// the fixed shape input of the interest threshold circuit.
package interestproof

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/zkaffinity/zkaffinity/circuits"
	"github.com/zkaffinity/zkaffinity/log"
	"github.com/zkaffinity/zkaffinity/types"
)

// Filter discards the attestations that cannot enter a circuit input: nil
// entries, entries missing the tag or the signature and entries with a
// negative score. The signature is only checked for presence, cryptographic
// verification is the signer's contract and happens upstream. The original
// relative order is preserved.
func Filter(attestations []*types.Attestation) []*types.Attestation {
	valid := make([]*types.Attestation, 0, len(attestations))
	for _, a := range attestations {
		if a == nil || a.Tag == "" || len(a.Signature) == 0 || a.Score < 0 {
			continue
		}
		valid = append(valid, a)
	}
	return valid
}

// Select returns the attestations that would occupy the circuit score slots
// for the target tag: the valid ones whose tag matches, in the original
// relative order, capped at ScoreSlots entries.
func Select(attestations []*types.Attestation, targetTag string) []*types.Attestation {
	return selectTag(Filter(attestations), targetTag)
}

func selectTag(valid []*types.Attestation, targetTag string) []*types.Attestation {
	matching := make([]*types.Attestation, 0, len(valid))
	for _, a := range valid {
		if a.Tag == targetTag {
			matching = append(matching, a)
		}
	}
	// the circuit has a fixed number of slots, any extra attestations are
	// dropped
	if len(matching) > circuits.ScoreSlots {
		matching = matching[:circuits.ScoreSlots]
	}
	return matching
}

// PrepareCircuitInputs canonicalizes a variable length, possibly adversarial
// attestation collection into the circuit input of the threshold proof. The
// valid attestations are filtered to the target tag preserving their order,
// their scores are summed and zero padded up to ScoreSlots slots, and the
// target tag is resolved through the tag dictionary, falling back to the
// default id when unmapped.
//
// It returns nil when the collection itself is empty or no attestation
// survives field validation, which distinguishes "nothing to prove" from an
// all zero input that "proved insufficient".
func PrepareCircuitInputs(attestations []*types.Attestation, targetTag string, threshold int64) *types.CircuitInput {
	valid := Filter(attestations)
	if len(valid) == 0 {
		return nil
	}
	matching := selectTag(valid, targetTag)
	scores := make([]*big.Int, 0, len(matching))
	var totalScore int64
	for _, a := range matching {
		scores = append(scores, big.NewInt(a.Score))
		totalScore += a.Score
	}
	tagID, ok := types.TagID(targetTag)
	if !ok {
		log.Warnw("unmapped tag, using the default tag id",
			"tag", targetTag, "default", types.DefaultTagID)
		tagID = types.DefaultTagID
	}
	input := &types.CircuitInput{
		Scores:           make([]*types.BigInt, circuits.ScoreSlots),
		TargetTagID:      tagID,
		Threshold:        threshold,
		TotalScore:       totalScore,
		AttestationCount: len(matching),
	}
	for i, s := range circuits.BigIntArrayToN(scores, circuits.ScoreSlots) {
		input.Scores[i] = (*types.BigInt)(s)
	}
	return input
}

// CircomInputs is the witness input document of the circom threshold circuit,
// every value encoded as a decimal string as the witness calculator expects.
type CircomInputs struct {
	Scores    []string `json:"scores"`
	TagID     string   `json:"tagId"`
	Threshold string   `json:"threshold"`
	Qualifies string   `json:"qualifies"`
}

// EncodeCircomInputs serializes a circuit input to the JSON document consumed
// by the circom witness calculator.
func EncodeCircomInputs(input *types.CircuitInput) ([]byte, error) {
	if input == nil {
		return nil, fmt.Errorf("nil circuit input")
	}
	if len(input.Scores) != circuits.ScoreSlots {
		return nil, fmt.Errorf("expected %d score slots, got %d", circuits.ScoreSlots, len(input.Scores))
	}
	scores := make([]*big.Int, len(input.Scores))
	for i, s := range input.Scores {
		scores[i] = s.MathBigInt()
	}
	return json.Marshal(&CircomInputs{
		Scores:    circuits.BigIntArrayToStringArray(scores, circuits.ScoreSlots),
		TagID:     new(big.Int).SetUint64(input.TargetTagID).String(),
		Threshold: big.NewInt(input.Threshold).String(),
		Qualifies: circuits.BoolToBigInt(input.MeetsThreshold()).String(),
	})
}
