package circuits

// The circuits package contains the support code for the interest threshold
// proof. The goal of the proof is to let a wallet demonstrate that the sum of
// its attestation scores for a single interest tag reaches a public threshold,
// without disclosing the individual attestations, their scores or their
// publishers.
// To achieve that goal, the proving pipeline follows these steps:
//   1. The store is queried for the wallet's attestations and the builder
//      canonicalizes them into a fixed-size circuit input (filtering the
//      target tag, summing the scores and zero-padding up to ScoreSlots).
//   2. A proving backend turns the circuit input into a Groth16 proof over
//      BN254, either natively with gnark or through a circom witness
//      calculator and rapidsnark.
//   3. The verifier checks the proof against the verification key and the
//      three public signals (tag id, threshold and qualification flag); the
//      scores themselves stay in the hidden witness.
//
// The circuit enforces, for a witness of ScoreSlots scores:
//
//	forall i: 0 <= score[i] <= MaxScore
//	sum(score) >= threshold  <=>  qualifies == 1
//
// The circuit artifacts (definition, proving key and verification key) are
// fetched from a remote URL and cached on disk by hash, see Artifact and
// CircuitArtifacts.
