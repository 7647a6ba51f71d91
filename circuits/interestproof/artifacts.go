package interestproof

import (
	"github.com/zkaffinity/zkaffinity/circuits"
	"github.com/zkaffinity/zkaffinity/config"
	"github.com/zkaffinity/zkaffinity/types"
)

// Artifacts contains the circom artifacts of the threshold circuit: the
// witness calculator wasm, the proving key and the verification key.
var Artifacts = circuits.NewCircuitArtifacts(
	&circuits.Artifact{
		RemoteURL: config.ThresholdCircuitURL,
		Hash:      types.HexStringToHexBytes(config.ThresholdCircuitHash),
	},
	&circuits.Artifact{
		RemoteURL: config.ThresholdProvingKeyURL,
		Hash:      types.HexStringToHexBytes(config.ThresholdProvingKeyHash),
	},
	&circuits.Artifact{
		RemoteURL: config.ThresholdVerificationKeyURL,
		Hash:      types.HexStringToHexBytes(config.ThresholdVerificationKeyHash),
	})
