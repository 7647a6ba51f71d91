package threshold

import (
	"github.com/zkaffinity/zkaffinity/circuits"
	"github.com/zkaffinity/zkaffinity/config"
	"github.com/zkaffinity/zkaffinity/types"
)

// Artifacts contains the native gnark artifacts of the threshold circuit: the
// compiled constraint system, the proving key and the verifying key.
var Artifacts = circuits.NewCircuitArtifacts(
	&circuits.Artifact{
		RemoteURL: config.ThresholdNativeCircuitURL,
		Hash:      types.HexStringToHexBytes(config.ThresholdNativeCircuitHash),
	},
	&circuits.Artifact{
		RemoteURL: config.ThresholdNativeProvingKeyURL,
		Hash:      types.HexStringToHexBytes(config.ThresholdNativeProvingKeyHash),
	},
	&circuits.Artifact{
		RemoteURL: config.ThresholdNativeVerificationKeyURL,
		Hash:      types.HexStringToHexBytes(config.ThresholdNativeVerificationKeyHash),
	})
