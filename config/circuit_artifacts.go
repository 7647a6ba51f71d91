package config

const (
	// Threshold circom circuit constants for circuits/interestproof package
	ThresholdCircuitURL          = "https://artifacts.zkaffinity.io/circuits/dev/threshold.wasm"
	ThresholdCircuitHash         = "d8c90cda4de39898894abb2db6586154adce863648cb86c09c4c4d405fc94814"
	ThresholdProvingKeyURL       = "https://artifacts.zkaffinity.io/circuits/dev/threshold_pkey.zkey"
	ThresholdProvingKeyHash      = "ec6d337ac98c22a349255df7e366d28b8a2699b77fb4ff65471bc0851a7ee666"
	ThresholdVerificationKeyURL  = "https://artifacts.zkaffinity.io/circuits/dev/threshold_vkey.json"
	ThresholdVerificationKeyHash = "d6ec7e12daf73a351bb8c5781db3e1eaaacd03658f386ccc45ddec9459df2163"
	// Native gnark artifact constants for circuits/threshold package
	ThresholdNativeCircuitURL          = "https://artifacts.zkaffinity.io/circuits/dev/threshold.ccs"
	ThresholdNativeCircuitHash         = "1e7d272ec419a50a0b98d909c2acc7afade8b76afb10560f3d76af0b9c44b5e3"
	ThresholdNativeProvingKeyURL       = "https://artifacts.zkaffinity.io/circuits/dev/threshold.pk"
	ThresholdNativeProvingKeyHash      = "dba25a3319d6d3bb1e19f0eeb98748ff68f541f84da163b9d906789930bf8dfe"
	ThresholdNativeVerificationKeyURL  = "https://artifacts.zkaffinity.io/circuits/dev/threshold.vk"
	ThresholdNativeVerificationKeyHash = "77a7029505edf95ac24531f274d5cbec03638abe31ce45e108fa474f625ace38"
)
