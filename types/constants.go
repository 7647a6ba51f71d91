package types

const (
	// CircuitScoreSlots is the number of score slots in the threshold circuit
	// input. Score vectors are always padded with zeros to this length.
	CircuitScoreSlots = 50
	// MaxAttestationScore is the maximum score a single attestation may
	// carry. The circuit range-checks every slot against this bound.
	MaxAttestationScore = 1000000
	// RegistryTreeMaxLevels is the maximum number of levels in the publisher
	// registry merkle tree.
	RegistryTreeMaxLevels = 160
	// RegistryKeyMaxLen is the maximum length of a registry key in bytes.
	RegistryKeyMaxLen = RegistryTreeMaxLevels / 8
	// AddressLength is the byte length of an Ethereum wallet address.
	AddressLength = 20
)
