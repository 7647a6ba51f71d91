package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// SignAttestationEndpoint is the endpoint for signing a new attestation
	// with the key of a registered publisher
	SignAttestationEndpoint = "/attestations/sign"
	// AttestationsEndpoint is the endpoint for storing a signed attestation
	AttestationsEndpoint = "/attestations"
	// WalletAttestationsEndpoint is the endpoint to list the attestations of
	// a wallet, optionally filtered by tag
	WalletURLParam             = "wallet"
	WalletAttestationsEndpoint = "/attestations/{" + WalletURLParam + "}"
	// VerifyAttestationEndpoint is the endpoint for checking an attestation
	// signature
	VerifyAttestationEndpoint = "/attestations/verify"
	// TagsEndpoint is the endpoint for the tag dictionary
	TagsEndpoint = "/tags"
	// ProofsEndpoint is the endpoint for enqueueing a proof generation job
	ProofsEndpoint = "/proofs"
	// ProofJobEndpoint is the endpoint to get the status and result of a
	// proof job
	JobURLParam      = "jobId"
	ProofJobEndpoint = "/proofs/{" + JobURLParam + "}"
	// VerifyProofEndpoint is the endpoint for verifying a threshold proof
	VerifyProofEndpoint = "/proofs/verify"
	// RegistryEndpoint is the base path of the publisher registry endpoints
	RegistryEndpoint = "/registry"
	// RegistryRootEndpoint is the endpoint for the publisher registry root
	RegistryRootEndpoint = RegistryEndpoint + "/root"
	// RegistryDomainEndpoint is the endpoint to get a publisher with its
	// registry inclusion proof
	DomainURLParam         = "domain"
	RegistryDomainEndpoint = RegistryEndpoint + "/{" + DomainURLParam + "}"
)
