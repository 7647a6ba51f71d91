package types

import "encoding/json"

// Publisher describes an attestation issuer enrolled in the registry. The
// domain is the stable identity; signer addresses may rotate over time.
type Publisher struct {
	Domain      string     `json:"domain"`
	Name        string     `json:"name,omitempty"`
	MetadataURI string     `json:"metadataURI,omitempty"`
	Signers     []HexBytes `json:"signers"`
	CreatedAt   int64      `json:"createdAt,omitempty"`
}

func (p *Publisher) String() string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(data)
}

// HasSigner reports whether addr is one of the publisher's registered signer
// addresses.
func (p *Publisher) HasSigner(addr HexBytes) bool {
	for _, s := range p.Signers {
		if s.String() == addr.String() {
			return true
		}
	}
	return false
}

// RegistryProof is a proof of inclusion of a publisher in the registry
// merkle tree. Verifiers can check it against a published root without
// access to the full registry. Siblings carries the packed arbo sibling
// encoding, not one entry per tree level.
type RegistryProof struct {
	Root      HexBytes `json:"root"`
	Key       HexBytes `json:"key"`
	Value     HexBytes `json:"value"`
	Siblings  HexBytes `json:"siblings"`
	Existence bool     `json:"-"`
}
