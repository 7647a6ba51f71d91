package storage

import (
	"fmt"

	"github.com/zkaffinity/zkaffinity/crypto/ethereum"
	"github.com/zkaffinity/zkaffinity/types"
)

// SetSignerKey stores the signing key of a publisher domain.
func (s *Storage) SetSignerKey(publisher string, keys *ethereum.SignKeys) error {
	_, priv := keys.HexString()
	sk := &SignerKey{
		Publisher:  publisher,
		PrivateKey: types.HexStringToHexBytes(priv),
		Address:    keys.Address().Bytes(),
	}
	return s.setArtifact(signerKeyPrefix, []byte(publisher), sk)
}

// SignerKey loads the signing key of a publisher domain. Returns ErrNotFound
// if no key is stored for it.
func (s *Storage) SignerKey(publisher string) (*ethereum.SignKeys, error) {
	sk := &SignerKey{}
	if err := s.getArtifact(signerKeyPrefix, []byte(publisher), sk); err != nil {
		return nil, fmt.Errorf("could not read signer key: %w", err)
	}
	keys := ethereum.NewSignKeys()
	if err := keys.AddHexKey(sk.PrivateKey.String()); err != nil {
		return nil, fmt.Errorf("malformed stored signer key: %w", err)
	}
	return keys, nil
}

// ListSignerKeys returns the publisher domains with a stored signing key.
func (s *Storage) ListSignerKeys() ([]string, error) {
	keys, err := s.listArtifacts(signerKeyPrefix)
	if err != nil {
		return nil, err
	}
	publishers := make([]string, 0, len(keys))
	for _, k := range keys {
		publishers = append(publishers, string(k))
	}
	return publishers, nil
}
