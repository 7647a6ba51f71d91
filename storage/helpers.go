package storage

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// Artifact encoding/decoding
func encodeArtifact(a any) ([]byte, error) {
	encOpts := cbor.CoreDetEncOptions()
	em, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return em.Marshal(a)
}

func decodeArtifact(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

func hashKey(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:maxKeySize]
}

// setArtifact encodes and stores an artifact under the given prefix. If the
// key is nil, the truncated hash of the encoded artifact is used.
func (s *Storage) setArtifact(prefix, key []byte, artifact any) error {
	val, err := encodeArtifact(artifact)
	if err != nil {
		return err
	}
	if key == nil {
		key = hashKey(val)
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	defer wTx.Discard()
	if err := wTx.Set(key, val); err != nil {
		return err
	}
	return wTx.Commit()
}

// getArtifact reads and decodes the artifact stored under prefix and key into
// out. Returns ErrNotFound if the key does not exist.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	rTx := prefixeddb.NewPrefixedReader(s.db, prefix)
	data, err := rTx.Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	return decodeArtifact(data, out)
}

// deleteArtifact removes the artifact stored under prefix and key. Returns
// ErrNotFound if the key does not exist.
func (s *Storage) deleteArtifact(prefix, key []byte) error {
	rTx := prefixeddb.NewPrefixedReader(s.db, prefix)
	if _, err := rTx.Get(key); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	defer wTx.Discard()
	if err := wTx.Delete(key); err != nil {
		return err
	}
	return wTx.Commit()
}

// listArtifacts returns the keys stored under the given prefix.
func (s *Storage) listArtifacts(prefix []byte) ([][]byte, error) {
	rTx := prefixeddb.NewPrefixedReader(s.db, prefix)
	var keys [][]byte
	if err := rTx.Iterate(nil, func(k, _ []byte) bool {
		key := make([]byte, len(k))
		copy(key, k)
		keys = append(keys, key)
		return true
	}); err != nil {
		return nil, err
	}
	return keys, nil
}

// isReserved reports whether a reservation exists for the given key.
func (s *Storage) isReserved(prefix, key []byte) bool {
	rTx := prefixeddb.NewPrefixedReader(s.db, prefix)
	_, err := rTx.Get(key)
	return err == nil
}

// setReservation creates a reservation for the given key.
func (s *Storage) setReservation(prefix, key []byte) error {
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	defer wTx.Discard()
	if err := wTx.Set(key, nil); err != nil {
		return err
	}
	return wTx.Commit()
}
