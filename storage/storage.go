// Package storage contains all the artifacts that are stored in the
// database, but also is an abstraction of a queue for the processing of proof
// jobs by the prover service. The storage package includes a prefixed
// key-value store that allows to store the different types of artifacts in
// the database. The following prefixes are used:
//   - 'a/' for attestation records
//   - 'w/' for the wallet index of attestations
//   - 'k/' for publisher signing keys
//   - 'j/' for proof jobs (queued)
//   - 'jr/' for proof job reservations
//   - 'r/' for proof job results
//
// Note: Not all the prefixes support queue operations, only the ones that
// are used in the processing of the artifacts.
package storage

import (
	"errors"
	"sync"

	"go.vocdoni.io/dvote/db"
)

var (
	// Prefixes for the keys in the database.
	attestPrefix         = []byte("a/")
	walletIndexPrefix    = []byte("w/")
	signerKeyPrefix      = []byte("k/")
	proofJobPrefix       = []byte("j/")
	jobReservationPrefix = []byte("jr/")
	proofResultPrefix    = []byte("r/")
)

const (
	// maxKeySize is the maximum size of the key in bytes. It is used to
	// generate the key of the artifacts stored in the database by truncating
	// the hash of the artifact itself.
	maxKeySize = 12
)

var (
	// ErrNotFound is returned when an artifact is not found in the storage.
	ErrNotFound = errors.New("not found")
	// ErrNoMoreElements is returned by queue getters when every element is
	// either consumed or reserved.
	ErrNoMoreElements = errors.New("no more elements")
	// ErrAttestationExists is returned when an attestation with the same
	// nonce is already stored. Nonce uniqueness is the replay protection of
	// the store, so the insert is rejected, never overwritten.
	ErrAttestationExists = errors.New("attestation with same nonce already exists")
	// ErrMalformedAttestation is returned when an attestation misses required
	// fields or carries an unknown tag.
	ErrMalformedAttestation = errors.New("malformed attestation")
)

// Storage is the interface that wraps the basic methods to interact with the
// storage.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex
}

// New creates a new Storage instance.
func New(db db.Database) *Storage {
	return &Storage{db: db}
}

// Close closes the storage.
func (s *Storage) Close() {
	s.db.Close()
}
