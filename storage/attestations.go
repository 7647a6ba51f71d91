package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"

	"github.com/zkaffinity/zkaffinity/log"
	"github.com/zkaffinity/zkaffinity/types"
)

// attestationKey derives the storage key of an attestation from its nonce.
// Keying by the nonce alone turns the global uniqueness constraint into a
// plain key collision check.
func attestationKey(nonce string) []byte {
	return hashKey([]byte(nonce))
}

// walletIndexKey builds the wallet index key of an attestation. The timestamp
// is stored inverted so that ascending iteration returns newest first. The
// record key at the end keeps entries with equal timestamps distinct and the
// iteration order deterministic.
func walletIndexKey(wallet types.HexBytes, timestamp int64, key []byte) []byte {
	ik := make([]byte, 0, len(wallet)+8+len(key))
	ik = append(ik, wallet...)
	inv := make([]byte, 8)
	binary.BigEndian.PutUint64(inv, math.MaxUint64-uint64(timestamp))
	ik = append(ik, inv...)
	return append(ik, key...)
}

// validateAttestation checks the required fields and the tag membership of a
// record before insertion. Scores are not checked here, out of range scores
// are excluded later during circuit input canonicalization.
func validateAttestation(a *types.Attestation) error {
	if a == nil {
		return fmt.Errorf("%w: nil record", ErrMalformedAttestation)
	}
	if !a.HasSignatureFields() || len(a.Signature) == 0 {
		return fmt.Errorf("%w: missing required fields", ErrMalformedAttestation)
	}
	if !types.ValidTag(a.Tag) {
		return fmt.Errorf("%w: unknown tag %q", ErrMalformedAttestation, a.Tag)
	}
	return nil
}

// PutAttestation validates and stores an attestation, returning its
// store-assigned id. A record reusing an already stored nonce is rejected
// with ErrAttestationExists. The record and its wallet index entry are
// written in a single transaction, so concurrent readers never observe a
// partial insert.
func (s *Storage) PutAttestation(a *types.Attestation) (types.HexBytes, error) {
	if err := validateAttestation(a); err != nil {
		return nil, err
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	key := attestationKey(a.Nonce)
	pr := prefixeddb.NewPrefixedReader(s.db, attestPrefix)
	if _, err := pr.Get(key); err == nil {
		return nil, ErrAttestationExists
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		return nil, fmt.Errorf("check nonce: %w", err)
	}

	a.ID = key
	val, err := encodeArtifact(a)
	if err != nil {
		return nil, fmt.Errorf("encode attestation: %w", err)
	}

	tx := s.db.WriteTx()
	defer tx.Discard()
	if err := prefixeddb.NewPrefixedWriteTx(tx, attestPrefix).Set(key, val); err != nil {
		return nil, err
	}
	idxKey := walletIndexKey(a.SubjectWallet, a.Timestamp, key)
	if err := prefixeddb.NewPrefixedWriteTx(tx, walletIndexPrefix).Set(idxKey, key); err != nil {
		return nil, err
	}
	return key, tx.Commit()
}

// Attestation retrieves an attestation by its store id. Returns ErrNotFound
// if it does not exist.
func (s *Storage) Attestation(id types.HexBytes) (*types.Attestation, error) {
	a := &types.Attestation{}
	if err := s.getArtifact(attestPrefix, id, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Attestations returns the attestations of a wallet sorted newest first,
// optionally filtered to a single tag. An empty tag returns all of them.
func (s *Storage) Attestations(wallet types.HexBytes, tag string) ([]*types.Attestation, error) {
	rd := prefixeddb.NewPrefixedReader(s.db, walletIndexPrefix)
	var res []*types.Attestation
	if err := rd.Iterate(wallet, func(_, v []byte) bool {
		a := &types.Attestation{}
		if err := s.getArtifact(attestPrefix, v, a); err != nil {
			log.Warnw("dangling wallet index entry", "key", types.HexBytes(v).String(), "error", err.Error())
			return true
		}
		if tag != "" && a.Tag != tag {
			return true
		}
		res = append(res, a)
		return true
	}); err != nil {
		return nil, fmt.Errorf("iterate attestations: %w", err)
	}
	return res, nil
}

// HasNonce reports whether an attestation with the given nonce is stored.
func (s *Storage) HasNonce(nonce string) bool {
	rTx := prefixeddb.NewPrefixedReader(s.db, attestPrefix)
	_, err := rTx.Get(attestationKey(nonce))
	return err == nil
}

// CountAttestations returns the number of attestations stored for a wallet.
func (s *Storage) CountAttestations(wallet types.HexBytes) int {
	rd := prefixeddb.NewPrefixedReader(s.db, walletIndexPrefix)
	count := 0
	if err := rd.Iterate(wallet, func(_, _ []byte) bool {
		count++
		return true
	}); err != nil {
		log.Warnw("failed to count attestations", "error", err.Error())
	}
	return count
}

// MarkConsumed flags the given attestations as consumed by a proof. This is
// best-effort bookkeeping, a record may still be reused by later proof
// requests and failures are only logged.
func (s *Storage) MarkConsumed(ids ...types.HexBytes) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	for _, id := range ids {
		a := &types.Attestation{}
		if err := s.getArtifact(attestPrefix, id, a); err != nil {
			log.Warnw("cannot load attestation to mark consumed", "id", id.String(), "error", err.Error())
			continue
		}
		if a.Consumed {
			continue
		}
		a.Consumed = true
		if err := s.setArtifact(attestPrefix, id, a); err != nil {
			log.Warnw("cannot mark attestation consumed", "id", id.String(), "error", err.Error())
		}
	}
}
