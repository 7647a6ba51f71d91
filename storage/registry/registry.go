// Package registry implements a safe and persistent registry of attestation
// publishers backed by a Merkle tree. Publishers are keyed by the Poseidon
// hash of their domain, so verifiers can check inclusion proofs against a
// published root without access to the full registry.
package registry

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/iden3/go-iden3-crypto/poseidon"
	"github.com/vocdoni/arbo"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"

	"github.com/zkaffinity/zkaffinity/crypto/ethereum"
	"github.com/zkaffinity/zkaffinity/types"
	"github.com/zkaffinity/zkaffinity/util"
)

const (
	registryTreePrefix = "rt_"
	publisherRefPrefix = "rp_"
)

var (
	// ErrPublisherNotFound is returned when a publisher is not enrolled.
	ErrPublisherNotFound = fmt.Errorf("publisher not found in the local database")
	// ErrPublisherAlreadyExists is returned by Add() if the domain is already
	// enrolled.
	ErrPublisherAlreadyExists = fmt.Errorf("publisher already exists in the local database")

	defaultHashFunction = arbo.HashFunctionPoseidon
)

// publisherRef is the persisted reference of an enrolled publisher: the
// record itself plus its Merkle tree leaf key.
type publisherRef struct {
	Publisher *types.Publisher
	LeafKey   []byte
	LastUsed  time.Time
}

// Registry is a persistent publisher registry. All tree mutations go through
// the registry mutex, reads only take the read lock.
type Registry struct {
	mu   sync.RWMutex
	db   db.Database
	tree *arbo.Tree
}

// New opens (or creates) the publisher registry on top of the given database.
func New(database db.Database) (*Registry, error) {
	tree, err := arbo.NewTree(arbo.Config{
		Database:     prefixeddb.NewPrefixedDatabase(database, []byte(registryTreePrefix)),
		MaxLevels:    types.RegistryTreeMaxLevels,
		HashFunction: defaultHashFunction,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create registry tree: %w", err)
	}
	return &Registry{db: database, tree: tree}, nil
}

// leafKey derives the Merkle tree key of a publisher domain. The Poseidon
// hash of the domain is reduced to the scalar field and truncated to the
// maximum key length the tree supports.
func leafKey(domain string) ([]byte, error) {
	hash, err := poseidon.HashBytes([]byte(domain))
	if err != nil {
		return nil, fmt.Errorf("cannot hash domain: %w", err)
	}
	return arbo.BigIntToBytes(types.RegistryKeyMaxLen, util.BigToFF(hash)), nil
}

// leafValue derives the Merkle tree value of a publisher record: the keccak
// hash of its canonical JSON form, reduced to the scalar field so the tree
// hash function accepts it.
func leafValue(p *types.Publisher) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(ethereum.HashRaw(data))
	return arbo.BigIntToBytes(32, util.BigToFF(v)), nil
}

func refKey(domain string) []byte {
	return append([]byte(publisherRefPrefix), []byte(domain)...)
}

// writeReference writes a publisher reference to the database.
func (r *Registry) writeReference(ref *publisherRef) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ref); err != nil {
		return err
	}
	wtx := r.db.WriteTx()
	defer wtx.Discard()
	if err := wtx.Set(refKey(ref.Publisher.Domain), buf.Bytes()); err != nil {
		return err
	}
	return wtx.Commit()
}

// readReference loads a publisher reference from the database.
func (r *Registry) readReference(domain string) (*publisherRef, error) {
	b, err := r.db.Get(refKey(domain))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPublisherNotFound, domain)
		}
		return nil, err
	}
	var ref publisherRef
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// Add enrolls a new publisher. It returns ErrPublisherAlreadyExists if the
// domain is already part of the registry.
func (r *Registry) Add(p *types.Publisher) error {
	if p == nil || p.Domain == "" {
		return fmt.Errorf("publisher without domain")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Get(refKey(p.Domain)); err == nil {
		return ErrPublisherAlreadyExists
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		return err
	}

	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	key, err := leafKey(p.Domain)
	if err != nil {
		return err
	}
	value, err := leafValue(p)
	if err != nil {
		return err
	}
	if err := r.tree.Add(key, value); err != nil {
		return fmt.Errorf("cannot add publisher to tree: %w", err)
	}
	return r.writeReference(&publisherRef{
		Publisher: p,
		LeafKey:   key,
		LastUsed:  time.Now(),
	})
}

// Get returns the record of an enrolled publisher.
func (r *Registry) Get(domain string) (*types.Publisher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, err := r.readReference(domain)
	if err != nil {
		return nil, err
	}
	return ref.Publisher, nil
}

// AddSigner registers an additional signer address for a publisher, updating
// the tree leaf to match the new record.
func (r *Registry) AddSigner(domain string, signer types.HexBytes) error {
	if len(signer) != types.AddressLength {
		return fmt.Errorf("signer is not a %d byte address", types.AddressLength)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ref, err := r.readReference(domain)
	if err != nil {
		return err
	}
	if ref.Publisher.HasSigner(signer) {
		return nil
	}
	ref.Publisher.Signers = append(ref.Publisher.Signers, signer)
	value, err := leafValue(ref.Publisher)
	if err != nil {
		return err
	}
	if err := r.tree.Update(ref.LeafKey, value); err != nil {
		return fmt.Errorf("cannot update publisher leaf: %w", err)
	}
	ref.LastUsed = time.Now()
	return r.writeReference(ref)
}

// HasSigner reports whether addr is a registered signer for the domain.
func (r *Registry) HasSigner(domain string, addr types.HexBytes) bool {
	p, err := r.Get(domain)
	if err != nil {
		return false
	}
	return p.HasSigner(addr)
}

// Root returns the current root of the registry tree.
func (r *Registry) Root() (types.HexBytes, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tree.Root()
}

// Size returns the number of enrolled publishers.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, err := r.tree.GetNLeafs()
	if err != nil {
		return 0
	}
	return n
}

// List returns the enrolled publisher domains.
func (r *Registry) List() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var domains []string
	if err := r.db.Iterate([]byte(publisherRefPrefix), func(k, _ []byte) bool {
		domains = append(domains, string(k))
		return true
	}); err != nil {
		return nil, err
	}
	return domains, nil
}

// Proof generates a Merkle proof of inclusion for a publisher domain.
func (r *Registry) Proof(domain string) (*types.RegistryProof, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ref, err := r.readReference(domain)
	if err != nil {
		return nil, err
	}
	root, err := r.tree.Root()
	if err != nil {
		return nil, err
	}
	key, value, siblings, existence, err := r.tree.GenProof(ref.LeafKey)
	if err != nil {
		return nil, err
	}
	if !existence {
		return nil, fmt.Errorf("%w: %s", ErrPublisherNotFound, domain)
	}
	return &types.RegistryProof{
		Root:      root,
		Key:       key,
		Value:     value,
		Siblings:  siblings,
		Existence: existence,
	}, nil
}

// VerifyProof checks a registry inclusion proof against a root.
func VerifyProof(proof *types.RegistryProof) (bool, error) {
	if proof == nil {
		return false, fmt.Errorf("nil proof")
	}
	return arbo.CheckProof(defaultHashFunction, proof.Key, proof.Value, proof.Root, proof.Siblings)
}
