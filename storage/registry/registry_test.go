package registry

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/zkaffinity/zkaffinity/types"
	"github.com/zkaffinity/zkaffinity/util"
)

func testPublisher(domain string) *types.Publisher {
	return &types.Publisher{
		Domain:      domain,
		Name:        "Test Publisher",
		MetadataURI: "https://" + domain + "/meta.json",
		Signers:     []types.HexBytes{util.RandomBytes(types.AddressLength)},
	}
}

func TestRegistryAddAndGet(t *testing.T) {
	c := qt.New(t)
	r, err := New(metadb.NewTest(t))
	c.Assert(err, qt.IsNil)

	emptyRoot, err := r.Root()
	c.Assert(err, qt.IsNil)

	p := testPublisher("example.org")
	c.Assert(r.Add(p), qt.IsNil)
	c.Assert(r.Add(testPublisher("example.org")), qt.ErrorIs, ErrPublisherAlreadyExists)

	got, err := r.Get("example.org")
	c.Assert(err, qt.IsNil)
	c.Assert(got.Name, qt.Equals, "Test Publisher")
	c.Assert(got.CreatedAt, qt.Not(qt.Equals), int64(0))

	_, err = r.Get("unknown.org")
	c.Assert(err, qt.ErrorIs, ErrPublisherNotFound)

	// the root moved when the publisher was enrolled
	root, err := r.Root()
	c.Assert(err, qt.IsNil)
	c.Assert(root.String(), qt.Not(qt.Equals), emptyRoot.String())
	c.Assert(r.Size(), qt.Equals, 1)
}

func TestRegistrySigners(t *testing.T) {
	c := qt.New(t)
	r, err := New(metadb.NewTest(t))
	c.Assert(err, qt.IsNil)

	p := testPublisher("example.org")
	first := p.Signers[0]
	c.Assert(r.Add(p), qt.IsNil)
	c.Assert(r.HasSigner("example.org", first), qt.IsTrue)

	rootBefore, err := r.Root()
	c.Assert(err, qt.IsNil)

	second := types.HexBytes(util.RandomBytes(types.AddressLength))
	c.Assert(r.AddSigner("example.org", second), qt.IsNil)
	c.Assert(r.HasSigner("example.org", second), qt.IsTrue)
	c.Assert(r.HasSigner("example.org", util.RandomBytes(types.AddressLength)), qt.IsFalse)
	c.Assert(r.HasSigner("unknown.org", second), qt.IsFalse)

	// adding the same signer twice is a no-op
	c.Assert(r.AddSigner("example.org", second), qt.IsNil)
	got, err := r.Get("example.org")
	c.Assert(err, qt.IsNil)
	c.Assert(got.Signers, qt.HasLen, 2)

	// signer rotation changes the leaf, so the root moves
	rootAfter, err := r.Root()
	c.Assert(err, qt.IsNil)
	c.Assert(rootAfter.String(), qt.Not(qt.Equals), rootBefore.String())

	// malformed signers are rejected
	c.Assert(r.AddSigner("example.org", types.HexBytes{1, 2}), qt.IsNotNil)
}

func TestRegistryProof(t *testing.T) {
	c := qt.New(t)
	r, err := New(metadb.NewTest(t))
	c.Assert(err, qt.IsNil)

	for _, domain := range []string{"a.org", "b.org", "c.org"} {
		c.Assert(r.Add(testPublisher(domain)), qt.IsNil)
	}
	c.Assert(r.Size(), qt.Equals, 3)

	proof, err := r.Proof("b.org")
	c.Assert(err, qt.IsNil)
	c.Assert(proof.Existence, qt.IsTrue)

	root, err := r.Root()
	c.Assert(err, qt.IsNil)
	c.Assert(proof.Root.String(), qt.Equals, root.String())

	valid, err := VerifyProof(proof)
	c.Assert(err, qt.IsNil)
	c.Assert(valid, qt.IsTrue)

	// a proof against a stale root must not verify
	c.Assert(r.Add(testPublisher("d.org")), qt.IsNil)
	newRoot, err := r.Root()
	c.Assert(err, qt.IsNil)
	proof.Root = newRoot
	valid, err = VerifyProof(proof)
	if err == nil {
		c.Assert(valid, qt.IsFalse)
	}

	_, err = r.Proof("unknown.org")
	c.Assert(err, qt.ErrorIs, ErrPublisherNotFound)
}

func TestRegistryList(t *testing.T) {
	c := qt.New(t)
	r, err := New(metadb.NewTest(t))
	c.Assert(err, qt.IsNil)

	domains := []string{"alpha.org", "beta.org", "gamma.org"}
	for _, d := range domains {
		c.Assert(r.Add(testPublisher(d)), qt.IsNil)
	}
	list, err := r.List()
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.HasLen, len(domains))
	seen := map[string]bool{}
	for _, d := range list {
		seen[d] = true
	}
	for _, d := range domains {
		c.Assert(seen[d], qt.IsTrue, qt.Commentf("missing %s", d))
	}
}
