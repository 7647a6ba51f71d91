package storage

import (
	"fmt"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/zkaffinity/zkaffinity/crypto/ethereum"
	"github.com/zkaffinity/zkaffinity/types"
	"github.com/zkaffinity/zkaffinity/util"
)

func newTestKeys(t *testing.T) *ethereum.SignKeys {
	t.Helper()
	keys := ethereum.NewSignKeys()
	if err := keys.Generate(); err != nil {
		t.Fatal(err)
	}
	return keys
}

const testWallet = "0x1f9090aaE28b8a3dCeaDf281B0F12828e676c326"

// testAttestation builds an attestation record with a fresh nonce. The store
// only checks field presence, signature validity is the signer's contract.
func testAttestation(tag string, score, ts int64) *types.Attestation {
	return &types.Attestation{
		Tag:           tag,
		Score:         score,
		Timestamp:     ts,
		Nonce:         util.RandomNonce(),
		Publisher:     "example.org",
		SubjectWallet: types.HexStringToHexBytes(testWallet),
		Signature:     util.RandomBytes(65),
		SignerAddress: util.RandomBytes(20),
	}
}

func TestPutAttestationDuplicateNonce(t *testing.T) {
	c := qt.New(t)
	st := New(metadb.NewTest(t))
	wallet := types.HexStringToHexBytes(testWallet)

	a := testAttestation(types.TagDeFi, 10, 1700000000)
	id, err := st.PutAttestation(a)
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.Not(qt.HasLen), 0)
	c.Assert(st.HasNonce(a.Nonce), qt.IsTrue)

	// same nonce again must be rejected, not overwritten
	dup := testAttestation(types.TagNFT, 99, 1700000001)
	dup.Nonce = a.Nonce
	_, err = st.PutAttestation(dup)
	c.Assert(err, qt.ErrorIs, ErrAttestationExists)

	// the stored record and the count are untouched
	got, err := st.Attestation(id)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Tag, qt.Equals, types.TagDeFi)
	c.Assert(got.Score, qt.Equals, int64(10))
	c.Assert(st.CountAttestations(wallet), qt.Equals, 1)
}

func TestPutAttestationValidation(t *testing.T) {
	c := qt.New(t)
	st := New(metadb.NewTest(t))

	_, err := st.PutAttestation(nil)
	c.Assert(err, qt.ErrorIs, ErrMalformedAttestation)

	a := testAttestation(types.TagDeFi, 1, 1700000000)
	a.Nonce = ""
	_, err = st.PutAttestation(a)
	c.Assert(err, qt.ErrorIs, ErrMalformedAttestation)

	b := testAttestation(types.TagDeFi, 1, 1700000000)
	b.Tag = "metaverse"
	_, err = st.PutAttestation(b)
	c.Assert(err, qt.ErrorIs, ErrMalformedAttestation)

	d := testAttestation(types.TagDeFi, 1, 1700000000)
	d.Signature = nil
	_, err = st.PutAttestation(d)
	c.Assert(err, qt.ErrorIs, ErrMalformedAttestation)

	e := testAttestation(types.TagDeFi, 1, 1700000000)
	e.SubjectWallet = types.HexBytes{1, 2, 3}
	_, err = st.PutAttestation(e)
	c.Assert(err, qt.ErrorIs, ErrMalformedAttestation)
}

func TestAttestationsNewestFirst(t *testing.T) {
	c := qt.New(t)
	tempDir := t.TempDir()
	mdb, err := metadb.New(db.TypePebble, filepath.Join(tempDir, "db"))
	c.Assert(err, qt.IsNil)
	st := New(mdb)
	defer st.Close()

	wallet := types.HexStringToHexBytes(testWallet)

	// insert out of chronological order
	for _, ts := range []int64{1700000100, 1700000300, 1700000200} {
		_, err := st.PutAttestation(testAttestation(types.TagGaming, ts%100, ts))
		c.Assert(err, qt.IsNil)
	}

	res, err := st.Attestations(wallet, "")
	c.Assert(err, qt.IsNil)
	c.Assert(res, qt.HasLen, 3)
	c.Assert(res[0].Timestamp, qt.Equals, int64(1700000300))
	c.Assert(res[1].Timestamp, qt.Equals, int64(1700000200))
	c.Assert(res[2].Timestamp, qt.Equals, int64(1700000100))

	// reads are deterministic
	again, err := st.Attestations(wallet, "")
	c.Assert(err, qt.IsNil)
	for i := range res {
		c.Assert(again[i].Nonce, qt.Equals, res[i].Nonce)
	}

	// an unknown wallet has no attestations
	other, err := st.Attestations(types.HexStringToHexBytes("0x00000000000000000000000000000000000000aa"), "")
	c.Assert(err, qt.IsNil)
	c.Assert(other, qt.HasLen, 0)
}

func TestAttestationsTagFilter(t *testing.T) {
	c := qt.New(t)
	st := New(metadb.NewTest(t))
	wallet := types.HexStringToHexBytes(testWallet)

	for i, tag := range []string{types.TagDeFi, types.TagNFT, types.TagDeFi, types.TagPrivacy} {
		_, err := st.PutAttestation(testAttestation(tag, int64(i+1), int64(1700000000+i)))
		c.Assert(err, qt.IsNil)
	}

	defi, err := st.Attestations(wallet, types.TagDeFi)
	c.Assert(err, qt.IsNil)
	c.Assert(defi, qt.HasLen, 2)
	for _, a := range defi {
		c.Assert(a.Tag, qt.Equals, types.TagDeFi)
	}

	none, err := st.Attestations(wallet, types.TagDAO)
	c.Assert(err, qt.IsNil)
	c.Assert(none, qt.HasLen, 0)

	all, err := st.Attestations(wallet, "")
	c.Assert(err, qt.IsNil)
	c.Assert(all, qt.HasLen, 4)
}

func TestMarkConsumed(t *testing.T) {
	c := qt.New(t)
	st := New(metadb.NewTest(t))
	wallet := types.HexStringToHexBytes(testWallet)

	var ids []types.HexBytes
	for i := range 3 {
		id, err := st.PutAttestation(testAttestation(types.TagDAO, 5, int64(1700000000+i)))
		c.Assert(err, qt.IsNil)
		ids = append(ids, id)
	}

	// unknown ids are skipped, not fatal
	st.MarkConsumed(ids[0], ids[2], types.HexBytes("bogus-id----"))

	res, err := st.Attestations(wallet, "")
	c.Assert(err, qt.IsNil)
	consumed := 0
	for _, a := range res {
		if a.Consumed {
			consumed++
		}
	}
	c.Assert(consumed, qt.Equals, 2)

	// consumed records are still returned and reusable
	c.Assert(res, qt.HasLen, 3)
}

func TestSignerKeysRoundTrip(t *testing.T) {
	c := qt.New(t)
	st := New(metadb.NewTest(t))

	_, err := st.SignerKey("example.org")
	c.Assert(err, qt.ErrorIs, ErrNotFound)

	keys := newTestKeys(t)
	c.Assert(st.SetSignerKey("example.org", keys), qt.IsNil)

	loaded, err := st.SignerKey("example.org")
	c.Assert(err, qt.IsNil)
	c.Assert(loaded.AddressString(), qt.Equals, keys.AddressString())

	publishers, err := st.ListSignerKeys()
	c.Assert(err, qt.IsNil)
	c.Assert(publishers, qt.DeepEquals, []string{"example.org"})
}

func TestAttestationsManyWallets(t *testing.T) {
	c := qt.New(t)
	st := New(metadb.NewTest(t))

	wallets := make([]types.HexBytes, 4)
	for i := range wallets {
		wallets[i] = types.HexStringToHexBytes(
			fmt.Sprintf("0x%040x", i+1))
	}
	for i, w := range wallets {
		for j := range i + 1 {
			a := testAttestation(types.TagSocial, int64(j), int64(1700000000+j))
			a.SubjectWallet = w
			_, err := st.PutAttestation(a)
			c.Assert(err, qt.IsNil)
		}
	}
	for i, w := range wallets {
		c.Assert(st.CountAttestations(w), qt.Equals, i+1)
	}
}
