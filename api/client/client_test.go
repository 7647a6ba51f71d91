package client

import (
	"context"
	"fmt"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/arbo/memdb"

	"github.com/zkaffinity/zkaffinity/api"
	"github.com/zkaffinity/zkaffinity/prover"
	"github.com/zkaffinity/zkaffinity/service"
	"github.com/zkaffinity/zkaffinity/storage"
	"github.com/zkaffinity/zkaffinity/storage/registry"
	"github.com/zkaffinity/zkaffinity/types"
	"github.com/zkaffinity/zkaffinity/util"
)

const (
	testWallet    = "0x1f9090aaE28b8a3dCeaDf281B0F12828e676c326"
	testPublisher = "media.example.com"
)

// startTestService boots a full API service on a random port and returns a
// connected client plus the backing storage.
func startTestService(c *qt.C) (*HTTPclient, *storage.Storage) {
	store := storage.New(memdb.New())
	reg, err := registry.New(memdb.New())
	c.Assert(err, qt.IsNil)
	prv := prover.New(prover.NewCircomBackend(), 0)

	port := util.RandomInt(40000, 60000)
	srv := service.NewAPI(store, reg, prv, "127.0.0.1", port)
	c.Assert(srv.Start(context.Background()), qt.IsNil)

	// Wait for the HTTP server to start
	time.Sleep(500 * time.Millisecond)

	cli, err := New(fmt.Sprintf("http://127.0.0.1:%d", port))
	c.Assert(err, qt.IsNil)
	return cli, store
}

func TestClientFlow(t *testing.T) {
	c := qt.New(t)
	cli, store := startTestService(c)
	defer store.Close()

	// tag dictionary
	tags, err := cli.Tags()
	c.Assert(err, qt.IsNil)
	c.Assert(tags.Tags[types.TagDeFi], qt.Equals, uint64(1))
	c.Assert(tags.Default, qt.Equals, uint64(types.DefaultTagID))

	// issue, store, list and verify an attestation
	att, err := cli.SignAttestation(&api.AttestationRequest{
		Publisher:     testPublisher,
		SubjectWallet: testWallet,
		Tag:           types.TagDeFi,
		Score:         8,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(att.Publisher, qt.Equals, testPublisher)

	id, err := cli.StoreAttestation(att)
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.Not(qt.HasLen), 0)

	// a duplicate store surfaces the API error message
	_, err = cli.StoreAttestation(att)
	c.Assert(err, qt.IsNotNil)
	c.Assert(err.Error(), qt.Contains, "attestation already exists")

	list, err := cli.Attestations(testWallet, "")
	c.Assert(err, qt.IsNil)
	c.Assert(list.Count, qt.Equals, 1)

	valid, err := cli.VerifyAttestation(att)
	c.Assert(err, qt.IsNil)
	c.Assert(valid, qt.IsTrue)

	// enqueue a proof job and read it back while pending
	var wallet types.HexBytes
	c.Assert(wallet.SetString(testWallet), qt.IsNil)
	jobID, err := cli.RequestProof(wallet, types.TagDeFi, 100)
	c.Assert(err, qt.IsNil)

	status, err := cli.ProofJob(jobID)
	c.Assert(err, qt.IsNil)
	c.Assert(status.Status, qt.Equals, storage.JobStatusPending)

	// finish the job the way the worker would
	_, key, err := store.NextProofJob()
	c.Assert(err, qt.IsNil)
	c.Assert(store.MarkProofJobDone(key, &types.ProofResult{
		Success: false,
		Error:   "Insufficient attestations to meet threshold",
	}), qt.IsNil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := cli.WaitForProof(ctx, jobID)
	c.Assert(err, qt.IsNil)
	c.Assert(result.Success, qt.IsFalse)
	c.Assert(result.Error, qt.Equals, "Insufficient attestations to meet threshold")

	// proof verification of garbage reports invalid
	valid, err = cli.VerifyProof(&api.VerifyProofRequest{
		Proof:         []byte(`{"pi_a":[]}`),
		PublicSignals: []string{"1", "100", "1"},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(valid, qt.IsFalse)

	// the publisher was enrolled on its first signed attestation
	root, err := cli.RegistryRoot()
	c.Assert(err, qt.IsNil)
	c.Assert(root.Size, qt.Equals, 1)

	entry, err := cli.Publisher(testPublisher)
	c.Assert(err, qt.IsNil)
	c.Assert(entry.Publisher.Domain, qt.Equals, testPublisher)
	c.Assert(entry.Proof, qt.IsNotNil)
}

func TestClientUnknownHost(t *testing.T) {
	c := qt.New(t)
	_, err := New("http://127.0.0.1:1")
	c.Assert(err, qt.IsNotNil)
}
