package service

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"
	"github.com/vocdoni/arbo/memdb"

	"github.com/zkaffinity/zkaffinity/prover"
	"github.com/zkaffinity/zkaffinity/storage"
	"github.com/zkaffinity/zkaffinity/storage/registry"
	"github.com/zkaffinity/zkaffinity/types"
)

func newTestBackends(c *qt.C) (*storage.Storage, *registry.Registry, *prover.Prover) {
	store := storage.New(memdb.New())
	reg, err := registry.New(memdb.New())
	c.Assert(err, qt.IsNil)
	return store, reg, prover.New(prover.NewCircomBackend(), 0)
}

func TestAPIService(t *testing.T) {
	c := qt.New(t)

	store, reg, prv := newTestBackends(c)
	defer store.Close()

	// Port 0 lets the OS choose an available port
	apiService := NewAPI(store, reg, prv, "127.0.0.1", 0)

	ctx := context.Background()
	err := apiService.Start(ctx)
	c.Assert(err, qt.IsNil)
	defer apiService.Stop()

	// Give the service time to start
	time.Sleep(time.Second)

	// Starting an already running service fails
	err = apiService.Start(ctx)
	c.Assert(err, qt.ErrorMatches, "service already running")

	// Test stopping and restarting
	apiService.Stop()
	err = apiService.Start(ctx)
	c.Assert(err, qt.IsNil)
}

func TestProverService(t *testing.T) {
	c := qt.New(t)

	store, _, prv := newTestBackends(c)
	defer store.Close()

	ps := NewProver(store, prv)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Assert(ps.Start(ctx), qt.IsNil)
	defer ps.Stop()

	// a job with a tag outside the dictionary fails fast, before the worker
	// touches the proving backend
	id := uuid.New()
	var wallet types.HexBytes
	c.Assert(wallet.SetString("0x1f9090aaE28b8a3dCeaDf281B0F12828e676c326"), qt.IsNil)
	c.Assert(store.PushProofJob(&storage.ProofJob{
		ID:        id[:],
		Wallet:    wallet,
		Tag:       "watersports",
		Threshold: 5,
		CreatedAt: time.Now().Unix(),
	}), qt.IsNil)

	deadline := time.Now().Add(5 * time.Second)
	for {
		status, err := store.JobStatus(id[:])
		if err == nil && status == storage.JobStatusDone {
			break
		}
		c.Assert(time.Now().Before(deadline), qt.IsTrue, qt.Commentf("job never processed"))
		time.Sleep(50 * time.Millisecond)
	}

	res, err := store.ProofJobResult(id[:])
	c.Assert(err, qt.IsNil)
	c.Assert(res.Result, qt.IsNotNil)
	c.Assert(res.Result.Success, qt.IsFalse)
	c.Assert(res.Result.Error, qt.Equals, "Invalid parameters")
}
