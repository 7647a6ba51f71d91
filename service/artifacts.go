package service

import (
	"context"
	"time"

	"github.com/zkaffinity/zkaffinity/circuits/interestproof"
	"github.com/zkaffinity/zkaffinity/circuits/threshold"
	"golang.org/x/sync/errgroup"
)

// DownloadArtifacts downloads the circuit artifacts of both proving backends
// concurrently. Already cached artifacts are skipped.
func DownloadArtifacts(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return interestproof.Artifacts.DownloadAll(ctx)
	})
	g.Go(func() error {
		return threshold.Artifacts.DownloadAll(ctx)
	})
	return g.Wait()
}
