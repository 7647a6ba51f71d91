package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.vocdoni.io/dvote/db/metadb"

	"github.com/zkaffinity/zkaffinity/config"
	"github.com/zkaffinity/zkaffinity/log"
	"github.com/zkaffinity/zkaffinity/prover"
	"github.com/zkaffinity/zkaffinity/service"
	"github.com/zkaffinity/zkaffinity/storage"
	"github.com/zkaffinity/zkaffinity/storage/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel, cfg.LogOutput, nil)
	log.Infow("starting zkaffinityd",
		"dataDir", cfg.DataDir,
		"dbType", cfg.DBType,
		"backend", cfg.ProvingBackend)

	database, err := metadb.New(cfg.DBType, filepath.Join(cfg.DataDir, "db"))
	if err != nil {
		log.Fatalf("cannot open database: %v", err)
	}

	stg := storage.New(database)
	defer stg.Close()

	// the registry shares the database under its own key prefixes
	reg, err := registry.New(database)
	if err != nil {
		log.Fatalf("cannot open publisher registry: %v", err)
	}

	// fetch circuit artifacts up front so the first proof request does not
	// pay for the download
	log.Infow("downloading circuit artifacts", "timeout", cfg.ArtifactsDownloadTimeout.String())
	if err := service.DownloadArtifacts(cfg.ArtifactsDownloadTimeout); err != nil {
		log.Warnw("artifact download failed, the prover will retry on demand", "error", err.Error())
	}

	var backend prover.ProvingBackend
	switch cfg.ProvingBackend {
	case config.BackendGnark:
		backend = prover.NewGnarkBackend()
	default:
		backend = prover.NewCircomBackend()
	}
	prv := prover.New(backend, cfg.ProofTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	proverSrv := service.NewProver(stg, prv)
	if err := proverSrv.Start(ctx); err != nil {
		log.Fatalf("cannot start prover service: %v", err)
	}

	apiSrv := service.NewAPI(stg, reg, prv, cfg.ListenHost, cfg.ListenPort)
	if err := apiSrv.Start(ctx); err != nil {
		log.Fatalf("cannot start API service: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Infow("shutting down")
	apiSrv.Stop()
	proverSrv.Stop()
}
