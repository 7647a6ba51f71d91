package main

import (
	"context"
	"fmt"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/vocdoni/arbo/memdb"

	"github.com/zkaffinity/zkaffinity/api"
	"github.com/zkaffinity/zkaffinity/api/client"
	"github.com/zkaffinity/zkaffinity/log"
	"github.com/zkaffinity/zkaffinity/prover"
	"github.com/zkaffinity/zkaffinity/service"
	"github.com/zkaffinity/zkaffinity/storage"
	"github.com/zkaffinity/zkaffinity/storage/registry"
	"github.com/zkaffinity/zkaffinity/types"
	"github.com/zkaffinity/zkaffinity/util"
)

const testWalletAddress = "0x1f9090aaE28b8a3dCeaDf281B0F12828e676c326"

func main() {
	wallet := flag.String("wallet", testWalletAddress, "subject wallet address")
	publisher := flag.String("publisher", "events.example.com", "publisher domain issuing the attestations")
	tag := flag.String("tag", "finance", "interest tag to attest and prove")
	threshold := flag.Int64("threshold", 20, "score threshold to prove")
	scores := flag.Int64Slice("scores", []int64{8, 7, 9}, "attestation scores to issue")
	circom := flag.Bool("circom", false, "prove with the published circom artifacts instead of a local gnark setup")

	flag.Parse()
	log.Init("debug", "stdout", nil)

	// create storage and registry in memory
	stg := storage.New(memdb.New())
	reg, err := registry.New(memdb.New())
	if err != nil {
		log.Fatal(err)
	}

	var backend prover.ProvingBackend
	if *circom {
		backend = prover.NewCircomBackend()
	} else {
		log.Info("compiling the threshold circuit, this takes a moment")
		backend, err = prover.NewLocalGnarkBackend()
		if err != nil {
			log.Fatal(err)
		}
	}
	prv := prover.New(backend, 0)

	// start the proof worker and the API service
	ctx := context.Background()
	proverSrv := service.NewProver(stg, prv)
	if err := proverSrv.Start(ctx); err != nil {
		log.Fatal(err)
	}
	port := util.RandomInt(40000, 60000)
	apiSrv := service.NewAPI(stg, reg, prv, "0.0.0.0", port)
	if err := apiSrv.Start(ctx); err != nil {
		log.Fatal(err)
	}
	time.Sleep(time.Second)

	cli, err := client.New(fmt.Sprintf("http://localhost:%d", port))
	if err != nil {
		log.Fatal(err)
	}

	tags, err := cli.Tags()
	if err != nil {
		log.Fatal(err)
	}
	log.Infow("tag dictionary fetched", "tags", len(tags.Tags), "default", tags.Default)

	// issue and store one attestation per score
	for _, score := range *scores {
		att, err := cli.SignAttestation(&api.AttestationRequest{
			Publisher:     *publisher,
			SubjectWallet: *wallet,
			Tag:           *tag,
			Score:         score,
		})
		if err != nil {
			log.Fatal(err)
		}
		id, err := cli.StoreAttestation(att)
		if err != nil {
			log.Fatal(err)
		}
		log.Infow("attestation stored", "id", id.String(), "tag", att.Tag, "score", score)
	}

	list, err := cli.Attestations(*wallet, *tag)
	if err != nil {
		log.Fatal(err)
	}
	log.Infow("attestations listed", "wallet", *wallet, "tag", *tag, "count", list.Count)

	// request the threshold proof and wait for the worker to process it
	var walletBytes types.HexBytes
	if err := walletBytes.SetString(*wallet); err != nil {
		log.Fatal(err)
	}
	jobID, err := cli.RequestProof(walletBytes, *tag, *threshold)
	if err != nil {
		log.Fatal(err)
	}
	log.Infow("proof job enqueued", "jobId", jobID.String())

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()
	result, err := cli.WaitForProof(waitCtx, jobID)
	if err != nil {
		log.Fatal(err)
	}
	if !result.Success {
		log.Fatalf("proof generation failed: %s", result.Error)
	}
	log.Infow("proof generated",
		"publicSignals", result.PublicSignals,
		"totalScore", result.Metadata.TotalScore,
		"attestations", result.Metadata.AttestationCount)

	// the proof must verify for the claim it was generated for
	valid, err := cli.VerifyProof(&api.VerifyProofRequest{
		Proof:         result.Proof,
		PublicSignals: result.PublicSignals,
		Tag:           *tag,
		Threshold:     threshold,
	})
	if err != nil {
		log.Fatal(err)
	}
	if !valid {
		log.Fatal("proof did not verify")
	}
	log.Infow("proof verified", "tag", *tag, "threshold", *threshold)

	// and must not pass for a stricter claim
	strict := *threshold + 1
	valid, err = cli.VerifyProof(&api.VerifyProofRequest{
		Proof:         result.Proof,
		PublicSignals: result.PublicSignals,
		Tag:           *tag,
		Threshold:     &strict,
	})
	if err != nil {
		log.Fatal(err)
	}
	if valid {
		log.Fatal("proof verified for a claim it was not generated for")
	}

	// the publisher enrolled itself in the registry on the first signature
	root, err := cli.RegistryRoot()
	if err != nil {
		log.Fatal(err)
	}
	entry, err := cli.Publisher(*publisher)
	if err != nil {
		log.Fatal(err)
	}
	log.Infow("publisher enrolled",
		"domain", entry.Publisher.Domain,
		"signers", len(entry.Publisher.Signers),
		"root", root.Root.String(),
		"size", root.Size)

	log.Info("end to end flow completed")
	apiSrv.Stop()
	proverSrv.Stop()
}
