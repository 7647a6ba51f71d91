package main

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/zkaffinity/zkaffinity/circuits"
	"github.com/zkaffinity/zkaffinity/circuits/interestproof"
	"github.com/zkaffinity/zkaffinity/circuits/threshold"
	"github.com/zkaffinity/zkaffinity/log"
)

const sampleWallet = "0x1f9090aaE28b8a3dCeaDf281B0F12828e676c326"

func main() {
	dir := flag.String("dir", "artifacts", "output directory for the generated artifacts")
	sample := flag.Bool("sample", false, "also generate a sample proof and witness for debugging")

	flag.Parse()
	log.Init("info", "stdout", nil)

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	ccs, err := threshold.Compile()
	if err != nil {
		log.Fatal(err)
	}
	log.Infow("circuit compiled",
		"constraints", ccs.GetNbConstraints(),
		"took", time.Since(start).String())

	start = time.Now()
	pk, vk, err := threshold.Setup(ccs)
	if err != nil {
		log.Fatal(err)
	}
	log.Infow("groth16 setup done", "took", time.Since(start).String())

	ccsPath := filepath.Join(*dir, "threshold.ccs")
	if err := circuits.StoreConstraintSystem(ccs, ccsPath); err != nil {
		log.Fatal(err)
	}
	pkPath := filepath.Join(*dir, "threshold.pk")
	if err := circuits.StoreProvingKey(pk, pkPath); err != nil {
		log.Fatal(err)
	}
	vkPath := filepath.Join(*dir, "threshold.vk")
	if err := circuits.StoreVerificationKey(vk, vkPath); err != nil {
		log.Fatal(err)
	}

	// these hashes pin the published artifacts in config/circuit_artifacts.go
	for _, path := range []string{ccsPath, pkPath, vkPath} {
		content, err := os.ReadFile(path)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%x  %s\n", sha256.Sum256(content), path)
	}

	if !*sample {
		return
	}

	// prove a known scenario and keep the proof and witness around to debug
	// verifier integrations against
	attestations, err := interestproof.MockAttestationSetForTest(sampleWallet, "finance", []int64{8, 7, 9})
	if err != nil {
		log.Fatal(err)
	}
	input := interestproof.PrepareCircuitInputs(attestations, "finance", 20)
	assignment, err := threshold.Assignment(input)
	if err != nil {
		log.Fatal(err)
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		log.Fatal(err)
	}
	start = time.Now()
	proof, err := groth16.Prove(ccs, pk, w)
	if err != nil {
		log.Fatal(err)
	}
	log.Infow("sample proof generated", "took", time.Since(start).String())
	if err := circuits.StoreProof(proof, filepath.Join(*dir, "threshold_sample.proof")); err != nil {
		log.Fatal(err)
	}
	if err := circuits.StoreWitness(w, filepath.Join(*dir, "threshold_sample.wtns")); err != nil {
		log.Fatal(err)
	}
	pubWitness, err := w.Public()
	if err != nil {
		log.Fatal(err)
	}
	if err := groth16.Verify(proof, vk, pubWitness); err != nil {
		log.Fatal(err)
	}
	log.Info("sample proof verified against the generated verification key")
}
