package circuits

import (
	"io"
	"math/big"
	"os"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"

	"github.com/zkaffinity/zkaffinity/log"
)

// BigIntArrayToN pads the big.Int array to n elements, if needed,
// with zeros.
func BigIntArrayToN(arr []*big.Int, n int) []*big.Int {
	bigArr := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		if i < len(arr) {
			bigArr[i] = arr[i]
		} else {
			bigArr[i] = big.NewInt(0)
		}
	}
	return bigArr
}

// BigIntArrayToStringArray pads the big.Int array to n elements and converts
// it to the decimal string form witness calculators expect.
func BigIntArrayToStringArray(arr []*big.Int, n int) []string {
	strArr := []string{}
	for _, b := range BigIntArrayToN(arr, n) {
		strArr = append(strArr, b.String())
	}
	return strArr
}

// BoolToBigInt returns 1 when b is true or 0 otherwise.
func BoolToBigInt(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}

func storeToFile(filepath, kind string, write func(io.Writer) error) error {
	fd, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer fd.Close()
	if err := write(fd); err != nil {
		return err
	}
	log.Debugw("circuit artifact written", "kind", kind, "file", filepath)
	return nil
}

// StoreConstraintSystem writes the compiled constraint system to a file.
func StoreConstraintSystem(cs constraint.ConstraintSystem, filepath string) error {
	return storeToFile(filepath, "constraint system", func(w io.Writer) error {
		_, err := cs.WriteTo(w)
		return err
	})
}

// StoreProvingKey writes the proving key to a file in raw form.
func StoreProvingKey(pkey groth16.ProvingKey, filepath string) error {
	return storeToFile(filepath, "proving key", func(w io.Writer) error {
		_, err := pkey.WriteRawTo(w)
		return err
	})
}

// StoreVerificationKey writes the verification key to a file in raw form.
func StoreVerificationKey(vkey groth16.VerifyingKey, filepath string) error {
	return storeToFile(filepath, "verification key", func(w io.Writer) error {
		_, err := vkey.WriteRawTo(w)
		return err
	})
}

// StoreProof writes the proof to a file.
func StoreProof(proof groth16.Proof, filepath string) error {
	return storeToFile(filepath, "proof", func(w io.Writer) error {
		_, err := proof.WriteTo(w)
		return err
	})
}

// StoreWitness writes the binary serialization of the witness to a file.
func StoreWitness(wtns witness.Witness, filepath string) error {
	return storeToFile(filepath, "witness", func(w io.Writer) error {
		bWitness, err := wtns.MarshalBinary()
		if err != nil {
			return err
		}
		_, err = w.Write(bWitness)
		return err
	})
}
