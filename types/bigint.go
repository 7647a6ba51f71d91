package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// BigInt is a big.Int wrapper which marshals JSON to a string representation
// of the big number. Note that a nil pointer value marshals as the number 0.
type BigInt big.Int

// NewBigInt returns a new BigInt with the given int64 value.
func NewBigInt(x int64) *BigInt {
	return (*BigInt)(big.NewInt(x))
}

// MathBigInt converts b to a math/big *big.Int.
func (i *BigInt) MathBigInt() *big.Int {
	return (*big.Int)(i)
}

func (i *BigInt) String() string {
	if i == nil {
		return "0"
	}
	return i.MathBigInt().String()
}

// SetBytes interprets buf as big-endian unsigned integer.
func (i *BigInt) SetBytes(buf []byte) *BigInt {
	return (*BigInt)(i.MathBigInt().SetBytes(buf))
}

// Bytes returns the absolute value of b as a big-endian byte slice.
func (i *BigInt) Bytes() []byte {
	return i.MathBigInt().Bytes()
}

// SetString interprets s as a decimal number and sets b to that value.
func (i *BigInt) SetString(s string) (*BigInt, error) {
	if _, ok := i.MathBigInt().SetString(s, 10); !ok {
		return nil, fmt.Errorf("invalid decimal number %q", s)
	}
	return i, nil
}

// Equal reports whether i and j are equal. Two nil values are equal.
func (i *BigInt) Equal(j *BigInt) bool {
	if i == nil || j == nil {
		return i == j
	}
	return i.MathBigInt().Cmp(j.MathBigInt()) == 0
}

func (i *BigInt) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *BigInt) UnmarshalText(data []byte) error {
	if _, ok := i.MathBigInt().SetString(string(data), 10); !ok {
		return fmt.Errorf("invalid decimal number %q", data)
	}
	return nil
}

func (i *BigInt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + i.String() + `"`), nil
}

func (i *BigInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	// accept both quoted and bare numbers
	s = strings.Trim(s, `"`)
	return i.UnmarshalText([]byte(s))
}

// MarshalCBOR encodes the number as its decimal string, which preserves the
// sign and keeps the encoding deterministic.
func (i *BigInt) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(i.String())
}

func (i *BigInt) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	return i.UnmarshalText([]byte(s))
}
