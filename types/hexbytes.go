package types

import (
	"encoding/hex"
	"fmt"
)

// HexBytes is a []byte which encodes as a hexadecimal string in json.
type HexBytes []byte

func (b HexBytes) String() string {
	return "0x" + hex.EncodeToString(b)
}

// SetString decodes a hex string into b, with or without the 0x prefix.
func (b *HexBytes) SetString(s string) error {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	dec, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*b = dec
	return nil
}

func (b HexBytes) MarshalJSON() ([]byte, error) {
	enc := make([]byte, hex.EncodedLen(len(b))+4)
	enc[0] = '"'
	enc[1] = '0'
	enc[2] = 'x'
	hex.Encode(enc[3:], b)
	enc[len(enc)-1] = '"'
	return enc, nil
}

func (b *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid JSON string: %q", data)
	}
	data = data[1 : len(data)-1]
	// strip the optional 0x prefix
	if len(data) >= 2 && data[0] == '0' && (data[1] == 'x' || data[1] == 'X') {
		data = data[2:]
	}
	decoded := make([]byte, hex.DecodedLen(len(data)))
	if _, err := hex.Decode(decoded, data); err != nil {
		return err
	}
	*b = decoded
	return nil
}

// HexStringToHexBytes converts a hex string to a HexBytes. It strips a
// leading '0x' or '0X' if present and panics if the string is not a valid
// hex string.
func HexStringToHexBytes(hexString string) HexBytes {
	b := HexBytes{}
	if err := b.SetString(hexString); err != nil {
		panic(fmt.Sprintf("invalid hex string %q: %v", hexString, err))
	}
	return b
}
