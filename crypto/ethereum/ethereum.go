package ethereum

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/zkaffinity/zkaffinity/types"
	"github.com/zkaffinity/zkaffinity/util"
)

// SignatureLength is the size of an ECDSA signature in bytes.
const SignatureLength = ethcrypto.SignatureLength

// SigningPrefix is the prefix added to messages before hashing, following the
// Ethereum personal message convention.
const SigningPrefix = "\u0019Ethereum Signed Message:\n"

// SignKeys is an ECDSA key pair on the secp256k1 curve, used to sign and
// verify attestation messages.
type SignKeys struct {
	Public  ecdsa.PublicKey
	Private ecdsa.PrivateKey
}

// NewSignKeys creates an empty key pair. Call Generate or AddHexKey to make
// it usable.
func NewSignKeys() *SignKeys {
	return &SignKeys{}
}

// Generate creates a new random key pair.
func (k *SignKeys) Generate() error {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// AddHexKey imports a private key in hex format, with or without the 0x
// prefix.
func (k *SignKeys) AddHexKey(privHex string) error {
	key, err := ethcrypto.HexToECDSA(util.TrimHex(privHex))
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// HexString returns the compressed public key and the private key as hex
// strings.
func (k *SignKeys) HexString() (string, string) {
	pubHexComp := hex.EncodeToString(ethcrypto.CompressPubkey(&k.Public))
	privHex := hex.EncodeToString(ethcrypto.FromECDSA(&k.Private))
	return pubHexComp, privHex
}

// PublicKey returns the compressed public key.
func (k *SignKeys) PublicKey() types.HexBytes {
	return ethcrypto.CompressPubkey(&k.Public)
}

// Address returns the Ethereum address derived from the public key.
func (k *SignKeys) Address() common.Address {
	return ethcrypto.PubkeyToAddress(k.Public)
}

// AddressString returns the Ethereum address as a checksummed hex string.
func (k *SignKeys) AddressString() string {
	return k.Address().String()
}

// SignEthereum signs a message using the Ethereum personal message prefix.
// The message is the raw byte array, no pre-hashing needed.
func (k *SignKeys) SignEthereum(message []byte) ([]byte, error) {
	if k.Private.D == nil {
		return nil, errors.New("no private key available")
	}
	signature, err := ethcrypto.Sign(HashEthereumMessage(message), &k.Private)
	if err != nil {
		return nil, fmt.Errorf("cannot sign message: %w", err)
	}
	return signature, nil
}

// HashEthereumMessage hashes a message adding the Ethereum prefix.
func HashEthereumMessage(message []byte) []byte {
	prefixed := fmt.Sprintf("%s%d%s", SigningPrefix, len(message), message)
	return ethcrypto.Keccak256([]byte(prefixed))
}

// HashRaw hashes data with keccak256, without any prefix.
func HashRaw(data []byte) []byte {
	return ethcrypto.Keccak256(data)
}

// AddrFromPublicKey extracts the Ethereum address from a public key, either
// compressed or uncompressed.
func AddrFromPublicKey(pub []byte) (common.Address, error) {
	var pubKey *ecdsa.PublicKey
	var err error
	if len(pub) == 33 {
		pubKey, err = ethcrypto.DecompressPubkey(pub)
	} else {
		pubKey, err = ethcrypto.UnmarshalPubkey(pub)
	}
	if err != nil {
		return common.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*pubKey), nil
}

// AddrFromSignature recovers the Ethereum address which signed a message.
// Both raw recovery ids (0/1) and legacy ones (27/28) are accepted.
func AddrFromSignature(message, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLength {
		return common.Address{}, fmt.Errorf("wrong signature length %d", len(signature))
	}
	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	if sig[64] > 1 {
		sig[64] -= 27
	}
	pubKey, err := ethcrypto.SigToPub(HashEthereumMessage(message), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("cannot recover public key: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pubKey), nil
}
