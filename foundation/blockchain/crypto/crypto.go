// Package crypto provides the hashing, key, and signature primitives the
// rest of the blockchain packages build on. Keys are secp256k1, addresses
// are the hex encoding of the uncompressed public key, and signatures are
// DER encoded, all per the wire formats the node and its peers agree on.
package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// AddressLength is the number of hex characters in a valid address: a
// 65 byte uncompressed secp256k1 public key ("04" prefix + X + Y).
const AddressLength = 130

// ErrInvalidAddress is returned when an address fails the format check.
var ErrInvalidAddress = errors.New("crypto: invalid address")

// GenerateKey creates a new secp256k1 private key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// Address returns the hex-encoded uncompressed public key for priv.
func Address(priv *ecdsa.PrivateKey) string {
	return AddressFromPublicKey(&priv.PublicKey)
}

// AddressFromPublicKey returns the hex-encoded uncompressed form of pub.
func AddressFromPublicKey(pub *ecdsa.PublicKey) string {
	return hex.EncodeToString(crypto.FromECDSAPub(pub))
}

// ValidateAddress checks that address is 130 hex characters starting with "04".
func ValidateAddress(address string) error {
	if len(address) != AddressLength {
		return fmt.Errorf("%w: length %d, want %d", ErrInvalidAddress, len(address), AddressLength)
	}
	if address[:2] != "04" {
		return fmt.Errorf("%w: must start with 04", ErrInvalidAddress)
	}
	if _, err := hex.DecodeString(address); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}
	return nil
}

// PublicKeyFromAddress parses a validated address back into a public key.
func PublicKeyFromAddress(address string) (*ecdsa.PublicKey, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	raw, err := hex.DecodeString(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}

	pub, err := crypto.UnmarshalPubkey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}

	return pub, nil
}

// Hash returns the hex-encoded SHA-256 hash of value's canonical JSON form.
func Hash(value interface{}) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	return HashBytes(data), nil
}

// HashBytes returns the hex-encoded SHA-256 hash of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Sign produces a hex-encoded DER signature over the SHA-256 hash of message.
func Sign(message []byte, priv *ecdsa.PrivateKey) (string, error) {
	digest := sha256.Sum256(message)

	der, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}

	return hex.EncodeToString(der), nil
}

// Verify checks a hex-encoded DER signature over message against address.
func Verify(message []byte, signatureHex string, address string) error {
	pub, err := PublicKeyFromAddress(address)
	if err != nil {
		return err
	}

	der, err := hex.DecodeString(signatureHex)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}

	digest := sha256.Sum256(message)
	if !ecdsa.VerifyASN1(pub, digest[:], der) {
		return errors.New("crypto: signature does not verify")
	}

	return nil
}
