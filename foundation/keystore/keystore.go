// Package keystore loads or creates the secp256k1 private key a wallet
// signs with. It is the only package in this module that touches the
// filesystem on the key's behalf; foundation/blockchain/wallet never
// reads or writes a key file directly.
package keystore

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"
)

// Load reads the hex-encoded private key at path. If path does not exist,
// a fresh key is generated and written there before being returned.
func Load(path string) (*ecdsa.PrivateKey, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return generate(path)
	}

	priv, err := crypto.LoadECDSA(path)
	if err != nil {
		return nil, fmt.Errorf("keystore: load %s: %w", path, err)
	}

	return priv, nil
}

// generate creates a new key and persists it to path.
func generate(path string) (*ecdsa.PrivateKey, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("keystore: generate: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("keystore: mkdir %s: %w", dir, err)
		}
	}

	if err := crypto.SaveECDSA(path, priv); err != nil {
		return nil, fmt.Errorf("keystore: save %s: %w", path, err)
	}

	return priv, nil
}

// Delete removes the key file at path. Exposed for tests that need a
// clean key directory between runs; the running node never calls it.
func Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("keystore: delete %s: %w", path, err)
	}
	return nil
}
