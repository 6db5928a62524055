package main

import (
	"crypto/ed25519"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// loadKeypair reads a Solana CLI keypair file, a JSON array of the 64 byte
// ed25519 private key.
func loadKeypair(path string) (ed25519.PrivateKey, error) {
	if len(path) == 0 {
		return nil, errors.New("keypair is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read keypair %s", path)
	}

	return parseKeypair(raw)
}

func parseKeypair(raw []byte) (ed25519.PrivateKey, error) {
	var values []byte
	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return nil, errors.Wrap(err, "keypair is not a JSON byte array")
	}
	for _, v := range ints {
		if v < 0 || v > 255 {
			return nil, errors.Errorf("keypair value out of range: %d", v)
		}
		values = append(values, byte(v))
	}

	if len(values) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("keypair must be %d bytes, got %d", ed25519.PrivateKeySize, len(values))
	}

	key := ed25519.NewKeyFromSeed(values[:ed25519.SeedSize])
	if !key.Equal(ed25519.PrivateKey(values)) {
		return nil, errors.New("keypair public key does not match its secret key")
	}
	return key, nil
}
