// Copyright (c) 2025 BVK Chaitanya

package dmarket

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
)

// Credentials holds the api keys for a DMarket account. Secret key is the
// ed25519 signing key in hex, either the 32 byte seed or the full 64 byte
// private key.
type Credentials struct {
	PublicKey string `json:"public_key"`
	SecretKey string `json:"secret_key"`
}

func (v *Credentials) Check() error {
	if len(v.PublicKey) == 0 || len(v.SecretKey) == 0 {
		return fmt.Errorf("public key and secret key cannot be empty: %w", os.ErrInvalid)
	}
	if _, err := hex.DecodeString(v.PublicKey); err != nil {
		return fmt.Errorf("public key must be a hex string: %w", err)
	}
	if _, err := v.signingKey(); err != nil {
		return err
	}
	return nil
}

func (v *Credentials) signingKey() (ed25519.PrivateKey, error) {
	key, err := hex.DecodeString(v.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("secret key must be a hex string: %w", err)
	}
	switch len(key) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(key), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(key), nil
	}
	return nil, fmt.Errorf("secret key must be %d or %d bytes: %w", ed25519.SeedSize, ed25519.PrivateKeySize, os.ErrInvalid)
}
