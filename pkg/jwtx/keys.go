package jwtx

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

var (
	ErrNoSigningKey      = errors.New("jwtx: no signing key loaded")
	ErrNoVerificationKey = errors.New("jwtx: no verification key loaded")
)

// KeyPair holds the RS256 key material for one process. The gateway loads
// both halves; backend services load only the verification key. Loaded once
// at startup and never mutated, so it is shared across requests without
// locking.
type KeyPair struct {
	signing      *rsa.PrivateKey
	verification *rsa.PublicKey
}

// LoadKeyPair reads a PEM private key and a PEM public key from the given
// paths. Both must be present and parseable; a process that mints tokens
// cannot start without them.
func LoadKeyPair(signingPath, verificationPath string) (*KeyPair, error) {
	signing, err := loadPrivateKey(signingPath)
	if err != nil {
		return nil, err
	}
	verification, err := loadPublicKey(verificationPath)
	if err != nil {
		return nil, err
	}
	return &KeyPair{signing: signing, verification: verification}, nil
}

// LoadVerificationKey reads only the PEM public key. This is the variant
// for runtimes that verify tokens but must never hold the private half.
func LoadVerificationKey(path string) (*KeyPair, error) {
	verification, err := loadPublicKey(path)
	if err != nil {
		return nil, err
	}
	return &KeyPair{verification: verification}, nil
}

// CanSign reports whether this pair carries the private key.
func (k *KeyPair) CanSign() bool { return k != nil && k.signing != nil }

// loadPrivateKey parses an RSA private key from PEM. Handles both PKCS1
// and PKCS8 because otherwise we will be chasing a bug for longer than we
// would be willing to admit.
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jwtx: read signing key %q: %w", path, err)
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("jwtx: signing key %q: invalid PEM", path)
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse PKCS1: %w", err)
		}
		return key, nil
	case "PRIVATE KEY":
		priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
		}
		key, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("jwtx: signing key %q is not RSA", path)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("jwtx: unsupported PEM type %q", block.Type)
	}
}

// loadPublicKey parses an RSA public key from PEM (PKIX "PUBLIC KEY" or
// PKCS1 "RSA PUBLIC KEY").
func loadPublicKey(path string) (*rsa.PublicKey, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jwtx: read verification key %q: %w", path, err)
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("jwtx: verification key %q: invalid PEM", path)
	}

	switch block.Type {
	case "PUBLIC KEY":
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse PKIX: %w", err)
		}
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("jwtx: verification key %q is not RSA", path)
		}
		return rsaPub, nil
	case "RSA PUBLIC KEY":
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse PKCS1 public: %w", err)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("jwtx: unsupported PEM type %q", block.Type)
	}
}
