package security

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrKeyNotFound indicates no key is registered for the requested kid.
var ErrKeyNotFound = errors.New("key not found")

// KeyProvider supplies the keys used to verify and re-sign session tokens.
type KeyProvider interface {
	GetSigningKey() (*rsa.PrivateKey, error)
	GetVerificationKey(kid string) (*rsa.PublicKey, error)
}

// DirKeyProvider reads PEM-encoded RSA keys from a directory. The file name
// (without extension) becomes the kid. The first private key found doubles
// as the signing key used for token rotation.
type DirKeyProvider struct {
	keys       map[string]*rsa.PublicKey
	signingKey *rsa.PrivateKey
}

// NewDirKeyProvider loads every key file in the directory.
func NewDirKeyProvider(keyDir string) (*DirKeyProvider, error) {
	files, err := os.ReadDir(keyDir)
	if err != nil {
		return nil, fmt.Errorf("read key directory: %w", err)
	}

	provider := &DirKeyProvider{keys: make(map[string]*rsa.PublicKey)}

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		path := filepath.Join(keyDir, file.Name())
		keyData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read key file %s: %w", path, err)
		}

		block, _ := pem.Decode(keyData)
		if block == nil {
			return nil, fmt.Errorf("decode PEM block from %s", path)
		}

		kid := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))

		if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
			if provider.signingKey == nil {
				provider.signingKey = key
			}
			provider.keys[kid] = &key.PublicKey
			continue
		}

		if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
			if rsaKey, ok := key.(*rsa.PrivateKey); ok {
				if provider.signingKey == nil {
					provider.signingKey = rsaKey
				}
				provider.keys[kid] = &rsaKey.PublicKey
				continue
			}
		}

		if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
			provider.keys[kid] = key
			continue
		}

		if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
			if rsaKey, ok := key.(*rsa.PublicKey); ok {
				provider.keys[kid] = rsaKey
				continue
			}
		}

		return nil, fmt.Errorf("unsupported key format in %s", path)
	}

	if len(provider.keys) == 0 {
		return nil, fmt.Errorf("no usable keys in %s", keyDir)
	}

	return provider, nil
}

// GetSigningKey returns the key used to rotate near-expiry tokens.
func (p *DirKeyProvider) GetSigningKey() (*rsa.PrivateKey, error) {
	if p.signingKey == nil {
		return nil, ErrKeyNotFound
	}
	return p.signingKey, nil
}

// GetVerificationKey returns the public key registered under kid.
func (p *DirKeyProvider) GetVerificationKey(kid string) (*rsa.PublicKey, error) {
	key, ok := p.keys[strings.TrimSpace(kid)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
	}
	return key, nil
}

// StaticKeyProvider serves a single in-memory key pair (tests, local runs).
type StaticKeyProvider struct {
	Kid string
	Key *rsa.PrivateKey
}

func (p *StaticKeyProvider) GetSigningKey() (*rsa.PrivateKey, error) {
	if p.Key == nil {
		return nil, ErrKeyNotFound
	}
	return p.Key, nil
}

func (p *StaticKeyProvider) GetVerificationKey(kid string) (*rsa.PublicKey, error) {
	if p.Key == nil || kid != p.Kid {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
	}
	return &p.Key.PublicKey, nil
}
