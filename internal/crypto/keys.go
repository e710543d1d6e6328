// Package crypto handles the RSA key material used for token signing.
package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// ErrInvalidPEM is returned when key material cannot be decoded.
var ErrInvalidPEM = errors.New("invalid PEM block")

// KeyLoader supplies the RSA key pair and its identifier to the JWT service.
type KeyLoader interface {
	GetPrivateKey() *rsa.PrivateKey
	GetPublicKey() *rsa.PublicKey
	GetKeyID() string
}

// GenerateRSAKey generates a new 2048-bit RSA private key.
func GenerateRSAKey() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, 2048)
}

// StaticKeyLoader holds a fixed key pair with a stable key ID.
type StaticKeyLoader struct {
	privateKey *rsa.PrivateKey
	keyID      string
}

// NewStaticKeyLoader wraps an existing private key. An empty keyID gets a
// generated one.
func NewStaticKeyLoader(key *rsa.PrivateKey, keyID string) *StaticKeyLoader {
	if keyID == "" {
		keyID = uuid.NewString()
	}
	return &StaticKeyLoader{privateKey: key, keyID: keyID}
}

// NewEphemeralKeyLoader generates a fresh key pair, for development and test
// deployments without provisioned key files.
func NewEphemeralKeyLoader() (*StaticKeyLoader, error) {
	key, err := GenerateRSAKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}
	return NewStaticKeyLoader(key, ""), nil
}

// LoadKeyLoaderFromFile reads a PEM-encoded RSA private key from disk.
func LoadKeyLoaderFromFile(path, keyID string) (*StaticKeyLoader, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %s: %w", path, err)
	}
	key, err := ParseRSAPrivateKeyPEM(pemBytes)
	if err != nil {
		return nil, err
	}
	return NewStaticKeyLoader(key, keyID), nil
}

// ParseRSAPrivateKeyPEM decodes a PKCS#1 or PKCS#8 PEM private key.
func ParseRSAPrivateKeyPEM(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrInvalidPEM
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("key is not an RSA private key")
	}
	return rsaKey, nil
}

// EncodeRSAPrivateKeyPEM serializes a private key in PKCS#1 PEM form.
func EncodeRSAPrivateKeyPEM(key *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
}

func (l *StaticKeyLoader) GetPrivateKey() *rsa.PrivateKey { return l.privateKey }

func (l *StaticKeyLoader) GetPublicKey() *rsa.PublicKey {
	return &l.privateKey.PublicKey
}

func (l *StaticKeyLoader) GetKeyID() string { return l.keyID }
