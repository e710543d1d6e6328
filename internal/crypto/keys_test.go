package crypto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticKeyLoader(t *testing.T) {
	key, err := GenerateRSAKey()
	require.NoError(t, err)

	loader := NewStaticKeyLoader(key, "key-2025")
	assert.Equal(t, "key-2025", loader.GetKeyID())
	assert.Equal(t, key, loader.GetPrivateKey())
	assert.Equal(t, &key.PublicKey, loader.GetPublicKey())

	generated := NewStaticKeyLoader(key, "")
	assert.NotEmpty(t, generated.GetKeyID(), "an empty key ID gets a generated one")
}

func TestParseRSAPrivateKeyPEM_RoundTrip(t *testing.T) {
	key, err := GenerateRSAKey()
	require.NoError(t, err)

	parsed, err := ParseRSAPrivateKeyPEM(EncodeRSAPrivateKeyPEM(key))
	require.NoError(t, err)
	assert.True(t, key.Equal(parsed))
}

func TestParseRSAPrivateKeyPEM_Invalid(t *testing.T) {
	_, err := ParseRSAPrivateKeyPEM([]byte("not pem at all"))
	assert.ErrorIs(t, err, ErrInvalidPEM)
}

func TestLoadKeyLoaderFromFile(t *testing.T) {
	key, err := GenerateRSAKey()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "signing.pem")
	require.NoError(t, os.WriteFile(path, EncodeRSAPrivateKeyPEM(key), 0o600))

	loader, err := LoadKeyLoaderFromFile(path, "file-key")
	require.NoError(t, err)
	assert.Equal(t, "file-key", loader.GetKeyID())
	assert.True(t, key.Equal(loader.GetPrivateKey()))

	_, err = LoadKeyLoaderFromFile(filepath.Join(t.TempDir(), "missing.pem"), "")
	assert.Error(t, err)
}
