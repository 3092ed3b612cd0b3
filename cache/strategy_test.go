package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tink-crypto/tink-go/v2/aead"
	"github.com/tink-crypto/tink-go/v2/insecurecleartextkeyset"
	"github.com/tink-crypto/tink-go/v2/keyset"
)

func TestNoEncryptionStrategy_PassThrough(t *testing.T) {
	strategy := &NoEncryptionStrategy{}

	value, err := strategy.EncryptValue([]byte("tok123"), "key")
	require.NoError(t, err)
	assert.Equal(t, "tok123", value)

	decrypted, err := strategy.DecryptValue(value, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok123"), decrypted)

	assert.Equal(t, "key", strategy.StorageKey("key"))
	assert.NoError(t, strategy.Close())
}

func newTestStrategy(t *testing.T) *TinkEncryptionStrategy {
	t.Helper()

	handle, err := keyset.NewHandle(aead.AES256GCMKeyTemplate())
	require.NoError(t, err)

	primitive, err := aead.New(handle)
	require.NoError(t, err)

	return NewTinkEncryptionStrategy(primitive)
}

func TestTinkEncryptionStrategy_RoundTrip(t *testing.T) {
	strategy := newTestStrategy(t)

	value, err := strategy.EncryptValue([]byte("tok123"), "skribble:token:user")
	require.NoError(t, err)
	assert.True(t, len(value) > len(valuePrefix))
	assert.Contains(t, value, valuePrefix)

	decrypted, err := strategy.DecryptValue(value, "skribble:token:user")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok123"), decrypted)
}

func TestTinkEncryptionStrategy_KeyBindsCiphertext(t *testing.T) {
	strategy := newTestStrategy(t)

	value, err := strategy.EncryptValue([]byte("tok123"), "key-a")
	require.NoError(t, err)

	// the cache key is AAD: decrypting under another key must fail
	_, err = strategy.DecryptValue(value, "key-b")
	assert.Error(t, err)
}

func TestTinkEncryptionStrategy_RejectsUnprefixedValue(t *testing.T) {
	strategy := newTestStrategy(t)

	_, err := strategy.DecryptValue("plaintext-token", "key")
	assert.ErrorContains(t, err, valuePrefix)
}

func TestTinkEncryptionStrategy_StorageKeyPrefixed(t *testing.T) {
	strategy := newTestStrategy(t)

	assert.Equal(t, storageKeyPrefix+"key", strategy.StorageKey("key"))
}

func TestNewTinkEncryptionStrategyFromFile(t *testing.T) {
	handle, err := keyset.NewHandle(aead.AES256GCMKeyTemplate())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, insecurecleartextkeyset.Write(handle, keyset.NewJSONWriter(&buf)))

	path := filepath.Join(t.TempDir(), "keyset.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	strategy, err := NewTinkEncryptionStrategyFromFile(path)
	require.NoError(t, err)

	value, err := strategy.EncryptValue([]byte("tok123"), "key")
	require.NoError(t, err)

	decrypted, err := strategy.DecryptValue(value, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok123"), decrypted)
}

func TestNewTinkEncryptionStrategyFromFile_Missing(t *testing.T) {
	_, err := NewTinkEncryptionStrategyFromFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
