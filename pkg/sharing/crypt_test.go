package sharing

import (
	"testing"

	"filippo.io/age"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *apiKeyCipher {
	t.Helper()

	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	cipher, err := NewAPIKeyCipher(identity.String())
	require.NoError(t, err)

	return cipher
}

func TestAPIKeyCipher(t *testing.T) {
	cipher := newTestCipher(t)

	encrypted, err := cipher.encrypt("tns-api-key")
	require.NoError(t, err)

	assert.NotContains(t, encrypted, "tns-api-key")
	assert.Contains(t, encrypted, "-----BEGIN AGE ENCRYPTED FILE-----")

	decrypted, err := cipher.decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "tns-api-key", decrypted)
}

func TestAPIKeyCipher_Empty(t *testing.T) {
	decrypted, err := newTestCipher(t).decrypt("")

	require.NoError(t, err)
	assert.Empty(t, decrypted)
}

func TestAPIKeyCipher_OtherIdentity(t *testing.T) {
	encrypted, err := newTestCipher(t).encrypt("tns-api-key")
	require.NoError(t, err)

	_, err = newTestCipher(t).decrypt(encrypted)

	require.Error(t, err)
}

func TestNewAPIKeyCipher_InvalidIdentity(t *testing.T) {
	_, err := NewAPIKeyCipher("not-an-identity")

	require.ErrorContains(t, err, "failed to parse age identity")
}
