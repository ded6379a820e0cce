package token

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/skyportal/skyportal/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTokens(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "failed to generate private key")
	service := NewService(key, 60)

	tokens, err := service.GetTokens(&model.User{ID: 42})
	require.NoError(t, err)

	assert.Equal(t, "bearer", tokens.TokenType)
	assert.EqualValues(t, 60, tokens.ExpiresIn)

	token, err := jwt.Parse([]byte(tokens.AccessToken), jwt.WithKey(jwa.RS256, &key.PublicKey))
	require.NoError(t, err)
	userID, ok := token.Get(UserIDClaim)
	require.True(t, ok, "want claim %q", UserIDClaim)
	assert.EqualValues(t, 42, userID)
	assert.NotEmpty(t, token.JwtID())
	assert.WithinDuration(t, time.Now().Add(60*time.Second), token.Expiration(), 5*time.Second)
}

func TestGetTokens_RejectedWithOtherKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "failed to generate private key")
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "failed to generate private key")

	tokens, err := NewService(key, 60).GetTokens(&model.User{ID: 1})
	require.NoError(t, err)

	_, err = jwt.Parse([]byte(tokens.AccessToken), jwt.WithKey(jwa.RS256, &otherKey.PublicKey))
	assert.Error(t, err)
}
