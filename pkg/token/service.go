package token

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/skyportal/skyportal/pkg/model"
)

// UserIDClaim is the private claim carrying the id of the authenticated user.
const UserIDClaim = "userId"

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(privateKey *rsa.PrivateKey, accessTokenExpirationSeconds int) *service {
	return &service{
		privateKey:                   privateKey,
		accessTokenExpirationSeconds: accessTokenExpirationSeconds,
	}
}

// Tokens domain object defining user tokens
// swagger:model
type Tokens struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   uint   `json:"expiresIn"`
}

type service struct {
	privateKey                   *rsa.PrivateKey
	accessTokenExpirationSeconds int
}

func (s service) GetTokens(user *model.User) (*Tokens, error) {
	accessToken, err := generateAccessToken(user, s.privateKey, s.accessTokenExpirationSeconds)
	if err != nil {
		return nil, fmt.Errorf("error generating accessToken for user %d: %v", user.ID, err)
	}

	return &Tokens{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   uint(s.accessTokenExpirationSeconds),
	}, nil
}

func generateAccessToken(user *model.User, key *rsa.PrivateKey, expirationInSeconds int) (string, error) {
	now := time.Now()

	token, err := jwt.NewBuilder().
		JwtID(uuid.NewString()).
		IssuedAt(now).
		Expiration(now.Add(time.Duration(expirationInSeconds)*time.Second)).
		Claim(UserIDClaim, user.ID).
		Build()
	if err != nil {
		return "", err
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256, key))
	if err != nil {
		return "", err
	}

	return string(signed), nil
}
