package middleware

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/internal/util"
	"github.com/skyportal/skyportal/pkg/model"
	skyportalToken "github.com/skyportal/skyportal/pkg/token"
)

func NewAuthentication(publicKey *rsa.PublicKey, userService userService) AuthenticationMiddleware {
	return AuthenticationMiddleware{
		publicKey:   publicKey,
		userService: userService,
	}
}

type userService interface {
	SignIn(ctx context.Context, username string, password string) (*model.User, error)
	FindById(ctx context.Context, id uint) (*model.User, error)
}

type AuthenticationMiddleware struct {
	publicKey   *rsa.PublicKey
	userService userService
}

// BasicAuthentication authenticates the user by username and password.
func (m AuthenticationMiddleware) BasicAuthentication(c *gin.Context) {
	username, password, ok := c.Request.BasicAuth()
	if !ok {
		m.handleError(c, errors.New("invalid Authorization header format"))
		return
	}

	u, err := m.userService.SignIn(c.Request.Context(), username, password)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	setUser(c, u)
	c.Next()
}

func (m AuthenticationMiddleware) handleError(c *gin.Context, e error) {
	_ = c.AbortWithError(http.StatusUnauthorized, e)
}

// TokenAuthentication authenticates the user by a token signed by us, sent either as bearer token or
// as accessToken cookie. The user is loaded from the database so group and stream access is never
// stale.
func (m AuthenticationMiddleware) TokenAuthentication(c *gin.Context) {
	userID, err := parseRequest(c.Request, m.publicKey)
	if err != nil {
		_ = c.Error(errdef.NewUnauthorized("token not valid: %v", err))
		c.Abort()
		return
	}

	u, err := m.userService.FindById(c.Request.Context(), userID)
	if err != nil {
		if errdef.IsNotFound(err) {
			_ = c.Error(errdef.NewUnauthorized("token not valid: user %d not found", userID))
		} else {
			_ = c.Error(err)
		}
		c.Abort()
		return
	}

	setUser(c, u)
	c.Next()
}

func setUser(c *gin.Context, user *model.User) {
	c.Set("user", user)
	c.Request = c.Request.WithContext(model.NewContextWithUser(c.Request.Context(), user))
}

func parseRequest(request *http.Request, key *rsa.PublicKey) (uint, error) {
	token, err := jwt.ParseRequest(
		request,
		jwt.WithKey(jwa.RS256, key),
		jwt.WithHeaderKey("Authorization"),
		jwt.WithCookieKey(util.AccessTokenCookie),
	)
	if err != nil {
		return 0, err
	}

	return extractUserID(token)
}

func extractUserID(token jwt.Token) (uint, error) {
	claim, ok := token.Get(skyportalToken.UserIDClaim)
	if !ok {
		return 0, errors.New("user not found in claims")
	}

	id, ok := claim.(float64)
	if !ok || id < 1 {
		return 0, fmt.Errorf("invalid user id claim: %v", claim)
	}

	return uint(id), nil
}
