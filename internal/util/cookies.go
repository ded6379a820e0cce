package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skyportal/skyportal/pkg/token"
)

// AccessTokenCookie is read by the token authentication for clients unable to set headers, like
// browser EventSources.
const AccessTokenCookie = "accessToken"

func SetCookies(c *gin.Context, tokens *token.Tokens, sameSiteMode http.SameSite) {
	c.SetSameSite(sameSiteMode)
	c.SetCookie(AccessTokenCookie, tokens.AccessToken, int(tokens.ExpiresIn), "/", "", true, true)
}
