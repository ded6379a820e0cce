package photometry

import "github.com/gin-gonic/gin"

type AuthenticationMiddleware interface {
	TokenAuthentication(c *gin.Context)
}

func Routes(r gin.IRouter, authenticationMiddleware AuthenticationMiddleware, handler Handler) {
	tokenAuthenticationRouter := r.Group("")
	tokenAuthenticationRouter.Use(authenticationMiddleware.TokenAuthentication)
	tokenAuthenticationRouter.POST("/photometry", handler.Create)
	tokenAuthenticationRouter.GET("/sources/:id/photometry", handler.FindBySource)
}
