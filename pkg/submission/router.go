package submission

import "github.com/gin-gonic/gin"

type AuthenticationMiddleware interface {
	TokenAuthentication(c *gin.Context)
}

func Routes(r gin.IRouter, authenticationMiddleware AuthenticationMiddleware, handler Handler) {
	tokenAuthenticationRouter := r.Group("/sharing_service")
	tokenAuthenticationRouter.Use(authenticationMiddleware.TokenAuthentication)
	tokenAuthenticationRouter.POST("/:id/submission", handler.Submit)
	tokenAuthenticationRouter.GET("/:id/submission", handler.List)
	tokenAuthenticationRouter.GET("/submission/:submissionId", handler.Find)
}
