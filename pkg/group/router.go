package group

import (
	"github.com/gin-gonic/gin"
)

type AuthenticationMiddleware interface {
	TokenAuthentication(context *gin.Context)
}

type AuthorizationMiddleware interface {
	RequireAdministrator(context *gin.Context)
}

func Routes(r gin.IRouter, authenticationMiddleware AuthenticationMiddleware, authorizationMiddleware AuthorizationMiddleware, handler Handler) {
	tokenAuthenticationRouter := r.Group("")
	tokenAuthenticationRouter.Use(authenticationMiddleware.TokenAuthentication)

	tokenAuthenticationRouter.GET("/groups", handler.FindAll)
	tokenAuthenticationRouter.GET("/groups/:id", handler.Find)

	administratorRestrictedRouter := tokenAuthenticationRouter.Group("")
	administratorRestrictedRouter.Use(authorizationMiddleware.RequireAdministrator)
	administratorRestrictedRouter.POST("/groups", handler.Create)
	administratorRestrictedRouter.POST("/groups/:id/users/:userId", handler.AddUserToGroup)
	administratorRestrictedRouter.POST("/groups/:id/admins/:userId", handler.AddAdminUserToGroup)
	administratorRestrictedRouter.DELETE("/groups/:id/users/:userId", handler.RemoveUserFromGroup)
}
