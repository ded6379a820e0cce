package sharing

import "github.com/gin-gonic/gin"

type AuthenticationMiddleware interface {
	TokenAuthentication(c *gin.Context)
}

func Routes(r gin.IRouter, authenticationMiddleware AuthenticationMiddleware, handler Handler) {
	tokenAuthenticationRouter := r.Group("/sharing_service")
	tokenAuthenticationRouter.Use(authenticationMiddleware.TokenAuthentication)
	tokenAuthenticationRouter.POST("", handler.Create)
	tokenAuthenticationRouter.GET("", handler.FindAll)
	tokenAuthenticationRouter.GET("/:id", handler.Find)
	tokenAuthenticationRouter.PUT("/:id", handler.Update)
	tokenAuthenticationRouter.DELETE("/:id", handler.Delete)

	tokenAuthenticationRouter.POST("/:id/group", handler.AddGroup)
	tokenAuthenticationRouter.PUT("/:id/group/:groupId", handler.UpdateGroup)
	tokenAuthenticationRouter.DELETE("/:id/group/:groupId", handler.DeleteGroup)
	tokenAuthenticationRouter.POST("/:id/group/:groupId/auto_publisher", handler.AddAutoPublishers)
	tokenAuthenticationRouter.DELETE("/:id/group/:groupId/auto_publisher/:userId", handler.RemoveAutoPublisher)

	tokenAuthenticationRouter.POST("/:id/coauthor/:userId", handler.AddCoauthor)
	tokenAuthenticationRouter.DELETE("/:id/coauthor/:userId", handler.RemoveCoauthor)
}
