package controllers

import (
	"HospitalMS/handlers"
	"HospitalMS/middlewares"
	"HospitalMS/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Handler *handlers.AuthHandler
	tokens  *utils.TokenMaker
}

// NewAuthController creates a new AuthController with the given AuthHandler
func NewAuthController(authHandler *handlers.AuthHandler, tokens *utils.TokenMaker) *AuthController {
	return &AuthController{
		Handler: authHandler,
		tokens:  tokens,
	}
}

// RegisterRoutes initializes all authentication routes directly on the router
func (ac *AuthController) RegisterRoutes(router *gin.Engine) {
	// Public routes: No authentication required
	public := router.Group("/auth")
	{
		public.POST("/login", ac.Handler.Login)
		public.POST("/refresh", ac.Handler.RefreshToken)
		public.POST("/logout", ac.Handler.Logoff)
		public.POST("/send-reset-code", ac.Handler.SendResetCode)
		public.POST("/reset-password", ac.Handler.ResetPassword)
	}

	// Protected routes: Requires a valid token
	authGroup := router.Group("/auth").Use(middlewares.TokenAuthMiddleware(ac.tokens))
	{
		authGroup.GET("/me", ac.Handler.GetUserProfile)
	}
}
