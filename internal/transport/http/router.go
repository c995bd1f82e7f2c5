package handlers

import (
	"strings"
	"time"

	"learnpath/internal/application/usecase"
	"learnpath/internal/middleware"
	"learnpath/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(
	log *logger.Logger,
	authHandler *AuthHandler,
	progressHandler *ProgressHandler,
	limiter *middleware.RateLimiter,
	authUC *usecase.AuthUseCase,
	allowedOrigins string,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	config := cors.DefaultConfig()
	config.AllowOrigins = splitOrigins(allowedOrigins)
	config.AllowCredentials = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}
	r.Use(cors.New(config))

	r.GET("/health", progressHandler.Health)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", limiter.Limit("login", 5, 1*time.Minute), authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(authUC))
		{
			protected.GET("/paths", progressHandler.ListPaths)
			protected.GET("/paths/:id", progressHandler.GetPath)
			protected.POST("/progress", progressHandler.CompleteModule)
		}
	}

	return r
}

func splitOrigins(origins string) []string {
	if origins == "" {
		return []string{"http://localhost:3000"}
	}
	parts := strings.Split(origins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
