// Package router builds the HTTP route table.
package router

import (
	"github.com/gin-gonic/gin"

	authhandler "survey_backend/internal/feature/auth/transport/handler"
	surveyhandler "survey_backend/internal/feature/surveys/transport/handler"
	jwtmw "survey_backend/internal/platform/jwt"
)

// NewRouter registers every route. health serves /healthz and limiter guards /api.
// Bearer tokens are verified against jwtSecret.
func NewRouter(authHandler *authhandler.AuthHandler, entries *surveyhandler.EntryHandler,
	health gin.HandlerFunc, limiter gin.HandlerFunc, jwtSecret string) *gin.Engine {
	r := gin.Default()

	// No authentication
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)

	api := r.Group("/api")
	api.Use(limiter)
	api.POST("/auth/login", authHandler.Login)

	// Bearer token required
	auth := api.Group("")
	auth.Use(jwtmw.AuthRequired(jwtSecret))
	{
		auth.GET("/auth/me", authHandler.Me)

		auth.POST("/users", authHandler.CreateUser)
		auth.DELETE("/users/:id", authHandler.DeleteUser)

		auth.GET("/surveys", entries.ListAll)
		auth.GET("/surveys/user/:userId", entries.ListByUser)
		auth.GET("/surveys/:id", entries.Get)
		auth.POST("/surveys", entries.Create)
		auth.PUT("/surveys/:id", entries.Update)
		auth.DELETE("/surveys/:id", entries.Delete)
	}

	return r
}
