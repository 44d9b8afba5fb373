package handlers

import (
	"github.com/gin-gonic/gin"
)

// Routes bundles the handlers mounted by RegisterRoutes
type Routes struct {
	Health   *HealthHandler
	Accounts *AccountHandler
	Auth     *AuthHandler

	// LoginLimiter guards POST /auth/login; nil disables limiting
	LoginLimiter gin.HandlerFunc
}

// RegisterRoutes mounts every endpoint on router. Identity resolution is
// expected to be installed as router middleware beforehand.
func RegisterRoutes(router gin.IRouter, r Routes) {
	router.GET("/health", r.Health.HandleHealth)
	router.GET("/ready", r.Health.HandleReady)
	router.GET("/info", r.Health.HandleInfo)

	login := []gin.HandlerFunc{r.Auth.HandleLogin}
	if r.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{r.LoginLimiter}, login...)
	}
	router.POST("/auth/login", login...)

	users := router.Group("/users")
	{
		users.GET("", r.Accounts.HandleList)
		users.POST("", r.Accounts.HandleCreate)
		users.GET("/:id", r.Accounts.HandleGet)
		users.PUT("/:id", r.Accounts.HandleUpdate)
	}
}
