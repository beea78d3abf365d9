// Package router wires the application routes. Kept apart from main so
// tests can mount the same route table on their own Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/maikolmontes/pymes-manager/internal/handler"
	"github.com/maikolmontes/pymes-manager/pkg/config"
	"github.com/maikolmontes/pymes-manager/pkg/upload"
)

// Register configures the application routes
func Register(e *echo.Echo, cfg *config.Config) {
	handler.Initialize(cfg)

	// Service plumbing
	e.GET("/", handler.Root)
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Uploaded business images are publicly retrievable
	e.Static(upload.PublicPath, cfg.Upload.Dir)

	api := e.Group("/api")

	businesses := api.Group("/businesses")
	businesses.POST("", handler.CreateBusiness)
	businesses.GET("", handler.ListBusinesses)
	businesses.GET("/my/:user_id", handler.ListBusinessesByOwner)
	businesses.PUT("/:id", handler.UpdateBusiness)
	businesses.DELETE("/:id", handler.DeleteBusiness)

	users := api.Group("/users")
	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)
	users.GET("", handler.ListUsers)

	favorites := api.Group("/favorites")
	favorites.POST("", handler.AddFavorite)
	favorites.GET("/:user_id", handler.ListFavoritesByUser)
	favorites.DELETE("", handler.RemoveFavorite)
}
