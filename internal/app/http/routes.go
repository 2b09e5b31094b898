package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"curio-server/config"
	"curio-server/internal/api/admin"
	"curio-server/internal/api/auth"
	"curio-server/internal/api/collections"
	"curio-server/internal/api/items"
	apiusers "curio-server/internal/api/users"
	"curio-server/internal/app/http/middleware"
	"curio-server/internal/storage"
)

// Deps carries everything the route tree needs, injected from main.
type Deps struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Store *storage.Store
	Log   zerolog.Logger
}

// RegisterRoutes wires the full API surface onto r.
func RegisterRoutes(r *gin.Engine, d Deps) {
	authHandler := auth.NewHandler(d.DB, d.Cfg, d.Log)
	userHandler := apiusers.NewHandler(d.DB, d.Log)
	collectionHandler := collections.NewHandler(d.DB, d.Store, d.Log)
	itemHandler := items.NewHandler(d.DB, d.Store, d.Log)
	adminHandler := admin.NewHandler(d.DB, d.Store, d.Log)

	limiter := middleware.NewIPRateLimiter(rate.Limit(d.Cfg.RateLimit.RPS), d.Cfg.RateLimit.Burst)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	// Unauthenticated surface: throttled per IP, JSON string fields
	// sanitized before binding.
	public := api.Group("")
	public.Use(limiter.Middleware(), middleware.SanitizeJSONInput())
	{
		public.POST("/login/access-token", authHandler.Login)
		public.GET("/auth/google", authHandler.GoogleStart)
		public.GET("/auth/google/callback", authHandler.GoogleCallback)
		public.POST("/password-recovery/:email", authHandler.RequestPasswordReset)
		public.POST("/reset-password", authHandler.ResetPassword)
		public.POST("/users/signup", userHandler.Signup)
	}

	authed := api.Group("")
	authed.Use(middleware.Auth(d.DB, d.Cfg.JWT.Secret))
	{
		authed.GET("/users/me", userHandler.Me)
		authed.PATCH("/users/me", userHandler.UpdateMe)
		authed.PATCH("/users/me/password", userHandler.ChangePassword)
		authed.GET("/users/:id", userHandler.Get)

		// Collection writes are admin-only, but the handlers gate them
		// after the existence check so a missing id reads as 404 for
		// everyone.
		authed.GET("/collections", collectionHandler.List)
		authed.GET("/collections/:id", collectionHandler.Get)
		authed.POST("/collections", collectionHandler.Create)
		authed.PUT("/collections/:id", collectionHandler.Update)
		authed.DELETE("/collections/:id", collectionHandler.Delete)

		authed.GET("/items", itemHandler.List)
		authed.GET("/items/:id", itemHandler.Get)
		authed.GET("/items/:id/image", itemHandler.ServeFile)
		authed.POST("/items/upload", itemHandler.Upload)
		authed.PUT("/items/:id", itemHandler.Replace)
		authed.PATCH("/items/:id", itemHandler.PatchMetadata)
		authed.DELETE("/items/:id", itemHandler.Delete)
	}

	su := api.Group("")
	su.Use(middleware.Auth(d.DB, d.Cfg.JWT.Secret), middleware.RequireSuperuser())
	{
		su.GET("/users", userHandler.List)
		su.POST("/users", userHandler.Create)
		su.PATCH("/users/:id", userHandler.Update)
		su.DELETE("/users/:id", userHandler.Delete)

		su.GET("/admin/dashboard", adminHandler.Dashboard)
		su.POST("/admin/maintenance/reconcile-files", adminHandler.ReconcileFiles)
	}
}
