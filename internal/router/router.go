package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/adboard/adboard/internal/config"
	"github.com/adboard/adboard/internal/handler"
	"github.com/adboard/adboard/internal/middleware"
)

// Register wires every route of the API onto the Echo instance.  Paths
// follow the public contract: auth and reset endpoints at the root, ads
// under /ads/ with reviews nested below them.  Reads on ads and reviews
// are public; writes require a Bearer access token, with row-level
// permission enforced inside the handlers.
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client,
	auth *handler.AuthHandler, ads *handler.AdHandler, reviews *handler.ReviewHandler) {

	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	e.GET("/healthz", handler.Health)

	// Session-free endpoints.
	e.POST("/register/", auth.Register)
	e.POST("/login/", auth.Login)
	e.POST("/token/refresh/", auth.Refresh)
	e.POST("/reset_password/", auth.ResetRequest)
	e.POST("/reset_password_confirm/", auth.ResetConfirm)

	jwt := middleware.JWTAuth(cfg.SecretKey)

	e.GET("/profile/", auth.Profile, jwt)

	// Public ad browsing sits behind the response cache; listings are read
	// far more often than they change.
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	e.GET("/ads/", ads.List, cache)
	e.GET("/ads/upd/:id/", ads.Get, cache)

	e.POST("/ads/create/", ads.Create, jwt)
	e.PUT("/ads/upd/:id/", ads.Update, jwt)
	e.DELETE("/ads/upd/:id/", ads.Delete, jwt)

	e.GET("/ads/reviews/", reviews.List)
	e.GET("/ads/reviews/:id/", reviews.Get)
	e.POST("/ads/reviews/", reviews.Create, jwt)
	e.PUT("/ads/reviews/:id/", reviews.Update, jwt)
	e.DELETE("/ads/reviews/:id/", reviews.Delete, jwt)
}
