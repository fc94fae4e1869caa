package handler

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"account_service/internal/auth"
	"account_service/internal/config"
	"account_service/internal/db"
	"account_service/internal/googlesignin"
	"account_service/internal/middleware"
	"account_service/internal/observability"
	"account_service/internal/user"
)

// SetupHandler wires all dependencies and routes. Each controller is
// constructed once and injected here; nothing is held in package state.
// Middleware is installed before any route so every request is observed.
func SetupHandler(database *sql.DB, cfg *config.Config, metrics *observability.Metrics) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	if metrics != nil {
		r.Use(middleware.PrometheusMiddleware(metrics))
	}

	sessions := db.NewManager(database, metrics)
	hasher := auth.NewArgon2Hasher(auth.Argon2Params{
		MemoryCost:  cfg.Argon2.MemoryCost,
		TimeCost:    cfg.Argon2.TimeCost,
		Parallelism: cfg.Argon2.Parallelism,
		KeyLength:   cfg.Argon2.KeyLength,
	})

	userRepo := user.NewUserRepository(sessions)
	userService := user.NewUserService(userRepo, hasher, metrics)
	userController := user.NewUserController(userService)
	userController.SetupRoutes(r)

	signinController := googlesignin.NewController(cfg.App.Host, cfg.Google.ClientID)
	signinController.SetupRoutes(r)

	return r
}
